package jsonfile

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/store"
)

// Codec converts between a document's JSON form and its file bytes.
type Codec interface {
	Encode(doc []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// Plain stores documents as indented JSON.
type Plain struct{}

func (Plain) Encode(doc []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (Plain) Decode(data []byte) ([]byte, error) {
	return data, nil
}

// KDFParams are argon2id cost parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// ParamsForPreset maps a key derivation preset to argon2id parameters with
// the costs libsodium uses for the same preset.
func ParamsForPreset(preset string) (KDFParams, error) {
	switch preset {
	case domain.KeyDerivationInteractive:
		return KDFParams{Time: 2, Memory: 64 * 1024, Threads: 1}, nil
	case domain.KeyDerivationModerate:
		return KDFParams{Time: 3, Memory: 256 * 1024, Threads: 1}, nil
	case domain.KeyDerivationSensitive:
		return KDFParams{Time: 4, Memory: maxMemory, Threads: 1}, nil
	}
	return KDFParams{}, fmt.Errorf("%w: key derivation preset %q", domain.ErrUnknownPreset, preset)
}

const (
	sealedMagic = "MSS1"
	saltSize    = 16
	maxMemory   = 1024 * 1024 // KiB
	headerSize  = len(sealedMagic) + 4 + 4 + 1 + saltSize
)

// Sealed encrypts documents with a key derived from a password. Each encode
// draws a fresh salt; the derivation parameters travel in the file header, so
// files written under another preset still decode.
type Sealed struct {
	password []byte
	params   KDFParams
}

func NewSealed(password string, params KDFParams) *Sealed {
	return &Sealed{password: []byte(password), params: params}
}

func (s *Sealed) Encode(doc []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	header := make([]byte, 0, headerSize)
	header = append(header, sealedMagic...)
	header = binary.BigEndian.AppendUint32(header, s.params.Time)
	header = binary.BigEndian.AppendUint32(header, s.params.Memory)
	header = append(header, s.params.Threads)
	header = append(header, salt...)

	sealed, err := store.Seal(s.key(salt, s.params), doc)
	if err != nil {
		return nil, err
	}
	return append(header, sealed...), nil
}

func (s *Sealed) Decode(data []byte) ([]byte, error) {
	if len(data) < headerSize || string(data[:len(sealedMagic)]) != sealedMagic {
		return nil, fmt.Errorf("%w: missing encryption header", store.ErrCorrupted)
	}
	rest := data[len(sealedMagic):]
	params := KDFParams{
		Time:    binary.BigEndian.Uint32(rest[0:4]),
		Memory:  binary.BigEndian.Uint32(rest[4:8]),
		Threads: rest[8],
	}
	if params.Time == 0 || params.Threads == 0 || params.Memory > maxMemory {
		return nil, fmt.Errorf("%w: invalid key derivation parameters", store.ErrCorrupted)
	}
	salt := rest[9 : 9+saltSize]
	return store.Open(s.key(salt, params), data[headerSize:])
}

func (s *Sealed) key(salt []byte, p KDFParams) *[store.KeySize]byte {
	var key [store.KeySize]byte
	copy(key[:], argon2.IDKey(s.password, salt, p.Time, p.Memory, p.Threads, store.KeySize))
	return &key
}
