package domain

import (
	"errors"
	"fmt"
)

const (
	KeyDerivationPwhash      = "sodium.crypto_pwhash"
	EncryptionSecretboxEasy  = "sodium.crypto_secretbox_easy"
	KeyDerivationInteractive = "mode:interactive"
	KeyDerivationModerate    = "mode:moderate"
	KeyDerivationSensitive   = "mode:sensitive"
	EncryptionAlgorithmDef   = "algorithm:default"
)

// ErrUnknownPreset is returned for encryption presets the stores cannot honor.
var ErrUnknownPreset = errors.New("unknown encryption preset")

// EncryptionPreset selects how the settings document is protected at rest.
type EncryptionPreset struct {
	KeyDerivation PresetValue `json:"keyDerivation"`
	Encryption    PresetValue `json:"encryption"`
}

type PresetValue struct {
	Type   string `json:"type"`
	Preset string `json:"preset"`
}

func (p EncryptionPreset) Validate() error {
	if p.KeyDerivation.Type != KeyDerivationPwhash {
		return fmt.Errorf("%w: key derivation type %q", ErrUnknownPreset, p.KeyDerivation.Type)
	}
	switch p.KeyDerivation.Preset {
	case KeyDerivationInteractive, KeyDerivationModerate, KeyDerivationSensitive:
	default:
		return fmt.Errorf("%w: key derivation preset %q", ErrUnknownPreset, p.KeyDerivation.Preset)
	}
	if p.Encryption.Type != EncryptionSecretboxEasy || p.Encryption.Preset != EncryptionAlgorithmDef {
		return fmt.Errorf("%w: encryption %q/%q", ErrUnknownPreset, p.Encryption.Type, p.Encryption.Preset)
	}
	return nil
}

// KeyDerivationPreset returns the configured preset, falling back to
// interactive when the config predates presets.
func (c *Config) KeyDerivationPreset() string {
	if c == nil || c.EncryptionPreset == nil {
		return KeyDerivationInteractive
	}
	return c.EncryptionPreset.KeyDerivation.Preset
}
