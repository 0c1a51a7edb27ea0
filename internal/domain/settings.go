package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateLogin is returned when two accounts of one type share a login.
var ErrDuplicateLogin = errors.New("duplicate account login")

// Settings is the per-user document holding accounts and the database key.
type Settings struct {
	Rev                   int             `json:"_rev,omitempty"`
	Accounts              []AccountConfig `json:"accounts"`
	DatabaseEncryptionKey string          `json:"databaseEncryptionKey,omitempty"`

	Extra Extra `json:"-"`
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	extra, err := decodeObject(data, (*plain)(s))
	if err != nil {
		return err
	}
	s.Extra = extra
	return nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	type plain Settings
	return encodeObject(plain(s), s.Extra)
}

func (s *Settings) Revision() int     { return s.Rev }
func (s *Settings) SetRevision(r int) { s.Rev = r }

// Validate rejects settings holding the same login twice for one account type.
func (s *Settings) Validate() error {
	seen := make(map[AccountPK]struct{}, len(s.Accounts))
	for _, a := range s.Accounts {
		pk := a.PK()
		if _, ok := seen[pk]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLogin, pk)
		}
		seen[pk] = struct{}{}
	}
	return nil
}
