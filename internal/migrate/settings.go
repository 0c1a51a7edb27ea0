package migrate

import (
	"fmt"
	"strings"

	"github.com/lu-zhengda/mailstate/internal/domain"
)

// betaEntryURL was retired in 3.5.0; accounts using it move to the primary
// entry point.
const betaEntryURL = "https://beta.protonmail.com"

// SettingsCatalog returns the settings migration steps.
func SettingsCatalog() Catalog[domain.Settings] {
	return Catalog[domain.Settings]{
		{"1.1.1", func(s *domain.Settings, env Env) error {
			keePass := env.AppVersionBefore("2.0.0")
			for i := range s.Accounts {
				a := &s.Accounts[i]
				if a.Credentials == nil {
					a.Credentials = &domain.AccountCredentials{}
				}
				// KeePass credentials were dropped in 2.0.0.
				if keePass && !a.Extra.Has("credentialsKeePass") {
					if err := a.Extra.Set("credentialsKeePass", struct{}{}); err != nil {
						return err
					}
				}
			}
			return nil
		}},
		{"1.4.2", func(s *domain.Settings, env Env) error {
			if s.DatabaseEncryptionKey == "" {
				var legacy string
				if _, err := s.Extra.Decode("dbEncryptionKey", &legacy); err != nil {
					return &ShapeError{Field: "dbEncryptionKey", Value: string(s.Extra["dbEncryptionKey"]), Reason: "not a string"}
				}
				s.DatabaseEncryptionKey = legacy
				if legacy == "" {
					s.DatabaseEncryptionKey = env.Defaults.Settings().DatabaseEncryptionKey
				}
			}
			s.Extra.Delete("dbEncryptionKey")

			for i := range s.Accounts {
				a := &s.Accounts[i]
				if a.Database != nil || !a.Extra.Has("storeMails") {
					continue
				}
				var storeMails bool
				if _, err := a.Extra.Decode("storeMails", &storeMails); err != nil {
					return &ShapeError{
						Field:  fmt.Sprintf("accounts[%d].storeMails", i),
						Value:  string(a.Extra["storeMails"]),
						Reason: "not a boolean",
					}
				}
				a.Database = &storeMails
				a.Extra.Delete("storeMails")
			}
			return nil
		}},
		{"2.0.0", func(s *domain.Settings, _ Env) error {
			// Remote web clients were dropped; every entry point is served locally.
			for i := range s.Accounts {
				a := &s.Accounts[i]
				if domain.AllowedEntryURL(a.EntryURL) || strings.HasPrefix(a.EntryURL, domain.EntryURLLocalPrefix) {
					continue
				}
				a.EntryURL = domain.EntryURLLocalPrefix + a.EntryURL
			}
			return nil
		}},
		{"3.5.0", func(s *domain.Settings, _ Env) error {
			for i := range s.Accounts {
				a := &s.Accounts[i]
				// Either the bare URL or the local form added by 2.0.0.
				if strings.Contains(a.EntryURL, betaEntryURL) {
					a.EntryURL = domain.PrimaryEntryURL
				}
				if !domain.AllowedEntryURL(a.EntryURL) {
					return &ShapeError{
						Field:  fmt.Sprintf("accounts[%d].entryUrl", i),
						Value:  a.EntryURL,
						Reason: "not an allowed entry URL",
					}
				}
			}
			return nil
		}},
	}
}
