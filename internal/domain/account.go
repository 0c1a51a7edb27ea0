package domain

import "slices"

type AccountType string

const (
	AccountTypeProtonmail AccountType = "protonmail"
	AccountTypeTutanota   AccountType = "tutanota"
)

// EntryURLLocalPrefix marks entry points served from the bundled web clients.
const EntryURLLocalPrefix = "local:::"

// PrimaryEntryURL is the canonical Protonmail entry point.
const PrimaryEntryURL = EntryURLLocalPrefix + "https://mail.protonmail.com"

// EntryURLs is the allow-list every account entry URL must belong to.
var EntryURLs = []string{
	PrimaryEntryURL,
	EntryURLLocalPrefix + "https://app.protonmail.ch",
	EntryURLLocalPrefix + "https://protonirockerxow.onion",
	EntryURLLocalPrefix + "https://mail.tutanota.com",
}

// AllowedEntryURL reports whether u is in EntryURLs.
func AllowedEntryURL(u string) bool {
	return slices.Contains(EntryURLs, u)
}

// AccountConfig is one entry of Settings.Accounts.
type AccountConfig struct {
	Type        AccountType         `json:"type"`
	Login       string              `json:"login"`
	EntryURL    string              `json:"entryUrl"`
	Database    *bool               `json:"database,omitempty"`
	Credentials *AccountCredentials `json:"credentials,omitempty"`

	Extra Extra `json:"-"`
}

func (a *AccountConfig) UnmarshalJSON(data []byte) error {
	type plain AccountConfig
	extra, err := decodeObject(data, (*plain)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a AccountConfig) MarshalJSON() ([]byte, error) {
	type plain AccountConfig
	return encodeObject(plain(a), a.Extra)
}

// PK returns the database partition key for the account.
func (a AccountConfig) PK() AccountPK {
	return AccountPK{Type: a.Type, Login: a.Login}
}

// LocalStoreEnabled reports whether mail is kept in the local database.
func (a AccountConfig) LocalStoreEnabled() bool {
	return a.Database != nil && *a.Database
}

type AccountCredentials struct {
	Password      string `json:"password,omitempty"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
	MailPassword  string `json:"mailPassword,omitempty"`
}
