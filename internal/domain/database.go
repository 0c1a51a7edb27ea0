package domain

import (
	"encoding/json"
	"strconv"
)

// DatabaseVersion is the schema version written by this release. It is an
// integer counter unrelated to the application version.
const DatabaseVersion = 4

// CurrentDatabaseVersion is DatabaseVersion in its stored form.
var CurrentDatabaseVersion = strconv.Itoa(DatabaseVersion)

// AccountPK identifies a database partition.
type AccountPK struct {
	Type  AccountType `json:"type"`
	Login string      `json:"login"`
}

func (pk AccountPK) String() string {
	return string(pk.Type) + ":" + pk.Login
}

// Records maps a record identifier to its opaque, sync-owned payload.
type Records map[string]json.RawMessage

// DbAccount is the partition of the database owned by one account.
type DbAccount struct {
	ConversationEntries Records     `json:"conversationEntries"`
	Mails               Records     `json:"mails"`
	Folders             Records     `json:"folders"`
	Contacts            Records     `json:"contacts"`
	DeletedPks          *DeletedPks `json:"deletedPks,omitempty"`

	Extra Extra `json:"-"`
}

func (a *DbAccount) UnmarshalJSON(data []byte) error {
	type plain DbAccount
	extra, err := decodeObject(data, (*plain)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a DbAccount) MarshalJSON() ([]byte, error) {
	type plain DbAccount
	return encodeObject(plain(a), a.Extra)
}

// NewDbAccount returns an empty partition with empty tombstone sets.
func NewDbAccount() *DbAccount {
	return &DbAccount{
		ConversationEntries: Records{},
		Mails:               Records{},
		Folders:             Records{},
		Contacts:            Records{},
		DeletedPks:          NewDeletedPks(),
	}
}

// DeletedPks records soft-deleted identifiers per collection.
type DeletedPks struct {
	ConversationEntries []string `json:"conversationEntries"`
	Mails               []string `json:"mails"`
	Folders             []string `json:"folders"`
	Contacts            []string `json:"contacts"`
}

// NewDeletedPks returns four empty tombstone sets.
func NewDeletedPks() *DeletedPks {
	return &DeletedPks{
		ConversationEntries: []string{},
		Mails:               []string{},
		Folders:             []string{},
		Contacts:            []string{},
	}
}

// DbAccountEntry pairs a partition with its key during iteration. Account is
// shared with the database, so mutating it mutates the partition.
type DbAccountEntry struct {
	PK      AccountPK
	Account *DbAccount
}
