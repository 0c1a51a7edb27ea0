package store

import (
	"iter"
	"slices"
	"strconv"

	"github.com/lu-zhengda/mailstate/internal/domain"
)

// MailDatabase is the in-memory image of the local mail database. Partitions
// keep the order they were added in.
type MailDatabase struct {
	version  string
	pks      []domain.AccountPK
	accounts map[domain.AccountPK]*domain.DbAccount
}

// NewMailDatabase returns an empty database at the current version.
func NewMailDatabase() *MailDatabase {
	return OpenMailDatabase(domain.CurrentDatabaseVersion)
}

// OpenMailDatabase returns an empty database carrying a stored version, for
// backends to fill with partitions.
func OpenMailDatabase(version string) *MailDatabase {
	return &MailDatabase{version: version, accounts: map[domain.AccountPK]*domain.DbAccount{}}
}

func (d *MailDatabase) Version() string { return d.version }

// Reset drops every partition and moves the database to the current version.
func (d *MailDatabase) Reset() {
	d.version = domain.CurrentDatabaseVersion
	d.pks = nil
	d.accounts = map[domain.AccountPK]*domain.DbAccount{}
}

func (d *MailDatabase) Accounts() iter.Seq[domain.DbAccountEntry] {
	return func(yield func(domain.DbAccountEntry) bool) {
		for _, pk := range d.pks {
			if !yield(domain.DbAccountEntry{PK: pk, Account: d.accounts[pk]}) {
				return
			}
		}
	}
}

// Account returns the partition for pk.
func (d *MailDatabase) Account(pk domain.AccountPK) (*domain.DbAccount, bool) {
	a, ok := d.accounts[pk]
	return a, ok
}

// PutAccount adds or replaces the partition for pk.
func (d *MailDatabase) PutAccount(pk domain.AccountPK, a *domain.DbAccount) {
	if _, ok := d.accounts[pk]; !ok {
		d.pks = append(d.pks, pk)
	}
	d.accounts[pk] = a
}

func (d *MailDatabase) DeleteAccount(pk domain.AccountPK) {
	if _, ok := d.accounts[pk]; !ok {
		return
	}
	delete(d.accounts, pk)
	d.pks = slices.DeleteFunc(d.pks, func(p domain.AccountPK) bool { return p == pk })
}

// Len returns the number of partitions.
func (d *MailDatabase) Len() int { return len(d.pks) }

// PKs returns the partition keys in order.
func (d *MailDatabase) PKs() []domain.AccountPK { return slices.Clone(d.pks) }

// SaveVersion is the version to stamp on save: the current version, or the
// stored one when a newer release wrote it.
func (d *MailDatabase) SaveVersion() string {
	v, err := strconv.Atoi(d.version)
	if err != nil || v < domain.DatabaseVersion {
		return domain.CurrentDatabaseVersion
	}
	return d.version
}
