package migrate

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"

	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/version"
)

// Database is the view of the local mail database the coordinator needs.
type Database interface {
	// Version returns the stored schema version, an integer in string form.
	Version() string
	// Reset replaces the contents with an empty database at the current version.
	Reset()
	// Accounts returns a fresh single-pass sequence over the partitions.
	Accounts() iter.Seq[domain.DbAccountEntry]
	DeleteAccount(pk domain.AccountPK)
}

// tombstonesVersion is the first database version whose partitions always
// carry deletedPks.
const tombstonesVersion = 4

// UpgradeDatabase evolves db and removes partitions no account with local
// storage enabled refers to. The result tells the caller to save db.
func UpgradeDatabase(db Database, accounts []domain.AccountConfig) (bool, error) {
	raw := db.Version()
	v, err := strconv.Atoi(raw)
	if err != nil {
		return false, fmt.Errorf("%w: database version %q", version.ErrInvalid, raw)
	}
	dlog := log.WithField("dbVersion", v)

	if v == 1 {
		dlog.Info("resetting legacy database")
		db.Reset()
		return true, nil
	}

	// Version 2 databases are re-saved once; nothing in them changes.
	changed := v == 2

	if v < tombstonesVersion {
		if n := addTombstones(db); n > 0 {
			dlog.WithField("partitions", n).Info("initialized tombstones")
			changed = true
		}
	}

	if removed := pruneAccounts(db, accounts); len(removed) > 0 {
		dlog.WithFields(logrus.Fields{
			"partitions": len(removed),
			"pks":        xslices.Map(removed, domain.AccountPK.String),
		}).Info("removed orphaned partitions")
		changed = true
	}

	return changed, nil
}

func addTombstones(db Database) int {
	n := 0
	for entry := range db.Accounts() {
		if entry.Account.DeletedPks != nil {
			continue
		}
		entry.Account.DeletedPks = domain.NewDeletedPks()
		n++
	}
	return n
}

// pruneAccounts deletes partitions lacking an account with the same type and
// login and local storage enabled. Deletion happens after iteration ends.
func pruneAccounts(db Database, accounts []domain.AccountConfig) []domain.AccountPK {
	var remove []domain.AccountPK
	for entry := range db.Accounts() {
		pk := entry.PK
		exists := xslices.Any(accounts, func(a domain.AccountConfig) bool {
			return a.LocalStoreEnabled() && a.Type == pk.Type && a.Login == pk.Login
		})
		if !exists {
			remove = append(remove, pk)
		}
	}
	for _, pk := range remove {
		db.DeleteAccount(pk)
	}
	return remove
}
