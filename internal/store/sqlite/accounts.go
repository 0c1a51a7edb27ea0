package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/store"
)

var log = logrus.WithField("pkg", "sqlite")

// checkPlaintext is sealed into meta so a wrong key is detected even when no
// partition exists.
var checkPlaintext = []byte("mailstate")

// LoadDatabase reads every partition. It returns nil when no database has
// been saved yet.
func (s *DB) LoadDatabase(ctx context.Context, key *[store.KeySize]byte) (*store.MailDatabase, error) {
	version, err := getMeta(ctx, s.db, metaVersion)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, nil
	}
	check, err := getMeta(ctx, s.db, metaCheck)
	if err != nil {
		return nil, err
	}
	if _, err := store.Open(key, check); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT type, login, data FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	db := store.OpenMailDatabase(string(version))
	for rows.Next() {
		var pk domain.AccountPK
		var sealed []byte
		if err := rows.Scan(&pk.Type, &pk.Login, &sealed); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		plain, err := store.Open(key, sealed)
		if err != nil {
			return nil, fmt.Errorf("failed to open account %s: %w", pk, err)
		}
		var a domain.DbAccount
		if err := json.Unmarshal(plain, &a); err != nil {
			return nil, fmt.Errorf("failed to parse account %s: %w: %v", pk, store.ErrCorrupted, err)
		}
		db.PutAccount(pk, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return db, nil
}

// SaveDatabase replaces the stored database with db in one transaction.
func (s *DB) SaveDatabase(ctx context.Context, db *store.MailDatabase, key *[store.KeySize]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("failed to clear accounts: %w", err)
	}
	position := 0
	for entry := range db.Accounts() {
		plain, err := json.Marshal(entry.Account)
		if err != nil {
			return fmt.Errorf("failed to encode account %s: %w", entry.PK, err)
		}
		sealed, err := store.Seal(key, plain)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (type, login, position, data) VALUES (?, ?, ?, ?)`,
			entry.PK.Type, entry.PK.Login, position, sealed,
		); err != nil {
			return fmt.Errorf("failed to save account %s: %w", entry.PK, err)
		}
		position++
	}

	version := db.SaveVersion()
	if err := setMeta(ctx, tx, metaVersion, []byte(version)); err != nil {
		return err
	}
	check, err := store.Seal(key, checkPlaintext)
	if err != nil {
		return err
	}
	if err := setMeta(ctx, tx, metaCheck, check); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	log.WithFields(logrus.Fields{"version": version, "partitions": position}).Info("saved database")
	return nil
}
