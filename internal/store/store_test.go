package store

import (
	"errors"
	"slices"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/lu-zhengda/mailstate/internal/domain"
)

func pk(login string) domain.AccountPK {
	return domain.AccountPK{Type: domain.AccountTypeProtonmail, Login: login}
}

func TestMailDatabase_Order(t *testing.T) {
	db := NewMailDatabase()
	for _, login := range []string{"c", "a", "b"} {
		db.PutAccount(pk(login), domain.NewDbAccount())
	}
	db.PutAccount(pk("a"), domain.NewDbAccount())

	var got []string
	for e := range db.Accounts() {
		got = append(got, e.PK.Login)
	}
	if want := []string{"c", "a", "b"}; !slices.Equal(got, want) {
		t.Errorf("iteration order = %v, want %v", got, want)
	}

	db.DeleteAccount(pk("a"))
	db.DeleteAccount(pk("missing"))
	if db.Len() != 2 {
		t.Errorf("Len() = %d, want 2", db.Len())
	}
	if _, ok := db.Account(pk("a")); ok {
		t.Error("deleted partition still present")
	}
}

func TestMailDatabase_EntriesShareState(t *testing.T) {
	db := NewMailDatabase()
	db.PutAccount(pk("a"), &domain.DbAccount{})
	for e := range db.Accounts() {
		e.Account.DeletedPks = domain.NewDeletedPks()
	}
	a, _ := db.Account(pk("a"))
	if a.DeletedPks == nil {
		t.Error("mutation through iteration entry was lost")
	}
}

func TestMailDatabase_Reset(t *testing.T) {
	db := OpenMailDatabase("1")
	db.PutAccount(pk("a"), domain.NewDbAccount())
	db.Reset()
	if db.Version() != domain.CurrentDatabaseVersion {
		t.Errorf("Version() = %q, want %q", db.Version(), domain.CurrentDatabaseVersion)
	}
	if db.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", db.Len())
	}
}

func TestMailDatabase_SaveVersion(t *testing.T) {
	tests := []struct {
		stored string
		want   string
	}{
		{"2", domain.CurrentDatabaseVersion},
		{domain.CurrentDatabaseVersion, domain.CurrentDatabaseVersion},
		{"9", "9"},
	}
	for _, tt := range tests {
		if got := OpenMailDatabase(tt.stored).SaveVersion(); got != tt.want {
			t.Errorf("SaveVersion() for %q = %q, want %q", tt.stored, got, tt.want)
		}
	}
}

func TestKeyringPasswordStore(t *testing.T) {
	keyring.MockInit()
	k := NewKeyringPasswordStore(t.TempDir())

	if _, err := k.LoadPassword(); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("LoadPassword() on empty keyring error = %v, want ErrNoPassword", err)
	}
	if err := k.SavePassword("hunter2"); err != nil {
		t.Fatalf("SavePassword() error: %v", err)
	}
	got, err := k.LoadPassword()
	if err != nil {
		t.Fatalf("LoadPassword() error: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("LoadPassword() = %q, want %q", got, "hunter2")
	}
	if err := k.DeletePassword(); err != nil {
		t.Fatalf("DeletePassword() error: %v", err)
	}
	if err := k.DeletePassword(); err != nil {
		t.Errorf("second DeletePassword() error: %v", err)
	}
}

func TestSealOpen(t *testing.T) {
	key, err := ParseKey(domain.NewDatabaseEncryptionKey())
	if err != nil {
		t.Fatalf("ParseKey() error: %v", err)
	}
	sealed, err := Seal(key, []byte("payload"))
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	got, err := Open(key, sealed)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Open() = %q, want %q", got, "payload")
	}

	sealed[len(sealed)-1] ^= 0xff
	if _, err := Open(key, sealed); !errors.Is(err, ErrCorrupted) {
		t.Errorf("Open(tampered) error = %v, want ErrCorrupted", err)
	}
	if _, err := Open(key, []byte("short")); !errors.Is(err, ErrCorrupted) {
		t.Errorf("Open(short) error = %v, want ErrCorrupted", err)
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", domain.NewDatabaseEncryptionKey(), false},
		{"not base64", "%%%", true},
		{"too short", "c2hvcnQ=", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
