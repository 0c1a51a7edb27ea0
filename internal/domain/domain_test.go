package domain

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestDefaults_Independent(t *testing.T) {
	a := Defaults{}.Config()
	b := Defaults{}.Config()
	*a.Timeouts.DBSyncing = 1
	a.JSFlags[0] = "changed"
	if *b.Timeouts.DBSyncing == 1 || b.JSFlags[0] == "changed" {
		t.Error("default configs share memory")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("default config Validate() error: %v", err)
	}
}

func TestDefaults_SettingsKey(t *testing.T) {
	s1 := Defaults{}.Settings()
	s2 := Defaults{}.Settings()
	if s1.DatabaseEncryptionKey == s2.DatabaseEncryptionKey {
		t.Error("expected fresh key per call")
	}
	key, err := base64.StdEncoding.DecodeString(s1.DatabaseEncryptionKey)
	if err != nil {
		t.Fatalf("key is not base64: %v", err)
	}
	if len(key) != DatabaseKeySize {
		t.Errorf("key size = %d, want %d", len(key), DatabaseKeySize)
	}
	if s1.Accounts == nil {
		t.Error("default accounts should be an empty list, not nil")
	}
}

func TestSettings_Validate(t *testing.T) {
	s := Settings{Accounts: []AccountConfig{
		{Type: AccountTypeProtonmail, Login: "a"},
		{Type: AccountTypeTutanota, Login: "a"},
	}}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	s.Accounts = append(s.Accounts, AccountConfig{Type: AccountTypeProtonmail, Login: "a"})
	if err := s.Validate(); !errors.Is(err, ErrDuplicateLogin) {
		t.Errorf("Validate() = %v, want ErrDuplicateLogin", err)
	}
}

func TestEncryptionPreset_Validate(t *testing.T) {
	p := *Defaults{}.Config().EncryptionPreset
	p.KeyDerivation.Preset = "mode:yolo"
	if err := p.Validate(); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Validate() = %v, want ErrUnknownPreset", err)
	}
	var nilCfg *Config
	if got := nilCfg.KeyDerivationPreset(); got != KeyDerivationInteractive {
		t.Errorf("KeyDerivationPreset() = %q, want %q", got, KeyDerivationInteractive)
	}
}

func TestRateLimit_Limiter(t *testing.T) {
	l := RateLimit{IntervalMs: 60 * 1000, MaxInTimeFrame: 300}.Limiter()
	if want := rate.Every(200 * time.Millisecond); l.Limit() != want {
		t.Errorf("Limit() = %v, want %v", l.Limit(), want)
	}
	if l.Burst() != 300 {
		t.Errorf("Burst() = %d, want 300", l.Burst())
	}
	if got := (RateLimit{}).Limiter().Limit(); got != rate.Inf {
		t.Errorf("zero RateLimit Limit() = %v, want Inf", got)
	}
}

func TestAllowedEntryURL(t *testing.T) {
	if !AllowedEntryURL(PrimaryEntryURL) {
		t.Error("primary entry URL must be allowed")
	}
	if AllowedEntryURL("https://mail.protonmail.com") {
		t.Error("unprefixed entry URL must not be allowed")
	}
}
