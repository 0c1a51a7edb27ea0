package migrate

import (
	"encoding/json"
	"testing"

	"github.com/lu-zhengda/mailstate/internal/domain"
)

const testDatabaseKey = "dGVzdC1rZXktdGVzdC1rZXktdGVzdC1rZXktdGVzdCE="

// testDefaults is domain.Defaults with a fixed database key.
type testDefaults struct{ domain.Defaults }

func (testDefaults) Settings() domain.Settings {
	s := domain.Defaults{}.Settings()
	s.DatabaseEncryptionKey = testDatabaseKey
	return s
}

func testEnv(appVersion string) Env {
	return Env{AppVersion: appVersion, Defaults: testDefaults{}}
}

func mustConfig(t *testing.T, doc string) *domain.Config {
	t.Helper()
	var c domain.Config
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		t.Fatalf("Unmarshal(config) error: %v", err)
	}
	return &c
}

func mustSettings(t *testing.T, doc string) *domain.Settings {
	t.Helper()
	var s domain.Settings
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("Unmarshal(settings) error: %v", err)
	}
	return &s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	return string(data)
}
