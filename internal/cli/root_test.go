package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/migrate"
	"github.com/lu-zhengda/mailstate/internal/store"
	"github.com/lu-zhengda/mailstate/internal/version"
)

// setupEnv points every location at a temp dir and supplies a password.
func setupEnv(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MAILSTATE_DATA_DIR", dataDir)
	t.Setenv("MAILSTATE_MASTER_PASSWORD", "correct horse")
	t.Setenv("MAILSTATE_LOG_LEVEL", "error")
	t.Setenv("MAILSTATE_APP_VERSION", "")
	return dataDir
}

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUpgradeThenStatus(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "", "upgrade", "--json")
	if err != nil {
		t.Fatalf("upgrade error: %v", err)
	}
	var r struct {
		AppVersion string `json:"appVersion"`
		Config     struct {
			Created  bool `json:"created"`
			Revision int  `json:"revision"`
		} `json:"config"`
		Database struct {
			Created      bool   `json:"created"`
			VersionAfter string `json:"versionAfter"`
		} `json:"database"`
	}
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("failed to parse upgrade output: %v\n%s", err, out)
	}
	if r.AppVersion != version.Current || !r.Config.Created || r.Config.Revision != 1 {
		t.Errorf("upgrade report = %+v", r)
	}
	if !r.Database.Created || r.Database.VersionAfter != domain.CurrentDatabaseVersion {
		t.Errorf("database report = %+v", r.Database)
	}

	out, err = runCmd(t, "", "status", "--json")
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	var s struct {
		DryRun bool `json:"dryRun"`
		Config struct {
			Changed bool `json:"changed"`
		} `json:"config"`
		FetchRate fetchRate `json:"fetchRate"`
	}
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("failed to parse status output: %v\n%s", err, out)
	}
	if !s.DryRun || s.Config.Changed {
		t.Errorf("status = %+v, want a clean dry run", s)
	}
	if s.FetchRate.Unlimited || s.FetchRate.Burst == 0 {
		t.Errorf("fetch rate = %+v, want the default limit", s.FetchRate)
	}
}

func TestUpgrade_TextOutput(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "", "upgrade")
	if err != nil {
		t.Fatalf("upgrade error: %v", err)
	}
	for _, want := range []string{"Upgraded to " + version.Current, "config", "created", "rev 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runCmd(t, "", "status")
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if !strings.Contains(out, "dry run") || !strings.Contains(out, "up to date") {
		t.Errorf("status output:\n%s", out)
	}
}

func TestUpgrade_InvalidAppVersion(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "", "upgrade", "--app-version", "not-a-version")
	if err == nil {
		t.Fatal("expected an error for an invalid app version")
	}
}

func TestAccountList_Empty(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "", "account", "list")
	if err != nil {
		t.Fatalf("account list error: %v", err)
	}
	if !strings.Contains(out, "No accounts configured.") {
		t.Errorf("output = %q", out)
	}

	out, err = runCmd(t, "", "account", "list", "--json")
	if err != nil {
		t.Fatalf("account list --json error: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("json output = %q, want []", out)
	}
}

func TestKeyring_SetAndClear(t *testing.T) {
	setupEnv(t)
	t.Setenv("MAILSTATE_MASTER_PASSWORD", "")

	if _, err := runCmd(t, "", "upgrade"); err == nil || !strings.Contains(err.Error(), "no master password") {
		t.Fatalf("upgrade without password error = %v", err)
	}
	if _, err := runCmd(t, "", "keyring", "set"); err == nil {
		t.Error("keyring set accepted an empty password")
	}
	if _, err := runCmd(t, "hunter2\n", "keyring", "set"); err != nil {
		t.Fatalf("keyring set error: %v", err)
	}
	if _, err := runCmd(t, "", "upgrade"); err != nil {
		t.Fatalf("upgrade with keyring password error: %v", err)
	}

	// The settings file is sealed with the keyring password.
	t.Setenv("MAILSTATE_MASTER_PASSWORD", "wrong")
	_, err := runCmd(t, "", "status")
	if !errors.Is(err, store.ErrCorrupted) {
		t.Errorf("status with wrong password error = %v, want ErrCorrupted", err)
	}
	t.Setenv("MAILSTATE_MASTER_PASSWORD", "")

	out, err := runCmd(t, "", "keyring", "clear", "--json")
	if err != nil {
		t.Fatalf("keyring clear error: %v", err)
	}
	if !strings.Contains(out, `"keyring-clear"`) {
		t.Errorf("output = %q", out)
	}
	if _, err := runCmd(t, "", "status"); err == nil {
		t.Error("status succeeded after the password was cleared")
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"corrupted", fmt.Errorf("failed to upgrade settings: %w", store.ErrCorrupted), exitCorrupted},
		{"shape", fmt.Errorf("wrapped: %w", &migrate.ShapeError{Field: "accounts[0].entryUrl", Reason: "not allowed"}), exitMigration},
		{"step", &migrate.StepError{Entity: "config", Version: "2.0.0", Err: errors.New("boom")}, exitMigration},
		{"catalog", migrate.ErrInvalidCatalog, exitMigration},
		{"version", &version.ParseError{Value: "x"}, exitMigration},
		{"other", errors.New("disk full"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := reportError(&buf, tt.err); got != tt.want {
				t.Errorf("reportError() = %d, want %d", got, tt.want)
			}
			if !strings.HasPrefix(buf.String(), "Error: ") {
				t.Errorf("message = %q", buf.String())
			}
		})
	}
}

func TestConfigFetchRate(t *testing.T) {
	cfg := domain.Defaults{}.Config()
	cfg.Fetching.RateLimit = &domain.RateLimit{IntervalMs: 1000, MaxInTimeFrame: 4}
	got := configFetchRate(&cfg)
	if got.Unlimited || got.PerSecond != 4 || got.Burst != 4 {
		t.Errorf("configFetchRate() = %+v, want 4 req/s burst 4", got)
	}

	cfg.Fetching.RateLimit = &domain.RateLimit{}
	if got := configFetchRate(&cfg); !got.Unlimited {
		t.Errorf("configFetchRate(disabled) = %+v, want unlimited", got)
	}
	if got := configFetchRate(&domain.Config{}); !got.Unlimited {
		t.Errorf("configFetchRate(empty) = %+v, want unlimited", got)
	}
}
