package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailstate/internal/app"
	"github.com/lu-zhengda/mailstate/internal/config"
	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/migrate"
	"github.com/lu-zhengda/mailstate/internal/store"
	"github.com/lu-zhengda/mailstate/internal/store/jsonfile"
	"github.com/lu-zhengda/mailstate/internal/store/sqlite"
	"github.com/lu-zhengda/mailstate/internal/version"
)

var (
	// buildVersion is set via ldflags at build time.
	buildVersion = "dev"
	cfgFile      string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool

	dataDirFlag    string
	appVersionFlag string
)

// Exit codes reported by Execute.
const (
	exitFailure   = 1
	exitMigration = 2
	exitCorrupted = 3
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mailstate",
		Short:         "Upgrade and inspect stored mail client state",
		Long:          "Brings the config, the encrypted settings and the local mail database up to the running app version.",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("mailstate %s\n", buildVersion))
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (overrides config)")
	root.PersistentFlags().StringVar(&appVersionFlag, "app-version", "", "app version to upgrade to (overrides config)")
	root.AddCommand(newUpgradeCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newAccountCmd())
	root.AddCommand(newKeyringCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// reportError prints err and returns the exit code for it.
func reportError(w io.Writer, err error) int {
	var stepErr *migrate.StepError
	switch {
	case errors.Is(err, store.ErrCorrupted):
		fmt.Fprintf(w, "Error: stored data is corrupted or the password is wrong: %v\n", err)
		return exitCorrupted
	case errors.As(err, &stepErr),
		errors.Is(err, migrate.ErrShapeViolation),
		errors.Is(err, migrate.ErrInvalidCatalog),
		errors.Is(err, version.ErrInvalid):
		fmt.Fprintf(w, "Error: migration failed, nothing was saved for the failing document: %v\n", err)
		return exitMigration
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailure
	}
}

// loadConfig loads the tool configuration and applies command line overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(filepath.Join(config.ConfigDir(), ".env")); err != nil {
		return nil, err
	}
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dataDirFlag != "" {
		cfg.Storage.DataDir = dataDirFlag
	}
	if appVersionFlag != "" {
		cfg.App.Version = appVersionFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)
	return cfg, nil
}

// session is an opened data directory.
type session struct {
	cfg     *config.Config
	db      *sqlite.DB
	service *app.UpgradeService
}

func (s *session) Close() error {
	return s.db.Close()
}

// openSession creates the data directory, resolves the master password and
// opens every store.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dataDir := cfg.Storage.DataDir
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	password, err := resolvePassword(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(filepath.Join(dataDir, sqlite.DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	stores := app.Stores{
		Config: jsonfile.NewConfigStore(dataDir),
		Settings: func(preset string) (store.Document[domain.Settings], error) {
			s, err := jsonfile.NewSettingsStore(dataDir, password, preset)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Database: db,
	}
	return &session{
		cfg:     cfg,
		db:      db,
		service: app.NewUpgradeService(stores, cfg.App.Version, domain.Defaults{}),
	}, nil
}

// resolvePassword returns the master password using the first available
// source: environment, then the OS keyring.
func resolvePassword(cfg *config.Config) (string, error) {
	if cfg.MasterPassword != "" {
		return cfg.MasterPassword, nil
	}
	if cfg.Keyring.Enabled {
		password, err := store.NewKeyringPasswordStore(cfg.Storage.DataDir).LoadPassword()
		if err == nil {
			return password, nil
		}
		if !errors.Is(err, store.ErrNoPassword) {
			return "", err
		}
	}
	return "", errors.New("no master password; set MAILSTATE_MASTER_PASSWORD or run 'mailstate keyring set'")
}
