package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"

	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/migrate"
	"github.com/lu-zhengda/mailstate/internal/store"
)

var log = logrus.WithField("pkg", "app")

// Stores are the persistence backends the upgrade runs against.
type Stores struct {
	Config store.Document[domain.Config]
	// Settings opens the settings document. It is called once the config,
	// and with it the key derivation preset, is known.
	Settings func(preset string) (store.Document[domain.Settings], error)
	Database store.DatabaseBackend
}

// UpgradeService brings the config, the settings and the mail database up to
// the running application version, creating whatever does not exist yet.
type UpgradeService struct {
	stores Stores
	env    migrate.Env
}

// NewUpgradeService creates an UpgradeService targeting appVersion.
func NewUpgradeService(stores Stores, appVersion string, defaults domain.DefaultFactory) *UpgradeService {
	return &UpgradeService{
		stores: stores,
		env:    migrate.Env{AppVersion: appVersion, Defaults: defaults},
	}
}

// Report describes what an upgrade did, or would do.
type Report struct {
	AppVersion string         `json:"appVersion"`
	DryRun     bool           `json:"dryRun"`
	Config     DocumentReport `json:"config"`
	Settings   DocumentReport `json:"settings"`
	Database   DatabaseReport `json:"database"`

	// The upgraded state, for callers that go on to inspect it.
	ConfigDoc   *domain.Config      `json:"-"`
	SettingsDoc *domain.Settings    `json:"-"`
	MailDB      *store.MailDatabase `json:"-"`
}

type DocumentReport struct {
	Created  bool `json:"created"`
	Changed  bool `json:"changed"`
	Revision int  `json:"revision"`
}

type DatabaseReport struct {
	Created       bool     `json:"created"`
	Changed       bool     `json:"changed"`
	Reset         bool     `json:"reset"`
	VersionBefore string   `json:"versionBefore,omitempty"`
	VersionAfter  string   `json:"versionAfter"`
	Partitions    int      `json:"partitions"`
	Pruned        []string `json:"pruned,omitempty"`
}

// Run upgrades and persists every entity whose shape changed.
func (s *UpgradeService) Run(ctx context.Context) (*Report, error) {
	return s.run(ctx, false)
}

// DryRun computes the same report as Run without writing anything.
func (s *UpgradeService) DryRun(ctx context.Context) (*Report, error) {
	return s.run(ctx, true)
}

func (s *UpgradeService) run(ctx context.Context, dryRun bool) (*Report, error) {
	r := &Report{AppVersion: s.env.AppVersion, DryRun: dryRun}

	cfg, err := upgradeDocument(ctx, s.stores.Config, s.env.Defaults.Config, s.env, migrate.UpgradeConfig, dryRun, &r.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade config: %w", err)
	}
	r.ConfigDoc = cfg

	settingsDoc, err := s.stores.Settings(cfg.KeyDerivationPreset())
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	settings, err := upgradeDocument(ctx, settingsDoc, s.env.Defaults.Settings, s.env, migrate.UpgradeSettings, dryRun, &r.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade settings: %w", err)
	}
	r.SettingsDoc = settings

	db, err := s.upgradeDatabase(ctx, settings, dryRun, &r.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade database: %w", err)
	}
	r.MailDB = db

	log.WithFields(logrus.Fields{
		"appVersion":      r.AppVersion,
		"dryRun":          dryRun,
		"configChanged":   r.Config.Created || r.Config.Changed,
		"settingsChanged": r.Settings.Created || r.Settings.Changed,
		"databaseChanged": r.Database.Created || r.Database.Changed,
	}).Info("upgrade finished")
	return r, nil
}

// upgradeDocument reads a document, creating it from defaults when absent and
// migrating it otherwise, and writes it back when it changed.
func upgradeDocument[T any](
	ctx context.Context,
	doc store.Document[T],
	defaults func() T,
	env migrate.Env,
	upgrade func(*T, migrate.Env) (bool, error),
	dryRun bool,
	rep *DocumentReport,
) (*T, error) {
	entity, err := doc.Read(ctx)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		def := defaults()
		entity = &def
		rep.Created = true
	} else if rep.Changed, err = upgrade(entity, env); err != nil {
		return nil, err
	}
	if dryRun || !(rep.Created || rep.Changed) {
		rep.Revision = revision(entity)
		return entity, nil
	}

	written, err := doc.Write(ctx, entity)
	if err != nil {
		return nil, err
	}
	rep.Revision = revision(written)
	log.WithFields(logrus.Fields{
		"entity":   fmt.Sprintf("%T", *entity),
		"created":  rep.Created,
		"revision": rep.Revision,
	}).Info("persisted document")
	return written, nil
}

func revision(v any) int {
	if r, ok := v.(store.Revisioned); ok {
		return r.Revision()
	}
	return 0
}

func (s *UpgradeService) upgradeDatabase(ctx context.Context, settings *domain.Settings, dryRun bool, rep *DatabaseReport) (*store.MailDatabase, error) {
	key, err := store.ParseKey(settings.DatabaseEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid database encryption key: %w", err)
	}
	db, err := s.stores.Database.LoadDatabase(ctx, key)
	if err != nil {
		return nil, err
	}

	if db == nil {
		db = store.NewMailDatabase()
		rep.Created = true
	} else {
		rep.VersionBefore = db.Version()
		before := db.PKs()
		if rep.Changed, err = migrate.UpgradeDatabase(db, settings.Accounts); err != nil {
			return nil, err
		}
		// Version 1 databases are discarded rather than migrated.
		rep.Reset = rep.VersionBefore == "1"
		if !rep.Reset {
			after := db.PKs()
			rep.Pruned = xslices.Map(
				xslices.Filter(before, func(pk domain.AccountPK) bool { return !slices.Contains(after, pk) }),
				domain.AccountPK.String,
			)
		}
	}
	rep.VersionAfter = db.SaveVersion()
	rep.Partitions = db.Len()

	if dryRun || !(rep.Created || rep.Changed) {
		return db, nil
	}
	if err := s.stores.Database.SaveDatabase(ctx, db, key); err != nil {
		return nil, err
	}
	return db, nil
}
