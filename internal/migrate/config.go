package migrate

import (
	"github.com/sirupsen/logrus"

	"github.com/lu-zhengda/mailstate/internal/domain"
)

// fetchingRateLimitingV1 is the flat root-level rate limit written before
// 2.0.0-beta.9 moved it to fetching.rateLimit.
type fetchingRateLimitingV1 struct {
	IntervalMs     int64 `json:"intervalMs"`
	MaxInTimeFrame int   `json:"maxInTimeFrame"`
}

// ConfigCatalog returns the config migration steps.
func ConfigCatalog() Catalog[domain.Config] {
	return Catalog[domain.Config]{
		{"1.1.0", func(c *domain.Config, _ Env) error {
			c.Extra.Delete("appVersion")
			return nil
		}},
		{"1.2.0", func(c *domain.Config, env Env) error {
			fill(&c.LogLevel, env.Defaults.Config().LogLevel)
			return nil
		}},
		{"2.0.0-beta.7", func(c *domain.Config, env Env) error {
			def := env.Defaults.Config()
			if c.Timeouts == nil {
				c.Timeouts = def.Timeouts
			}
			if !env.AppVersionBefore("2.0.0-beta.9") {
				return nil
			}
			if c.Extra.Has("fetchingRateLimiting") {
				return nil
			}
			return c.Extra.Set("fetchingRateLimiting", fetchingRateLimitingV1{
				IntervalMs:     def.Fetching.RateLimit.IntervalMs,
				MaxInTimeFrame: def.Fetching.RateLimit.MaxInTimeFrame,
			})
		}},
		{"2.0.0-beta.8", func(c *domain.Config, env Env) error {
			fill(&timeouts(c).WebViewAPIPing, env.Defaults.Config().Timeouts.WebViewAPIPing)
			return nil
		}},
		{"2.0.0-beta.9", func(c *domain.Config, env Env) error {
			def := env.Defaults.Config()
			t := timeouts(c)
			fill(&t.DOMElementsResolving, def.Timeouts.DOMElementsResolving)
			fill(&t.DefaultAPICall, def.Timeouts.DefaultAPICall)

			if c.Fetching == nil {
				c.Fetching = &domain.Fetching{}
			}
			if c.Fetching.RateLimit == nil {
				c.Fetching.RateLimit = def.Fetching.RateLimit
				var legacy fetchingRateLimitingV1
				ok, err := c.Extra.DecodeObject("fetchingRateLimiting", &legacy)
				switch {
				case err != nil:
					log.WithError(err).Warn("ignoring malformed fetchingRateLimiting")
				case ok:
					c.Fetching.RateLimit = &domain.RateLimit{
						IntervalMs:     legacy.IntervalMs,
						MaxInTimeFrame: legacy.MaxInTimeFrame,
					}
				}
			}
			if p := c.Fetching.MessagesStorePortionSize; p == nil || *p == 0 {
				c.Fetching.MessagesStorePortionSize = def.Fetching.MessagesStorePortionSize
			}
			c.Extra.Delete("fetchingRateLimiting")
			return nil
		}},
		{"2.2.0", func(c *domain.Config, env Env) error {
			def := env.Defaults.Config()
			fill(&c.FullTextSearch, def.FullTextSearch)
			fill(&c.DisableSpamNotifications, def.DisableSpamNotifications)
			return nil
		}},
		{"2.2.1", func(c *domain.Config, env Env) error {
			t := timeouts(c)
			if t.DBSyncing == nil {
				t.DBSyncing = env.Defaults.Config().Timeouts.DBSyncing
				if t.Extra.IsNumber("syncing") {
					var syncing float64
					if _, err := t.Extra.Decode("syncing", &syncing); err != nil {
						return err
					}
					v := int64(syncing)
					t.DBSyncing = &v
				}
			}
			t.Extra.Delete("syncing")
			return nil
		}},
		{"2.3.3", func(c *domain.Config, env Env) error {
			def := env.Defaults.Config()
			if c.JSFlags == nil {
				c.JSFlags = def.JSFlags
			}
			t := timeouts(c)
			fill(&t.DatabaseLoading, def.Timeouts.DatabaseLoading)
			fill(&t.IndexingBootstrap, def.Timeouts.IndexingBootstrap)
			fill(&c.IndexingBootstrapBufferSize, def.IndexingBootstrapBufferSize)
			fill(&t.DBBootstrapping, def.Timeouts.DBBootstrapping)
			fill(&t.DBSyncing, def.Timeouts.DBSyncing)
			t.Extra.Delete("fetching")
			t.Extra.Delete("syncing")
			return nil
		}},
		{"3.4.0", func(c *domain.Config, env Env) error {
			fill(&c.SpellCheckLocale, env.Defaults.Config().SpellCheckLocale)
			return nil
		}},
		{"3.5.0", func(c *domain.Config, env Env) error {
			c.Extra.Delete("databaseSaveDelayMs")
			c.Extra.Delete("checkForUpdatesAndNotify")
			fill(&c.CheckUpdateAndNotify, env.Defaults.Config().CheckUpdateAndNotify)
			return nil
		}},
		{"3.5.1", func(c *domain.Config, _ Env) error {
			c.Extra.Delete("databaseWriteDelayMs")
			return nil
		}},
		{"3.6.1", func(c *domain.Config, env Env) error {
			c.Extra.Delete("clearSession")
			c.Extra.Delete("disableGpuProcess")
			def := env.Defaults.Config().UpdateCheck
			if c.UpdateCheck == nil {
				c.UpdateCheck = def
			}
			fill(&c.UpdateCheck.ReleasesURL, def.ReleasesURL)
			fill(&c.UpdateCheck.Proxy, def.Proxy)
			return nil
		}},
		{"3.7.1", func(c *domain.Config, env Env) error {
			def := env.Defaults.Config()
			if c.JSFlags == nil {
				c.JSFlags = def.JSFlags
			}
			assertBaseProperties(c, def)
			return nil
		}},
		{"3.8.0", func(c *domain.Config, env Env) error {
			def := env.Defaults.Config()
			fill(&c.IdleTimeLogOutSec, def.IdleTimeLogOutSec)
			fill(&c.LocalDbMailsListViewMode, def.LocalDbMailsListViewMode)
			return nil
		}},
		{"3.8.1", func(c *domain.Config, env Env) error {
			// The default indexing bootstrap timeout is also its minimum.
			t := timeouts(c)
			floor := *env.Defaults.Config().Timeouts.IndexingBootstrap
			if t.IndexingBootstrap == nil || *t.IndexingBootstrap < floor {
				if t.IndexingBootstrap != nil {
					log.WithFields(logrus.Fields{
						"from": *t.IndexingBootstrap,
						"to":   floor,
					}).Info("raising timeouts.indexingBootstrap")
				}
				t.IndexingBootstrap = &floor
			}
			return nil
		}},
	}
}

// assertBaseProperties sets every base property still unset on c from def.
func assertBaseProperties(c *domain.Config, def domain.Config) {
	fill(&c.LogLevel, def.LogLevel)
	fill(&c.StartMinimized, def.StartMinimized)
	fill(&c.CompactLayout, def.CompactLayout)
	fill(&c.CloseToTray, def.CloseToTray)
	fill(&c.UnreadNotifications, def.UnreadNotifications)
	fill(&c.CheckUpdateAndNotify, def.CheckUpdateAndNotify)
	fill(&c.FindInPage, def.FindInPage)
	fill(&c.FullTextSearch, def.FullTextSearch)
	fill(&c.DisableSpamNotifications, def.DisableSpamNotifications)
	fill(&c.HideControls, def.HideControls)
	fill(&c.LayoutMode, def.LayoutMode)
	fill(&c.CustomUnreadBgColor, def.CustomUnreadBgColor)
	fill(&c.CustomUnreadTextColor, def.CustomUnreadTextColor)
}

// timeouts returns c.Timeouts, creating it when a stored config held null.
func timeouts(c *domain.Config) *domain.Timeouts {
	if c.Timeouts == nil {
		c.Timeouts = &domain.Timeouts{}
	}
	return c.Timeouts
}

func fill[T any](dst **T, def *T) {
	if *dst == nil {
		*dst = def
	}
}
