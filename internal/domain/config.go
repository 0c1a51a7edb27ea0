package domain

import (
	"time"

	"golang.org/x/time/rate"
)

// Config is the global, per-install configuration document.
//
// Pointer fields are nil when the member is absent from the stored document;
// migration steps rely on that to tell "never set" from a zero value.
type Config struct {
	Rev int `json:"_rev,omitempty"`

	LogLevel                 *string `json:"logLevel,omitempty"`
	StartMinimized           *bool   `json:"startMinimized,omitempty"`
	CompactLayout            *bool   `json:"compactLayout,omitempty"`
	CloseToTray              *bool   `json:"closeToTray,omitempty"`
	UnreadNotifications      *bool   `json:"unreadNotifications,omitempty"`
	CheckUpdateAndNotify     *bool   `json:"checkUpdateAndNotify,omitempty"`
	FindInPage               *bool   `json:"findInPage,omitempty"`
	FullTextSearch           *bool   `json:"fullTextSearch,omitempty"`
	DisableSpamNotifications *bool   `json:"disableSpamNotifications,omitempty"`
	HideControls             *bool   `json:"hideControls,omitempty"`
	LayoutMode               *string `json:"layoutMode,omitempty"`
	CustomUnreadBgColor      *string `json:"customUnreadBgColor,omitempty"`
	CustomUnreadTextColor    *string `json:"customUnreadTextColor,omitempty"`

	Timeouts                    *Timeouts         `json:"timeouts,omitempty"`
	Fetching                    *Fetching         `json:"fetching,omitempty"`
	JSFlags                     []string          `json:"jsFlags"`
	IndexingBootstrapBufferSize *int              `json:"indexingBootstrapBufferSize,omitempty"`
	SpellCheckLocale            *string           `json:"spellCheckLocale,omitempty"`
	UpdateCheck                 *UpdateCheck      `json:"updateCheck,omitempty"`
	IdleTimeLogOutSec           *int              `json:"idleTimeLogOutSec,omitempty"`
	LocalDbMailsListViewMode    *string           `json:"localDbMailsListViewMode,omitempty"`
	EncryptionPreset            *EncryptionPreset `json:"encryptionPreset,omitempty"`

	Extra Extra `json:"-"`
}

func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	extra, err := decodeObject(data, (*plain)(c))
	if err != nil {
		return err
	}
	c.Extra = extra
	return nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return encodeObject(plain(c), c.Extra)
}

func (c *Config) Revision() int     { return c.Rev }
func (c *Config) SetRevision(r int) { c.Rev = r }

// Validate checks the members the stores depend on.
func (c *Config) Validate() error {
	if c.EncryptionPreset == nil {
		return nil
	}
	return c.EncryptionPreset.Validate()
}

// Timeouts holds named timeouts in milliseconds.
type Timeouts struct {
	DatabaseLoading      *int64 `json:"databaseLoading,omitempty"`
	DBBootstrapping      *int64 `json:"dbBootstrapping,omitempty"`
	DBSyncing            *int64 `json:"dbSyncing,omitempty"`
	WebViewAPIPing       *int64 `json:"webViewApiPing,omitempty"`
	DOMElementsResolving *int64 `json:"domElementsResolving,omitempty"`
	DefaultAPICall       *int64 `json:"defaultApiCall,omitempty"`
	IndexingBootstrap    *int64 `json:"indexingBootstrap,omitempty"`

	Extra Extra `json:"-"`
}

func (t *Timeouts) UnmarshalJSON(data []byte) error {
	type plain Timeouts
	extra, err := decodeObject(data, (*plain)(t))
	if err != nil {
		return err
	}
	t.Extra = extra
	return nil
}

func (t Timeouts) MarshalJSON() ([]byte, error) {
	type plain Timeouts
	return encodeObject(plain(t), t.Extra)
}

// Fetching controls how the mail-sync subsystem pulls data from providers.
type Fetching struct {
	RateLimit                *RateLimit `json:"rateLimit,omitempty"`
	MessagesStorePortionSize *int       `json:"messagesStorePortionSize,omitempty"`

	Extra Extra `json:"-"`
}

func (f *Fetching) UnmarshalJSON(data []byte) error {
	type plain Fetching
	extra, err := decodeObject(data, (*plain)(f))
	if err != nil {
		return err
	}
	f.Extra = extra
	return nil
}

func (f Fetching) MarshalJSON() ([]byte, error) {
	type plain Fetching
	return encodeObject(plain(f), f.Extra)
}

// RateLimit allows MaxInTimeFrame requests per IntervalMs window.
type RateLimit struct {
	IntervalMs     int64 `json:"intervalMs"`
	MaxInTimeFrame int   `json:"maxInTimeFrame"`
}

// Limiter returns a token bucket spreading MaxInTimeFrame requests evenly over
// the interval, bursting up to the full frame. A non-positive setting disables
// limiting.
func (r RateLimit) Limiter() *rate.Limiter {
	if r.IntervalMs <= 0 || r.MaxInTimeFrame <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	interval := time.Duration(r.IntervalMs) * time.Millisecond
	return rate.NewLimiter(rate.Every(interval/time.Duration(r.MaxInTimeFrame)), r.MaxInTimeFrame)
}

// UpdateCheck configures the release feed polled for new versions.
type UpdateCheck struct {
	ReleasesURL *string `json:"releasesUrl,omitempty"`
	Proxy       *string `json:"proxy,omitempty"`

	Extra Extra `json:"-"`
}

func (u *UpdateCheck) UnmarshalJSON(data []byte) error {
	type plain UpdateCheck
	extra, err := decodeObject(data, (*plain)(u))
	if err != nil {
		return err
	}
	u.Extra = extra
	return nil
}

func (u UpdateCheck) MarshalJSON() ([]byte, error) {
	type plain UpdateCheck
	return encodeObject(plain(u), u.Extra)
}
