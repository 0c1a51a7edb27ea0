package domain

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultFactory builds fresh default documents. Every call returns values
// that share no memory with earlier results.
type DefaultFactory interface {
	Config() Config
	Settings() Settings
}

// Defaults is the factory holding the values a fresh install starts with.
type Defaults struct{}

var _ DefaultFactory = Defaults{}

// DefaultReleasesURL is polled for new releases unless overridden.
const DefaultReleasesURL = "https://api.github.com/repos/vladimiry/ElectronMail/releases"

func (Defaults) Config() Config {
	return Config{
		LogLevel:                 ptr("error"),
		StartMinimized:           ptr(true),
		CompactLayout:            ptr(true),
		CloseToTray:              ptr(true),
		UnreadNotifications:      ptr(true),
		CheckUpdateAndNotify:     ptr(false),
		FindInPage:               ptr(true),
		FullTextSearch:           ptr(true),
		DisableSpamNotifications: ptr(true),
		HideControls:             ptr(false),
		LayoutMode:               ptr("top"),
		CustomUnreadBgColor:      ptr(""),
		CustomUnreadTextColor:    ptr(""),
		Timeouts: &Timeouts{
			DatabaseLoading:      ptr[int64](5 * 60 * 1000),
			DBBootstrapping:      ptr[int64](3 * 60 * 60 * 1000),
			DBSyncing:            ptr[int64](30 * 60 * 1000),
			WebViewAPIPing:       ptr[int64](15 * 1000),
			DOMElementsResolving: ptr[int64](20 * 1000),
			DefaultAPICall:       ptr[int64](25 * 1000),
			IndexingBootstrap:    ptr[int64](60 * 60 * 1000),
		},
		Fetching: &Fetching{
			RateLimit:                &RateLimit{IntervalMs: 60 * 1000, MaxInTimeFrame: 300},
			MessagesStorePortionSize: ptr(500),
		},
		JSFlags:                     []string{"--max-old-space-size=3072"},
		IndexingBootstrapBufferSize: ptr(1000),
		SpellCheckLocale:            ptr("en_US"),
		UpdateCheck: &UpdateCheck{
			ReleasesURL: ptr(DefaultReleasesURL),
			Proxy:       ptr(""),
		},
		IdleTimeLogOutSec:        ptr(0),
		LocalDbMailsListViewMode: ptr("plain"),
		EncryptionPreset: &EncryptionPreset{
			KeyDerivation: PresetValue{Type: KeyDerivationPwhash, Preset: KeyDerivationInteractive},
			Encryption:    PresetValue{Type: EncryptionSecretboxEasy, Preset: EncryptionAlgorithmDef},
		},
	}
}

func (Defaults) Settings() Settings {
	return Settings{
		Accounts:              []AccountConfig{},
		DatabaseEncryptionKey: NewDatabaseEncryptionKey(),
	}
}

// DatabaseKeySize is the length of a decoded database encryption key.
const DatabaseKeySize = 32

// NewDatabaseEncryptionKey returns a random base64 encoded key.
func NewDatabaseEncryptionKey() string {
	key := make([]byte, DatabaseKeySize)
	rand.Read(key)
	return base64.StdEncoding.EncodeToString(key)
}
