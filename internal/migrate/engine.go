// Package migrate brings persisted documents forward to the shape the running
// application expects.
//
// A Catalog lists version-tagged steps for one document kind. Upgrade applies
// every step whose version is not newer than the running application, in
// ascending version order regardless of declaration order, and reports whether
// the document changed. Steps are written so that running them again is a
// no-op, which makes Upgrade idempotent. Nothing in this package touches
// storage; callers persist the document after a successful Upgrade.
package migrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lu-zhengda/mailstate/internal/domain"
	"github.com/lu-zhengda/mailstate/internal/version"
)

var log = logrus.WithField("pkg", "migrate")

// Env is passed to every step alongside the document.
type Env struct {
	// AppVersion is the version of the running application.
	AppVersion string
	// Defaults supplies values for newly introduced members.
	Defaults domain.DefaultFactory
}

// AppVersionBefore reports whether the running application is older than v.
// Some historical steps only act for releases predating a later rename.
func (e Env) AppVersionBefore(v string) bool {
	less, err := version.Less(e.AppVersion, v)
	return err == nil && less
}

func (e Env) validate() error {
	if e.Defaults == nil {
		return errors.New("migration env has no default factory")
	}
	if err := version.Validate(e.AppVersion); err != nil {
		return fmt.Errorf("running application version: %w", err)
	}
	return nil
}

// Step mutates a document of kind T in place.
type Step[T any] struct {
	Version string
	Mutate  func(entity *T, env Env) error
}

// Catalog is an unordered set of steps for one document kind.
type Catalog[T any] []Step[T]

// Validate checks that every step version parses and that no two steps share
// a precedence, which would leave their relative order undefined.
func (c Catalog[T]) Validate() error {
	for _, s := range c {
		if err := version.Validate(s.Version); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		if s.Mutate == nil {
			return fmt.Errorf("%w: version %s has no mutation", ErrInvalidCatalog, s.Version)
		}
	}
	sorted := slices.Clone(c)
	slices.SortFunc(sorted, compareSteps[T])
	for i := 1; i < len(sorted); i++ {
		if compareSteps(sorted[i-1], sorted[i]) == 0 {
			return fmt.Errorf("%w: version %s declared twice", ErrInvalidCatalog, sorted[i].Version)
		}
	}
	return nil
}

// compareSteps orders validated steps by version.
func compareSteps[T any](a, b Step[T]) int {
	cmp, _ := version.Compare(a.Version, b.Version)
	return cmp
}

// Plan returns the steps to run for appVersion in application order.
func (c Catalog[T]) Plan(appVersion string) ([]Step[T], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := version.Validate(appVersion); err != nil {
		return nil, err
	}
	var steps []Step[T]
	for _, s := range c {
		// Both versions are valid here, so Compare cannot fail.
		if cmp, _ := version.Compare(s.Version, appVersion); cmp <= 0 {
			steps = append(steps, s)
		}
	}
	slices.SortFunc(steps, compareSteps[T])
	return steps, nil
}

// Upgrade applies the catalog to entity and reports whether its JSON form
// changed. The first failing step aborts the upgrade; entity is then left
// partially migrated and must not be persisted.
func Upgrade[T any](entity *T, catalog Catalog[T], env Env) (bool, error) {
	if err := env.validate(); err != nil {
		return false, err
	}
	steps, err := catalog.Plan(env.AppVersion)
	if err != nil {
		return false, err
	}

	kind := strings.TrimPrefix(fmt.Sprintf("%T", entity), "*")
	before, err := json.Marshal(entity)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	for _, s := range steps {
		if err := s.Mutate(entity, env); err != nil {
			return false, &StepError{Entity: kind, Version: s.Version, Err: err}
		}
		log.WithFields(logrus.Fields{"entity": kind, "version": s.Version}).Debug("applied migration step")
	}

	after, err := json.Marshal(entity)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	changed := !bytes.Equal(before, after)
	log.WithFields(logrus.Fields{
		"entity":     kind,
		"appVersion": env.AppVersion,
		"steps":      len(steps),
		"changed":    changed,
	}).Debug("upgrade finished")
	return changed, nil
}

// UpgradeConfig runs the config catalog.
func UpgradeConfig(cfg *domain.Config, env Env) (bool, error) {
	return Upgrade(cfg, ConfigCatalog(), env)
}

// UpgradeSettings runs the settings catalog.
func UpgradeSettings(s *domain.Settings, env Env) (bool, error) {
	return Upgrade(s, SettingsCatalog(), env)
}
