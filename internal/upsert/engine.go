// Package upsert reconciles observations with stored restaurant records.
package upsert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
)

// Store is the record access the engine needs; usually a transaction-bound
// repository.
type Store interface {
	FindByNameAddress(ctx context.Context, name, address string) (*entity.Restaurant, error)
	FindByAddress(ctx context.Context, address string) (*entity.Restaurant, error)
	FindByName(ctx context.Context, name string) (*entity.Restaurant, error)
	Insert(ctx context.Context, rec *entity.Restaurant) error
	Update(ctx context.Context, rec *entity.Restaurant) error
	HasObservation(ctx context.Context, fingerprint string) (bool, error)
	AddObservation(ctx context.Context, fingerprint string, restaurantID int64) error
}

// Outcome of one Apply.
type Outcome = constants.UpsertOutcome

// Engine matches observations to records and merges them with field policies.
type Engine struct {
	policies []Policy
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicies replaces the field policy list.
func WithPolicies(p ...Policy) Option {
	return func(e *Engine) { e.policies = p }
}

func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{policies: DefaultPolicies, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policies returns the active field policies.
func (e *Engine) Policies() []Policy { return e.policies }

// Apply reconciles obs with the store.
func (e *Engine) Apply(ctx context.Context, store Store, obs entity.Observation) (Outcome, error) {
	obs.Name, obs.Address = obs.Key()
	if obs.Name == "" && obs.Address == "" {
		return constants.OutcomeFailed, fmt.Errorf("%w: observation without name or address", common.ErrInvalidInput)
	}

	rec, err := e.match(ctx, store, obs)
	if err != nil {
		return constants.OutcomeFailed, err
	}

	in := incoming{obs: obs, foldPrice: obs.Price != nil}
	if in.foldPrice && obs.Fingerprint != "" {
		seen, err := store.HasObservation(ctx, obs.Fingerprint)
		if err != nil {
			return constants.OutcomeFailed, err
		}
		in.foldPrice = !seen
	}

	if rec == nil {
		rec = &entity.Restaurant{
			Name:     obs.Name,
			Address:  obs.Address,
			Lat:      obs.Lat,
			Lng:      obs.Lng,
			Phone:    normalize.Truncate(obs.Phone, entity.MaxPhoneRunes),
			Category: normalize.Truncate(obs.Category, entity.MaxCategoryRunes),
		}
		if in.foldPrice {
			rec.FoldPrice(*obs.Price)
		}
		if err := store.Insert(ctx, rec); err != nil {
			return constants.OutcomeFailed, err
		}
		if err := e.recordObservation(ctx, store, in.obs, in.foldPrice, rec.ID); err != nil {
			return constants.OutcomeFailed, err
		}
		e.logger.Debug("upsert.created", "id", rec.ID, "name", rec.Name, "address", rec.Address)
		return constants.OutcomeCreated, nil
	}

	changed, folded := false, false
	for _, p := range e.policies {
		if p.apply(rec, in) {
			changed = true
			folded = folded || p.Field == FieldPrice
		}
	}
	if !changed {
		return constants.OutcomeUnchanged, nil
	}
	if err := store.Update(ctx, rec); err != nil {
		return constants.OutcomeFailed, err
	}
	if err := e.recordObservation(ctx, store, in.obs, folded, rec.ID); err != nil {
		return constants.OutcomeFailed, err
	}
	e.logger.Debug("upsert.updated", "id", rec.ID, "name", rec.Name, "address", rec.Address)
	return constants.OutcomeUpdated, nil
}

// match looks up by the exact pair when both fields are present, by address
// alone when only the address is, and otherwise by name, preferring a record
// without an address.
func (e *Engine) match(ctx context.Context, store Store, obs entity.Observation) (*entity.Restaurant, error) {
	switch {
	case obs.Name != "" && obs.Address != "":
		return store.FindByNameAddress(ctx, obs.Name, obs.Address)
	case obs.Address != "":
		return store.FindByAddress(ctx, obs.Address)
	default:
		return store.FindByName(ctx, obs.Name)
	}
}

func (e *Engine) recordObservation(ctx context.Context, store Store, obs entity.Observation, folded bool, id int64) error {
	if !folded || obs.Fingerprint == "" {
		return nil
	}
	return store.AddObservation(ctx, obs.Fingerprint, id)
}
