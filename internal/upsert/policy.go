package upsert

import (
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
)

// PolicyKind names how an incoming value is merged into a stored field.
type PolicyKind string

const (
	// FillIfSentinel overwrites only when stored is the sentinel and incoming is not.
	FillIfSentinel PolicyKind = "fill_if_sentinel"
	// Aggregate folds the incoming value into running statistics.
	Aggregate PolicyKind = "aggregate"
	// FillIfEmpty keeps the first non-empty value observed.
	FillIfEmpty PolicyKind = "fill_if_empty"
	// Overwrite replaces the stored value with any non-empty incoming value.
	Overwrite PolicyKind = "overwrite"
)

// Field names understood by the engine.
const (
	FieldCoordinates = "coordinates"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldPhone       = "phone"
)

// Policy binds a field to a merge rule.
type Policy struct {
	Field string
	Kind  PolicyKind
}

// DefaultPolicies is the field policy list used by the seeding pipeline.
var DefaultPolicies = []Policy{
	{Field: FieldCoordinates, Kind: FillIfSentinel},
	{Field: FieldPrice, Kind: Aggregate},
	{Field: FieldCategory, Kind: FillIfEmpty},
	{Field: FieldPhone, Kind: FillIfEmpty},
}

// incoming is an observation plus whether its price may be folded.
type incoming struct {
	obs       entity.Observation
	foldPrice bool
}

// apply merges in into rec and reports whether rec changed.
func (p Policy) apply(rec *entity.Restaurant, in incoming) bool {
	switch p.Field {
	case FieldCoordinates:
		return p.applyCoordinates(rec, in.obs)
	case FieldPrice:
		if !in.foldPrice || in.obs.Price == nil {
			return false
		}
		rec.FoldPrice(*in.obs.Price)
		return true
	case FieldCategory:
		return p.applyText(&rec.Category, normalize.Truncate(in.obs.Category, entity.MaxCategoryRunes))
	case FieldPhone:
		return p.applyText(&rec.Phone, normalize.Truncate(in.obs.Phone, entity.MaxPhoneRunes))
	default:
		return false
	}
}

func (p Policy) applyCoordinates(rec *entity.Restaurant, obs entity.Observation) bool {
	if entity.IsSentinel(obs.Lat, obs.Lng) {
		return false
	}
	switch p.Kind {
	case Overwrite:
		if rec.Lat == obs.Lat && rec.Lng == obs.Lng {
			return false
		}
	default:
		if rec.HasCoordinates() {
			return false
		}
	}
	rec.Lat, rec.Lng = obs.Lat, obs.Lng
	return true
}

func (p Policy) applyText(stored *string, value string) bool {
	if value == "" || *stored == value {
		return false
	}
	if p.Kind != Overwrite && *stored != "" {
		return false
	}
	*stored = value
	return true
}
