package entity

// Sentinel coordinate meaning "unknown".
const (
	SentinelLat = 0.0
	SentinelLng = 0.0
)

// IsSentinel reports whether (lat, lng) is the unresolved sentinel pair.
func IsSentinel(lat, lng float64) bool {
	return lat == SentinelLat && lng == SentinelLng
}

// CandidateRow is an unvalidated tuple extracted from a document table.
type CandidateRow struct {
	PlaceRaw    string
	PersonCount *int
	AmountTotal *int64

	// Provenance
	Ordinal           int    // data row index within the grid
	FromAddressColumn bool   // PlaceRaw was built as "{name} ({address})" from explicit columns
	NameCell          string // explicit name column value, if any
	AddressCell       string // explicit address column value, if any
}

// NormalizedPlace is the split and cleaned name/address pair of a candidate.
type NormalizedPlace struct {
	Name              string
	Address           string
	AddressConfidence int
}

// Empty reports whether neither side survived cleaning.
func (p NormalizedPlace) Empty() bool {
	return p.Name == "" && p.Address == ""
}

// ResolvedLocation is the geocoder's best effort for a keyword.
type ResolvedLocation struct {
	Address string
	Lat     float64
	Lng     float64
}

// Resolved reports whether the location carries real coordinates.
func (l ResolvedLocation) Resolved() bool {
	return !IsSentinel(l.Lat, l.Lng)
}

// Unresolved returns the sentinel location.
func Unresolved() ResolvedLocation {
	return ResolvedLocation{Lat: SentinelLat, Lng: SentinelLng}
}

// Observation is a ready-to-upsert record produced by the per-row pipeline.
type Observation struct {
	Name     string
	Address  string
	Lat      float64
	Lng      float64
	Phone    string
	Category string
	Price    *int64

	// Fingerprint identifies the source row so a price is folded at most once.
	Fingerprint string
	Source      string
}

// Key returns the run-level identity key of the observation.
func (o Observation) Key() (string, string) {
	return IdentityKey(o.Name, o.Address)
}
