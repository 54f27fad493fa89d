package entity

import (
	"time"

	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
)

// Length caps applied before any comparison or storage.
const (
	MaxNameRunes     = 64
	MaxAddressRunes  = 255
	MaxPhoneRunes    = 32
	MaxCategoryRunes = 32
)

// Restaurant represents a persisted restaurant record for data transfer between layers.
type Restaurant struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Phone      string    `json:"phone,omitempty"`
	Category   string    `json:"category,omitempty"`
	Price      int64     `json:"price"`
	PriceMin   *int64    `json:"price_min,omitempty"`
	PriceMax   *int64    `json:"price_max,omitempty"`
	PriceAvg   *int64    `json:"price_avg,omitempty"`
	PriceCount int64     `json:"price_count"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasCoordinates reports whether the record carries a resolved coordinate pair.
func (r *Restaurant) HasCoordinates() bool {
	return !IsSentinel(r.Lat, r.Lng)
}

// HasPriceStats reports whether any price observation was folded into the record.
func (r *Restaurant) HasPriceStats() bool {
	return r.PriceCount > 0 && r.PriceMin != nil && r.PriceMax != nil && r.PriceAvg != nil
}

// FoldPrice adds one price observation to the running min/max/avg statistics.
func (r *Restaurant) FoldPrice(p int64) {
	r.Price = p
	if !r.HasPriceStats() {
		r.PriceMin, r.PriceMax, r.PriceAvg = ptr(p), ptr(p), ptr(p)
		r.PriceCount = 1
		return
	}
	old := r.PriceCount
	n := old + 1
	r.PriceCount = n
	r.PriceMin = ptr(min(*r.PriceMin, p))
	r.PriceMax = ptr(max(*r.PriceMax, p))
	r.PriceAvg = ptr(floorDiv(*r.PriceAvg*old+p, n))
}

// IdentityKey returns the truncated (name, address) pair used for matching and dedup.
func IdentityKey(name, address string) (string, string) {
	return normalize.Truncate(name, MaxNameRunes), normalize.Truncate(address, MaxAddressRunes)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ptr[T any](v T) *T { return &v }
