package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
)

const (
	restaurantsTable  = "restaurants"
	observationsTable = "restaurant_observations"
)

var restaurantColumns = []string{
	"id", "name", "address", "lat", "lng", "phone", "category",
	"price", "price_min", "price_max", "price_avg", "price_count", "score",
}

// RestaurantRepository reads and writes restaurant records through a driver
// or an open transaction.
type RestaurantRepository struct {
	q       dialect.ExecQuerier
	dialect string
	logger  *slog.Logger
	now     func() time.Time
}

func NewRestaurantRepository(q dialect.ExecQuerier, dialectName string, logger *slog.Logger) *RestaurantRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestaurantRepository{
		q:       q,
		dialect: dialectName,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *RestaurantRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *RestaurantRepository) selectRestaurants() *entsql.Selector {
	b := r.builder()
	return b.Select(restaurantColumns...).From(b.Table(restaurantsTable))
}

// FindByNameAddress returns the record matching both fields, or nil.
func (r *RestaurantRepository) FindByNameAddress(ctx context.Context, name, address string) (*entity.Restaurant, error) {
	sel := r.selectRestaurants().
		Where(entsql.And(entsql.EQ("name", name), entsql.EQ("address", address))).
		OrderBy("id").
		Limit(1)
	return r.first(ctx, sel)
}

// FindByAddress returns the oldest record at address, or nil.
func (r *RestaurantRepository) FindByAddress(ctx context.Context, address string) (*entity.Restaurant, error) {
	sel := r.selectRestaurants().
		Where(entsql.EQ("address", address)).
		OrderBy("id").
		Limit(1)
	return r.first(ctx, sel)
}

// FindByName returns a record with the given name, preferring one without an
// address, or nil.
func (r *RestaurantRepository) FindByName(ctx context.Context, name string) (*entity.Restaurant, error) {
	rec, err := r.first(ctx, r.selectRestaurants().
		Where(entsql.And(entsql.EQ("name", name), entsql.EQ("address", ""))).
		OrderBy("id").
		Limit(1))
	if err != nil || rec != nil {
		return rec, err
	}
	return r.first(ctx, r.selectRestaurants().
		Where(entsql.EQ("name", name)).
		OrderBy("id").
		Limit(1))
}

// Get returns the record with id, or common.ErrNotFound.
func (r *RestaurantRepository) Get(ctx context.Context, id int64) (*entity.Restaurant, error) {
	rec, err := r.first(ctx, r.selectRestaurants().Where(entsql.EQ("id", id)).Limit(1))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("restaurant %d: %w", id, common.ErrNotFound)
	}
	return rec, nil
}

// Insert stores rec and sets its ID.
func (r *RestaurantRepository) Insert(ctx context.Context, rec *entity.Restaurant) error {
	now := r.now()
	ins := r.builder().Insert(restaurantsTable).
		Columns("name", "address", "lat", "lng", "phone", "category",
			"price", "price_min", "price_max", "price_avg", "price_count", "score",
			"created_at", "updated_at").
		Values(rec.Name, rec.Address, rec.Lat, rec.Lng, rec.Phone, rec.Category,
			rec.Price, nullInt(rec.PriceMin), nullInt(rec.PriceMax), nullInt(rec.PriceAvg), rec.PriceCount, rec.Score,
			now, now)

	if r.dialect == dialect.Postgres {
		query, args := ins.Returning("id").Query()
		rows := &entsql.Rows{}
		if err := r.q.Query(ctx, query, args, rows); err != nil {
			return r.dbError("insert", err)
		}
		defer rows.Close()
		if !rows.Next() {
			return r.dbError("insert", sql.ErrNoRows)
		}
		if err := rows.Scan(&rec.ID); err != nil {
			return r.dbError("insert", err)
		}
	} else {
		query, args := ins.Query()
		var res sql.Result
		if err := r.q.Exec(ctx, query, args, &res); err != nil {
			return r.dbError("insert", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return r.dbError("insert", err)
		}
		rec.ID = id
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	return nil
}

// Update writes every mutable field of rec.
func (r *RestaurantRepository) Update(ctx context.Context, rec *entity.Restaurant) error {
	now := r.now()
	query, args := r.builder().Update(restaurantsTable).
		Set("name", rec.Name).
		Set("address", rec.Address).
		Set("lat", rec.Lat).
		Set("lng", rec.Lng).
		Set("phone", rec.Phone).
		Set("category", rec.Category).
		Set("price", rec.Price).
		Set("price_min", nullInt(rec.PriceMin)).
		Set("price_max", nullInt(rec.PriceMax)).
		Set("price_avg", nullInt(rec.PriceAvg)).
		Set("price_count", rec.PriceCount).
		Set("score", rec.Score).
		Set("updated_at", now).
		Where(entsql.EQ("id", rec.ID)).
		Query()
	if err := r.q.Exec(ctx, query, args, nil); err != nil {
		return r.dbError("update", err)
	}
	rec.UpdatedAt = now
	return nil
}

// HasObservation reports whether the fingerprint was already folded.
func (r *RestaurantRepository) HasObservation(ctx context.Context, fingerprint string) (bool, error) {
	b := r.builder()
	query, args := b.Select("fingerprint").From(b.Table(observationsTable)).
		Where(entsql.EQ("fingerprint", fingerprint)).
		Limit(1).
		Query()
	rows := &entsql.Rows{}
	if err := r.q.Query(ctx, query, args, rows); err != nil {
		return false, r.dbError("observation lookup", err)
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}

// AddObservation records that fingerprint was folded into restaurantID.
func (r *RestaurantRepository) AddObservation(ctx context.Context, fingerprint string, restaurantID int64) error {
	query, args := r.builder().Insert(observationsTable).
		Columns("fingerprint", "restaurant_id", "observed_at").
		Values(fingerprint, restaurantID, r.now()).
		Query()
	if err := r.q.Exec(ctx, query, args, nil); err != nil {
		return r.dbError("observation insert", err)
	}
	return nil
}

// ListOptions pages through records by id.
type ListOptions struct {
	AfterID       int64
	Limit         int
	EmptyCategory bool
}

// List returns records ordered by id.
func (r *RestaurantRepository) List(ctx context.Context, opts ListOptions) ([]*entity.Restaurant, error) {
	preds := []*entsql.Predicate{entsql.GT("id", opts.AfterID)}
	if opts.EmptyCategory {
		preds = append(preds, entsql.Or(entsql.EQ("category", ""), entsql.IsNull("category")))
	}
	sel := r.selectRestaurants().Where(entsql.And(preds...)).OrderBy("id")
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	return r.all(ctx, sel)
}

// Count returns the number of records.
func (r *RestaurantRepository) Count(ctx context.Context) (int64, error) {
	b := r.builder()
	query, args := b.Select(entsql.Count("*")).From(b.Table(restaurantsTable)).Query()
	rows := &entsql.Rows{}
	if err := r.q.Query(ctx, query, args, rows); err != nil {
		return 0, r.dbError("count", err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, r.dbError("count", err)
		}
	}
	return n, rows.Err()
}

func (r *RestaurantRepository) first(ctx context.Context, sel *entsql.Selector) (*entity.Restaurant, error) {
	recs, err := r.all(ctx, sel)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func (r *RestaurantRepository) all(ctx context.Context, sel *entsql.Selector) ([]*entity.Restaurant, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.q.Query(ctx, query, args, rows); err != nil {
		return nil, r.dbError("select", err)
	}
	defer rows.Close()

	var out []*entity.Restaurant
	for rows.Next() {
		var (
			rec              entity.Restaurant
			pmin, pmax, pavg sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Address, &rec.Lat, &rec.Lng, &rec.Phone, &rec.Category,
			&rec.Price, &pmin, &pmax, &pavg, &rec.PriceCount, &rec.Score); err != nil {
			return nil, r.dbError("scan", err)
		}
		rec.PriceMin, rec.PriceMax, rec.PriceAvg = fromNull(pmin), fromNull(pmax), fromNull(pavg)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError("select", err)
	}
	return out, nil
}

func (r *RestaurantRepository) dbError(op string, err error) error {
	r.logger.Error("repository."+op+" failed", "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrDatabase, op, err)
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func fromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
