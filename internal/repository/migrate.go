package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
)

var (
	// RestaurantsColumns holds the columns for the "restaurants" table.
	RestaurantsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "address", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "lat", Type: field.TypeFloat64, Default: 0},
		{Name: "lng", Type: field.TypeFloat64, Default: 0},
		{Name: "phone", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "category", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "price", Type: field.TypeInt64, Default: 0},
		{Name: "price_min", Type: field.TypeInt64, Nullable: true},
		{Name: "price_max", Type: field.TypeInt64, Nullable: true},
		{Name: "price_avg", Type: field.TypeInt64, Nullable: true},
		{Name: "price_count", Type: field.TypeInt64, Default: 0},
		{Name: "score", Type: field.TypeFloat64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// RestaurantsTable holds the schema information for the "restaurants" table.
	RestaurantsTable = &schema.Table{
		Name:       "restaurants",
		Columns:    RestaurantsColumns,
		PrimaryKey: []*schema.Column{RestaurantsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "restaurant_name_address", Columns: []*schema.Column{RestaurantsColumns[1], RestaurantsColumns[2]}},
			{Name: "restaurant_address", Columns: []*schema.Column{RestaurantsColumns[2]}},
			{Name: "restaurant_name", Columns: []*schema.Column{RestaurantsColumns[1]}},
		},
	}
	// ObservationsColumns holds the columns for the "restaurant_observations" table.
	ObservationsColumns = []*schema.Column{
		{Name: "fingerprint", Type: field.TypeString, Size: 64},
		{Name: "restaurant_id", Type: field.TypeInt64},
		{Name: "observed_at", Type: field.TypeTime},
	}
	// ObservationsTable holds the schema information for the "restaurant_observations" table.
	ObservationsTable = &schema.Table{
		Name:       "restaurant_observations",
		Columns:    ObservationsColumns,
		PrimaryKey: []*schema.Column{ObservationsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "restaurant_observations_restaurants_observations",
				Columns:    []*schema.Column{ObservationsColumns[1]},
				RefColumns: []*schema.Column{RestaurantsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		RestaurantsTable,
		ObservationsTable,
	}
)

func init() {
	ObservationsTable.ForeignKeys[0].RefTable = RestaurantsTable
}

// Migrate creates or alters the tables to match the schema.
func (s *Store) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		s.logger.Error("schema migration failed", "error", err)
		return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	s.logger.Info("schema migrated", "tables", len(Tables))
	return nil
}
