package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldmed/supplyline/internal/database"
	"github.com/fieldmed/supplyline/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// All seeds the reference data the intake pipeline resolves against, plus a
// couple of example orders.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Users(ctx); err != nil {
		return err
	}
	if err := s.Supplies(ctx); err != nil {
		return err
	}
	return s.Orders(ctx)
}

// Users seeds example volunteers if they are missing.
func (s *Seeder) Users(ctx context.Context) error {
	samples := []entity.User{
		{PCVID: "123456", Email: "vol1@example.org", Phone: "+14049390122", Location: "Somewhere", Country: "SN"},
		{PCVID: "654321", Email: "vol2@example.org", Phone: "+14049390123", Location: "Elsewhere", Country: "SN"},
	}

	for _, sample := range samples {
		user := sample
		_, err := s.db.NewInsert().Model(&user).
			On("CONFLICT (pcv_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded users", zap.Int("count", len(samples)))
	}
	return nil
}

// Supplies seeds example orderable supplies if they are missing.
func (s *Seeder) Supplies(ctx context.Context) error {
	samples := []entity.Supply{
		{Shortcode: "ASDF", Name: "Azithromycin"},
		{Shortcode: "ORS", Name: "Oral rehydration salts"},
		{Shortcode: "BAND", Name: "Bandages"},
	}

	for _, sample := range samples {
		supply := sample
		_, err := s.db.NewInsert().Model(&supply).
			On("CONFLICT (shortcode) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded supplies", zap.Int("count", len(samples)))
	}
	return nil
}

// Orders seeds a pair of example orders against the seeded references.
func (s *Seeder) Orders(ctx context.Context) error {
	var user entity.User
	if err := s.db.NewSelect().Model(&user).Where("pcv_id = ?", "123456").Scan(ctx); err != nil {
		return err
	}
	var ors, band entity.Supply
	if err := s.db.NewSelect().Model(&ors).Where("shortcode = ?", "ORS").Scan(ctx); err != nil {
		return err
	}
	if err := s.db.NewSelect().Model(&band).Where("shortcode = ?", "BAND").Scan(ctx); err != nil {
		return err
	}

	// One fresh order and one old enough to classify past due. Distinct
	// supplies, so neither trips the outstanding-pair rule.
	now := time.Now().UTC()
	samples := []entity.Order{
		{UserID: &user.ID, SupplyID: &ors.ID, Phone: user.Phone, Email: user.Email, Country: user.Country,
			Unit: "20g", Quantity: 10, Location: user.Location, CreatedAt: now},
		{UserID: &user.ID, SupplyID: &band.ID, Phone: user.Phone, Email: user.Email, Country: user.Country,
			Unit: "5cm", Quantity: 5, Location: user.Location, CreatedAt: now.AddDate(0, 0, -14)},
	}

	for _, sample := range samples {
		order := sample
		_, err := s.db.NewInsert().Model(&order).Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	}
	return nil
}
