package supply

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldmed/supplyline/internal/database"
	"github.com/fieldmed/supplyline/internal/entity"
)

var repoTracer = otel.Tracer("github.com/fieldmed/supplyline/repository/supply")

// Repository resolves supplies by short code.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires the supply lookup over the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// FindByShortcode returns the supply for the code, or nil when unknown.
// Codes are matched case-insensitively; texters shout inconsistently.
func (r *Repository) FindByShortcode(ctx context.Context, shortcode string) (*entity.Supply, error) {
	ctx, span := repoTracer.Start(ctx, "SupplyRepository.FindByShortcode", trace.WithAttributes(attribute.String("supply.shortcode", shortcode)))
	defer span.End()

	s := new(entity.Supply)
	err := r.reader.NewSelect().Model(s).Where("upper(shortcode) = ?", strings.ToUpper(shortcode)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return s, nil
}
