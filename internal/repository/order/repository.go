package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldmed/supplyline/internal/database"
	"github.com/fieldmed/supplyline/internal/entity"
)

var repoTracer = otel.Tracer("github.com/fieldmed/supplyline/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Filter selects a derived status slice of the orders table. None of these
// correspond to stored columns; they are computed from response linkage and
// the business-day cutoff supplied by the caller.
type Filter string

const (
	FilterPending     Filter = "pending"
	FilterPastDue     Filter = "past_due"
	FilterResponded   Filter = "responded"
	FilterUnresponded Filter = "unresponded"
)

// ParseFilter validates a caller-supplied filter name.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterPending, FilterPastDue, FilterResponded, FilterUnresponded:
		return Filter(s), nil
	default:
		return "", fmt.Errorf("unknown order filter: %q", s)
	}
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order with its response linkage loaded.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Response").
		Where("\"order\".id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// ExistsUnresponded reports whether the pair already has an outstanding
// order, i.e. one with no linked response. This scopes the uniqueness rule.
func (r *Repository) ExistsUnresponded(ctx context.Context, userID, supplyID int64) (bool, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ExistsUnresponded", trace.WithAttributes(
		attribute.Int64("order.user_id", userID),
		attribute.Int64("order.supply_id", supplyID),
	))
	defer span.End()

	exists, err := r.reader.NewSelect().Model((*entity.Order)(nil)).
		Join("LEFT JOIN responses AS response ON response.order_id = \"order\".id").
		Where("\"order\".user_id = ?", userID).
		Where("\"order\".supply_id = ?", supplyID).
		Where("response.id IS NULL").
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists failed")
		return false, err
	}
	return exists, nil
}

// List returns orders matching a derived status filter, optionally scoped to
// a country. The cutoff is the business-day boundary computed by the caller;
// sharing it with the single-order classifier keeps bulk and single
// classification identical.
func (r *Repository) List(ctx context.Context, filter Filter, country string, cutoff time.Time) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List", trace.WithAttributes(attribute.String("order.filter", string(filter))))
	defer span.End()

	var orders []entity.Order
	q := r.reader.NewSelect().Model(&orders).
		Relation("Response").
		Order("created_at ASC")

	if country != "" {
		q = q.Where("\"order\".country = ?", country)
	}

	switch filter {
	case FilterResponded:
		q = q.Where("response.id IS NOT NULL")
	case FilterUnresponded:
		q = q.Where("response.id IS NULL")
	case FilterPastDue:
		q = q.Where("response.id IS NULL").Where("\"order\".created_at < ?", cutoff)
	case FilterPending:
		q = q.Where("response.id IS NULL").Where("\"order\".created_at >= ?", cutoff)
	default:
		return nil, fmt.Errorf("unknown order filter: %q", filter)
	}

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}
