package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldmed/supplyline/internal/database"
	"github.com/fieldmed/supplyline/internal/entity"
)

var repoTracer = otel.Tracer("github.com/fieldmed/supplyline/repository/user")

// Repository resolves users by their PCV ID. It is a pure lookup boundary;
// intake never writes users.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires the user lookup over the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// FindByPCVID returns the user for the identifier, or nil when unknown.
// "unknown" is not an error; collaborator failures are.
func (r *Repository) FindByPCVID(ctx context.Context, pcvid string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.FindByPCVID", trace.WithAttributes(attribute.String("user.pcv_id", pcvid)))
	defer span.End()

	user := new(entity.User)
	err := r.reader.NewSelect().Model(user).Where("pcv_id = ?", pcvid).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return user, nil
}
