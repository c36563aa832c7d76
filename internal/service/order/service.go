package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldmed/supplyline/internal/busday"
	"github.com/fieldmed/supplyline/internal/cache"
	"github.com/fieldmed/supplyline/internal/config"
	"github.com/fieldmed/supplyline/internal/entity"
	"github.com/fieldmed/supplyline/internal/intake"
	"github.com/fieldmed/supplyline/internal/messaging"
	orderrepo "github.com/fieldmed/supplyline/internal/repository/order"
	supplyrepo "github.com/fieldmed/supplyline/internal/repository/supply"
	userrepo "github.com/fieldmed/supplyline/internal/repository/user"
	"github.com/fieldmed/supplyline/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/fieldmed/supplyline/service/order")

// OrderStore is the durable order collaborator. The intake pipeline depends
// on it only for the unresponded-existence check and the final persist.
type OrderStore interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	ExistsUnresponded(ctx context.Context, userID, supplyID int64) (bool, error)
	List(ctx context.Context, filter orderrepo.Filter, country string, cutoff time.Time) ([]entity.Order, error)
}

// UserLookup resolves a PCV ID to a user, nil when unknown.
type UserLookup interface {
	FindByPCVID(ctx context.Context, pcvid string) (*entity.User, error)
}

// SupplyLookup resolves a short code to a supply, nil when unknown.
type SupplyLookup interface {
	FindByShortcode(ctx context.Context, shortcode string) (*entity.Supply, error)
}

// Outcome is the terminal result of one submission. Exactly one of three
// shapes: accepted (Order set), rejected (Rejection set), or unparseable
// (neither set). MessageKey is always set.
type Outcome struct {
	Order      *entity.Order
	Rejection  *intake.Rejection
	MessageKey string
}

// Accepted reports whether the submission produced a persisted order.
func (o *Outcome) Accepted() bool { return o.Order != nil }

// Unparseable reports whether the raw text never reached validation.
func (o *Outcome) Unparseable() bool { return o.Order == nil && o.Rejection == nil }

// Service runs the order-intake pipeline and the derived-status queries.
type Service struct {
	orders    OrderStore
	users     UserLookup
	supplies  SupplyLookup
	cache     cache.Store
	cacheTTL  time.Duration
	calendar  *busday.Calendar
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	now       func() time.Time
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    *orderrepo.Repository
	Users     *userrepo.Repository
	Supplies  *supplyrepo.Repository
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		orders:    p.Orders,
		users:     p.Users,
		supplies:  p.Supplies,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		calendar:  busday.NewCalendar(p.Config.Intake.PastDueDays, p.Config.Intake.Holidays),
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		now: time.Now,
	}
}

// Submit runs one raw message through parse, validate, persist. Lookup and
// store failures propagate to the caller unretried; parse and validation
// failures are terminal outcomes, not errors, and persist nothing.
//
// The unresponded-uniqueness check and the insert are deliberately not
// atomic; see the migration note on the responses index.
func (s *Service) Submit(ctx context.Context, raw, phone string) (*Outcome, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Submit")
	defer span.End()

	fields, err := intake.Parse(raw)
	if err != nil {
		span.SetAttributes(attribute.String("order.message_key", intake.KeyUnparseable))
		return &Outcome{MessageKey: intake.KeyUnparseable}, nil
	}

	validator := intake.NewValidator(intake.Lookups{
		FindUser:          s.findUser,
		FindSupply:        s.findSupply,
		ExistsUnresponded: s.orders.ExistsUnresponded,
	})

	draft, rejection, err := validator.Validate(ctx, fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collaborator error")
		return nil, err
	}
	if rejection != nil {
		key := rejection.Key()
		span.SetAttributes(attribute.String("order.message_key", key))
		return &Outcome{Rejection: rejection, MessageKey: key}, nil
	}

	userID := draft.User.ID
	supplyID := draft.Supply.ID
	order := &entity.Order{
		UserID:    &userID,
		SupplyID:  &supplyID,
		Phone:     phone,
		Email:     draft.User.Email,
		Country:   draft.User.Country,
		Unit:      draft.Unit,
		Quantity:  draft.Quantity,
		Location:  draft.Location,
		CreatedAt: s.now().UTC(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	s.publishOrderReceived(ctx, order, draft)

	span.SetAttributes(attribute.Int64("order.id", order.ID))
	return &Outcome{Order: order, MessageKey: intake.KeyConfirmation}, nil
}

// Get retrieves an order with its response linkage.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

// List returns orders in the derived status bucket, optionally scoped to a
// country. The cutoff fed to the store is the same one Classify uses.
func (s *Service) List(ctx context.Context, filter orderrepo.Filter, country string) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List", trace.WithAttributes(attribute.String("order.filter", string(filter))))
	defer span.End()

	orders, err := s.orders.List(ctx, filter, country, s.calendar.Cutoff(s.now().UTC()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Classify derives the lifecycle bucket of one order against the injected
// reference instant.
func (s *Service) Classify(order *entity.Order, ref time.Time) busday.Status {
	return s.calendar.Classify(order.CreatedAt, order.RespondedAt(), ref)
}

// Now exposes the service clock so transports classify against the same
// instant the pipeline uses.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// findUser resolves a PCV ID, consulting the cache first. Users change
// rarely; lookup misses are not cached.
func (s *Service) findUser(ctx context.Context, pcvid string) (*entity.User, error) {
	key := fmt.Sprintf("users:pcvid:%s", pcvid)
	var user entity.User
	if found, err := s.fromCache(ctx, key, &user); err == nil && found {
		return &user, nil
	}

	resolved, err := s.users.FindByPCVID(ctx, pcvid)
	if err != nil || resolved == nil {
		return resolved, err
	}
	s.toCache(ctx, key, resolved)
	return resolved, nil
}

func (s *Service) findSupply(ctx context.Context, shortcode string) (*entity.Supply, error) {
	key := fmt.Sprintf("supplies:code:%s", shortcode)
	var supply entity.Supply
	if found, err := s.fromCache(ctx, key, &supply); err == nil && found {
		return &supply, nil
	}

	resolved, err := s.supplies.FindByShortcode(ctx, shortcode)
	if err != nil || resolved == nil {
		return resolved, err
	}
	s.toCache(ctx, key, resolved)
	return resolved, nil
}

func (s *Service) fromCache(ctx context.Context, key string, out any) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	bytes, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false, nil
	}
	if err := json.Unmarshal(bytes, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, bytes, s.cacheTTL); err != nil {
		if s.logger != nil {
			s.logger.Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *Service) publishOrderReceived(ctx context.Context, order *entity.Order, draft *intake.Draft) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderReceivedEvent{
		ID:        order.ID,
		PCVID:     draft.User.PCVID,
		Shortcode: draft.Supply.Shortcode,
		Unit:      order.Unit,
		Quantity:  order.Quantity,
		Location:  order.Location,
		Country:   order.Country,
		CreatedAt: order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order received", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order received", zap.Error(err))
		}
	}
}

// OrderReceivedEvent is emitted when a submission is accepted and persisted.
type OrderReceivedEvent struct {
	ID        int64     `json:"id"`
	PCVID     string    `json:"pcv_id"`
	Shortcode string    `json:"shortcode"`
	Unit      string    `json:"unit"`
	Quantity  int       `json:"quantity"`
	Location  string    `json:"location"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}
