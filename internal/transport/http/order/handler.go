package order

import (
	"net/http"
	"strconv"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldmed/supplyline/internal/dto"
	"github.com/fieldmed/supplyline/internal/entity"
	"github.com/fieldmed/supplyline/internal/intake"
	"github.com/fieldmed/supplyline/internal/presentation/http/response"
	orderrepo "github.com/fieldmed/supplyline/internal/repository/order"
	service "github.com/fieldmed/supplyline/internal/service/order"
	"github.com/fieldmed/supplyline/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/fieldmed/supplyline/transport/http/order")

// Handler exposes the intake webhook and order queries over HTTP.
type Handler struct {
	svc      *service.Service
	validate *validatorv10.Validate
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc, validate: validatorv10.New()}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/messages/inbound", h.inbound)

	g := e.Group("/orders")
	g.GET("/:id", h.getByID)
	g.GET("", h.list)
}

// inboundPayload is the gateway webhook body: the sender and the raw text.
type inboundPayload struct {
	Phone string `json:"phone" validate:"required"`
	Text  string `json:"text" validate:"required"`
}

// inbound receives one raw order text from the SMS gateway. The response
// carries the message-selection key; the gateway renders and delivers the
// localized text itself.
func (h *Handler) inbound(c echo.Context) error {
	b := response.New(c)

	var payload inboundPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := h.validate.Struct(payload); err != nil {
		return b.WithError(errorbank.BadRequest("phone and text are required", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.inbound")
	defer span.End()

	out, err := h.svc.Submit(ctx, payload.Text, payload.Phone)
	if err != nil {
		return b.WithError(err).Build()
	}

	span.SetAttributes(attribute.String("order.message_key", out.MessageKey))

	switch {
	case out.Accepted():
		return b.WithStatus(http.StatusCreated).
			WithMessageKey(out.MessageKey).
			WithData(h.toDTO(out.Order)).
			Build()
	case out.Unparseable():
		return b.WithStatus(http.StatusUnprocessableEntity).
			WithMessageKey(out.MessageKey).
			WithData(dto.RejectionResponse{MessageKey: intake.KeyUnparseable}).
			Build()
	default:
		fields := make(map[string]string, len(out.Rejection.Errors))
		for _, fe := range out.Rejection.Errors {
			fields[fe.Field] = fe.Message
		}
		return b.WithStatus(http.StatusUnprocessableEntity).
			WithMessageKey(out.MessageKey).
			WithData(dto.RejectionResponse{MessageKey: out.MessageKey, Errors: fields}).
			Build()
	}
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(h.toDTO(order)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	filter, err := orderrepo.ParseFilter(c.QueryParam("status"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("unknown status filter", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list", trace.WithAttributes(attribute.String("order.filter", string(filter))))
	defer span.End()

	orders, err := h.svc.List(ctx, filter, c.QueryParam("country"))
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		out[i] = h.toDTO(&orders[i])
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) toDTO(order *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		SupplyID:    order.SupplyID,
		Phone:       order.Phone,
		Email:       order.Email,
		Country:     order.Country,
		Unit:        order.Unit,
		Quantity:    order.Quantity,
		Location:    order.Location,
		Status:      string(h.svc.Classify(order, h.svc.Now())),
		RespondedAt: order.RespondedAt(),
		Fulfilled:   order.Fulfilled(),
		CreatedAt:   order.CreatedAt,
	}
}
