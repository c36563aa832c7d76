package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldmed/supplyline/internal/busday"
	"github.com/fieldmed/supplyline/internal/entity"
	"github.com/fieldmed/supplyline/internal/intake"
	"github.com/fieldmed/supplyline/internal/messaging"
	orderrepo "github.com/fieldmed/supplyline/internal/repository/order"
)

// Wednesday noon; the whole work week around it is business days.
var testNow = time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

type fakeOrders struct {
	seq        int64
	orders     []*entity.Order
	responded  map[int64]time.Time
	lastCutoff time.Time
	createErr  error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{responded: map[int64]time.Time{}}
}

func (f *fakeOrders) Create(_ context.Context, order *entity.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	order.ID = f.seq
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, orderrepo.ErrNotFound
}

func (f *fakeOrders) ExistsUnresponded(_ context.Context, userID, supplyID int64) (bool, error) {
	for _, o := range f.orders {
		if o.UserID == nil || o.SupplyID == nil {
			continue
		}
		if *o.UserID == userID && *o.SupplyID == supplyID {
			if _, ok := f.responded[o.ID]; !ok {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeOrders) List(_ context.Context, filter orderrepo.Filter, country string, cutoff time.Time) ([]entity.Order, error) {
	f.lastCutoff = cutoff
	return nil, nil
}

func (f *fakeOrders) respond(id int64, at time.Time) {
	f.responded[id] = at
}

type fakeUsers struct{ users map[string]*entity.User }

func (f *fakeUsers) FindByPCVID(_ context.Context, pcvid string) (*entity.User, error) {
	return f.users[pcvid], nil
}

type fakeSupplies struct{ supplies map[string]*entity.Supply }

func (f *fakeSupplies) FindByShortcode(_ context.Context, code string) (*entity.Supply, error) {
	return f.supplies[code], nil
}

type capturePublisher struct{ published [][]byte }

func (p *capturePublisher) Publish(_ context.Context, _ []byte, value []byte) error {
	p.published = append(p.published, value)
	return nil
}

func (p *capturePublisher) Consume(ctx context.Context, _ messaging.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (p *capturePublisher) Topic() string { return "orders.inbound" }

func newTestService(store *fakeOrders, pub *capturePublisher) *Service {
	return &Service{
		orders: store,
		users: &fakeUsers{users: map[string]*entity.User{
			"123456": {ID: 1, PCVID: "123456", Email: "vol@example.org", Location: "Base Camp", Country: "SN"},
		}},
		supplies: &fakeSupplies{supplies: map[string]*entity.Supply{
			"ASDF": {ID: 7, Shortcode: "ASDF", Name: "Azithromycin"},
		}},
		calendar:  busday.NewCalendar(3, nil),
		logger:    zap.NewNop(),
		publisher: pub,
		messaging: messagingConfig{enabled: true, topic: "orders.inbound"},
		now:       func() time.Time { return testNow },
	}
}

func TestSubmitSuccess(t *testing.T) {
	store := newFakeOrders()
	pub := &capturePublisher{}
	svc := newTestService(store, pub)

	out, err := svc.Submit(context.Background(), "123456, ASDF, 30mg, 50, Somewhere", "+14049390122")
	require.NoError(t, err)
	require.True(t, out.Accepted())

	assert.Equal(t, intake.KeyConfirmation, out.MessageKey)
	assert.Equal(t, 50, out.Order.Quantity)
	assert.Equal(t, "30mg", out.Order.Unit)
	assert.Equal(t, "Somewhere", out.Order.Location)
	assert.Equal(t, "+14049390122", out.Order.Phone)
	assert.Equal(t, "vol@example.org", out.Order.Email)
	assert.Equal(t, "SN", out.Order.Country)
	assert.Equal(t, testNow.UTC(), out.Order.CreatedAt)
	require.Len(t, store.orders, 1)

	require.Len(t, pub.published, 1)
	var event OrderReceivedEvent
	require.NoError(t, json.Unmarshal(pub.published[0], &event))
	assert.Equal(t, out.Order.ID, event.ID)
	assert.Equal(t, "123456", event.PCVID)
	assert.Equal(t, "ASDF", event.Shortcode)
}

func TestSubmitUnrecognizedUser(t *testing.T) {
	store := newFakeOrders()
	pub := &capturePublisher{}
	svc := newTestService(store, pub)

	out, err := svc.Submit(context.Background(), "XXX, ASDF, 30mg, 50, Somewhere", "")
	require.NoError(t, err)
	require.False(t, out.Accepted())

	assert.Equal(t, intake.KeyUnrecognizedPCVID, out.MessageKey)
	require.NotNil(t, out.Rejection)
	assert.Contains(t, out.Rejection.Errors, intake.FieldError{Field: "user", Message: intake.MsgUnrecognized})
	assert.Empty(t, store.orders)
	assert.Empty(t, pub.published)
}

func TestSubmitUnparseable(t *testing.T) {
	store := newFakeOrders()
	svc := newTestService(store, &capturePublisher{})

	out, err := svc.Submit(context.Background(), "This message should not parse as a valid order", "")
	require.NoError(t, err)
	assert.True(t, out.Unparseable())
	assert.Equal(t, intake.KeyUnparseable, out.MessageKey)
	assert.Empty(t, store.orders)
}

func TestSubmitDuplicateUntilResponded(t *testing.T) {
	store := newFakeOrders()
	svc := newTestService(store, &capturePublisher{})
	raw := "123456, ASDF, 30mg, 50, Somewhere"

	first, err := svc.Submit(context.Background(), raw, "")
	require.NoError(t, err)
	require.True(t, first.Accepted())

	// Identical resubmissions reject while the first order is outstanding.
	for i := 0; i < 2; i++ {
		out, err := svc.Submit(context.Background(), raw, "")
		require.NoError(t, err)
		assert.False(t, out.Accepted())
		assert.Equal(t, intake.KeyDuplicateOrder, out.MessageKey)
	}
	assert.Len(t, store.orders, 1)

	// Once the outstanding order is answered, the pair opens up again.
	store.respond(first.Order.ID, testNow)
	out, err := svc.Submit(context.Background(), raw, "")
	require.NoError(t, err)
	assert.True(t, out.Accepted())
	assert.Len(t, store.orders, 2)
}

func TestSubmitPropagatesStoreError(t *testing.T) {
	store := newFakeOrders()
	store.createErr = errors.New("writer down")
	svc := newTestService(store, &capturePublisher{})

	out, err := svc.Submit(context.Background(), "123456, ASDF, 30mg, 50, Somewhere", "")
	assert.Nil(t, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.createErr)
}

func TestListSharesClassifierCutoff(t *testing.T) {
	store := newFakeOrders()
	svc := newTestService(store, &capturePublisher{})

	_, err := svc.List(context.Background(), orderrepo.FilterPastDue, "SN")
	require.NoError(t, err)
	assert.Equal(t, svc.calendar.Cutoff(testNow.UTC()), store.lastCutoff)
}

func TestClassifyMatchesBulkSemantics(t *testing.T) {
	svc := newTestService(newFakeOrders(), &capturePublisher{})
	cutoff := svc.calendar.Cutoff(testNow.UTC())

	onBoundary := &entity.Order{CreatedAt: cutoff}
	older := &entity.Order{CreatedAt: cutoff.Add(-time.Minute)}
	answered := &entity.Order{CreatedAt: cutoff.Add(-time.Minute), Response: &entity.Response{CreatedAt: testNow}}

	assert.Equal(t, busday.StatusPending, svc.Classify(onBoundary, testNow))
	assert.Equal(t, busday.StatusPastDue, svc.Classify(older, testNow))
	assert.Equal(t, busday.StatusResponded, svc.Classify(answered, testNow))
}
