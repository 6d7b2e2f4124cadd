package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/epicerie/internal/preparation/domain"
	"github.com/dwikikusuma/epicerie/pkg/kv"
	"github.com/dwikikusuma/epicerie/pkg/logger"
)

type fakeSource struct {
	mu      sync.Mutex
	fetches int
	pushed  map[string]domain.ItemStatus
	ready   []string
	pushErr error
	onReady func()
}

func (f *fakeSource) FetchOrder(ctx context.Context, orderID string) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if orderID == "missing" {
		return domain.Order{}, ErrNotFound
	}
	scale := domain.OrderItem{ID: "i2", ProductID: "p2", UnitType: "weight", QuantityCommanded: 0.5}
	return domain.Order{
		EpicerieID: 9,
		Items: []domain.OrderItem{
			{ID: "i1", ProductID: "p1", Barcode: "ABC123", QuantityCommanded: 2},
			scale,
			{ID: "i3", ProductID: "p3", QuantityCommanded: 1},
		},
	}, nil
}

func (f *fakeSource) PushItem(ctx context.Context, orderID string, item domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	if f.pushed == nil {
		f.pushed = map[string]domain.ItemStatus{}
	}
	f.pushed[item.ID] = item.Status
	return nil
}

func (f *fakeSource) MarkReady(ctx context.Context, orderID string) error {
	if f.onReady != nil {
		f.onReady()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = append(f.ready, orderID)
	return nil
}

func newService(t *testing.T) (*Service, *fakeSource) {
	t.Helper()
	src := &fakeSource{}
	return NewService(kv.NewMemoryStore(), src, 2, logger.Discard()), src
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	svc, src := newService(t)

	o, err := svc.Start(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, domain.OrderInPreparation, o.Status)
	for _, it := range o.Items {
		assert.Equal(t, domain.StatusPending, it.Status)
		assert.Equal(t, it.QuantityCommanded, it.QuantityActual)
	}

	_, err = svc.Start(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 1, src.fetches)

	_, err = svc.Start(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreparationFlow(t *testing.T) {
	ctx := context.Background()
	svc, src := newService(t)
	_, err := svc.Start(ctx, "o1")
	require.NoError(t, err)

	it, err := svc.ScanBarcode(ctx, "o1", "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScanned, it.Status)

	it, err = svc.ModifyQuantity(ctx, "o1", "i2", 0.47)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusModified, it.Status)
	assert.Equal(t, 0.47, it.QuantityActual)

	_, err = svc.CompleteItem(ctx, "o1", "i1")
	require.NoError(t, err)
	_, err = svc.CompleteItem(ctx, "o1", "i2")
	require.NoError(t, err)

	p, err := svc.Progress(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 67, p.Percentage)

	_, err = svc.Finish(ctx, "o1", false)
	var inc *domain.IncompleteError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, 1, inc.Pending)
	assert.Empty(t, src.ready, "nothing is sent for a refused finish")

	_, err = svc.MarkUnavailable(ctx, "o1", "i3")
	require.NoError(t, err)

	o, err := svc.Finish(ctx, "o1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderReady, o.Status)
	assert.NotNil(t, o.FinishedAt)
	assert.Equal(t, []string{"o1"}, src.ready)
	assert.Equal(t, map[string]domain.ItemStatus{
		"i1": domain.StatusCompleted,
		"i2": domain.StatusCompleted,
		"i3": domain.StatusUnavailable,
	}, src.pushed)

	p, err = svc.Progress(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Percentage)

	_, err = svc.CompleteItem(ctx, "o1", "i1")
	assert.ErrorIs(t, err, domain.ErrOrderClosed)
}

func TestTerminalItemRejectedAndUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Start(ctx, "o1")
	require.NoError(t, err)

	_, err = svc.MarkUnavailable(ctx, "o1", "i1")
	require.NoError(t, err)

	_, err = svc.ScanBarcode(ctx, "o1", "ABC123")
	assert.ErrorIs(t, err, domain.ErrNoBarcodeMatch)
	_, err = svc.ModifyQuantity(ctx, "o1", "i1", 5)
	assert.ErrorIs(t, err, domain.ErrItemTerminal)
	_, err = svc.ModifyQuantity(ctx, "o1", "i3", 5)
	assert.ErrorIs(t, err, domain.ErrNotMeasured)

	o, err := svc.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnavailable, o.Items[0].Status)
	assert.Zero(t, o.Items[0].QuantityActual)
}

func TestForcedFinish(t *testing.T) {
	ctx := context.Background()
	svc, src := newService(t)
	_, err := svc.Start(ctx, "o1")
	require.NoError(t, err)

	o, err := svc.Finish(ctx, "o1", true)
	require.NoError(t, err)
	assert.True(t, o.Closed())
	assert.Len(t, src.pushed, 3)
}

func TestFinishPushFailureKeepsOrderOpen(t *testing.T) {
	ctx := context.Background()
	svc, src := newService(t)
	_, err := svc.Start(ctx, "o1")
	require.NoError(t, err)

	src.pushErr = errors.New("api down")
	_, err = svc.Finish(ctx, "o1", true)
	require.Error(t, err)

	o, err := svc.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderInPreparation, o.Status)
	assert.Empty(t, src.ready)

	_, err = svc.CompleteItem(ctx, "o1", "i1")
	require.NoError(t, err, "a reopened order accepts corrections")

	src.pushErr = nil
	o, err = svc.Finish(ctx, "o1", true)
	require.NoError(t, err)
	assert.True(t, o.Closed())
	assert.Equal(t, domain.StatusCompleted, src.pushed["i1"])
}

func TestFinishFreezesItemsWhileSending(t *testing.T) {
	ctx := context.Background()
	svc, src := newService(t)
	_, err := svc.Start(ctx, "o1")
	require.NoError(t, err)
	_, err = svc.CompleteItem(ctx, "o1", "i1")
	require.NoError(t, err)

	var lateErr error
	src.onReady = func() {
		_, lateErr = svc.MarkUnavailable(ctx, "o1", "i3")
	}

	o, err := svc.Finish(ctx, "o1", true)
	require.NoError(t, err)
	assert.ErrorIs(t, lateErr, domain.ErrOrderFinishing)

	for _, it := range o.Items {
		assert.Equal(t, src.pushed[it.ID], it.Status, "item %s", it.ID)
	}
	stored, err := svc.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Items[2].Status)
	assert.Equal(t, domain.StatusPending, src.pushed["i3"])
}

func TestUnknownOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.CompleteItem(ctx, "nope", "i1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Progress(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ScanBarcode(ctx, "nope", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
