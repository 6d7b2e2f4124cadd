package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/dwikikusuma/epicerie/internal/catalog/domain"
)

func newOrder(items ...OrderItem) *Order {
	return &Order{ID: "o1", EpicerieID: 3, Status: OrderInPreparation, Items: items}
}

func withBarcode(it OrderItem, code string) OrderItem {
	it.Barcode = code
	return it
}

func weighed(id string, commanded float64) OrderItem {
	it := NewOrderItem(id, "p1", commanded)
	it.UnitType = "weight"
	return it
}

func TestItemTransitions(t *testing.T) {
	t.Run("pending to scanned to completed", func(t *testing.T) {
		it := NewOrderItem("i1", "p1", 2)
		require.NoError(t, it.Scan())
		assert.Equal(t, StatusScanned, it.Status)
		require.NoError(t, it.Complete())
		assert.Equal(t, StatusCompleted, it.Status)
	})

	t.Run("modify sets actual quantity", func(t *testing.T) {
		it := weighed("i1", 1.0)
		assert.Equal(t, 1.0, it.QuantityActual)
		require.NoError(t, it.ModifyQuantity(0.85))
		assert.Equal(t, StatusModified, it.Status)
		assert.Equal(t, 0.85, it.QuantityActual)
		require.NoError(t, it.Complete())
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		it := weighed("i1", 1.0)
		assert.ErrorIs(t, it.ModifyQuantity(-1), ErrInvalidQuantity)
		assert.Equal(t, StatusPending, it.Status)
	})

	t.Run("counted items keep ordered quantity", func(t *testing.T) {
		for _, ut := range []catalog.UnitType{"", catalog.UnitPiece} {
			it := NewOrderItem("i1", "p1", 6)
			it.UnitType = ut
			require.NoError(t, it.Scan())
			assert.ErrorIs(t, it.ModifyQuantity(5), ErrNotMeasured, "unit type %q", ut)
			assert.Equal(t, StatusScanned, it.Status)
			assert.Equal(t, 6.0, it.QuantityActual)
		}
	})

	t.Run("volume and length are measured", func(t *testing.T) {
		for _, ut := range []catalog.UnitType{catalog.UnitVolume, catalog.UnitLength} {
			it := NewOrderItem("i1", "p1", 1)
			it.UnitType = ut
			require.NoError(t, it.ModifyQuantity(0.9))
			assert.Equal(t, StatusModified, it.Status)
		}
	})

	t.Run("pending straight to unavailable", func(t *testing.T) {
		it := NewOrderItem("i1", "p1", 3)
		require.NoError(t, it.MarkUnavailable())
		assert.Equal(t, StatusUnavailable, it.Status)
		assert.Zero(t, it.QuantityActual)
	})
}

func TestTerminalStability(t *testing.T) {
	actions := map[string]func(*OrderItem) error{
		"scan":        (*OrderItem).Scan,
		"modify":      func(it *OrderItem) error { return it.ModifyQuantity(9) },
		"complete":    (*OrderItem).Complete,
		"unavailable": (*OrderItem).MarkUnavailable,
	}

	terminals := map[string]func() OrderItem{
		"completed": func() OrderItem {
			it := weighed("i1", 2)
			_ = it.ModifyQuantity(1.5)
			_ = it.Complete()
			return it
		},
		"unavailable": func() OrderItem {
			it := NewOrderItem("i1", "p1", 2)
			_ = it.MarkUnavailable()
			return it
		},
	}

	for tname, build := range terminals {
		for aname, act := range actions {
			t.Run(tname+"/"+aname, func(t *testing.T) {
				it := build()
				before := it
				err := act(&it)
				assert.ErrorIs(t, err, ErrItemTerminal)
				assert.Equal(t, before, it)
			})
		}
	}
}

func TestScanBarcode(t *testing.T) {
	o := newOrder(
		withBarcode(NewOrderItem("i1", "p1", 1), "3017620422003"),
		withBarcode(NewOrderItem("i2", "p2", 1), "ABC-12"),
	)

	it, err := o.ScanBarcode("abc-12")
	require.NoError(t, err)
	assert.Equal(t, "i2", it.ID)
	assert.Equal(t, StatusScanned, o.Items[1].Status)

	_, err = o.ScanBarcode("000")
	assert.ErrorIs(t, err, ErrNoBarcodeMatch)

	t.Run("terminal item does not match", func(t *testing.T) {
		_, err := o.Apply("i1", (*OrderItem).Complete)
		require.NoError(t, err)
		_, err = o.ScanBarcode("3017620422003")
		assert.ErrorIs(t, err, ErrNoBarcodeMatch)
		assert.Equal(t, StatusCompleted, o.Items[0].Status)
	})
}

func TestApplyUnknownItem(t *testing.T) {
	o := newOrder(NewOrderItem("i1", "p1", 1))
	_, err := o.Apply("nope", (*OrderItem).Complete)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestProgress(t *testing.T) {
	build := func(n, k, m int) *Order {
		o := newOrder()
		for i := 0; i < n; i++ {
			it := NewOrderItem(fmt.Sprint(i), "p", 1)
			switch {
			case i < k:
				_ = it.Complete()
			case i < k+m:
				_ = it.MarkUnavailable()
			}
			o.Items = append(o.Items, it)
		}
		return o
	}

	cases := []struct {
		n, k, m int
		want    int
	}{
		{4, 1, 1, 50},
		{3, 1, 0, 33},
		{3, 2, 0, 67},
		{3, 2, 1, 100},
		{5, 0, 0, 0},
		{0, 0, 0, 0},
		{200, 199, 0, 99},
	}
	for _, tc := range cases {
		p := build(tc.n, tc.k, tc.m).Progress()
		assert.Equal(t, tc.want, p.Percentage, "n=%d k=%d m=%d", tc.n, tc.k, tc.m)
		assert.Equal(t, tc.k+tc.m, p.Done)
		assert.Equal(t, tc.n-tc.k-tc.m, p.Pending)
	}
}

func TestFinish(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	t.Run("incomplete without confirmation", func(t *testing.T) {
		o := newOrder(NewOrderItem("i1", "p1", 1), NewOrderItem("i2", "p2", 1))
		_, _ = o.Apply("i1", (*OrderItem).Complete)

		err := o.BeginFinish(false)
		var inc *IncompleteError
		require.True(t, errors.As(err, &inc))
		assert.Equal(t, 1, inc.Pending)
		assert.Equal(t, OrderInPreparation, o.Status)
	})

	t.Run("forced with pending items", func(t *testing.T) {
		o := newOrder(NewOrderItem("i1", "p1", 1))
		require.NoError(t, o.BeginFinish(true))
		require.NoError(t, o.CompleteFinish(now))
		assert.True(t, o.Closed())
		assert.Equal(t, now, *o.FinishedAt)
		assert.Equal(t, StatusPending, o.Items[0].Status)
	})

	t.Run("frozen order rejects item changes", func(t *testing.T) {
		o := newOrder(withBarcode(NewOrderItem("i1", "p1", 1), "X1"))
		require.NoError(t, o.BeginFinish(true))
		assert.False(t, o.Closed())

		_, err := o.Apply("i1", (*OrderItem).MarkUnavailable)
		assert.ErrorIs(t, err, ErrOrderFinishing)
		_, err = o.ScanBarcode("X1")
		assert.ErrorIs(t, err, ErrOrderFinishing)
		assert.Equal(t, StatusPending, o.Items[0].Status)

		require.NoError(t, o.BeginFinish(true), "an interrupted finish can begin again")
	})

	t.Run("abort reopens", func(t *testing.T) {
		o := newOrder(NewOrderItem("i1", "p1", 1))
		require.NoError(t, o.BeginFinish(true))
		o.AbortFinish()
		assert.Equal(t, OrderInPreparation, o.Status)
		_, err := o.Apply("i1", (*OrderItem).Complete)
		require.NoError(t, err)
		assert.ErrorIs(t, o.CompleteFinish(now), ErrNotFinishing)
	})

	t.Run("closed order is immutable", func(t *testing.T) {
		o := newOrder(NewOrderItem("i1", "p1", 1))
		_, _ = o.Apply("i1", (*OrderItem).Complete)
		require.NoError(t, o.BeginFinish(false))
		require.NoError(t, o.CompleteFinish(now))

		_, err := o.Apply("i1", (*OrderItem).MarkUnavailable)
		assert.ErrorIs(t, err, ErrOrderClosed)
		_, err = o.ScanBarcode("x")
		assert.ErrorIs(t, err, ErrOrderClosed)
		assert.ErrorIs(t, o.BeginFinish(true), ErrOrderClosed)
		assert.ErrorIs(t, o.CompleteFinish(now), ErrOrderClosed)
		o.AbortFinish()
		assert.True(t, o.Closed())
	})
}
