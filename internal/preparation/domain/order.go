package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	catalog "github.com/dwikikusuma/epicerie/internal/catalog/domain"
)

type ItemStatus string

const (
	StatusPending     ItemStatus = "PENDING"
	StatusScanned     ItemStatus = "SCANNED"
	StatusModified    ItemStatus = "MODIFIED"
	StatusUnavailable ItemStatus = "UNAVAILABLE"
	StatusCompleted   ItemStatus = "COMPLETED"
)

// Terminal statuses admit no further transition.
func (s ItemStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusUnavailable
}

func (s ItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusScanned, StatusModified, StatusUnavailable, StatusCompleted:
		return true
	}
	return false
}

type OrderStatus string

// An order in OrderFinishing has frozen items whose outcomes are being sent.
const (
	OrderInPreparation OrderStatus = "IN_PREPARATION"
	OrderFinishing     OrderStatus = "FINISHING"
	OrderReady         OrderStatus = "READY"
)

var (
	ErrItemTerminal    = errors.New("item is already completed or unavailable")
	ErrOrderClosed     = errors.New("order preparation is finished")
	ErrOrderFinishing  = errors.New("order preparation is being finished")
	ErrNotFinishing    = errors.New("order preparation is not being finished")
	ErrNotMeasured     = errors.New("only weighed or measured items take a manual quantity")
	ErrItemNotFound    = errors.New("order item not found")
	ErrNoBarcodeMatch  = errors.New("no pending item matches barcode")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
)

// IncompleteError is returned by BeginFinish when items are still open and the
// grocer did not confirm.
type IncompleteError struct {
	Pending int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d item(s) not prepared", e.Pending)
}

type OrderItem struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"productId"`
	ProductNom        string           `json:"productNom"`
	UnitLabel         string           `json:"unitLabel,omitempty"`
	UnitType          catalog.UnitType `json:"unitType,omitempty"`
	Barcode           string           `json:"barcode,omitempty"`
	QuantityCommanded float64          `json:"quantityCommanded"`
	QuantityActual    float64          `json:"quantityActual"`
	Status            ItemStatus       `json:"status"`
}

// NewOrderItem starts an item in PENDING with the actual quantity equal to
// what was ordered.
func NewOrderItem(id, productID string, commanded float64) OrderItem {
	return OrderItem{
		ID:                id,
		ProductID:         productID,
		QuantityCommanded: commanded,
		QuantityActual:    commanded,
		Status:            StatusPending,
	}
}

// MatchesBarcode compares case-insensitively; items without a barcode never
// match.
func (it OrderItem) MatchesBarcode(code string) bool {
	code = strings.TrimSpace(code)
	return it.Barcode != "" && code != "" && strings.EqualFold(it.Barcode, code)
}

func (it *OrderItem) Scan() error {
	if it.Status.Terminal() {
		return ErrItemTerminal
	}
	it.Status = StatusScanned
	return nil
}

// ModifyQuantity records the amount actually weighed or measured. Counted
// items keep their ordered quantity.
func (it *OrderItem) ModifyQuantity(actual float64) error {
	if it.Status.Terminal() {
		return ErrItemTerminal
	}
	if !it.UnitType.Measured() {
		return ErrNotMeasured
	}
	if actual < 0 || math.IsNaN(actual) {
		return ErrInvalidQuantity
	}
	it.QuantityActual = actual
	it.Status = StatusModified
	return nil
}

func (it *OrderItem) Complete() error {
	if it.Status.Terminal() {
		return ErrItemTerminal
	}
	it.Status = StatusCompleted
	return nil
}

func (it *OrderItem) MarkUnavailable() error {
	if it.Status.Terminal() {
		return ErrItemTerminal
	}
	it.QuantityActual = 0
	it.Status = StatusUnavailable
	return nil
}

type Order struct {
	ID         string      `json:"id"`
	EpicerieID int64       `json:"epicerieId"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

func (o *Order) Closed() bool {
	return o.Status == OrderReady
}

func (o *Order) editable() error {
	switch o.Status {
	case OrderReady:
		return ErrOrderClosed
	case OrderFinishing:
		return ErrOrderFinishing
	}
	return nil
}

func (o *Order) item(itemID string) (*OrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", itemID, ErrItemNotFound)
}

// Apply runs action on one item of an open order.
func (o *Order) Apply(itemID string, action func(*OrderItem) error) (OrderItem, error) {
	if err := o.editable(); err != nil {
		return OrderItem{}, err
	}
	it, err := o.item(itemID)
	if err != nil {
		return OrderItem{}, err
	}
	if err := action(it); err != nil {
		return *it, err
	}
	return *it, nil
}

// ScanBarcode marks the first non-terminal item carrying code as SCANNED.
func (o *Order) ScanBarcode(code string) (OrderItem, error) {
	if err := o.editable(); err != nil {
		return OrderItem{}, err
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.Status.Terminal() || !it.MatchesBarcode(code) {
			continue
		}
		if err := it.Scan(); err != nil {
			return *it, err
		}
		return *it, nil
	}
	return OrderItem{}, fmt.Errorf("%q: %w", code, ErrNoBarcodeMatch)
}

type Progress struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Unavailable int `json:"unavailable"`
	Done        int `json:"done"`
	Pending     int `json:"pending"`
	Percentage  int `json:"percentage"`
}

func (o *Order) Progress() Progress {
	p := Progress{Total: len(o.Items)}
	for _, it := range o.Items {
		switch it.Status {
		case StatusCompleted:
			p.Completed++
		case StatusUnavailable:
			p.Unavailable++
		}
	}
	p.Done = p.Completed + p.Unavailable
	p.Pending = p.Total - p.Done
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Done) / float64(p.Total) * 100))
	}
	// 100 is reserved for a fully prepared order.
	if p.Pending > 0 && p.Percentage == 100 {
		p.Percentage = 99
	}
	return p
}

// BeginFinish freezes the order so that no item changes while its outcomes
// are sent. Open items block it unless force is set, which stands for the
// grocer confirming the incomplete count. An interrupted finish may begin
// again.
func (o *Order) BeginFinish(force bool) error {
	if o.Closed() {
		return ErrOrderClosed
	}
	if p := o.Progress(); p.Pending > 0 && !force {
		return &IncompleteError{Pending: p.Pending}
	}
	o.Status = OrderFinishing
	return nil
}

// CompleteFinish closes a frozen order.
func (o *Order) CompleteFinish(now time.Time) error {
	switch o.Status {
	case OrderReady:
		return ErrOrderClosed
	case OrderFinishing:
	default:
		return ErrNotFinishing
	}
	o.Status = OrderReady
	o.FinishedAt = &now
	return nil
}

// AbortFinish reopens a frozen order.
func (o *Order) AbortFinish() {
	if o.Status == OrderFinishing {
		o.Status = OrderInPreparation
	}
}
