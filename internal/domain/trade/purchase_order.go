package trade

import (
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSent              PurchaseOrderStatus = "sent"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "cancelled"
)

// AllPurchaseOrderStatuses returns every status in lifecycle order
func AllPurchaseOrderStatuses() []PurchaseOrderStatus {
	return []PurchaseOrderStatus{
		PurchaseOrderStatusDraft,
		PurchaseOrderStatusSent,
		PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusReceived,
		PurchaseOrderStatusCancelled,
	}
}

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartiallyReceived:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusSent || s == PurchaseOrderStatusPartiallyReceived
}

// IsTerminal returns true for received and cancelled
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}

// ItemLine is the input for one ordered line
type ItemLine struct {
	ProductID   uuid.UUID
	ProductName string
	ProductCode string
	Quantity    int64
	UnitPrice   decimal.Decimal // tax-inclusive, as entered
	TaxClass    tax.Class
}

// PurchaseOrderItem represents a line item in a purchase order.
// Only the tax-inclusive unit price and tax class are stored; exclusive price
// and tax are derived from them.
type PurchaseOrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	ProductCode      string
	Quantity         int64
	ReceivedQuantity int64
	UnitPrice        decimal.Decimal
	TaxClass         tax.Class
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UnitPricePlaces is the precision unit prices are stored with
const UnitPricePlaces int32 = 4

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID uuid.UUID, line ItemLine) (*PurchaseOrderItem, error) {
	if line.ProductID == uuid.Nil {
		return nil, shared.NewValidationError("product is required")
	}
	if line.Quantity <= 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("quantity for product %s must be positive", line.ProductID))
	}
	if !line.UnitPrice.IsPositive() {
		return nil, shared.NewValidationError(fmt.Sprintf("unit price for product %s must be positive", line.ProductID))
	}
	if !line.UnitPrice.Equal(line.UnitPrice.Truncate(UnitPricePlaces)) {
		return nil, shared.NewValidationError(fmt.Sprintf("unit price for product %s has more than %d decimal places", line.ProductID, UnitPricePlaces))
	}
	if !line.TaxClass.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unsupported tax class %q", line.TaxClass))
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		ProductID:        line.ProductID,
		ProductName:      line.ProductName,
		ProductCode:      line.ProductCode,
		Quantity:         line.Quantity,
		ReceivedQuantity: 0,
		UnitPrice:        line.UnitPrice,
		TaxClass:         line.TaxClass,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// UnitPriceExclusive is the unit price with tax removed, unrounded
func (i *PurchaseOrderItem) UnitPriceExclusive() decimal.Decimal {
	exclusive, err := tax.ExclusiveFromInclusive(i.UnitPrice, i.TaxClass)
	if err != nil {
		return decimal.Zero
	}
	return exclusive
}

// UnitTax is the tax contained in one unit
func (i *PurchaseOrderItem) UnitTax() decimal.Decimal {
	return i.UnitPrice.Sub(i.UnitPriceExclusive())
}

// TaxAmount is the tax for the whole ordered quantity
func (i *PurchaseOrderItem) TaxAmount() decimal.Decimal {
	amount, err := tax.TaxAmount(i.UnitPrice, i.Quantity, i.TaxClass)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// Subtotal is quantity times the tax-exclusive unit price
func (i *PurchaseOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPriceExclusive().Mul(decimal.NewFromInt(i.Quantity))
}

// LineTotal is quantity times the tax-inclusive unit price
func (i *PurchaseOrderItem) LineTotal() decimal.Decimal {
	total, err := tax.LineTotalInclusive(i.Quantity, i.UnitPrice)
	if err != nil {
		return decimal.Zero
	}
	return total
}

// RemainingQuantity returns the quantity still to be received
func (i *PurchaseOrderItem) RemainingQuantity() int64 {
	remaining := i.Quantity - i.ReceivedQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

// CanReceive returns true if more goods can be received for this item
func (i *PurchaseOrderItem) CanReceive() bool {
	return i.ReceivedQuantity < i.Quantity
}

// AddReceivedQuantity adds to the received quantity. Amounts past the remaining
// quantity are rejected, never clamped.
func (i *PurchaseOrderItem) AddReceivedQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.NewValidationError("receive quantity must be positive")
	}
	if quantity > i.RemainingQuantity() {
		return shared.NewQuantityExceededError(i.ID.String(), i.ProductName, i.RemainingQuantity(), quantity)
	}

	i.ReceivedQuantity += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// ReceiveLine is one line of a receiving request
type ReceiveLine struct {
	ItemID   uuid.UUID
	Quantity int64
	// UnitCost is the tax-exclusive unit cost. Nil means the item's exclusive unit price.
	UnitCost *decimal.Decimal
}

// ReceivedItemInfo describes a line that was accepted by Receive
type ReceivedItemInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"` // tax-exclusive
}

// TotalCost is quantity times unit cost
func (r ReceivedItemInfo) TotalCost() decimal.Decimal {
	return r.UnitCost.Mul(decimal.NewFromInt(r.Quantity))
}

// PurchaseOrder represents a purchase order aggregate root.
// It manages the lifecycle of a supplier order from draft through receipt.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber          string
	SupplierID           uuid.UUID
	SupplierName         string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	Status               PurchaseOrderStatus
	Items                []PurchaseOrderItem
	Subtotal             decimal.Decimal // tax-exclusive
	TaxAmount            decimal.Decimal
	TotalAmount          decimal.Decimal // Subtotal + TaxAmount
	Notes                string
	CreatedBy            *uuid.UUID
	SentAt               *time.Time
	ReceivedAt           *time.Time
	CancelledAt          *time.Time
	CancelReason         string
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID, supplierName string, orderDate time.Time, lines []ItemLine) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewValidationError("order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewValidationError("order number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier is required")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		OrderDate:         orderDate,
		Status:            PurchaseOrderStatusDraft,
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
	}
	if err := order.replaceItems(lines); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// SetCreatedBy records the creator
func (o *PurchaseOrder) SetCreatedBy(userID uuid.UUID) {
	if userID != uuid.Nil {
		o.CreatedBy = &userID
	}
}

// SetNotes sets the free-text notes. Only allowed in draft status.
func (o *PurchaseOrder) SetNotes(notes string) error {
	if !o.CanModify() {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot edit order in %s status", o.Status))
	}
	o.Notes = notes
	o.Touch()
	return nil
}

// SetExpectedDeliveryDate sets or clears the expected delivery date. Only allowed in draft status.
func (o *PurchaseOrder) SetExpectedDeliveryDate(date *time.Time) error {
	if !o.CanModify() {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot edit order in %s status", o.Status))
	}
	if date != nil && date.Before(truncateDay(o.OrderDate)) {
		return shared.NewValidationError("expected delivery date cannot be before the order date")
	}
	o.ExpectedDeliveryDate = date
	o.Touch()
	return nil
}

// Update replaces items, notes and dates of a draft order and recomputes totals.
// A zero orderDate keeps the current order date.
func (o *PurchaseOrder) Update(lines []ItemLine, notes string, orderDate time.Time, expectedDelivery *time.Time) error {
	if !o.CanModify() {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot update order in %s status", o.Status))
	}
	if orderDate.IsZero() {
		orderDate = o.OrderDate
	}
	if expectedDelivery != nil && expectedDelivery.Before(truncateDay(orderDate)) {
		return shared.NewValidationError("expected delivery date cannot be before the order date")
	}
	if err := o.replaceItems(lines); err != nil {
		return err
	}

	o.OrderDate = orderDate
	o.ExpectedDeliveryDate = expectedDelivery
	o.Notes = notes
	o.Touch()
	return nil
}

// Send transitions the order from draft to sent
func (o *PurchaseOrder) Send() error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot send order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusSent
	o.SentAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewPurchaseOrderSentEvent(o))
	return nil
}

// Cancel cancels the order. Receipts already posted stay in place; only future receiving is blocked.
func (o *PurchaseOrder) Cancel(reason string) error {
	if o.Status == PurchaseOrderStatusCancelled {
		return shared.NewInvalidStateError("order is already cancelled")
	}
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot cancel order in %s status", o.Status))
	}

	previous := o.Status
	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, previous))
	return nil
}

// Receive applies a receiving request to the order items.
// The whole request is validated before any item is touched, so a rejected
// request leaves the order unchanged. Zero-quantity lines are skipped.
func (o *PurchaseOrder) Receive(storeID uuid.UUID, lines []ReceiveLine) ([]ReceivedItemInfo, error) {
	if !o.CanReceiveGoods() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("cannot receive goods for order in %s status", o.Status))
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	items := make([]*PurchaseOrderItem, len(lines))
	for idx, line := range lines {
		if _, dup := seen[line.ItemID]; dup {
			return nil, shared.NewValidationError(fmt.Sprintf("item %s appears more than once", line.ItemID))
		}
		seen[line.ItemID] = struct{}{}

		if line.Quantity < 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("receive quantity for item %s cannot be negative", line.ItemID))
		}
		if line.UnitCost != nil && line.UnitCost.IsNegative() {
			return nil, shared.NewValidationError(fmt.Sprintf("unit cost for item %s cannot be negative", line.ItemID))
		}

		item := o.GetItem(line.ItemID)
		if item == nil {
			return nil, shared.NewNotFoundError(fmt.Sprintf("item %s does not belong to order %s", line.ItemID, o.OrderNumber))
		}
		items[idx] = item
	}

	positive := 0
	for idx, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		if remaining := items[idx].RemainingQuantity(); line.Quantity > remaining {
			return nil, shared.NewQuantityExceededError(items[idx].ID.String(), items[idx].ProductName, remaining, line.Quantity)
		}
		positive++
	}
	if positive == 0 {
		return nil, shared.NewValidationError("nothing to receive")
	}

	received := make([]ReceivedItemInfo, 0, positive)
	for idx, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		item := items[idx]
		if err := item.AddReceivedQuantity(line.Quantity); err != nil {
			return nil, err
		}

		unitCost := item.UnitPriceExclusive()
		if line.UnitCost != nil {
			unitCost = *line.UnitCost
		}
		received = append(received, ReceivedItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    line.Quantity,
			UnitCost:    tax.RoundMoney(unitCost),
		})
	}

	o.RecomputeStatusFromItems()
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, storeID, received))
	return received, nil
}

// RecomputeStatusFromItems derives the receiving status from item totals.
// It is the only place that sets partially_received or received.
func (o *PurchaseOrder) RecomputeStatusFromItems() {
	if !o.Status.CanReceive() {
		return
	}

	ordered := o.TotalOrderedQuantity()
	received := o.TotalReceivedQuantity()
	switch {
	case ordered > 0 && received == ordered:
		now := time.Now()
		o.Status = PurchaseOrderStatusReceived
		o.ReceivedAt = &now
	case received > 0:
		o.Status = PurchaseOrderStatusPartiallyReceived
	}
}

func (o *PurchaseOrder) replaceItems(lines []ItemLine) error {
	if len(lines) == 0 {
		return shared.NewValidationError("order must contain at least one item")
	}

	items := make([]PurchaseOrderItem, 0, len(lines))
	for _, line := range lines {
		item, err := NewPurchaseOrderItem(o.ID, line)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}

	o.Items = items
	o.recalculateTotals()
	return nil
}

// recalculateTotals sums exact line values and rounds once for storage
func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	taxAmount := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].Subtotal())
		taxAmount = taxAmount.Add(o.Items[i].TaxAmount())
	}
	o.Subtotal = tax.RoundMoney(subtotal)
	o.TaxAmount = tax.RoundMoney(taxAmount)
	o.TotalAmount = o.Subtotal.Add(o.TaxAmount)
}

// TotalReceivedQuantity returns the total quantity of all received items
func (o *PurchaseOrder) TotalReceivedQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.ReceivedQuantity
	}
	return total
}

// TotalOrderedQuantity returns the total ordered quantity
func (o *PurchaseOrder) TotalOrderedQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// TotalRemainingQuantity returns the total quantity still to be received
func (o *PurchaseOrder) TotalRemainingQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.RemainingQuantity()
	}
	return total
}

// ItemCount returns the number of items in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == PurchaseOrderStatusDraft
}

func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == PurchaseOrderStatusCancelled
}

// CanModify returns true if items, notes and dates can still be edited
func (o *PurchaseOrder) CanModify() bool {
	return o.IsDraft()
}

// CanReceiveGoods returns true if the order can receive goods
func (o *PurchaseOrder) CanReceiveGoods() bool {
	return o.Status.CanReceive()
}

// GetItem returns an item by its ID
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// GetItemByProduct returns the first item for a product
func (o *PurchaseOrder) GetItemByProduct(productID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ReceiveProgress returns the receiving progress as a percentage (0-100)
func (o *PurchaseOrder) ReceiveProgress() decimal.Decimal {
	ordered := o.TotalOrderedQuantity()
	if ordered == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(o.TotalReceivedQuantity()).
		Div(decimal.NewFromInt(ordered)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
