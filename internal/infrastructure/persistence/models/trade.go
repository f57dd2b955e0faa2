package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/tax"
	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	AggregateModel
	OrderNumber          string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SupplierName         string                    `gorm:"type:varchar(200);not null"`
	OrderDate            time.Time                 `gorm:"not null;index"`
	ExpectedDeliveryDate *time.Time
	Items                []PurchaseOrderItemModel  `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal             decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount            decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount          decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Status               trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes                string                    `gorm:"type:text"`
	CreatedBy            *uuid.UUID                `gorm:"type:uuid"`
	SentAt               *time.Time
	ReceivedAt           *time.Time
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		OrderNumber:          m.OrderNumber,
		SupplierID:           m.SupplierID,
		SupplierName:         m.SupplierName,
		OrderDate:            m.OrderDate,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		Status:               m.Status,
		Subtotal:             m.Subtotal,
		TaxAmount:            m.TaxAmount,
		TotalAmount:          m.TotalAmount,
		Notes:                m.Notes,
		CreatedBy:            m.CreatedBy,
		SentAt:               m.SentAt,
		ReceivedAt:           m.ReceivedAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
		Items:                make([]trade.PurchaseOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		order.Items[i] = *item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.OrderDate = o.OrderDate
	m.ExpectedDeliveryDate = o.ExpectedDeliveryDate
	m.Status = o.Status
	m.Subtotal = o.Subtotal
	m.TaxAmount = o.TaxAmount
	m.TotalAmount = o.TotalAmount
	m.Notes = o.Notes
	m.CreatedBy = o.CreatedBy
	m.SentAt = o.SentAt
	m.ReceivedAt = o.ReceivedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *PurchaseOrderItemModelFromDomain(&o.Items[i], i)
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder entity.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderItemModel is the persistence model for the PurchaseOrderItem entity.
// LineNo keeps the entered line order; the domain has no notion of it.
type PurchaseOrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo           int             `gorm:"not null;default:0"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	ProductCode      string          `gorm:"type:varchar(50);not null"`
	Quantity         int64           `gorm:"not null"`
	ReceivedQuantity int64           `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxClass         tax.Class       `gorm:"type:varchar(20);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem entity.
func (m *PurchaseOrderItemModel) ToDomain() *trade.PurchaseOrderItem {
	return &trade.PurchaseOrderItem{
		ID:               m.ID,
		OrderID:          m.OrderID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		ProductCode:      m.ProductCode,
		Quantity:         m.Quantity,
		ReceivedQuantity: m.ReceivedQuantity,
		UnitPrice:        m.UnitPrice,
		TaxClass:         m.TaxClass,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrderItem entity.
func (m *PurchaseOrderItemModel) FromDomain(i *trade.PurchaseOrderItem, lineNo int) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.LineNo = lineNo
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.ProductCode = i.ProductCode
	m.Quantity = i.Quantity
	m.ReceivedQuantity = i.ReceivedQuantity
	m.UnitPrice = i.UnitPrice
	m.TaxClass = i.TaxClass
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// PurchaseOrderItemModelFromDomain creates a new persistence model from a domain PurchaseOrderItem entity.
func PurchaseOrderItemModelFromDomain(i *trade.PurchaseOrderItem, lineNo int) *PurchaseOrderItemModel {
	m := &PurchaseOrderItemModel{}
	m.FromDomain(i, lineNo)
	return m
}
