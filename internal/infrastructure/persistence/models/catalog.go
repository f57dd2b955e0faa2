package models

import (
	"github.com/erp/procurement/internal/domain/catalog"
	"github.com/erp/procurement/internal/domain/tax"
)

// ProductModel is the persistence model for the Product read model.
type ProductModel struct {
	BaseModel
	Code            string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string    `gorm:"type:varchar(200);not null"`
	Category        string    `gorm:"type:varchar(100)"`
	DefaultTaxClass tax.Class `gorm:"type:varchar(20);not null;default:'16%'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:      m.BaseModel.ToDomain(),
		Code:            m.Code,
		Name:            m.Name,
		Category:        m.Category,
		DefaultTaxClass: m.DefaultTaxClass,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Code = p.Code
	m.Name = p.Name
	m.Category = p.Category
	m.DefaultTaxClass = p.DefaultTaxClass
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
