// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of ORM tags.
//
// Each model carries ToDomain/FromDomain mappers and an XModelFromDomain constructor.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - trade.go: purchase orders and their lines
//   - inventory.go: the receipt ledger and the per-store stock projection
//   - partner.go: stores and suppliers
//   - catalog.go: products
package models
