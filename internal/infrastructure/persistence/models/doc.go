// Package models contains GORM persistence models for the ledger tables.
// Domain entities carry no ORM tags; each model converts to and from its
// entity with ToDomain / FromDomain.
package models
