// Package models contains GORM persistence models for the submission archive.
// Domain types carry no ORM tags; mappers here convert between the two.
package models
