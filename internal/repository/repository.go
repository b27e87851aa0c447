// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
//
// Lookups that find nothing return sql.ErrNoRows unwrapped so services can
// map it with errors.Is. Conditional writes that lose a race return one of
// the sentinels below.
package repository

import "errors"

var (
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStockConflict is returned when a conditional stock decrement matched no row.
	ErrStockConflict = errors.New("stock conflict")
	// ErrCouponUnavailable is returned when a coupon could not be redeemed inside a transaction.
	ErrCouponUnavailable = errors.New("coupon unavailable")
	// ErrStateConflict is returned when a row was not in the expected state for an update.
	ErrStateConflict = errors.New("state conflict")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
