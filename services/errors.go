package services

import "errors"

// Business errors surfaced by the engines. Controllers map them to HTTP
// statuses; none of them ever leaves a transaction half-applied.
var (
	ErrTokenInvalid         = errors.New("table code is invalid or expired")
	ErrTokenStale           = errors.New("this table code is no longer valid, please ask staff for a new one")
	ErrTableInactive        = errors.New("table is not accepting orders")
	ErrTableOccupiedByOther = errors.New("table is occupied by another guest")
	ErrEmptyCart            = errors.New("no items to order")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrItemUnavailable      = errors.New("menu item is not available")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrOrderSettled         = errors.New("order is already settled")
	ErrNoUnpaidOrders       = errors.New("no unpaid orders for this table")
	ErrNothingToCharge      = errors.New("nothing to charge for this table")
	ErrPaymentNotSucceeded  = errors.New("payment has not succeeded")
)
