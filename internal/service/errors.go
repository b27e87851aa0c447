package service

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidQuantity         = errors.New("quantity must be greater than zero")
	ErrInsufficientStock       = errors.New("not enough stock available")
	ErrCartEmpty               = errors.New("cart is empty")
	ErrShippingAddressRequired = errors.New("shipping address is required")
	ErrInvalidShippingAddress  = errors.New("invalid shipping address")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrCouponInvalid           = errors.New("coupon is invalid or does not apply to this order")
	ErrDuplicateRequest        = errors.New("request already processed")
	ErrOrderNotCancelable      = errors.New("only pending orders can be canceled")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrUserExists              = errors.New("username or email already registered")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrPasswordMismatch        = errors.New("passwords do not match")
	ErrInvalidPriceRange       = errors.New("invalid price range")
	ErrSubscriptionFailed      = errors.New("could not update newsletter subscription")
	ErrInvalidChoice           = errors.New("unsupported choice")
	ErrAddressIncomplete       = errors.New("please fill in all required address fields")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrEmailRequired           = errors.New("email is required")
)
