package errors

var (
	ErrNoBillingCustomer = &DomainError{
		Code:    "NO_BILLING_CUSTOMER",
		Message: "shop has no billing customer",
	}
	ErrInvalidOrder = &DomainError{
		Code:    "INVALID_ORDER",
		Message: "invalid protected order",
	}
	ErrBillingFailed = &DomainError{
		Code:    "BILLING_FAILED",
		Message: "failed to create usage charge",
	}
)
