package errors

var (
	ErrShopNotFound = &DomainError{
		Code:    "SHOP_NOT_FOUND",
		Message: "shop not found",
	}
	ErrInvalidSettings = &DomainError{
		Code:    "INVALID_SETTINGS",
		Message: "invalid settings",
	}
	ErrWidgetDisabled = &DomainError{
		Code:    "WIDGET_DISABLED",
		Message: "shipping protection is disabled for this shop",
	}
	ErrCurrencyUnsupported = &DomainError{
		Code:    "CURRENCY_UNSUPPORTED",
		Message: "store currency is not supported",
	}
	ErrNoEligibleVariant = &DomainError{
		Code:    "NO_ELIGIBLE_VARIANT",
		Message: "no protection variant covers this fee",
	}
)
