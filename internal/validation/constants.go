package validation

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// Widget copy lengths
	MaxTitleLength       = 80
	MaxDescriptionLength = 500
	MaxFooterLength      = 200

	// Pricing limits
	MaxPercentage = 100
	MaxTiers      = 20
)
