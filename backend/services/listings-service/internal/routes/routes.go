package routes

const (
	// Health
	Health = "/health"

	// Catalogue
	Listings               = "/api/v1/listings/{category}"
	ListingsDefaultFilters = "/api/v1/listings/{category}/filters/default"
	ListingsSmartSort      = "/api/v1/listings/{category}/smart-sort"
	ListingsSmartSortState = "/api/v1/listings/{category}/smart-sort/status"
	ItemDetails            = "/api/v1/items/{id}"
	ItemUnlock             = "/api/v1/items/{id}/unlock"
	ItemBedInquiry         = "/api/v1/items/{id}/beds/{bedId}/inquiry"
	Featured               = "/api/v1/featured"
	Pricing                = "/api/v1/pricing"
	Submissions            = "/api/v1/submissions"

	// Entitlements
	Entitlements      = "/api/v1/entitlements"
	EntitlementsGrant = "/api/v1/entitlements/grant"

	// Admin gate
	AdminLoginPassword = "/api/v1/admin/login/password"
	AdminLoginPIN      = "/api/v1/admin/login/pin"
	AdminLoginAnswer   = "/api/v1/admin/login/answer"

	// Admin (secured)
	AdminModerationPending = "/api/v1/admin/moderation/pending"
	AdminModerationApprove = "/api/v1/admin/moderation/{id}/approve"
	AdminModerationReject  = "/api/v1/admin/moderation/{id}/reject"
	AdminModerationItem    = "/api/v1/admin/moderation/{id}"
	AdminPricing           = "/api/v1/admin/pricing"
	AdminAnalytics         = "/api/v1/admin/analytics"
	AdminAuditLog          = "/api/v1/admin/audit-log"
)
