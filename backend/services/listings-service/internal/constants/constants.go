package constants

import "time"

const (
	// KV key namespace; one visitor's entitlement lives under setmystay:{visitor}:*.
	StorageKeyPrefix     = "setmystay"
	StorageKeyUnlocks    = "unlocks"
	StorageKeyUnlimited  = "isUnlimited"
	StorageKeyUnlockedID = "unlockedIds"

	// Pricing lives in the same store as entitlements.
	StorageKeyPricing = "setmystay:admin:pricing"

	DefaultBudget   = 50000
	DefaultCity     = "Navi Mumbai"
	MaxBudget       = 200000
	FeaturedPerKind = 3

	// Submission defaults for fields the short listing form does not collect.
	DefaultArea            = 1200
	DefaultState           = "Maharashtra"
	DefaultSize            = "2 BHK"
	DefaultRoommateAge     = 30
	DefaultRoommateGender  = "Any"
	DefaultOwnerID         = "newUser"
	RoommatePlaceholderImg = "https://placehold.co/400x400"

	AdminSubject        = "admin"
	AdminStepTokenTTL   = 5 * time.Minute
	AdminAccessTokenTTL = 8 * time.Hour

	AuditLogPageSize = 50
)
