package utils

const (
	OrganizationName                      = "SetMyStay"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// VisitorHeader carries the opaque browser id that scopes entitlements,
	// the server-side stand-in for one browser's local storage.
	VisitorHeader = "X-Visitor-ID"

	// RedactedPlaceholder replaces sensitive listing fields until unlocked.
	RedactedPlaceholder = "Unlock to view"

	// PlaceholderImageURL is used for submissions that carry no images.
	PlaceholderImageURL = "https://placehold.co/600x400"
)
