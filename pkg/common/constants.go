package common

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"

	HeaderUserID       = "X-User-ID"
	HeaderCredential   = "X-Api-Key"
	HeaderTier         = "X-Tier"
	HeaderUserType     = "X-User-Type"
	HeaderSubscription = "X-Subscription"

	RateLimitExceededCode = "RATE_LIMIT_EXCEEDED"

	AttributeTier         = "tier"
	AttributeUserType     = "user_type"
	AttributeSubscription = "subscription"
)

type contextKey string

const (
	RequestIDContextKey  contextKey = "request_id"
	DescriptorContextKey contextKey = "request_descriptor"
)
