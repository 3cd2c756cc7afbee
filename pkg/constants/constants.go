// Package constants defines system-wide constants for the chat claim service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Claim Token Constants
// ================================================================================

const (
	// ClaimTokenHeader is the request header carrying the encrypted claim token
	ClaimTokenHeader = "X-JWE-Token"

	// KeyWrapAlgorithm is the JWE "alg" used to wrap the content encryption key
	KeyWrapAlgorithm = "RSA-OAEP-256"

	// ContentEncryptionAlgorithm is the JWE "enc" used for the payload
	ContentEncryptionAlgorithm = "A256GCM"

	// CompactTokenSegments is the number of dot-separated segments in a compact JWE
	CompactTokenSegments = 5

	// MinRSAKeyBits is the smallest RSA modulus accepted for key wrapping
	MinRSAKeyBits = 2048
)

// ================================================================================
// Claim Payload Constants
// ================================================================================

const (
	// RequestTypeChat is the request type discriminator for chat claims
	RequestTypeChat = "chat"

	// ClaimPurpose is the fixed purpose tag embedded in every chat claim
	ClaimPurpose = "chat-api-authentication"

	// SubjectIDPrefix prefixes generated subject identifiers
	SubjectIDPrefix = "chat-user-"

	// SessionIDPrefix prefixes generated session identifiers
	SessionIDPrefix = "chat-session-"

	// DefaultTenantID is used when no tenant identifier is configured
	DefaultTenantID = "default_client"

	// DefaultApplicationID is used when no application identifier is configured
	DefaultApplicationID = "ai-navi-chat"

	// DefaultClaimExpiresIn is the default claim lifetime in seconds
	DefaultClaimExpiresIn = 3600

	// MaxClaimExpiresIn caps the claim lifetime at seven days
	MaxClaimExpiresIn = 7 * 24 * 3600
)

// IDStrategy selects how subject and session identifiers are generated
type IDStrategy string

const (
	// IDStrategyTimestamp derives identifiers from the clock in milliseconds
	IDStrategyTimestamp IDStrategy = "timestamp"

	// IDStrategyUUID uses random version 4 UUIDs
	IDStrategyUUID IDStrategy = "uuid"
)

// ================================================================================
// Credential & Key Cache Constants
// ================================================================================

const (
	// PublicKeyCacheTTL is how long a fetched KMS public key is reused (1 hour)
	PublicKeyCacheTTL = 1 * time.Hour

	// AssumeRoleSessionName is the role session name used for STS AssumeRole
	AssumeRoleSessionName = "jwe-service-session"

	// AssumeRoleDurationSeconds is the requested lifetime of an assumed-role session
	AssumeRoleDurationSeconds = 3600

	// KMSKeyUsageEncryptDecrypt is the only KMS key usage accepted for claim wrapping
	KMSKeyUsageEncryptDecrypt = "ENCRYPT_DECRYPT"
)

// ================================================================================
// Chat API Constants
// ================================================================================

const (
	// ChatPath is the chat endpoint path relative to the chat API base URL
	ChatPath = "/students/chat"

	// ChatHistoryPath is the chat history endpoint prefix
	ChatHistoryPath = "/students/chat/history/"

	// DefaultAPIBaseURL is used when neither API URL is configured
	DefaultAPIBaseURL = "/api"
)

// ================================================================================
// Environment Constants
// ================================================================================

// Environment represents the deployment environment
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentStaging     Environment = "staging"
	EnvironmentProduction  Environment = "production"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is a type-safe key for context values
type ContextKey string

const (
	// ContextKeyRequestID stores the request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID stores the trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyTenantID stores the tenant ID in context
	ContextKeyTenantID ContextKey = "tenant_id"
)

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	ContentTypeJSON     = "application/json"
)

// ================================================================================
// Metric Label Values
// ================================================================================

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	CacheHit  = "hit"
	CacheMiss = "miss"
)
