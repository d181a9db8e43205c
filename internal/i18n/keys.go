// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"

	// Songs
	KeySongRegistered = "song.registered"
	KeySongExists     = "song.exists"
	KeySongNotFound   = "song.not_found"
	KeySongUploaded   = "song.uploaded"

	// Streams
	KeyStreamRecorded  = "stream.recorded"
	KeyStreamDuplicate = "stream.duplicate"

	// Purchases
	KeyPurchaseRecorded  = "purchase.recorded"
	KeyPurchaseDuplicate = "purchase.duplicate"
	KeyPurchaseNotFound  = "purchase.not_found"

	// Webhooks
	KeyWebhookAccepted     = "webhook.accepted"
	KeyWebhookUnauthorized = "webhook.unauthorized"

	// Files
	KeyFileTooLarge        = "file.too_large"
	KeyFileTypeUnsupported = "file.type_unsupported"
	KeyFileRequired        = "file.required"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
