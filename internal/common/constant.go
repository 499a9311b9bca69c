package common

const (
	// SyncTag identifies the "story sync" background sync registration.
	SyncTag = "sync-stories"

	// MessageSkipWaiting asks a waiting generation to take control immediately.
	MessageSkipWaiting = "SKIP_WAITING"

	// AuthorizationHeader carries the bearer token on outbound API requests.
	AuthorizationHeader = "Authorization"

	// Metadata keys of the local key-value auth store.
	MetaAuthToken      = "auth_token"
	MetaUserName       = "user_name"
	MetaActiveVersion  = "sw_active_version"
	MetaPushPermission = "push_permission"
	MetaPushEndpoint   = "push_subscription"
	MetaSealSalt       = "seal_salt"
)
