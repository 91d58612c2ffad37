package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingUserAgentKey          = "user_agent"
	LoggingQueryKey              = "query"
	LoggingStatusCodeKey         = "status_code"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingErrorKey              = "error"
	LoggingPoolKey               = "pool_key"
	LoggingSlotIDKey             = "slot_id"
	LoggingSlotIDsKey            = "slot_ids"
	LoggingHoldIDKey             = "hold_id"
	LoggingHoldStatusKey         = "hold_status"
	LoggingHoldReasonKey         = "hold_reason"
	LoggingSubscriptionIDKey     = "subscription_id"
	LoggingMessageTypeKey        = "message_type"
	LoggingPoolVersionKey        = "pool_version"
	LoggingUnitsKey              = "units"
	LoggingRedisKey              = "redis_key"
	LoggingQueueKey              = "queue"
	LoggingChannelKey            = "channel"
	LoggingLockValueKey          = "lock_value"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
)
