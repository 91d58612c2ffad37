package constvars

// Validation messages for clients, map it with respective tag field
var CustomValidationErrorMessages = map[string]string{
	"required":         "is required",
	"required_without": "is required when %s is empty",
	"min":              "must be at least %s",
	"max":              "must be at most %s",
	"gt":               "must be greater than %s",
	"gte":              "must be greater than or equal to %s",
	"oneof":            "must be one of [%s]",
	"datetime":         "must match the %s layout",
	"clock":            "must be a wall clock time formatted as HH:MM",
}

var TagsWithParams = map[string]bool{
	"min":              true,
	"max":              true,
	"gt":               true,
	"gte":              true,
	"oneof":            true,
	"datetime":         true,
	"required_without": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientInvalidAPIKey                 = "invalid api key"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientInvalidConfiguration          = "the schedule configuration is invalid"
	ErrClientSlotNotFound                  = "the requested slot does not exist"
	ErrClientPoolNotFound                  = "there is no schedule opened for this service and date"
	ErrClientHoldNotFound                  = "the requested reservation does not exist"
	ErrClientPoolAlreadyOpened             = "the schedule for this service and date is already opened"
	ErrClientSlotUnavailable               = "the requested slot is no longer available"
	ErrClientInsufficientRun               = "there are not enough consecutive slots for this service"
	ErrClientReservationRejected           = "the reservation was rejected, the slot has been reverted"
	ErrClientReservationTimeout            = "the reservation was not confirmed in time, the slot has been reverted"
	ErrClientReservationCancelled          = "the reservation was cancelled before it was confirmed"
)

// Error messages for developers
const (
	ErrDevValidationFailed       = "validation failed"
	ErrDevCannotParseJSON        = "cannot parse JSON"
	ErrDevCannotMarshalJSON      = "cannot convert struct or other data types to JSON"
	ErrDevCannotReadBody         = "cannot read request body"
	ErrDevStreamingUnsupported   = "response writer does not support flushing"
	ErrDevInvalidAPIKey          = "api key header is missing or does not match"
	ErrDevPanicRecovered         = "panic recovered while serving request"
	ErrDevServerDeadlineExceeded = "server deadline exceeded"
	ErrDevURLParamValidation     = "url param '%s' validation failed"
	ErrDevInvalidConfiguration   = "invalid slot configuration"
	ErrDevUnknownSlot            = "slot id is not part of the pool"
	ErrDevUnknownPool            = "pool key is not opened"
	ErrDevUnknownHold            = "hold id is neither live nor recorded in the ledger"
	ErrDevPoolExists             = "pool key is already opened"
	ErrDevSlotUnavailable        = "slot is already unavailable or owned by another hold"
	ErrDevInsufficientRun        = "contiguous run is shorter than the units needed"
	ErrDevReservationRejected    = "reservation rejected by confirmation"
	ErrDevConfirmationTimeout    = "reservation confirmation timed out"
	ErrDevReservationCancelled   = "reservation cancelled while pending"
	ErrDevUnknownMessageType     = "unknown inbound message type '%s'"

	ErrDevRedisSetData        = "failed to SET data into redis"
	ErrDevRedisGetNoData      = "failed to GET data from redis, there is no data associated with key %s"
	ErrDevRedisDeleteData     = "failed to DELETE data from redis"
	ErrDevRedisExpire         = "failed to EXPIRE key in redis"
	ErrDevRedisPublish        = "failed to PUBLISH message into redis channel %s"
	ErrDevRedisUnlock         = "failed to release redis lock"
	ErrDevRedisSubscribe      = "failed to SUBSCRIBE to redis channel %s"
	ErrDevRabbitMQPublish     = "failed to publish message into rabbitmq queue %s"
	ErrDevRabbitMQConsume     = "failed to consume messages from rabbitmq queue %s"
	ErrDevPostgresQuery       = "failed to query postgres ledger"
	ErrDevPostgresExec        = "failed to write into postgres ledger"
	ErrDevTransportNotCapable = "transport '%s' is not supported"
)
