package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "SLOTBOOK_SVC_"
)

const (
	ResponseUnknown = "unknown"
)

const (
	ResourcePools        = "pools"
	ResourceSlots        = "slots"
	ResourceReservations = "reservations"
	ResourceBlocks       = "blocks"
	ResourceSuggestions  = "suggestions"
	ResourceInbound      = "inbound"
	ResourceHolds        = "holds"
	ResourceEvents       = "events"
)

const (
	URLParamCategory  = "category"
	URLParamServiceID = "serviceId"
	URLParamDate      = "date"
	URLParamSlotID    = "slotId"
	URLParamHoldID    = "holdId"
	QueryParamLimit   = "limit"
	QueryParamPrefer  = "prefer"
)

const (
	TransportMemory   = "memory"
	TransportRabbitMQ = "rabbitmq"
	TransportRedis    = "redis"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)
