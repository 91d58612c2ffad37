package constvars

const (
	MIMEApplicationJSON            = "application/json"
	MIMEApplicationJSONCharsetUTF8 = "application/json; charset=utf-8"
	MIMETextEventStream            = "text/event-stream"
)

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusAccepted            = 202
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusUnprocessableEntity = 422
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
	StatusGatewayTimeout      = 504
)

const (
	HeaderContentType  = "Content-Type"
	HeaderXRequestID   = "X-Request-ID"
	HeaderCacheControl = "Cache-Control"
	HeaderAPIKey       = "X-API-Key"

	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentEncoding = "Content-Encoding"
	HeaderContentLength   = "Content-Length"
	HeaderVary            = "Vary"
)

const EncodingBrotli = "br"

// Success messages
const (
	ResponseSuccess             = "success"
	ResponsePoolOpened          = "pool opened"
	ResponsePoolClosed          = "pool closed"
	ResponseHoldFetched         = "reservation fetched"
	ResponseHoldsFetched        = "reservations fetched"
	ResponseHealthy             = "ok"
	ResponseSlotsFetched        = "slots fetched"
	ResponseReservationHeld     = "reservation confirmed"
	ResponseReservationReleased = "reservation released"
	ResponseBlockHeld           = "block reservation confirmed"
	ResponseSuggestionsFetched  = "suggestions fetched"
	ResponseInboundAccepted     = "inbound message accepted"
)
