package exceptions

import (
	"errors"
	"slotbook-service/internal/pkg/constvars"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrUnknownSlot          = errors.New("unknown slot")
	ErrUnknownPool          = errors.New("unknown pool")
	ErrUnknownHold          = errors.New("unknown hold")
	ErrPoolExists           = errors.New("pool already exists")
	ErrSlotUnavailable      = errors.New("slot unavailable")
	ErrInsufficientRun      = errors.New("insufficient run")
	ErrReservationRejected  = errors.New("reservation rejected")
	ErrConfirmationTimeout  = errors.New("confirmation timeout")
	ErrReservationCancelled = errors.New("reservation cancelled")
	ErrSessionClosed        = errors.New("session closed")
	ErrSubscriptionClosed   = errors.New("subscription closed")
)

// FromDomain maps an engine error onto the HTTP facing CustomError.
// Errors that already are a CustomError are returned as is.
func FromDomain(err error) *CustomError {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	switch {
	case errors.Is(err, ErrInvalidConfiguration):
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientInvalidConfiguration, constvars.ErrDevInvalidConfiguration)
	case errors.Is(err, ErrUnknownSlot):
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientSlotNotFound, constvars.ErrDevUnknownSlot)
	case errors.Is(err, ErrUnknownPool):
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientPoolNotFound, constvars.ErrDevUnknownPool)
	case errors.Is(err, ErrUnknownHold):
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientHoldNotFound, constvars.ErrDevUnknownHold)
	case errors.Is(err, ErrPoolExists):
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientPoolAlreadyOpened, constvars.ErrDevPoolExists)
	case errors.Is(err, ErrSlotUnavailable):
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientSlotUnavailable, constvars.ErrDevSlotUnavailable)
	case errors.Is(err, ErrInsufficientRun):
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientInsufficientRun, constvars.ErrDevInsufficientRun)
	case errors.Is(err, ErrReservationRejected):
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientReservationRejected, constvars.ErrDevReservationRejected)
	case errors.Is(err, ErrConfirmationTimeout):
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientReservationTimeout, constvars.ErrDevConfirmationTimeout)
	case errors.Is(err, ErrReservationCancelled), errors.Is(err, ErrSessionClosed):
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientReservationCancelled, constvars.ErrDevReservationCancelled)
	}
	return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrClientSomethingWrongWithApplication)
}
