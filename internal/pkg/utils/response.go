package utils

import (
	"net/http"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/responses"
	"slotbook-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	response := responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    data,
	}
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// BuildErrorResponse writes err as a CustomError body. Engine errors are mapped
// through exceptions.FromDomain so callers can pass them untouched.
func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	customErr := exceptions.FromDomain(err)
	for _, location := range customErr.Locations {
		log.Error(customErr.DevMessage,
			zap.String("file", location.File),
			zap.Int("line", location.Line),
			zap.String("function_name", location.FunctionName),
		)
	}

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(customErr.StatusCode)
	response := exceptions.CustomError{
		StatusCode:    customErr.StatusCode,
		Success:       false,
		ClientMessage: customErr.ClientMessage,
	}

	appEnvironment := GetEnvString("APP_ENV", "development")
	if appEnvironment != "production" {
		response.DevMessage = customErr.DevMessage
		response.Locations = customErr.Locations
	}
	json.NewEncoder(w).Encode(response)
}
