package adaptor

import (
	"net/http"
	"strings"

	"event-booking/pkg/apperr"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps service errors to HTTP responses. Validation
// failures surface as 400 by convention of the "validation failed" prefix
// the services use.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		utils.ResponseNotFound(w, err.Error())
	case apperr.KindForbidden:
		utils.ResponseForbidden(w, err.Error())
	case apperr.KindInvalidState:
		utils.ResponseBadRequest(w, err.Error(), nil)
	case apperr.KindConflict:
		utils.ResponseConflict(w, err.Error())
	case apperr.KindExternal:
		log.Error("Upstream service failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseBadGateway(w, "payment provider unavailable")
	default:
		if strings.HasPrefix(err.Error(), "validation failed") || strings.Contains(err.Error(), "invalid") {
			utils.ResponseBadRequest(w, err.Error(), nil)
			return
		}
		log.Error("Unexpected service error", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
