package adaptor

import (
	"encoding/json"
	"net/http"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/pkg/utils"

	"go.uber.org/zap"
)

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindState:        http.StatusConflict,
	domain.KindConflict:     http.StatusConflict,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindUnavailable:  http.StatusServiceUnavailable,
}

// handleServiceError maps a service error onto the response envelope. Errors
// without a domain kind are logged and hidden behind a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	de, ok := domain.AsError(err)
	if !ok {
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	status, ok := kindStatus[de.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	log.Warn(operation+" refused",
		zap.String("code", string(de.Code)),
		zap.String("kind", string(de.Kind)),
		zap.String("field", de.Field),
		zap.String("operation", operation))

	var details any
	switch {
	case len(de.Fields) > 0:
		details = de.Fields
	case de.Field != "":
		details = map[string]string{de.Field: de.Message}
	}
	utils.ResponseError(w, status, string(de.Code), de.Message, details)
}

// principal reads the caller set by the authentication middleware.
func principal(w http.ResponseWriter, r *http.Request) (access.Principal, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return access.Principal{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return access.Principal{UserID: userID, Role: entity.Role(role)}, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func paginationFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
