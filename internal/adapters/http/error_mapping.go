package httpadapter

import (
	"net/http"

	"github.com/clinicsync/medparse/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrUnsupportedMedia):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNoText):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps response bodies free of internal detail for server-side
// failures while still telling clients what they did wrong.
func errorMessage(err error, status int) string {
	switch {
	case status == http.StatusServiceUnavailable:
		return "service temporarily unavailable, please retry later"
	case status >= 500:
		return "internal server error"
	default:
		return err.Error()
	}
}
