package ollama

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/clinicsync/medparse/internal/core/domain"
	"github.com/clinicsync/medparse/internal/infrastructure/resilience"
)

// classifyOllamaError decides which failures count against the circuit
// breaker. Caller cancellations and client-side HTTP errors are not the
// daemon's fault and must not trip it.
func classifyOllamaError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.ErrorClassification{RecordFailure: isServerFault(statusErr.StatusCode)}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{RecordFailure: true}
	}

	return resilience.ErrorClassification{RecordFailure: true}
}

// wrapTemporaryIfNeeded tags daemon-side failures as temporary so callers can
// tell an overloaded model apart from a malformed request.
func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if resilience.IsCircuitOpen(err) || classifyOllamaError(err).RecordFailure {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isServerFault(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
