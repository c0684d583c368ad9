package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
	"github.com/AlibekovAA/recipebook/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
	"github.com/AlibekovAA/recipebook/backend/internal/observability/metrics"
)

// ErrorHandler turns service errors into JSON envelopes. Domain errors keep
// their code and message; anything else becomes a generic 500.
type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok && domainErr.Category() != commonerrors.CategoryInternal {
		h.handleDomainError(w, r, domainErr)
		return
	}

	ctx := r.Context()
	h.log.WithFields(ctx, logger.Fields{
		"action": "unhandled_error",
		"path":   r.URL.Path,
	}).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(commonerrors.ErrInternalError.HTTPStatus()),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	internal := commonerrors.ErrInternalError
	WriteErrorEnvelope(w, internal.HTTPStatus(), internal.Code(), internal.Message(), nil, TraceIDFromContext(ctx))
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError) {
	ctx := r.Context()
	status := err.HTTPStatus()

	if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, logger.Fields{
			"error_code": err.Code(),
			"category":   string(err.Category()),
			"status":     status,
			"action":     "domain_error",
		}).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteErrorEnvelope(w, status, err.Code(), err.Message(), nil, TraceIDFromContext(ctx))
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
