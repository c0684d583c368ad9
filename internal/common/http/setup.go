package http

import (
	"net/http"

	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
	"github.com/AlibekovAA/recipebook/backend/internal/common/logger"
)

// BuildBaseHandler wraps handler with the middleware every service shares.
// Request metrics are registered on the router itself so that route
// patterns are known when they are recorded.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	csp := ContentSecurityPolicyMiddleware("")

	return SecurityHeadersMiddleware(csp(TraceIDMiddleware(recovery(maxRequestSize(handler)))))
}
