package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
)

const callerKey = "caller"

// TokenVerifier checks identity tokens
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.VerifiedCaller, error)
	DecodeUnverified(token string) (models.UnverifiedCaller, error)
}

// AccessRule classifies requests under Prefix. An empty Methods matches every method.
type AccessRule struct {
	Prefix  string
	Methods []string
	Public  bool
}

func (r AccessRule) matches(method, path string) bool {
	if path != r.Prefix && !strings.HasPrefix(path, strings.TrimSuffix(r.Prefix, "/")+"/") {
		return false
	}
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// DefaultAccessRules are the gateway rules. The first matching rule wins and
// anything unmatched is protected.
func DefaultAccessRules() []AccessRule {
	reads := []string{http.MethodGet, http.MethodHead}
	return []AccessRule{
		{Prefix: "/api/auth", Public: true},
		{Prefix: "/api/helpers/me", Public: false},
		{Prefix: "/api/helpers", Methods: reads, Public: true},
		{Prefix: "/api/services", Methods: reads, Public: true},
		{Prefix: "/api/listings", Methods: reads, Public: true},
	}
}

// TrustPropagator decides who is calling and what the upstream may believe about it
type TrustPropagator struct {
	verifier TokenVerifier
	rules    []AccessRule
	extract  jwtmiddleware.TokenExtractor
	logger   *slog.Logger
}

// NewTrustPropagator creates a propagator. The verifier carries the signing
// secret; nothing is read from globals.
func NewTrustPropagator(verifier TokenVerifier, rules []AccessRule, logger *slog.Logger) *TrustPropagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrustPropagator{
		verifier: verifier,
		rules:    rules,
		extract:  jwtmiddleware.AuthHeaderTokenExtractor,
		logger:   logger,
	}
}

// IsPublic reports whether the request may proceed without a verified token
func (p *TrustPropagator) IsPublic(method, path string) bool {
	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return rule.Public
		}
	}
	return false
}

// Propagate returns the caller of r. On protected paths only a verified caller
// is accepted; on public paths a failed or missing verification degrades to
// an unverified hint, or nil when there is nothing to decode.
func (p *TrustPropagator) Propagate(r *http.Request) (models.Caller, error) {
	token, extractErr := p.extract(r)

	if !p.IsPublic(r.Method, r.URL.Path) {
		if extractErr != nil || token == "" {
			return nil, apperror.New(apperror.Unauthenticated, "Missing token")
		}
		caller, err := p.verifier.Verify(r.Context(), token)
		if err != nil {
			return nil, err
		}
		return caller, nil
	}

	if extractErr != nil || token == "" {
		return nil, nil
	}
	if caller, err := p.verifier.Verify(r.Context(), token); err == nil {
		return caller, nil
	}
	hint, err := p.verifier.DecodeUnverified(token)
	if err != nil {
		return nil, nil
	}
	return hint, nil
}

// Middleware strips client-supplied caller headers, rejects unauthenticated
// requests on protected paths and forwards the caller as headers.
func (p *TrustPropagator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		StripTrustHeaders(c.Request.Header)

		caller, err := p.Propagate(c.Request)
		if err != nil {
			p.logger.InfoContext(c.Request.Context(), "rejected unauthenticated request",
				slog.String("request_id", c.GetString(requestIDKey)),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err),
			)
			apperror.Respond(c, err)
			return
		}

		SetCallerHeaders(c.Request.Header, caller)
		if caller != nil {
			c.Set(callerKey, caller)
		}
		c.Next()
	}
}

// RequireVerifiedCaller rejects requests the gateway did not authenticate.
// Upstream services mount it on every mutating route.
func RequireVerifiedCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := ReadCaller(c.Request.Header).(models.VerifiedCaller)
		if !ok {
			apperror.Respond(c, apperror.New(apperror.Unauthenticated, "Authentication required"))
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// GetVerifiedCaller returns the verified caller stored on the context
func GetVerifiedCaller(c *gin.Context) (models.VerifiedCaller, error) {
	value, exists := c.Get(callerKey)
	if !exists {
		return models.VerifiedCaller{}, apperror.New(apperror.Unauthenticated, "Authentication required")
	}
	caller, ok := value.(models.VerifiedCaller)
	if !ok {
		return models.VerifiedCaller{}, apperror.New(apperror.Unauthenticated, "Authentication required")
	}
	return caller, nil
}

// GetCaller returns whatever caller is known, verified or not, or nil
func GetCaller(c *gin.Context) models.Caller {
	if value, exists := c.Get(callerKey); exists {
		if caller, ok := value.(models.Caller); ok {
			return caller
		}
	}
	return ReadCaller(c.Request.Header)
}
