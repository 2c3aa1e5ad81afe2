package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/homehelp/homehelp-api/models"
)

// Headers forwarded from the gateway to upstream services
const (
	HeaderRequestID = "X-Request-ID"

	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderUserRole  = "X-User-Role"

	// Hints come from an unverified token and are only good for logging
	HeaderHintID    = "X-Caller-Hint-Id"
	HeaderHintEmail = "X-Caller-Hint-Email"
	HeaderHintName  = "X-Caller-Hint-Name"
)

var trustHeaderPrefixes = []string{"X-User-", "X-Caller-Hint-"}

// StripTrustHeaders removes every caller header a client may have sent itself
func StripTrustHeaders(h http.Header) {
	for key := range h {
		canonical := http.CanonicalHeaderKey(key)
		for _, prefix := range trustHeaderPrefixes {
			if strings.HasPrefix(canonical, prefix) {
				h.Del(key)
				break
			}
		}
	}
}

// SetCallerHeaders writes caller onto h. Verified callers get the x-user-*
// headers; unverified callers only get hints. A nil caller writes nothing.
func SetCallerHeaders(h http.Header, caller models.Caller) {
	switch c := caller.(type) {
	case models.VerifiedCaller:
		h.Set(HeaderUserID, strconv.FormatUint(uint64(c.ID), 10))
		h.Set(HeaderUserEmail, c.Email)
		h.Set(HeaderUserName, c.Name)
		h.Set(HeaderUserRole, c.Role)
	case models.UnverifiedCaller:
		setIfNotEmpty(h, HeaderHintID, c.Subject)
		setIfNotEmpty(h, HeaderHintEmail, c.Email)
		setIfNotEmpty(h, HeaderHintName, c.Name)
	}
}

// ReadCaller rebuilds the caller from the headers set by the gateway.
// It returns nil for anonymous requests.
func ReadCaller(h http.Header) models.Caller {
	if raw := h.Get(HeaderUserID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err == nil && id > 0 {
			return models.VerifiedCaller{
				ID:    uint(id),
				Email: h.Get(HeaderUserEmail),
				Name:  h.Get(HeaderUserName),
				Role:  h.Get(HeaderUserRole),
			}
		}
	}

	hint := models.UnverifiedCaller{
		Subject: h.Get(HeaderHintID),
		Email:   h.Get(HeaderHintEmail),
		Name:    h.Get(HeaderHintName),
	}
	if hint != (models.UnverifiedCaller{}) {
		return hint
	}
	return nil
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
