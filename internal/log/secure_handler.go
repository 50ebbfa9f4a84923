package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"api_key":             true,
	"apikey":              true,
	"password":            true,
	"proxy_password":      true,
	"secret":              true,
	"token":               true,
	"access_token":        true,
	"session":             true,
	"session_id":          true,
}

// sensitiveKeywords mark a key as sensitive when contained in it.
// The bare "key" is excluded: "primary_key" and "keyword" are not secrets.
var sensitiveKeywords = []string{"password", "passwd", "secret", "token", "auth", "credential"}

// sensitiveParams are URL query parameters whose values are masked.
var sensitiveParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"sig":          true,
	"signature":    true,
	"password":     true,
	"secret":       true,

	"x-amz-signature":  true,
	"x-amz-credential": true,
}

// sensitivePatterns match values that are credentials regardless of key.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// SecureHandler wraps an slog.Handler and masks sensitive attribute values
// before passing records to the underlying handler.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the underlying handler handles records at level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the masked attributes added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] || containsSensitiveKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if isSensitiveValue(s) {
		return slog.String(a.Key, MaskValue)
	}
	if redacted, ok := RedactURL(s); ok {
		return slog.String(a.Key, redacted)
	}
	return a
}

func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// RedactURL masks the userinfo password and credential query parameters
// of an absolute URL. It reports whether s was changed.
func RedactURL(s string) (string, bool) {
	if !strings.Contains(s, "://") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s, false
	}

	changed := false
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), MaskValue)
		changed = true
	}

	if u.RawQuery != "" {
		q := u.Query()
		for name, values := range q {
			if !sensitiveParams[strings.ToLower(name)] {
				continue
			}
			for i := range values {
				values[i] = MaskValue
			}
			changed = true
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	if !changed {
		return s, false
	}
	// keep the mask readable instead of percent-encoded
	return strings.ReplaceAll(u.String(), url.QueryEscape(MaskValue), MaskValue), true
}

// NewSecureLogger creates a text logger writing to w that masks sensitive
// values. With verbose the level is Debug, otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output, for log
// aggregation.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
