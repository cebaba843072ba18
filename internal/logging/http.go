package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const redacted = "[REDACTED]"

// maxStringField caps long JSON string values such as base64 audio payloads
const maxStringField = 256

// HTTPLogger logs outbound lookup, generation and speech calls at debug level
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{
		logger:      logger,
		maxBodySize: 10000,
	}
}

// SetMaxBodySize sets the maximum body size to log (in bytes)
func (h *HTTPLogger) SetMaxBodySize(size int) {
	h.maxBodySize = size
}

// LogRequest logs an HTTP request with credentials removed from the URL,
// headers and JSON body
func (h *HTTPLogger) LogRequest(req *http.Request, body []byte) {
	fields := Fields{
		"method":  req.Method,
		"url":     RedactURL(req.URL),
		"headers": redactHeaders(req.Header),
	}
	if len(body) > 0 {
		fields["body"] = h.bodyField(body, true)
		fields["body_size"] = len(body)
	}
	h.logger.Debug("HTTP Request", fields)
}

// LogResponse logs an HTTP response
func (h *HTTPLogger) LogResponse(resp *http.Response, body []byte, duration time.Duration) {
	fields := Fields{
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		fields["content_type"] = ct
	}
	if len(body) > 0 {
		fields["body"] = h.bodyField(body, false)
		fields["body_size"] = len(body)
	}
	h.logger.Debug("HTTP Response", fields)
}

// LogError logs a transport failure
func (h *HTTPLogger) LogError(err error, req *http.Request) {
	h.logger.Error("HTTP Error", err, Fields{
		"method": req.Method,
		"url":    RedactURL(req.URL),
	})
}

func (h *HTTPLogger) bodyField(body []byte, redact bool) any {
	if json.Valid(body) {
		var parsed any
		if err := json.Unmarshal(body, &parsed); err == nil {
			if redact {
				parsed = redactSensitiveFields(parsed)
			}
			return shortenStrings(parsed)
		}
	}
	if isHTML(body) {
		return fmt.Sprintf("[html %d bytes]", len(body))
	}
	return truncateBody(body, h.maxBodySize)
}

// RoundTripperWrapper wraps an http.RoundTripper with logging
type RoundTripperWrapper struct {
	wrapped http.RoundTripper
	logger  *HTTPLogger
	logBody bool
}

// NewLoggingRoundTripper creates a new logging round tripper
func NewLoggingRoundTripper(wrapped http.RoundTripper, logger *HTTPLogger, logBody bool) *RoundTripperWrapper {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &RoundTripperWrapper{
		wrapped: wrapped,
		logger:  logger,
		logBody: logBody,
	}
}

// RoundTrip implements http.RoundTripper. Bodies are only buffered when the
// underlying logger would actually emit debug entries.
func (rt *RoundTripperWrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	if !rt.logger.logger.Enabled(LevelDebug) {
		return rt.wrapped.RoundTrip(req)
	}

	start := time.Now()

	var reqBody []byte
	if rt.logBody && req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}
	rt.logger.LogRequest(req, reqBody)

	resp, err := rt.wrapped.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		rt.logger.LogError(err, req)
		return nil, err
	}

	var respBody []byte
	if rt.logBody {
		respBody, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
	}
	rt.logger.LogResponse(resp, respBody, duration)

	return resp, nil
}

// NewHTTPClient returns a client whose transport logs through DefaultLogger
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewLoggingRoundTripper(nil, NewHTTPLogger(DefaultLogger), true),
	}
}

// sensitiveParams are query parameters that carry credentials
var sensitiveParams = []string{"key", "appid", "api_key", "apikey", "access_token", "token"}

// RedactURL renders u with credential query parameters replaced
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	changed := false
	for name := range q {
		if isSensitiveParam(name) {
			q.Set(name, redacted)
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	clone := *u
	clone.RawQuery = q.Encode()
	return clone.String()
}

func isSensitiveParam(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveParams {
		if lower == s {
			return true
		}
	}
	return false
}

func redactHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		switch {
		case isSensitiveHeader(k):
			headers[k] = redacted
		case len(v) > 0:
			headers[k] = v[0]
		}
	}
	return headers
}

// isSensitiveHeader checks if a header should be redacted
func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "api-key", "x-api-key", "x-goog-api-key",
		"x-subscription-token", "x-naver-client-id", "x-naver-client-secret",
		"cookie", "set-cookie":
		return true
	}
	return false
}

// truncateBody truncates body if too large
func truncateBody(body []byte, maxSize int) string {
	if len(body) <= maxSize {
		return string(body)
	}
	return string(body[:maxSize]) + "...[truncated]"
}

func isHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 64)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// redactSensitiveFields redacts credential-looking keys in parsed JSON
func redactSensitiveFields(data any) any {
	sensitiveKeys := []string{
		"api_key", "apikey", "api-key",
		"password", "secret", "token",
		"authorization", "auth", "private_key",
	}

	switch v := data.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			keyLower := strings.ToLower(k)
			isSensitive := false
			for _, sensitive := range sensitiveKeys {
				if strings.Contains(keyLower, sensitive) {
					isSensitive = true
					break
				}
			}
			if isSensitive {
				result[k] = redacted
			} else {
				result[k] = redactSensitiveFields(val)
			}
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = redactSensitiveFields(item)
		}
		return result
	default:
		return data
	}
}

// shortenStrings caps string leaves so audio and long prompts stay readable
func shortenStrings(data any) any {
	switch v := data.(type) {
	case map[string]any:
		for k, val := range v {
			v[k] = shortenStrings(val)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = shortenStrings(item)
		}
		return v
	case string:
		if runes := []rune(v); len(runes) > maxStringField {
			return string(runes[:maxStringField]) + "...[truncated]"
		}
		return v
	default:
		return data
	}
}
