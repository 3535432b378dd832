// Package redirect classifies the URL a customer lands on after the hosted
// payment page. The result only drives the browser redirect; booking state is
// never changed from here.
package redirect

import (
	"fmt"
	"net/url"
	"strings"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeUnknown Outcome = "unknown"
)

type Config struct {
	// FailurePatterns and SuccessPatterns match a path fragment ("/failed"),
	// a query pair ("status=failed") or a host ("errors.pay.example.com").
	FailurePatterns  []string
	SuccessPatterns  []string
	DefaultLocale    string
	SupportedLocales []string
}

type Classifier struct {
	failure          []string
	success          []string
	defaultLocale    string
	supportedLocales map[string]struct{}
}

func NewClassifier(cfg Config) *Classifier {
	c := &Classifier{
		failure:          normalizePatterns(cfg.FailurePatterns),
		success:          normalizePatterns(cfg.SuccessPatterns),
		defaultLocale:    strings.ToLower(strings.TrimSpace(cfg.DefaultLocale)),
		supportedLocales: make(map[string]struct{}, len(cfg.SupportedLocales)),
	}
	for _, locale := range cfg.SupportedLocales {
		c.supportedLocales[strings.ToLower(strings.TrimSpace(locale))] = struct{}{}
	}
	if c.defaultLocale == "" {
		c.defaultLocale = "en"
	}
	return c
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Classify checks failure patterns first so a URL carrying both markers is a failure.
func (c *Classifier) Classify(rawURL string) Outcome {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return OutcomeUnknown
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return OutcomeUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	path := strings.ToLower(parsed.Path)
	query := parsed.Query()

	if c.matchesAny(c.failure, host, path, query) {
		return OutcomeFailure
	}
	if c.matchesAny(c.success, host, path, query) {
		return OutcomeSuccess
	}
	return OutcomeUnknown
}

func (c *Classifier) matchesAny(patterns []string, host, path string, query url.Values) bool {
	for _, pattern := range patterns {
		if matches(pattern, host, path, query) {
			return true
		}
	}
	return false
}

func matches(pattern, host, path string, query url.Values) bool {
	switch {
	case strings.HasPrefix(pattern, "/"):
		return path == pattern || strings.HasPrefix(path, pattern+"/") || strings.HasSuffix(path, pattern) ||
			strings.Contains(path, pattern+"/")
	case strings.Contains(pattern, "="):
		key, value, _ := strings.Cut(pattern, "=")
		for k, values := range query {
			if strings.ToLower(k) != key {
				continue
			}
			for _, v := range values {
				if strings.ToLower(v) == value {
					return true
				}
			}
		}
		return false
	default:
		return host != "" && (host == pattern || strings.HasSuffix(host, "."+pattern))
	}
}

// Locale returns locale when supported, otherwise the default locale.
func (c *Classifier) Locale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if _, ok := c.supportedLocales[locale]; ok {
		return locale
	}
	return c.defaultLocale
}

func (c *Classifier) FailurePath(locale string) string {
	return fmt.Sprintf("/%s/payment/failed", c.Locale(locale))
}

func (c *Classifier) SuccessPath(locale string) string {
	return fmt.Sprintf("/%s/payment/success", c.Locale(locale))
}

// RefreshHeader renders the value of a Refresh header sending the browser to target after delaySeconds.
func RefreshHeader(delaySeconds int, target string) string {
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	return fmt.Sprintf("%d; url=%s", delaySeconds, target)
}
