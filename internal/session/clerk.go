package session

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidPublishableKey = errors.New("invalid clerk publishable key")

// FrontendAPI decodes the frontend API host embedded in a publishable key:
// "pk_test_" or "pk_live_" followed by base64("<host>$").
func FrontendAPI(publishableKey string) (string, error) {
	var encoded string
	switch {
	case strings.HasPrefix(publishableKey, "pk_test_"):
		encoded = strings.TrimPrefix(publishableKey, "pk_test_")
	case strings.HasPrefix(publishableKey, "pk_live_"):
		encoded = strings.TrimPrefix(publishableKey, "pk_live_")
	default:
		return "", ErrInvalidPublishableKey
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return "", ErrInvalidPublishableKey
	}
	host := strings.TrimSuffix(string(raw), "$")
	if host == "" || strings.ContainsAny(host, "/ $") {
		return "", ErrInvalidPublishableKey
	}
	return host, nil
}

// ScriptURL is where the browser bundle of clerk-js is served for host.
func ScriptURL(host string) string {
	return "https://" + host + "/npm/@clerk/clerk-js@5/dist/clerk.browser.js"
}
