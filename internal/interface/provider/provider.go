package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Hard ceiling on any outbound provider call
const requestTimeout = 10 * time.Second

var (
	// ErrNotFound means the provider answered but had no data for the flight
	ErrNotFound = errors.New("flight not found")
	// ErrMissingAPIKey means the adapter is not configured and cannot be used
	ErrMissingAPIKey = errors.New("api key not configured")
)

// AdapterError wraps a single provider's failure so the chain can log which
// source failed before falling through to the next one
type AdapterError struct {
	Provider string
	Err      error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func adapterErr(provider string, err error) *AdapterError {
	return &AdapterError{Provider: provider, Err: err}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}
