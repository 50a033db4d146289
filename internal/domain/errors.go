package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredentials aborts a run before any network call.
	ErrMissingCredentials = errors.New("missing required credentials")
	// ErrDeliveryFailed means the delivery channel rejected the briefing.
	ErrDeliveryFailed = errors.New("briefing delivery failed")
	// ErrEmptyBriefing means synthesis returned no text.
	ErrEmptyBriefing = errors.New("synthesized briefing is empty")
)

// MissingCredentialsError lists the absent environment keys.
type MissingCredentialsError struct {
	Keys []string
}

func (e MissingCredentialsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingCredentials.Error(), strings.Join(e.Keys, ", "))
}

// Is lets errors.Is match ErrMissingCredentials.
func (e MissingCredentialsError) Is(target error) bool {
	return target == ErrMissingCredentials
}
