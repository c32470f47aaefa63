package upstream

import (
	"errors"
	"fmt"
)

// AuthError means the wire service rejected our credentials. It is fatal and
// must never be retried automatically.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream auth rejected (status %d): %s", e.Status, e.Message)
}

// TransientError covers timeouts, 5xx responses and malformed bodies. Callers
// decide the retry policy; the gateway itself never retries.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// QuotaError means the daily or rate quota is exhausted. Schedules back off
// until the next quota reset instead of retrying.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("upstream quota exceeded: %s", e.Message)
}

func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func IsTransient(err error) bool {
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

func IsQuota(err error) bool {
	var quotaErr *QuotaError
	return errors.As(err, &quotaErr)
}
