package tasks

import (
	"github.com/semerproje/newswire/app/upstream"
)

// retryable reports whether a failed task should be re-enqueued. Credential
// and quota failures will not fix themselves inside the retry window, so the
// scheduler drops those immediately.
func retryable(err error) bool {
	if upstream.IsAuth(err) {
		return false
	}
	if upstream.IsQuota(err) {
		return false
	}
	return true
}
