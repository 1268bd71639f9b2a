package agent

import (
	"errors"
	"fmt"
)

// ErrRateLimited signals backend throttling. The workflow does not retry;
// the caller owns backoff policy.
var ErrRateLimited = errors.New("rate limited")

// ServiceError wraps a completion or retrieval backend failure, including
// per-call deadline expiry (Unwrap reaches context.DeadlineExceeded).
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceError reports whether err is or wraps a ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// CycleLimitError ends a run whose rewrite cycle never produced documents
// the grader accepted. It is a quality failure, not an infrastructure one:
// callers should surface a low-confidence fallback answer rather than
// treat it like a backend outage.
type CycleLimitError struct {
	Rewrites int
}

func (e *CycleLimitError) Error() string {
	return fmt.Sprintf("no grounded answer after %d rewrites", e.Rewrites)
}

// IsCycleLimit reports whether err is or wraps a CycleLimitError.
func IsCycleLimit(err error) bool {
	var cl *CycleLimitError
	return errors.As(err, &cl)
}

// wrapService keeps already-classified errors intact and tags everything
// else as a ServiceError for the given operation.
func wrapService(op string, err error) error {
	if errors.Is(err, ErrRateLimited) || IsServiceError(err) {
		return err
	}
	return &ServiceError{Op: op, Err: err}
}
