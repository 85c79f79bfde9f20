package service

import (
	"errors"
	"fmt"

	"dashboard/internal/repository"
)

// ErrCatalogFetch marks a failed GET /charts.
var ErrCatalogFetch = errors.New("catalog fetch failed")

// ErrDataFetch marks a failed POST /top-users.
var ErrDataFetch = errors.New("data fetch failed")

// FetchError wraps any failure of a fetch. Timeouts, 4xx, 5xx and
// malformed bodies all share the same Kind.
type FetchError struct {
	Kind       error
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel kind as well as the wrapped cause.
func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}

func newFetchError(kind error, endpoint string, err error) *FetchError {
	fe := &FetchError{Kind: kind, Endpoint: endpoint, Err: err}
	var statusErr *repository.StatusError
	if errors.As(err, &statusErr) {
		fe.StatusCode = statusErr.StatusCode
	}
	return fe
}
