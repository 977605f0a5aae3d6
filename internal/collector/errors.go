package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any request is made when a caller
	// passes a value the API cannot serve.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIncompleteHistory means a symbol lacks the quarterly or annual
	// records needed to compute its ratios.
	ErrIncompleteHistory = errors.New("incomplete statement history")
)

// UpstreamError represents a failed call to the market data API.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fiindo api %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("fiindo api %s: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("fiindo api %s: %s", e.Endpoint, e.Message)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err came from the market data API.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
