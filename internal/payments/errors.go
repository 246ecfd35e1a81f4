package payments

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no Stripe secret key is present.
var ErrNotConfigured = errors.New("stripe not configured")

// GatewayError reports a failed Stripe API call. StatusCode is 0 when the
// API was not reached.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("payment gateway %s returned %d: %s", e.Op, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("payment gateway %s returned %d", e.Op, e.StatusCode)
	}
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err is a GatewayError.
func IsGatewayError(err error) bool {
	var target *GatewayError
	return errors.As(err, &target)
}
