package interfaces

import "context"

// -----------------------------------------------------------------------------
// IAPIClient defines the contract for outbound calls to the platform backend.
// -----------------------------------------------------------------------------

type IAPIClient interface {

	// -----------------------------------------------------------------------------

	// Get fetches the endpoint (relative to the configured base URL) and
	// decodes the JSON response into out. Retries transport and 5xx
	// failures with exponential backoff.
	Get(ctx context.Context, endpoint string, out interface{}) error

	// -----------------------------------------------------------------------------

	// Post sends body as JSON to the endpoint and decodes the response
	// into out (out may be nil when the response body is irrelevant).
	Post(ctx context.Context, endpoint string, body interface{}, out interface{}) error
}
