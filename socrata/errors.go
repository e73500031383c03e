package socrata

import "fmt"

// APIError reports a non-success response from the open-data endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("socrata: http %d", e.StatusCode)
	}
	return fmt.Sprintf("socrata: http %d: %s", e.StatusCode, e.Body)
}
