package collector

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

// Source tells where an exchange was observed.
type Source string

const (
	// SourceBrowser marks traffic of a browser context.
	SourceBrowser Source = "browser"
	// SourceAPI marks requests of the Go HTTP client used by API tests.
	SourceAPI Source = "api"
)

// Exchange is a captured request together with its outcome
type Exchange struct {
	ID           uuid.UUID
	Source       Source
	Method       string
	URL          string
	ResourceType string

	StatusCode int
	StatusText string
	// Error is set if the request failed before a response arrived
	Error string

	RequestTime  time.Time
	ResponseTime time.Time

	ResponseBody  string
	BodyTruncated bool
}

// Duration returns how long the exchange took
func (e Exchange) Duration() time.Duration {
	if e.ResponseTime.IsZero() {
		return 0
	}
	return e.ResponseTime.Sub(e.RequestTime)
}

// Failed reports whether the request failed or was answered with an error status
func (e Exchange) Failed() bool {
	return e.Error != "" || e.StatusCode >= 400
}

func (e Exchange) String() string {
	outcome := fmt.Sprintf("%d", e.StatusCode)
	if e.Error != "" {
		outcome = "failed: " + e.Error
	}
	return fmt.Sprintf("[%s] %s %s -> %s (%s)", e.Source, e.Method, e.URL, outcome, e.Duration().Round(time.Millisecond))
}

func generateID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
