package tmdbapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/networkteam/discover-e2e/internal/errs"
)

// Keys of the structured error TMDB returns for unauthorized requests.
var ErrorKeys = []string{"status_code", "status_message"}

// Keys of a paginated list response.
var ListKeys = []string{"results", "page", "total_pages", "total_results"}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsJSONObject reports whether the body is a valid JSON object.
func (r *Response) IsJSONObject() bool {
	return gjson.ValidBytes(r.Body) && gjson.ParseBytes(r.Body).IsObject()
}

// Get returns the value at the gjson path.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Has reports whether path exists in the body.
func (r *Response) Has(path string) bool {
	return r.Get(path).Exists()
}

// PresentKeys returns the keys of keys that exist in the body.
func (r *Response) PresentKeys(keys ...string) []string {
	return lo.Filter(keys, func(k string, _ int) bool {
		return r.Has(k)
	})
}

// MissingKeys returns the keys of keys that do not exist in the body.
func (r *Response) MissingKeys(keys ...string) []string {
	return lo.Without(keys, r.PresentKeys(keys...)...)
}

// CheckConnectivity verifies a response of an unauthenticated or authenticated request.
// The status must be 200 or 401, the body a JSON object, and a 401 must carry the structured error.
func CheckConnectivity(r *Response) error {
	const op = "tmdbapi.check_connectivity"

	if r.StatusCode != http.StatusOK && r.StatusCode != http.StatusUnauthorized {
		return errs.New(errs.NotFound, op, fmt.Sprintf("unexpected status code %d", r.StatusCode))
	}
	if !r.IsJSONObject() {
		return errs.New(errs.NotFound, op, "response should be a JSON object")
	}
	if r.StatusCode == http.StatusUnauthorized {
		if missing := r.MissingKeys(ErrorKeys...); len(missing) > 0 {
			return errs.New(errs.NotFound, op, "error response should contain "+strings.Join(missing, ", "))
		}
	}
	return nil
}

// CheckStructure verifies the shape of the body. An error response needs status_code or success.
// A success response is accepted as is; PresentKeys tells which list keys it has.
func CheckStructure(r *Response) error {
	const op = "tmdbapi.check_structure"

	if !r.IsJSONObject() {
		return errs.New(errs.NotFound, op, "response should be a JSON object")
	}
	if r.StatusCode == http.StatusUnauthorized && !r.Has("status_code") && !r.Has("success") {
		return errs.New(errs.NotFound, op, "error response should contain status_code or success")
	}
	return nil
}
