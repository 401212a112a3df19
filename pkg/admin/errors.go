// Error translation for the admin API. The full error is always logged
// server-side; clients only ever see upstream data-service messages (400s)
// or a generic message (500s).

package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/scraphq/admind/pkg/dataservice"
	"github.com/scraphq/admind/pkg/rates"
)

// Messages safe for client responses.
const (
	// ErrMsgInternalError is returned for unexpected internal errors.
	ErrMsgInternalError = "An internal error occurred"

	// ErrMsgInvalidJSON is returned for JSON parsing errors.
	ErrMsgInvalidJSON = "Invalid JSON in request body"

	// ErrMsgNotFound is returned when a resource is not found.
	ErrMsgNotFound = "Resource not found"
)

// errNoRowsReturned flags an insert that the data service accepted without
// returning a representation.
func errNoRowsReturned(table string) error {
	return fmt.Errorf("insert into %s returned no rows", table)
}

// translateError maps an error from a handler's data path to a status and a
// client-safe message. Validation errors and upstream data-service messages
// pass through as 400s; everything else is logged and collapsed to a generic
// 500.
func (a *API) translateError(err error, operation string) (int, string) {
	var vErr *rates.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, vErr.Message
	}

	var apiErr *dataservice.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadRequest, apiErr.Message
	}

	a.log.Error("operation failed", "operation", operation, "error", err)
	return http.StatusInternalServerError, ErrMsgInternalError
}
