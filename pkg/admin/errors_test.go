package admin

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scraphq/admind/pkg/dataservice"
	"github.com/scraphq/admind/pkg/logging"
	"github.com/scraphq/admind/pkg/rates"
)

func TestTranslateError(t *testing.T) {
	api := &API{log: logging.Nop()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation error passes its message through",
			err:        &rates.ValidationError{Field: "ratePerKg", Message: "rate must be a positive number"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "rate must be a positive number",
		},
		{
			name:       "data service rejection passes its message through",
			err:        &dataservice.APIError{Status: http.StatusForbidden, Code: "42501", Message: "permission denied"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "permission denied",
		},
		{
			name:       "wrapped data service rejection still unwraps",
			err:        fmt.Errorf("deactivating current rate: %w", &dataservice.APIError{Status: 400, Message: "update rejected"}),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "update rejected",
		},
		{
			name:       "anything else collapses to the generic message",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    ErrMsgInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := api.translateError(tt.err, "test")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
