package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewError("bad").Mark(ErrValidation), http.StatusBadRequest},
		{"duplicate", NewError("dup").Mark(ErrDuplicate), http.StatusConflict},
		{"not found", NewError("missing").Mark(ErrNotFound), http.StatusNotFound},
		{"database", WithError(fmt.Errorf("conn refused")).Mark(ErrDatabase), http.StatusInternalServerError},
		{"unmarked", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestMarkedErrorsSurviveWrapping(t *testing.T) {
	base := NewError("invoice missing").Mark(ErrNotFound)
	wrapped := fmt.Errorf("get invoice: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.Equal(t, http.StatusNotFound, HTTPStatusFromErr(wrapped))
}

func TestReportableDetailsAndDisplayMessage(t *testing.T) {
	err := NewError("validation failed").
		WithHint("Request validation failed").
		WithReportableDetails(map[string]any{"customer_email": "is required"}).
		Mark(ErrValidation)

	assert.Equal(t, "Request validation failed", DisplayMessage(err))
	assert.Equal(t, map[string]any{"customer_email": "is required"}, ReportableDetails(err))

	plain := fmt.Errorf("boom")
	assert.Empty(t, DisplayMessage(plain))
	assert.Empty(t, ReportableDetails(plain))
}
