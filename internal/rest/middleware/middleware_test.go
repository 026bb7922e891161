package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()

	r := gin.New()
	r.Use(ErrorHandler(logger.NewNopLogger()))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestErrorHandler_Validation(t *testing.T) {
	err := ierr.NewError("validation failed").
		WithHint("Request validation failed").
		WithReportableDetails(map[string]any{"customer_name": "must be at least 2 characters"}).
		Mark(ierr.ErrValidation)

	w, resp := serveError(t, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Request validation failed", resp.Error.Display)
	assert.Equal(t, "must be at least 2 characters", resp.Error.Details["customer_name"])
	assert.Empty(t, resp.Error.Detail)
}

func TestErrorHandler_Duplicate(t *testing.T) {
	err := ierr.NewError("duplicate invoice submission").
		WithHint("An invoice with the same line items was created recently").
		Mark(ierr.ErrDuplicate)

	w, resp := serveError(t, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "An invoice with the same line items was created recently", resp.Error.Display)
}

func TestErrorHandler_StorageFailureHidesCause(t *testing.T) {
	err := ierr.WithError(errors.New("dial tcp 10.0.0.1:5432: connection refused")).
		WithHint("failed to create invoice").
		Mark(ierr.ErrDatabase)

	w, resp := serveError(t, err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to create invoice", resp.Error.Display)
	assert.Equal(t, "storage failure", resp.Error.Detail)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestErrorHandler_UnmarkedError(t *testing.T) {
	w, resp := serveError(t, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Display)
	assert.Equal(t, "internal error", resp.Error.Detail)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware)
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, types.GetRequestID(c.Request.Context()))
	})

	t.Run("propagates incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(types.HeaderRequestID, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Body.String())
		assert.Equal(t, "req-123", w.Header().Get(types.HeaderRequestID))
	})

	t.Run("generates one when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(types.HeaderRequestID))
	})
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware)
	r.GET("/v1/invoices", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/v1/invoices", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
