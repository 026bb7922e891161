package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/flexprice/invoicer/internal/api/v1"
	"github.com/flexprice/invoicer/internal/cache"
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pdf"
	"github.com/flexprice/invoicer/internal/publisher"
	"github.com/flexprice/invoicer/internal/rest/middleware"
	"github.com/flexprice/invoicer/internal/sentry"
	"github.com/flexprice/invoicer/internal/service"
	"github.com/flexprice/invoicer/internal/testutil"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/flexprice/invoicer/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	validator.NewValidator()
}

func (s *RouterSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	log := logger.NewNopLogger()

	params := service.NewServiceParams(
		log,
		cfg,
		cache.NewInMemoryCache(cfg, log),
		pdf.NewGenerator(),
		sentry.NewSentryService(cfg, log),
		nil,
		testutil.NewInMemoryInvoiceStore(),
		publisher.NewEventPublisher(cfg, log, testutil.NewInMemoryPubSub()),
	)

	s.router = NewRouter(Handlers{
		Health:  v1.NewHealthHandler(log),
		Invoice: v1.NewInvoiceHandler(service.NewInvoiceService(params), log),
	}, cfg, log)
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func widgetBody() map[string]any {
	return map[string]any{
		"customer_name":  "Acme Corp",
		"customer_email": "billing@acme.test",
		"line_items": []map[string]any{
			{"description": "Widget", "quantity": 2, "unit_price": "10.00"},
		},
		"tax_rate": "0.10",
	}
}

func (s *RouterSuite) createWidget() map[string]any {
	w := s.do(http.MethodPost, "/v1/invoices", widgetBody())
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	s.decode(w, &created)
	return created
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *RouterSuite) TestCreateInvoice() {
	created := s.createWidget()

	s.Equal("20", created["subtotal"])
	s.Equal("2", created["tax_amount"])
	s.Equal("22", created["total"])
	s.Regexp(`^INV-\d{10}$`, created["invoice_number"])
	s.NotEmpty(created["id"])
}

func (s *RouterSuite) TestCreateInvoice_Duplicate() {
	s.createWidget()

	w := s.do(http.MethodPost, "/v1/invoices", widgetBody())
	s.Equal(http.StatusConflict, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.False(resp.Success)
	s.NotEmpty(resp.Error.Display)
}

func (s *RouterSuite) TestCreateInvoice_ValidationDetails() {
	body := widgetBody()
	body["customer_name"] = "A"
	body["customer_email"] = "not-an-email"

	w := s.do(http.MethodPost, "/v1/invoices", body)
	s.Equal(http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.Contains(resp.Error.Details, "customer_name")
	s.Contains(resp.Error.Details, "customer_email")
}

func (s *RouterSuite) TestCreateInvoice_ReportsTagAndAmountFailuresTogether() {
	body := widgetBody()
	body["customer_name"] = ""
	body["line_items"] = []map[string]any{
		{"description": "Widget", "quantity": 1, "unit_price": "-1"},
		{"description": "Gizmo", "quantity": 1},
	}

	w := s.do(http.MethodPost, "/v1/invoices", body)
	s.Equal(http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.Contains(resp.Error.Details, "customer_name")
	s.Contains(resp.Error.Details, "line_items[0].unit_price")
	s.Contains(resp.Error.Details, "line_items[1].unit_price")
}

func (s *RouterSuite) TestCreateInvoice_MalformedJSON() {
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestGetUpdateDelete() {
	created := s.createWidget()
	path := "/v1/invoices/" + created["id"].(string)

	w := s.do(http.MethodGet, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	update := widgetBody()
	delete(update, "tax_rate")
	update["line_items"] = []map[string]any{
		{"description": "Widget", "quantity": 5, "unit_price": "10.00"},
	}
	w = s.do(http.MethodPut, path, update)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated map[string]any
	s.decode(w, &updated)
	s.Equal(created["invoice_number"], updated["invoice_number"])
	s.Equal(created["created_at"], updated["created_at"])
	s.Equal("55", updated["total"])

	w = s.do(http.MethodDelete, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"invoice deleted successfully"}`, w.Body.String())

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, path, nil).Code)
}

func (s *RouterSuite) TestListInvoices() {
	s.createWidget()

	w := s.do(http.MethodGet, "/v1/invoices?customer_email=billing@acme.test", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var list []map[string]any
	s.decode(w, &list)
	s.Len(list, 1)

	w = s.do(http.MethodGet, "/v1/invoices?customer_email=nobody@acme.test", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/v1/invoices?limit=0", nil).Code)
}

func (s *RouterSuite) TestGetInvoicePDF() {
	created := s.createWidget()
	path := "/v1/invoices/" + created["id"].(string) + "/pdf"

	w := s.do(http.MethodGet, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// archive is disabled in the default configuration
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, path+"?url=true", nil).Code)
}

func (s *RouterSuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(types.HeaderRequestID, "abc")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal("abc", w.Header().Get(types.HeaderRequestID))
}
