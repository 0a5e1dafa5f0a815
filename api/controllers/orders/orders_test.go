package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rmehra-dev/techshop-backend/api/middleware"
	internalorders "github.com/rmehra-dev/techshop-backend/internal/orders"
	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/logger"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestCreateOrder(t *testing.T) {
	logg := testLogger()
	staffID := uuid.New()

	body := `{
		"customer": {"name": "Jane", "phone": "0700000001"},
		"items": [{"product_id": "` + uuid.NewString() + `", "sku": "PX8A-OBS", "quantity": 1}],
		"payment_method": "cash"
	}`

	t.Run("missing staff", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Create(&stubOrdersService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when staff missing, got %d", rec.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		ctx := middleware.WithStaffID(context.Background(), staffID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"items": []}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		Create(&stubOrdersService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty items, got %d", rec.Code)
		}
	})

	t.Run("success defaults to instore", func(t *testing.T) {
		ctx := middleware.WithStaffID(context.Background(), staffID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()

		stub := &stubOrdersService{}
		Create(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on success, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.createInput == nil {
			t.Fatalf("expected CreateOrder to be invoked")
		}
		if stub.createInput.StaffID != staffID {
			t.Fatalf("expected staff id from context, got %s", stub.createInput.StaffID)
		}
		if got := string(stub.createInput.OrderType); got != "instore" {
			t.Fatalf("expected default instore order type, got %q", got)
		}

		var envelope struct {
			Data models.Order `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.OrderNumber == "" {
			t.Fatalf("expected order number in response")
		}
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	logg := testLogger()
	staffID := uuid.New()
	orderID := uuid.New()

	makeRequest := func(body string) *httptest.ResponseRecorder {
		ctx := middleware.WithStaffID(context.Background(), staffID.String())
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("orderId", orderID.String())
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", strings.NewReader(body))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		UpdateStatus(&stubOrdersService{}, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("invalid status", func(t *testing.T) {
		rec := makeRequest(`{"status": "teleported"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		rec := makeRequest(`{"status": "confirmed"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on success, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

type stubOrdersService struct {
	createInput *internalorders.CreateOrderInput
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	s.createInput = &input
	return &models.Order{OrderNumber: "ORD-202609-0001"}, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: id}, nil
}

func (s *stubOrdersService) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	return &models.Order{OrderNumber: number}, nil
}

func (s *stubOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{}, nil
}

func (s *stubOrdersService) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{}, nil
}

func (s *stubOrdersService) UpdateOrderStatus(ctx context.Context, input internalorders.UpdateStatusInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, OrderStatus: input.Status}, nil
}
