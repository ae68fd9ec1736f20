package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/api_gateway/service"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateUnit(ctx context.Context, tenantCode, name, ownerName string) (*billing.Unit, error) {
	args := m.Called(ctx, tenantCode, name, ownerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Unit), args.Error(1)
}

func (m *MockBillingService) GetUnitByID(ctx context.Context, id uuid.UUID) (*billing.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Unit), args.Error(1)
}

func (m *MockBillingService) CreateBill(ctx context.Context, unitID uuid.UUID, period string, dueDate time.Time, groupKey string, baseAmount int64, penaltyRate float64, gracePeriodDays int) (*billing.Bill, error) {
	args := m.Called(ctx, unitID, period, dueDate, groupKey, baseAmount, penaltyRate, gracePeriodDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillingService) ListUnpaidBills(ctx context.Context, unitID uuid.UUID, asOf time.Time) ([]*billing.Bill, map[uuid.UUID]int64, error) {
	args := m.Called(ctx, unitID, asOf)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*billing.Bill), args.Get(1).(map[uuid.UUID]int64), args.Error(2)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

// decodeData unmarshals the envelope's data field into out
func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	var topLevelResponse Response
	require.NoError(t, json.Unmarshal(body, &topLevelResponse))
	require.NotNil(t, topLevelResponse.Data, "'data' field should not be nil")
	dataBytes, err := json.Marshal(topLevelResponse.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, out))
}

func TestUnitHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		now := time.Now()
		expectedUnit := &billing.Unit{
			ID:         uuid.New(),
			TenantCode: "MTC",
			Name:       "PH4D",
			OwnerName:  "Maria Lopez",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		mockService.On("CreateUnit", mock.Anything, "MTC", "PH4D", "Maria Lopez").Return(expectedUnit, nil)

		router := setupTestRouter()
		router.POST("/units", handler.Create)

		reqBody := CreateUnitRequest{TenantCode: "MTC", Name: "PH4D", OwnerName: "Maria Lopez"}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/units", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody UnitResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, expectedUnit.ID.String(), responseBody.ID)
		assert.Equal(t, expectedUnit.TenantCode, responseBody.TenantCode)
		assert.Equal(t, expectedUnit.OwnerName, responseBody.OwnerName)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/units", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/units", bytes.NewBufferString(`{"invalid`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		mockService.On("CreateUnit", mock.Anything, " ", "PH4D", "Maria Lopez").Return(nil, billing.ErrEmptyTenantCode)

		router := setupTestRouter()
		router.POST("/units", handler.Create)

		reqBody := CreateUnitRequest{TenantCode: " ", Name: "PH4D", OwnerName: "Maria Lopez"}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/units", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		mockService.On("CreateUnit", mock.Anything, "MTC", "PH4D", "Maria Lopez").Return(nil, errors.New("service unavailable"))

		router := setupTestRouter()
		router.POST("/units", handler.Create)

		reqBody := CreateUnitRequest{TenantCode: "MTC", Name: "PH4D", OwnerName: "Maria Lopez"}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/units", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestUnitHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		unitID := uuid.New()
		expectedUnit := &billing.Unit{ID: unitID, TenantCode: "MTC", Name: "PH4D", OwnerName: "Maria Lopez"}
		mockService.On("GetUnitByID", mock.Anything, unitID).Return(expectedUnit, nil)

		router := setupTestRouter()
		router.GET("/units/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/units/"+unitID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody UnitResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, unitID.String(), responseBody.ID)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidUUID", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/units/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/units/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnitNotFound", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		unitID := uuid.New()
		mockService.On("GetUnitByID", mock.Anything, unitID).Return(nil, billing.ErrUnitNotFound{UnitID: unitID})

		router := setupTestRouter()
		router.GET("/units/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/units/"+unitID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestUnitHandler_CreateBill(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		unitID := uuid.New()
		dueDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
		expectedBill, err := billing.NewBill(unitID, "2026-06", dueDate, "", 1_500_000, 0.05, 10)
		require.NoError(t, err)

		mockService.On("CreateBill", mock.Anything, unitID, "2026-06", dueDate, "", int64(1_500_000), 0.05, 10).Return(expectedBill, nil)

		router := setupTestRouter()
		router.POST("/units/:id/bills", handler.CreateBill)

		reqBody := CreateBillRequest{
			Period:          "2026-06",
			DueDate:         "2026-06-01",
			BaseAmount:      15000.00,
			PenaltyRate:     0.05,
			GracePeriodDays: 10,
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/units/"+unitID.String()+"/bills", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody BillResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, expectedBill.ID.String(), responseBody.ID)
		assert.Equal(t, 15000.00, responseBody.BaseAmount)
		assert.Equal(t, string(billing.StatusUnpaid), responseBody.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidDueDate", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/units/:id/bills", handler.CreateBill)

		reqBody := CreateBillRequest{Period: "2026-06", DueDate: "06/01/2026", BaseAmount: 100.0}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/units/"+uuid.New().String()+"/bills", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnitNotFound", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		unitID := uuid.New()
		mockService.On("CreateBill", mock.Anything, unitID, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, billing.ErrUnitNotFound{UnitID: unitID})

		router := setupTestRouter()
		router.POST("/units/:id/bills", handler.CreateBill)

		reqBody := CreateBillRequest{Period: "2026-06", DueDate: "2026-06-01", BaseAmount: 100.0}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/units/"+unitID.String()+"/bills", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestUnitHandler_ListBills(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("SuccessWithAsOf", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		unitID := uuid.New()
		dueDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
		bill, err := billing.NewBill(unitID, "2026-06", dueDate, "", 1_000_000, 0.05, 0)
		require.NoError(t, err)

		asOf := time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC)
		penalties := map[uuid.UUID]int64{bill.ID: 50_000}
		mockService.On("ListUnpaidBills", mock.Anything, unitID, asOf).Return([]*billing.Bill{bill}, penalties, nil)

		router := setupTestRouter()
		router.GET("/units/:id/bills", handler.ListBills)

		req, _ := http.NewRequest(http.MethodGet, "/units/"+unitID.String()+"/bills?as_of=2026-07-15", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody []BillResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		require.Len(t, responseBody, 1)
		assert.Equal(t, 500.00, responseBody[0].PenaltyDue)
		assert.Equal(t, 10000.00, responseBody[0].BaseAmount)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidAsOf", func(t *testing.T) {
		mockService := new(MockBillingService)
		handler := NewUnitHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/units/:id/bills", handler.ListBills)

		req, _ := http.NewRequest(http.MethodGet, "/units/"+uuid.New().String()+"/bills?as_of=July", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

var _ service.BillingService = (*MockBillingService)(nil)
