package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/api_gateway/service"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

const dateLayout = "2006-01-02"

// UnitHandler handles HTTP requests for unit and bill operations
type UnitHandler struct {
	billingService service.BillingService
	logger         *slog.Logger
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(logger *slog.Logger, billingService service.BillingService) *UnitHandler {
	return &UnitHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// Create registers a new billing unit
func (h *UnitHandler) Create(c *gin.Context) {
	var req CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	unit, err := h.billingService.CreateUnit(c.Request.Context(), req.TenantCode, req.Name, req.OwnerName)
	if err != nil {
		if errors.Is(err, billing.ErrEmptyTenantCode) || errors.Is(err, billing.ErrEmptyUnitName) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create unit", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapUnitToResponse(unit))
}

// GetByID retrieves unit details by ID, returns 404 if not found
func (h *UnitHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid unit ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid unit ID")
		return
	}

	unit, err := h.billingService.GetUnitByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		h.logger.Error("Failed to get unit", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapUnitToResponse(unit))
}

// CreateBill creates a bill for a unit
func (h *UnitHandler) CreateBill(c *gin.Context) {
	idParam := c.Param("id")
	unitID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid unit ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid unit ID")
		return
	}

	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		RespondBadRequest(c, "Invalid due date, expected YYYY-MM-DD")
		return
	}

	baseAmount, err := shared.ToCentavos(req.BaseAmount)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	bill, err := h.billingService.CreateBill(
		c.Request.Context(),
		unitID,
		req.Period,
		dueDate,
		req.GroupKey,
		baseAmount,
		req.PenaltyRate,
		req.GracePeriodDays,
	)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		if errors.Is(err, billing.ErrNegativeAmount) || errors.Is(err, billing.ErrInvalidRate) ||
			errors.Is(err, billing.ErrInvalidGraceDays) || errors.Is(err, billing.ErrMissingDueDate) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create bill", "unit_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapBillToResponse(bill, 0))
}

// ListBills returns the unit's outstanding bills in allocation priority
// order, each with its penalty freshly evaluated. An optional as_of query
// parameter (YYYY-MM-DD) sets the evaluation date; it defaults to today.
func (h *UnitHandler) ListBills(c *gin.Context) {
	idParam := c.Param("id")
	unitID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid unit ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid unit ID")
		return
	}

	asOf := time.Now()
	if asOfParam := c.Query("as_of"); asOfParam != "" {
		asOf, err = time.Parse(dateLayout, asOfParam)
		if err != nil {
			RespondBadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
	}

	bills, penalties, err := h.billingService.ListUnpaidBills(c.Request.Context(), unitID, asOf)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		h.logger.Error("Failed to list bills", "unit_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]BillResponse, 0, len(bills))
	for _, bill := range bills {
		responses = append(responses, mapBillToResponse(bill, penalties[bill.ID]))
	}

	RespondOK(c, responses)
}

// mapUnitToResponse maps a billing unit to its response DTO
func mapUnitToResponse(unit *billing.Unit) UnitResponse {
	return UnitResponse{
		ID:         unit.ID.String(),
		TenantCode: unit.TenantCode,
		Name:       unit.Name,
		OwnerName:  unit.OwnerName,
		CreatedAt:  unit.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  unit.UpdatedAt.Format(time.RFC3339),
	}
}

// mapBillToResponse maps a bill and its evaluated penalty to a response DTO
func mapBillToResponse(bill *billing.Bill, penaltyDue int64) BillResponse {
	return BillResponse{
		ID:              bill.ID.String(),
		UnitID:          bill.UnitID.String(),
		Period:          bill.Period,
		DueDate:         bill.DueDate.Format(dateLayout),
		GroupKey:        bill.GroupKey,
		BaseAmount:      shared.ToPesos(bill.BaseAmount),
		BasePaid:        shared.ToPesos(bill.BasePaid),
		PenaltyPaid:     shared.ToPesos(bill.PenaltyPaid),
		PenaltyDue:      shared.ToPesos(penaltyDue),
		PenaltyRate:     bill.PenaltyRate,
		GracePeriodDays: bill.GracePeriodDays,
		Status:          string(bill.Status),
		CreatedAt:       bill.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       bill.UpdatedAt.Format(time.RFC3339),
	}
}
