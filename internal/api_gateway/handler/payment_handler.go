package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/api_gateway/middleware"
	"github.com/mlandesman/SAMS-sub008/internal/api_gateway/service"
	"github.com/mlandesman/SAMS-sub008/internal/domain/audit"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/settlement"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// PaymentHandler handles HTTP requests for payment submission and
// settlement lookup
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Submit queues a payment for asynchronous settlement with idempotency
// support. Returns 202 with the transaction ID, or 200 with the existing
// settlement record when the idempotency key has been seen before.
func (h *PaymentHandler) Submit(c *gin.Context) {
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		h.logger.Error("Invalid unit ID", "unit_id", req.UnitID, "error", err)
		RespondBadRequest(c, "Invalid unit ID")
		return
	}

	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		RespondBadRequest(c, "Invalid payment date, expected YYYY-MM-DD")
		return
	}

	amount, err := shared.ToCentavos(req.Amount)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	// An empty policy is carried through as-is so the processor can fall
	// back to the configured default.
	if _, err := settlement.ParseGroupPolicy(req.GroupPolicy); err != nil {
		h.logger.Error("Invalid group policy", "group_policy", req.GroupPolicy)
		RespondBadRequest(c, "Invalid group policy")
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	paymentRequest := &shared.PaymentRequest{
		TransactionID:  uuid.New(),
		UnitID:         unitID,
		Amount:         amount,
		PaymentDate:    paymentDate,
		GroupPolicy:    req.GroupPolicy,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  middleware.GetCorrelationID(c),
		Timestamp:      time.Now(),
	}

	transactionID, record, err := h.paymentService.SubmitPayment(c.Request.Context(), paymentRequest)
	if err != nil {
		h.logger.Error("Failed to submit payment", "error", err)
		RespondInternalError(c)
		return
	}
	if record != nil {
		RespondOK(c, mapAuditRecordToResponse(record))
		return
	}

	RespondAccepted(c, gin.H{
		"transaction_id": transactionID,
		"status":         string(shared.PaymentStatusPending),
	})
}

// GetByID retrieves a settlement record by transaction ID, returns 404 if
// not found
func (h *PaymentHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	record, err := h.paymentService.GetPaymentByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get payment", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if record == nil {
		RespondNotFound(c, "Payment not found")
		return
	}

	RespondOK(c, mapAuditRecordToResponse(record))
}

// GetByUnitID retrieves paginated settlement history for a unit
func (h *PaymentHandler) GetByUnitID(c *gin.Context) {
	idParam := c.Param("id")
	unitID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid unit ID", "unit_id", idParam, "error", err)
		RespondBadRequest(c, "Invalid unit ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	records, total, err := h.paymentService.GetPaymentsByUnitID(
		c.Request.Context(),
		unitID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get payments", "unit_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	var payments []PaymentResponse
	for _, record := range records {
		payments = append(payments, mapAuditRecordToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, payments, pagination.Page, pagination.PerPage, int(total))
}

// Preview runs a dry-run allocation against the unit's current state. The
// amount and payment_date arrive as query parameters; nothing is persisted.
func (h *PaymentHandler) Preview(c *gin.Context) {
	idParam := c.Param("id")
	unitID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid unit ID", "unit_id", idParam, "error", err)
		RespondBadRequest(c, "Invalid unit ID")
		return
	}

	var params struct {
		Amount      float64 `form:"amount" binding:"required,gt=0"`
		PaymentDate string  `form:"payment_date"`
		GroupPolicy string  `form:"group_policy"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid preview parameters", "error", err)
		RespondBadRequest(c, "Invalid preview parameters: "+err.Error())
		return
	}

	amount, err := shared.ToCentavos(params.Amount)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	paymentDate := time.Now()
	if params.PaymentDate != "" {
		paymentDate, err = time.Parse(dateLayout, params.PaymentDate)
		if err != nil {
			RespondBadRequest(c, "Invalid payment date, expected YYYY-MM-DD")
			return
		}
	}

	policy, err := settlement.ParseGroupPolicy(params.GroupPolicy)
	if err != nil {
		h.logger.Error("Invalid group policy", "group_policy", params.GroupPolicy)
		RespondBadRequest(c, "Invalid group policy")
		return
	}

	result, err := h.paymentService.PreviewSettlement(c.Request.Context(), unitID, amount, paymentDate, policy)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		if errors.Is(err, settlement.ErrValidation{}) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to preview settlement", "unit_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAllocationResultToPreview(result, amount))
}

// mapAuditRecordToResponse maps a settlement audit record to its response DTO
func mapAuditRecordToResponse(record *audit.Record) PaymentResponse {
	response := PaymentResponse{
		TransactionID:      record.TransactionID.String(),
		UnitID:             record.UnitID.String(),
		Amount:             shared.ToPesos(record.PaymentAmount),
		PaymentDate:        record.PaymentDate.Format(dateLayout),
		GroupPolicy:        record.GroupPolicy,
		Status:             string(record.Status),
		FailureReason:      record.FailureReason,
		TotalBaseCharges:   shared.ToPesos(record.TotalBaseCharges),
		TotalPenalties:     shared.ToPesos(record.TotalPenalties),
		TotalApplied:       shared.ToPesos(record.TotalApplied),
		CreditUsed:         shared.ToPesos(record.CreditUsed),
		Overpayment:        shared.ToPesos(record.Overpayment),
		CreditBalanceAfter: shared.ToPesos(record.CreditBalanceAfter),
		Summary:            record.Summary,
		CreatedAt:          record.CreatedAt.Format(time.RFC3339),
	}

	for i := range record.BillPayments {
		response.BillPayments = append(response.BillPayments, mapBillPaymentToResponse(&record.BillPayments[i]))
	}

	if record.ProcessedAt != nil {
		response.ProcessedAt = record.ProcessedAt.Format(time.RFC3339)
	}

	return response
}

// mapAllocationResultToPreview maps a dry-run allocation to its response DTO
func mapAllocationResultToPreview(result *settlement.AllocationResult, amount int64) SettlementPreviewResponse {
	response := SettlementPreviewResponse{
		UnitID:           result.UnitID.String(),
		PaymentAmount:    shared.ToPesos(amount),
		BillPayments:     make([]BillPaymentResponse, 0, len(result.BillPayments)),
		TotalBaseCharges: shared.ToPesos(result.TotalBaseCharges),
		TotalPenalties:   shared.ToPesos(result.TotalPenalties),
		TotalApplied:     shared.ToPesos(result.TotalApplied),
		CreditUsed:       shared.ToPesos(result.CreditUsed),
		Overpayment:      shared.ToPesos(result.Overpayment),
		CreditBalance:    shared.ToPesos(result.CurrentCreditBalance),
		NewCreditBalance: shared.ToPesos(result.NewCreditBalance),
		TotalBillsDue:    shared.ToPesos(result.TotalBillsDue),
	}

	for i := range result.BillPayments {
		response.BillPayments = append(response.BillPayments, mapBillPaymentToResponse(&result.BillPayments[i]))
	}

	return response
}

// mapBillPaymentToResponse maps one bill's settlement share to its DTO
func mapBillPaymentToResponse(bp *settlement.BillPayment) BillPaymentResponse {
	return BillPaymentResponse{
		BillID:         bp.BillID.String(),
		Period:         bp.Period,
		AmountPaid:     shared.ToPesos(bp.AmountPaid),
		BaseChargePaid: shared.ToPesos(bp.BaseChargePaid),
		PenaltyPaid:    shared.ToPesos(bp.PenaltyPaid),
		NewStatus:      string(bp.NewStatus),
	}
}
