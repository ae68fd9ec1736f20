package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mlandesman/SAMS-sub008/internal/api_gateway/service"
	"github.com/mlandesman/SAMS-sub008/internal/domain/billing"
	"github.com/mlandesman/SAMS-sub008/internal/domain/creditledger"
	"github.com/mlandesman/SAMS-sub008/internal/domain/shared"
)

// CreditHandler handles HTTP requests for credit ledger administration
type CreditHandler struct {
	creditService service.CreditService
	logger        *slog.Logger
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(logger *slog.Logger, creditService service.CreditService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		logger:        logger,
	}
}

// GetLedger returns the unit's projected credit balance and full journal
func (h *CreditHandler) GetLedger(c *gin.Context) {
	unitID, ok := h.unitID(c)
	if !ok {
		return
	}

	balance, entries, err := h.creditService.GetLedger(c.Request.Context(), unitID)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		h.logger.Error("Failed to get credit ledger", "unit_id", unitID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	response := CreditLedgerResponse{
		UnitID:  unitID.String(),
		Balance: shared.ToPesos(balance),
		Entries: make([]CreditEntryResponse, 0, len(entries)),
	}
	for i := range entries {
		response.Entries = append(response.Entries, mapCreditEntryToResponse(&entries[i]))
	}

	RespondOK(c, response)
}

// AddAdjustment appends a manual adjustment entry to the unit's journal
func (h *CreditHandler) AddAdjustment(c *gin.Context) {
	unitID, ok := h.unitID(c)
	if !ok {
		return
	}

	var req CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := shared.ToCentavos(req.Amount)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	entry, err := h.creditService.AddAdjustment(c.Request.Context(), unitID, amount, req.Notes)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		h.logger.Error("Failed to add credit adjustment", "unit_id", unitID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapCreditEntryToResponse(entry))
}

// DeleteByTransaction removes every journal entry linked to a transaction,
// the surgical cleanup used when a payment is voided
func (h *CreditHandler) DeleteByTransaction(c *gin.Context) {
	unitID, ok := h.unitID(c)
	if !ok {
		return
	}

	txParam := c.Param("transaction_id")
	transactionID, err := uuid.Parse(txParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "transaction_id", txParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	removed, err := h.creditService.DeleteByTransactionID(c.Request.Context(), unitID, transactionID)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		h.logger.Error("Failed to delete credit entries",
			"unit_id", unitID.String(),
			"transaction_id", txParam,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"entries_removed": removed})
}

// UpdateEntry edits an entry's mutable fields
func (h *CreditHandler) UpdateEntry(c *gin.Context) {
	unitID, ok := h.unitID(c)
	if !ok {
		return
	}

	entryParam := c.Param("entry_id")
	entryID, err := uuid.Parse(entryParam)
	if err != nil {
		h.logger.Error("Invalid entry ID", "entry_id", entryParam, "error", err)
		RespondBadRequest(c, "Invalid entry ID")
		return
	}

	var req UpdateCreditEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var fields creditledger.UpdateFields
	if req.Amount != nil {
		amount, err := shared.ToCentavos(*req.Amount)
		if err != nil {
			RespondBadRequest(c, err.Error())
			return
		}
		fields.Amount = &amount
	}
	if req.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			RespondBadRequest(c, "Invalid timestamp, expected RFC3339")
			return
		}
		fields.Timestamp = &ts
	}
	fields.Notes = req.Notes
	fields.Source = req.Source

	entry, err := h.creditService.UpdateEntry(c.Request.Context(), unitID, entryID, fields)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		if errors.Is(err, creditledger.ErrEntryNotFound{}) {
			RespondNotFound(c, "Credit entry not found")
			return
		}
		h.logger.Error("Failed to update credit entry",
			"unit_id", unitID.String(),
			"entry_id", entryParam,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapCreditEntryToResponse(entry))
}

// Rollover archives the unit's journal at year end and returns the
// starting_balance entry that seeds the fresh one
func (h *CreditHandler) Rollover(c *gin.Context) {
	unitID, ok := h.unitID(c)
	if !ok {
		return
	}

	// The body is optional; an empty request closes the journal as of today.
	var req RolloverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("Invalid request body", "error", err)
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	closedAt := time.Now()
	if req.ClosedAt != "" {
		var err error
		closedAt, err = time.Parse(dateLayout, req.ClosedAt)
		if err != nil {
			RespondBadRequest(c, "Invalid closed_at date, expected YYYY-MM-DD")
			return
		}
	}

	seed, err := h.creditService.Rollover(c.Request.Context(), unitID, closedAt)
	if err != nil {
		if errors.Is(err, billing.ErrUnitNotFound{}) {
			RespondNotFound(c, "Unit not found")
			return
		}
		h.logger.Error("Failed to roll over credit ledger", "unit_id", unitID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapCreditEntryToResponse(seed))
}

// unitID parses the :id path parameter, responding 400 on failure
func (h *CreditHandler) unitID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid unit ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid unit ID")
		return uuid.Nil, false
	}
	return id, true
}

// mapCreditEntryToResponse maps a journal entry to its response DTO
func mapCreditEntryToResponse(entry *creditledger.Entry) CreditEntryResponse {
	response := CreditEntryResponse{
		ID:        entry.ID.String(),
		Amount:    shared.ToPesos(entry.Amount),
		Timestamp: entry.Timestamp.Format(time.RFC3339),
		Type:      string(entry.Type),
		Source:    entry.Source,
		Notes:     entry.Notes,
	}
	if entry.TransactionID != nil {
		response.TransactionID = entry.TransactionID.String()
	}
	return response
}
