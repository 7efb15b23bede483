package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/common"
	"github.com/olajaido/smart-receipt-parser/internal/repository"
)

func (h *Handler) getAllReceipts(c *gin.Context) {
	receipts, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list receipts failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Error retrieving receipts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receipts": receipts,
		"count":    len(receipts),
		"stats":    repository.ComputeStats(receipts),
	})
}

func (h *Handler) getReceiptByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "Receipt ID is required")
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, http.StatusBadRequest, "Receipt ID is not a valid UUID")
		return
	}

	rec, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Receipt not found")
		return
	}
	if err != nil {
		h.logger.Error("get receipt failed", "receipt_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "Error retrieving receipt")
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": rec})
}

func (h *Handler) getReceiptsByCategory(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("category"))
	if raw == "" {
		respondError(c, http.StatusBadRequest, "Category is required")
		return
	}
	category, ok := constants.Canonicalize(raw)
	if !ok {
		respondError(c, http.StatusBadRequest,
			"Invalid category. Valid categories: "+strings.Join(constants.AsStringSlice(), ", "))
		return
	}

	receipts, err := h.store.ListByCategory(c.Request.Context(), string(category))
	if err != nil {
		h.logger.Error("list by category failed", "category", category, "error", err)
		respondError(c, http.StatusInternalServerError, "Error retrieving receipts")
		return
	}

	total, average := repository.SumAmounts(receipts)
	c.JSON(http.StatusOK, gin.H{
		"receipts":       receipts,
		"category":       category,
		"count":          len(receipts),
		"total_amount":   total,
		"average_amount": average,
	})
}
