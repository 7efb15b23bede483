package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/olajaido/smart-receipt-parser/constants"
	"github.com/olajaido/smart-receipt-parser/internal/async"
)

// EventRecord is one storage notification in a batch. Only creation events
// under the receipt prefix trigger processing.
type EventRecord struct {
	EventName string `json:"eventName"`
	Container string `json:"container"`
	Key       string `json:"key"`
}

type EventNotification struct {
	Records []EventRecord `json:"records" binding:"required"`
}

type eventResult struct {
	Key           string `json:"key"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

const creationEventPrefix = "ObjectCreated"

func (h *Handler) postEvents(c *gin.Context) {
	var notif EventNotification
	if err := c.ShouldBindJSON(&notif); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid event notification: "+err.Error())
		return
	}

	h.logger.Info("processing storage event batch", "records", len(notif.Records))

	results := make([]eventResult, 0, len(notif.Records))
	accepted := 0
	for _, rec := range notif.Records {
		if !strings.HasPrefix(rec.EventName, creationEventPrefix) {
			h.logger.Info("skipping non-creation event", "event", rec.EventName, "key", rec.Key)
			results = append(results, eventResult{Key: rec.Key, Status: "skipped", Reason: "not a creation event"})
			continue
		}
		if !strings.HasPrefix(rec.Key, constants.ReceiptKeyPrefix) {
			h.logger.Info("skipping non-receipt object", "key", rec.Key)
			results = append(results, eventResult{Key: rec.Key, Status: "skipped", Reason: "outside receipt prefix"})
			continue
		}

		correlationID := uuid.New().String()
		job := async.Job{
			Key:           rec.Key,
			CorrelationID: correlationID,
			SubmittedAt:   time.Now().UTC(),
		}
		if err := h.queue.Enqueue(c.Request.Context(), job); err != nil {
			h.logger.Error("enqueue failed", "key", rec.Key, "error", err)
			results = append(results, eventResult{Key: rec.Key, Status: "failed", Reason: err.Error()})
			continue
		}
		accepted++
		results = append(results, eventResult{Key: rec.Key, Status: "accepted", CorrelationID: correlationID})
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"skipped":  len(notif.Records) - accepted,
		"items":    results,
	})
}
