package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olajaido/smart-receipt-parser/internal/async"
	"github.com/olajaido/smart-receipt-parser/internal/repository"
)

type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// Handler serves the receipt query API and the blob-created event intake.
type Handler struct {
	store  repository.ReceiptStore
	queue  async.Queue
	logger *slog.Logger
}

func NewHandler(store repository.ReceiptStore, queue async.Queue, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: store, queue: queue, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/health", healthCheck)
	r.GET("/receipts", h.getAllReceipts)
	r.GET("/receipts/:id", h.getReceiptByID)
	r.GET("/receipts/category/:category", h.getReceiptsByCategory)
	r.POST("/events", h.postEvents)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Endpoint not found")
	})

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// corsMiddleware attaches the permissive CORS headers the browser dashboard
// expects on every response, including errors.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Api-Key")
		c.Header("Access-Control-Allow-Methods", "GET,OPTIONS,POST,PUT")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func respondError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:      message,
		StatusCode: code,
	})
}
