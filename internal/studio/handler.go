package studio

import (
	"log/slog"
	"net/http"

	"github.com/eternisai/taleweaver/internal/errors"
	"github.com/eternisai/taleweaver/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, logger *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the studio API on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/catalog", h.Catalog)
	r.GET("/suggestions", h.Suggestions)
	r.POST("/narrations", h.Narrate)
	r.POST("/illustrations", h.Illustrate)

	stories := r.Group("/stories")
	{
		stories.POST("", h.CreateStory)
		stories.POST("/text", h.GenerateText)
		stories.POST("/save", h.SaveStory)
	}
}

// RequestID tags every request context with an ID so pipeline logs can be correlated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = logger.GenerateRequestID()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (h *Handler) CreateStory(c *gin.Context) {
	log := h.logger.WithContext(c.Request.Context()).WithComponent("studio-handler")

	var req StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", slog.String("error", err.Error()))
		errors.AbortWithBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	bundle, err := h.service.CreateStory(c.Request.Context(), req)
	if err != nil {
		log.Error("failed to create story",
			slog.String("error", err.Error()),
			slog.String("topic", req.Topic))
		errors.AbortWithGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}

func (h *Handler) GenerateText(c *gin.Context) {
	log := h.logger.WithContext(c.Request.Context()).WithComponent("studio-handler")

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", slog.String("error", err.Error()))
		errors.AbortWithBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	res, err := h.service.GenerateText(c.Request.Context(), req)
	if err != nil {
		log.Error("failed to generate story text", slog.String("error", err.Error()))
		errors.AbortWithGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) Narrate(c *gin.Context) {
	log := h.logger.WithContext(c.Request.Context()).WithComponent("studio-handler")

	var req NarrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", slog.String("error", err.Error()))
		errors.AbortWithBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	res, err := h.service.Narrate(c.Request.Context(), req)
	if err != nil {
		log.Error("failed to narrate story", slog.String("error", err.Error()))
		errors.AbortWithGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) Illustrate(c *gin.Context) {
	log := h.logger.WithContext(c.Request.Context()).WithComponent("studio-handler")

	var req IllustrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", slog.String("error", err.Error()))
		errors.AbortWithBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	res, err := h.service.Illustrate(c.Request.Context(), req)
	if err != nil {
		log.Error("failed to illustrate story", slog.String("error", err.Error()))
		errors.AbortWithGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) SaveStory(c *gin.Context) {
	log := h.logger.WithContext(c.Request.Context()).WithComponent("studio-handler")

	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", slog.String("error", err.Error()))
		errors.AbortWithBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	saved, err := h.service.SaveStory(c.Request.Context(), req)
	if err != nil {
		log.Error("failed to save story", slog.String("error", err.Error()))
		errors.AbortWithGenerationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": h.service.Suggestions(c.Query("culture"))})
}

func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Catalog())
}

// Health reports liveness and the effective provider order.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"instance":  logger.GetInstanceID(),
		"providers": h.service.Providers(),
	})
}
