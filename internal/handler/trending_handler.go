package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"Burrow_Hole/pkg/logger"
)

// TrendingReader 由 service.TrendingService 实现
type TrendingReader interface {
	Populate(ctx context.Context) ([]byte, error)
	Refresh(ctx context.Context) error
}

type TrendingHandler struct {
	svc TrendingReader
}

func NewTrendingHandler(svc TrendingReader) *TrendingHandler {
	return &TrendingHandler{svc: svc}
}

// List 缓存未命中时现算一份并回填
func (h *TrendingHandler) List(c *gin.Context) {
	b, err := h.svc.Populate(c.Request.Context())
	if err != nil {
		logger.Error("trending read failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"msg": "trending unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

func (h *TrendingHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		logger.Error("trending refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "refreshed"})
}
