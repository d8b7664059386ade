package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"Burrow_Hole/internal/event"
)

// EmailPublisher 由 event.Publisher 实现
type EmailPublisher interface {
	Email(ctx context.Context, ev event.EmailEvent)
}

type EmailHandler struct {
	pub EmailPublisher
}

type SendCodeReq struct {
	Email string `json:"email" binding:"required,email"`
}

func NewEmailHandler(pub EmailPublisher) *EmailHandler {
	return &EmailHandler{pub: pub}
}

// SendCode 运维手动补发验证码：只投递到 email topic，由消费端走限流和发送
func (h *EmailHandler) SendCode(c *gin.Context) {
	var req SendCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	var kind event.EmailKind
	switch c.Param("scope") {
	case "sign":
		kind = event.EmailSign
	case "reset":
		kind = event.EmailReset
	default:
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid scope"})
		return
	}

	h.pub.Email(c.Request.Context(), event.EmailEvent{Kind: kind, Address: req.Email})
	c.JSON(http.StatusAccepted, gin.H{"msg": "queued"})
}
