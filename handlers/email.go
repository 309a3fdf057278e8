package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskade/taskade-backend/logger"
	"github.com/taskade/taskade-backend/mailer"
	"go.uber.org/zap"
)

type EmailHandler struct {
	sender   mailer.Sender
	receiver string
}

func NewEmailHandler(sender mailer.Sender, receiver string) *EmailHandler {
	return &EmailHandler{
		sender:   sender,
		receiver: receiver,
	}
}

// ContactHandler - POST /email
// Relays a contact-form submission to the configured receiver address. The
// body keeps a distinguishable success/failed message either way, the
// status code tells them apart.
func (handler *EmailHandler) ContactHandler(c *gin.Context) {
	var form struct {
		UserEmail   string `json:"userEmail"`
		UserMessage string `json:"userMessage"`
		UserName    string `json:"userName"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := mailer.Message{
		From:    form.UserEmail,
		To:      handler.receiver,
		Subject: fmt.Sprintf("tasKade new message from %s %s", form.UserName, form.UserEmail),
		Text:    form.UserMessage,
		HTML:    fmt.Sprintf("<div><p>%s</p></div>", form.UserMessage),
	}

	if err := handler.sender.Send(msg); err != nil {
		logger.FromCtx(c.Request.Context()).Error("contact email send failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "success"})
}
