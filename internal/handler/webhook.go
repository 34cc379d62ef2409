package handler

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle/internal/service"
)

// WebhookHandler answers inbound chat messages.
type WebhookHandler struct {
	inboundService *service.InboundService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(inboundService *service.InboundService) *WebhookHandler {
	return &WebhookHandler{inboundService: inboundService}
}

// messagingResponse is the XML reply the messaging provider relays to the sender.
type messagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// Receive handles POST /webhook/messages
func (h *WebhookHandler) Receive(c *gin.Context) {
	msg := service.InboundMessage{
		From: c.PostForm("From"),
		Name: c.PostForm("ProfileName"),
		Body: c.PostForm("Body"),
	}
	if msg.From == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "From is required"})
		return
	}

	reply := h.inboundService.Handle(c.Request.Context(), msg)
	c.XML(http.StatusOK, messagingResponse{Message: reply})
}
