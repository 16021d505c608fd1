package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/websocket"
)

const channelLedger = "ledger"

type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hub: hub, logger: logger}
}

type subscribeMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

type ackMessage struct {
	Event   string `json:"event"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
}

// HandleWebSocket upgrades an authenticated request. A client only ever
// receives events for the lender that owns its token.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	lenderID := c.GetString("user_id")
	if lenderID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized", "error": "missing_token"})
		return
	}
	websocket.Server{
		Handler: func(conn *websocket.Conn) {
			client := NewClient(conn, lenderID)
			go h.writer(client)
			h.reader(client)
		},
	}.ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) reader(client *Client) {
	defer func() {
		h.hub.UnsubscribeAll(client)
		client.close()
		_ = client.conn.Close()
	}()

	for {
		var raw string
		if err := websocket.Message.Receive(client.conn, &raw); err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			h.reply(client, ackMessage{Event: "error", Message: "invalid message"})
			continue
		}
		if strings.ToLower(strings.TrimSpace(msg.Action)) != "subscribe" {
			continue
		}
		topic := subscriptionTopic(msg, client.LenderID())
		if topic == "" {
			h.reply(client, ackMessage{Event: "error", Message: "unknown channel"})
			continue
		}
		h.hub.Subscribe(topic, client)
		h.logger.Debug("ws subscribed", "lender_id", client.LenderID(), "topic", topic)
		h.reply(client, ackMessage{Event: "subscribed", Channel: channelLedger})
	}
}

func (h *Handler) writer(client *Client) {
	for payload := range client.out {
		if err := websocket.Message.Send(client.conn, string(payload)); err != nil {
			return
		}
	}
}

func (h *Handler) reply(client *Client, msg ackMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	client.send(payload)
}

func subscriptionTopic(msg subscribeMessage, lenderID string) string {
	switch strings.ToLower(strings.TrimSpace(msg.Channel)) {
	case channelLedger:
		return LedgerTopic(lenderID)
	default:
		return ""
	}
}
