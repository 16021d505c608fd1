package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const ledgerTopicPrefix = "lender:ledger:"

// LedgerTopic is the topic carrying ledger changes for one lender.
func LedgerTopic(lenderID string) string {
	return ledgerTopicPrefix + lenderID
}

// Event is the frame pushed to subscribers.
type Event struct {
	Event string    `json:"event"`
	Data  any       `json:"data"`
	At    time.Time `json:"at"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Client]struct{}
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{subscribers: map[string]map[*Client]struct{}{}, logger: logger}
}

func (h *Hub) Subscribe(topic string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[topic]; !ok {
		h.subscribers[topic] = map[*Client]struct{}{}
	}
	h.subscribers[topic][client] = struct{}{}
	client.addTopic(topic)
}

func (h *Hub) UnsubscribeAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range client.listTopics() {
		if subs, ok := h.subscribers[topic]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscribers, topic)
			}
		}
	}
}

func (h *Hub) Publish(topic string, payload []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.subscribers[topic]))
	for c := range h.subscribers[topic] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.send(payload)
	}
}

// PublishLedgerEvent fans a ledger change out to the lender's subscribers.
func (h *Hub) PublishLedgerEvent(lenderID, event string, data any) {
	payload, err := json.Marshal(Event{Event: event, Data: data, At: time.Now().UTC()})
	if err != nil {
		h.logger.Error("ws marshal failed", "event", event, "error", err)
		return
	}
	h.Publish(LedgerTopic(lenderID), payload)
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}
