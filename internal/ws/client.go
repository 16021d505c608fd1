package ws

import (
	"sync"

	"golang.org/x/net/websocket"
)

const sendBuffer = 64

// Client is one authenticated socket. Topics are tracked so the hub can drop
// every subscription when the socket goes away.
type Client struct {
	conn     *websocket.Conn
	lenderID string
	out      chan []byte

	mu     sync.RWMutex
	topics map[string]struct{}
	closed bool
}

func NewClient(conn *websocket.Conn, lenderID string) *Client {
	return &Client{
		conn:     conn,
		lenderID: lenderID,
		out:      make(chan []byte, sendBuffer),
		topics:   map[string]struct{}{},
	}
}

func (c *Client) LenderID() string {
	return c.lenderID
}

// send never blocks; a client whose buffer is full is disconnected.
func (c *Client) send(payload []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.out <- payload:
	default:
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

func (c *Client) addTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = struct{}{}
}

func (c *Client) listTopics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	return out
}
