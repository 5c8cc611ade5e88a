package sdk

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// EventHandler is invoked for incoming messages of a registered type.
type EventHandler func(*Message)

// WSClient is the low-level socket client. Most bots use Bot instead and
// never touch this directly.
type WSClient struct {
	serverURL string
	logger    *log.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	handlers  map[MessageType][]EventHandler
	connected bool
	done      chan struct{}
}

// NewWSClient creates a client for the given server URL. http(s) schemes
// are converted to ws(s).
func NewWSClient(serverURL string, logger *log.Logger) *WSClient {
	return &WSClient{
		serverURL: serverURL,
		logger:    logger.WithPrefix("ws"),
		handlers:  make(map[MessageType][]EventHandler),
		done:      make(chan struct{}),
	}
}

// Connect dials the server and starts the message reader.
func (c *WSClient) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c.logger.Info("connecting", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", u.String(), err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readMessages()
	return nil
}

// Disconnect closes the socket cleanly.
func (c *WSClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	close(c.done)

	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Done is closed when the connection ends, from either side.
func (c *WSClient) Done() <-chan struct{} {
	return c.done
}

// IsConnected reports whether the socket is open.
func (c *WSClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage writes one message to the server.
func (c *WSClient) SendMessage(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(msg)
}

func (c *WSClient) send(messageType MessageType, data any) error {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// AddEventHandler registers a handler for one message type. Handlers run
// on the reader goroutine in registration order.
func (c *WSClient) AddEventHandler(messageType MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[messageType] = append(c.handlers[messageType], handler)
}

func (c *WSClient) readMessages() {
	defer func() {
		c.mu.Lock()
		wasConnected := c.connected
		c.connected = false
		if wasConnected {
			close(c.done)
		}
		c.mu.Unlock()
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}
		c.dispatch(&msg)
	}
}

func (c *WSClient) dispatch(msg *Message) {
	c.mu.RLock()
	handlers := c.handlers[msg.Type]
	c.mu.RUnlock()

	for _, handler := range handlers {
		handler(msg)
	}
}

// Identify requests a seat at a match.
func (c *WSClient) Identify(botName, gameID string, chipStack int) error {
	return c.send(MessageTypeIdentify, IdentifyData{
		BotName:   botName,
		GameID:    gameID,
		ChipStack: chipStack,
	})
}

// Reconnect resumes an existing seat.
func (c *WSClient) Reconnect(gameID, playerID string) error {
	return c.send(MessageTypeReconnect, ReconnectData{GameID: gameID, PlayerID: playerID})
}

// SendAction submits a betting decision.
func (c *WSClient) SendAction(actionType string, amount int) error {
	return c.send(MessageTypeAction, ActionData{
		Action: ActionRequest{Type: actionType, Amount: amount},
	})
}

// Ping asks for a pong.
func (c *WSClient) Ping() error {
	return c.send(MessageTypePing, nil)
}

// Leave gives up the seat.
func (c *WSClient) Leave() error {
	return c.send(MessageTypeLeave, nil)
}
