package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/ident"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one bot socket. A connection is anonymous until an
// identify or reconnect binds it to a seat.
type Connection struct {
	conn   *websocket.Conn
	send   chan *Message
	logger *log.Logger
	server *Server
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	playerID  string
	gameID    string
	closeOnce sync.Once
}

// NewConnection wraps an upgraded socket.
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		server: server,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down. Idempotent. The send queue is handed
// to the write pump for draining, so messages queued before Close still
// reach the peer ahead of the close frame.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.send)
	})
	return nil
}

// SendMessage queues a message for the client. A full send buffer means
// the client stopped reading, so the connection is closed.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown.
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "player", c.PlayerID())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// PlayerID returns the bound player id, empty before identification.
func (c *Connection) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GameID returns the bound game id, empty before identification.
func (c *Connection) GameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

func (c *Connection) bind(gameID, playerID string) {
	c.mu.Lock()
	c.gameID = gameID
	c.playerID = playerID
	c.mu.Unlock()
}

func (c *Connection) identified() bool {
	return c.PlayerID() != ""
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// A closed buffered channel delivers what was queued before
				// reporting closure, so the close frame goes out last.
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.PlayerID())

	switch msg.Type {
	case MessageTypeIdentify:
		var data IdentifyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("InvalidMessage", "failed to parse identify data")
			return
		}
		c.handleIdentify(data)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("InvalidMessage", "failed to parse action data")
			return
		}
		c.handleAction(data)

	case MessageTypePing:
		c.handlePing()

	case MessageTypeReconnect:
		var data ReconnectData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("InvalidMessage", "failed to parse reconnect data")
			return
		}
		c.handleReconnect(data)

	case MessageTypeLeave:
		c.handleLeave()

	default:
		c.sendError("UnknownMessageType", "unknown message type: "+msg.Type.String())
	}
}

// handleIdentify seats the bot. The server assigns the player id; botName
// is only a display name.
func (c *Connection) handleIdentify(data IdentifyData) {
	if c.identified() {
		c.sendError("AlreadyIdentified", "connection already identified")
		return
	}
	if data.BotName == "" || data.GameID == "" {
		c.sendError("InvalidMessage", "identify requires botName and gameId")
		return
	}

	playerID := ident.WithPrefix("p")
	if err := c.server.controller.AddPlayer(data.GameID, playerID, data.BotName, data.ChipStack); err != nil {
		c.sendError(game.ErrorCode(err), err.Error())
		return
	}

	c.bind(data.GameID, playerID)
	c.server.attach(c)

	c.logger.Info("bot identified", "bot", data.BotName, "player", playerID, "game", data.GameID)

	c.sendPayload(MessageTypeIdentificationSuccess, IdentificationSuccessData{PlayerID: playerID})
	c.sendGameState()
}

// handleAction forwards a betting decision to the match.
func (c *Connection) handleAction(data ActionData) {
	if !c.identified() {
		c.sendError("NotIdentified", "identify before acting")
		return
	}

	actionType, err := game.ParseActionType(data.Action.Type)
	if err != nil {
		c.sendError("IllegalAction", err.Error())
		return
	}

	action := game.Action{
		Type:      actionType,
		Amount:    data.Action.Amount,
		PlayerID:  c.PlayerID(),
		Timestamp: time.Now(),
	}
	if err := c.server.controller.ProcessAction(c.GameID(), action); err != nil {
		c.sendError(game.ErrorCode(err), err.Error())
		return
	}

	c.sendPayload(MessageTypeActionSuccess, ActionSuccessData{Action: data.Action})
}

func (c *Connection) handlePing() {
	msg, err := NewMessage(MessageTypePong, nil)
	if err != nil {
		return
	}
	_ = c.SendMessage(msg)
}

// handleReconnect re-binds a dropped bot to its existing seat.
func (c *Connection) handleReconnect(data ReconnectData) {
	if c.identified() {
		c.sendError("AlreadyIdentified", "connection already identified")
		return
	}

	snap, err := c.server.controller.Snapshot(data.GameID, game.PlayerViewer(data.PlayerID))
	if err != nil {
		c.sendError(game.ErrorCode(err), err.Error())
		return
	}

	seated := false
	for _, p := range snap.Players {
		if p.PlayerID == data.PlayerID {
			seated = true
			break
		}
	}
	if !seated {
		c.sendError(game.ErrorCode(game.ErrPermissionDenied), "no seat for player "+data.PlayerID)
		return
	}

	c.bind(data.GameID, data.PlayerID)
	c.server.attach(c)

	c.logger.Info("bot reconnected", "player", data.PlayerID, "game", data.GameID)

	c.sendPayload(MessageTypeIdentificationSuccess, IdentificationSuccessData{PlayerID: data.PlayerID})
	c.sendGameState()
}

// handleLeave removes the seat and closes the socket.
func (c *Connection) handleLeave() {
	if !c.identified() {
		c.sendError("NotIdentified", "identify before leaving")
		return
	}

	if err := c.server.controller.RemovePlayer(c.GameID(), c.PlayerID()); err != nil {
		c.sendError(game.ErrorCode(err), err.Error())
		return
	}

	c.sendPayload(MessageTypeDisconnect, DisconnectData{Reason: "leave_requested"})
	_ = c.Close()
}

func (c *Connection) sendGameState() {
	snap, err := c.server.controller.Snapshot(c.GameID(), game.PlayerViewer(c.PlayerID()))
	if err != nil {
		c.sendError(game.ErrorCode(err), err.Error())
		return
	}
	c.sendPayload(MessageTypeGameState, GameStateData{GameState: snap})
}

func (c *Connection) sendPayload(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("failed to encode message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(code, message string) {
	c.sendPayload(MessageTypeError, ErrorData{Message: message, Code: code})
}
