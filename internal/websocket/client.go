package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"triplemerge/internal/game"
	"triplemerge/internal/i18n"
	"triplemerge/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	inputBuffer    = 16
)

// Client is one player's websocket session. It feeds the player's inputs
// to its own game and renders every actuation back over the socket.
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Closed once the connection is finished
	done      chan struct{}
	closeOnce sync.Once

	// Pending game inputs, applied in order by play
	inputs chan game.Input

	playerID string
	lang     string
	log      zerolog.Logger

	// Owned by the play goroutine after setup
	manager  *game.Manager
	recorded bool

	// Hub reference
	hub *Hub
}

var _ game.Actuator = (*Client)(nil)

func newClient(h *Hub, conn *websocket.Conn, playerID, lang string) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		inputs:   make(chan game.Input, inputBuffer),
		playerID: playerID,
		lang:     lang,
		log:      log.With().Str("player", playerID).Logger(),
		hub:      h,
	}
}

// Actuate sends the board and status to the player
func (c *Client) Actuate(grid game.GridState, meta game.Metadata) {
	response := models.NewGameResponse(grid, meta)
	switch {
	case meta.Over:
		response.Message = c.hub.i18n.T(c.lang, i18n.KeyOver)
	case meta.Won && meta.Terminated:
		response.Message = c.hub.i18n.T(c.lang, i18n.KeyWon)
	}

	c.sendMessage(models.WebSocketMessage{
		Type: models.MessageGameState,
		Data: response,
	})
}

// Continue tells the player to clear any win or game over overlay
func (c *Client) Continue() {
	c.sendMessage(models.WebSocketMessage{
		Type: models.MessageContinue,
		Data: gin.H{"message": c.hub.i18n.T(c.lang, i18n.KeyContinue)},
	})
}

// sendMessage sends a message to the client
func (c *Client) sendMessage(message models.WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		c.log.Error().Err(err).Msg("error marshaling message")
		return
	}
	c.trySend(data)
}

// trySend queues data without blocking; a client that stops reading is dropped
func (c *Client) trySend(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.log.Warn().Msg("send buffer full, closing connection")
		c.close()
	}
}

// close ends the session; safe to call more than once
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// sendError sends a localized error message to the client
func (c *Client) sendError(key string) {
	c.sendMessage(models.WebSocketMessage{
		Type: models.MessageError,
		Data: models.ErrorResponse{
			Message: c.hub.i18n.T(c.lang, key),
			Code:    key,
		},
	})
}

// play applies inputs to the game one at a time
func (c *Client) play(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-c.inputs:
			if c.startsNewRecord(in) {
				c.recorded = false
			}
			if err := c.manager.Handle(in); err != nil {
				c.log.Debug().Err(err).Msg("input rejected")
				c.sendError(i18n.KeyInvalidMove)
				continue
			}
			if c.manager.IsGameTerminated() && !c.recorded {
				c.recordGame()
			}
		}
	}
}

// startsNewRecord reports whether in begins play that is recorded again
// when it ends: a new game, or a won game played on
func (c *Client) startsNewRecord(in game.Input) bool {
	switch in.Kind {
	case game.InputRestart:
		return true
	case game.InputKeepPlaying:
		return c.manager.Won() && !c.manager.Over()
	}
	return false
}

// recordGame stores the current game at its first terminal state
func (c *Client) recordGame() {
	c.recorded = true

	record := &models.GameRecord{
		PlayerID:  c.playerID,
		Score:     c.manager.Score(),
		BestTile:  c.manager.BestTile(),
		Moves:     c.manager.Moves(),
		BoardSize: c.manager.Size(),
		Won:       c.manager.Won(),
		Over:      c.manager.Over(),
		CreatedAt: time.Now().UTC(),
	}

	if err := c.hub.recordGame(record); err != nil {
		c.log.Error().Err(err).Msg("failed to record finished game")
		return
	}
	c.log.Info().Int("score", record.Score).Bool("won", record.Won).Msg("game finished")
}

// readPump pumps messages from the websocket connection to the game
func (c *Client) readPump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket error")
			}
			return
		}

		var message inboundMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			c.sendError(i18n.KeyInvalidMessage)
			continue
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
