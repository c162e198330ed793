package websocket

import (
	"encoding/json"
	"fmt"
	"math"

	"triplemerge/internal/game"
	"triplemerge/internal/i18n"
	"triplemerge/pkg/models"
)

// inboundMessage is a client message whose payload is decoded per type
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// handleMessage handles incoming WebSocket messages
func (c *Client) handleMessage(message inboundMessage) {
	switch message.Type {
	case models.MessageMove:
		c.handleMove(message.Data)
	case models.MessageRestart:
		c.queueInput(game.Input{Kind: game.InputRestart})
	case models.MessageKeepPlaying:
		c.queueInput(game.Input{Kind: game.InputKeepPlaying})
	case models.MessageGetLeaderboard:
		c.handleGetLeaderboard(message.Data)
	default:
		c.sendError(i18n.KeyUnknownMessage)
	}
}

// queueInput hands an input to the play loop without blocking the reader
func (c *Client) queueInput(in game.Input) {
	select {
	case c.inputs <- in:
	default:
		c.sendError(i18n.KeyBusy)
	}
}

// handleMove handles move requests from clients
func (c *Client) handleMove(data json.RawMessage) {
	var moveRequest models.MoveRequest
	if err := json.Unmarshal(data, &moveRequest); err != nil {
		c.sendError(i18n.KeyInvalidMessage)
		return
	}

	direction, err := parseDirection(moveRequest.Direction)
	if err != nil {
		c.log.Debug().Err(err).Msg("rejected move")
		c.sendError(i18n.KeyInvalidDirection)
		return
	}

	c.queueInput(game.MoveInput(direction))
}

// parseDirection accepts a direction name or its numeric code
func parseDirection(v interface{}) (game.Direction, error) {
	switch d := v.(type) {
	case string:
		return game.ParseDirection(d)
	case float64:
		if d != math.Trunc(d) {
			return 0, fmt.Errorf("%w: %v", game.ErrInvalidDirection, d)
		}
		direction := game.Direction(int(d))
		if _, err := direction.Vector(); err != nil {
			return 0, err
		}
		return direction, nil
	}
	return 0, fmt.Errorf("%w: %v", game.ErrInvalidDirection, v)
}

// handleGetLeaderboard handles leaderboard requests
func (c *Client) handleGetLeaderboard(data json.RawMessage) {
	leaderboardRequest := models.LeaderboardRequest{Type: models.LeaderboardDaily}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &leaderboardRequest); err != nil {
			c.sendError(i18n.KeyInvalidMessage)
			return
		}
	}

	if !leaderboardRequest.Type.Valid() {
		c.sendError(i18n.KeyInvalidLeaderboard)
		return
	}

	entries, err := c.hub.leaderboards.Leaderboard(leaderboardRequest.Type, leaderboardRequest.Limit)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to get leaderboard")
		c.sendError(i18n.KeyLeaderboardFailed)
		return
	}

	c.sendMessage(models.WebSocketMessage{
		Type: models.MessageLeaderboard,
		Data: models.LeaderboardResponse{
			Type:     leaderboardRequest.Type,
			Rankings: entries,
		},
	})
}
