package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"triplemerge/internal/auth"
	"triplemerge/internal/cache"
	"triplemerge/internal/config"
	"triplemerge/internal/database"
	"triplemerge/internal/game"
	"triplemerge/internal/handlers"
	"triplemerge/internal/i18n"
	"triplemerge/internal/scores"
	"triplemerge/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// LeaderboardSource serves leaderboard pages
type LeaderboardSource interface {
	Leaderboard(lbType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	db           database.Database
	cache        cache.Cache
	tokens       *auth.TokenService
	leaderboards LeaderboardSource
	i18n         *i18n.I18n

	boardSize   int
	startTiles  int
	gameOptions func() []game.Option

	// Mutex for thread safety
	mutex sync.RWMutex
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithGameOptions adds engine options to every new game
func WithGameOptions(opts func() []game.Option) HubOption {
	return func(h *Hub) {
		h.gameOptions = opts
	}
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are enforced by the CORS layer
		return true
	},
}

// NewHub creates a new WebSocket hub; c may be nil
func NewHub(cfg *config.Config, db database.Database, c cache.Cache, tokens *auth.TokenService,
	leaderboards LeaderboardSource, tr *i18n.I18n, opts ...HubOption) *Hub {
	h := &Hub{
		clients:      make(map[*Client]bool),
		broadcast:    make(chan []byte, 16),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		db:           db,
		cache:        c,
		tokens:       tokens,
		leaderboards: leaderboards,
		i18n:         tr,
		boardSize:    cfg.Game.BoardSize,
		startTiles:   cfg.Game.StartTiles,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub and stops when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			client.log.Info().Msg("client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.log.Info().Msg("client disconnected")
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				client.trySend(message)
			}
			h.mutex.RUnlock()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles WebSocket connections
func (h *Hub) HandleWebSocket(c *gin.Context) {
	token := handlers.TokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing authentication token"})
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid authentication token"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := newClient(h, conn, claims.PlayerID, i18n.GetLanguage(c))

	var gameOpts []game.Option
	if h.gameOptions != nil {
		gameOpts = h.gameOptions()
	}
	gameOpts = append(gameOpts,
		game.WithStartTiles(h.startTiles),
		game.WithLogger(client.log),
	)

	// Setup actuates the first board straight into the send buffer
	store := scores.NewPlayerStore(claims.PlayerID, h.cache, h.db, client.log)
	client.manager = game.NewManager(h.boardSize, client, store, gameOpts...)

	// Register client
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	go client.writePump()
	go client.play(ctx)
	go client.readPump(cancel)
}

// recordGame stores a finished game and refreshes leaderboards
func (h *Hub) recordGame(record *models.GameRecord) error {
	if err := h.db.SaveGame(record); err != nil {
		return err
	}

	if h.cache != nil {
		if err := cache.InvalidateLeaderboards(h.cache); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate leaderboard caches")
		}
	}

	go h.broadcastLeaderboardUpdate(models.LeaderboardAll)
	return nil
}

// broadcastLeaderboardUpdate broadcasts leaderboard updates to all connected clients
func (h *Hub) broadcastLeaderboardUpdate(leaderboardType models.LeaderboardType) {
	entries, err := h.leaderboards.Leaderboard(leaderboardType, 10)
	if err != nil {
		log.Warn().Err(err).Msg("failed to get leaderboard for broadcast")
		return
	}

	data, err := json.Marshal(models.WebSocketMessage{
		Type: models.MessageLeaderboardUpdate,
		Data: models.LeaderboardResponse{
			Type:     leaderboardType,
			Rankings: entries,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal leaderboard update")
		return
	}

	// Broadcast to all clients
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}
