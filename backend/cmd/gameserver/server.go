package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/config"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/logger"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/types"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/simulation"
)

type client struct {
	playerID string
	conn     *websocket.Conn
	send     chan []byte

	// spawned is only touched by the client's read pump.
	spawned bool
}

type server struct {
	log      logger.Logger
	cfg      *config.Config
	world    *simulation.World
	stepper  *simulation.FixedStepper
	metrics  *eventCounter
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client

	pendingMu sync.Mutex
	pending   []types.GameplayEvent
}

func newServer(cfg *config.Config, log logger.Logger) *server {
	matchID := "match_" + uuid.NewString()
	return &server{
		log: log,
		cfg: cfg,
		world: simulation.NewWorld(matchID, simulation.FlatTrack(), cfg.Archetypes(),
			simulation.WithLogger(log),
			simulation.WithInputStaleAfter(cfg.InputStaleAfter)),
		stepper: simulation.NewFixedStepper(cfg.TickDuration(), cfg.MaxCatchUpTicks),
		metrics: newEventCounter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*client),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = "guest_" + uuid.NewString()[:8]
	}

	c := &client{playerID: playerID, send: make(chan []byte, 64)}
	if !s.register(c) {
		http.Error(w, "player already connected", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade error")
		s.unregister(c)
		return
	}
	c.conn = conn
	s.metrics.connected()
	s.log.Info().Str("player", playerID).Str("remote", r.RemoteAddr).Msg("client connected")

	go s.writePump(c)
	s.readPump(c)
}

func (s *server) readPump(c *client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Info().Str("player", c.playerID).Msg("client disconnected")
				return
			}
			s.log.Warn().Err(err).Str("player", c.playerID).Msg("read error")
			return
		}

		var in types.ClientEnvelope
		if err := json.Unmarshal(msg, &in); err != nil {
			s.sendError(c, "bad_payload")
			continue
		}

		switch in.Type {
		case "hello":
			s.handleHello(c, in.Hello)
		case "input":
			if !c.spawned {
				s.sendError(c, "hello_required")
				continue
			}
			if in.Input == nil {
				s.sendError(c, "missing_input")
				continue
			}
			in.Input.PlayerID = c.playerID
			s.world.ApplyInput(*in.Input)
		case "ping":
			s.sendEnvelope(c, types.ServerEnvelope{Type: "pong", ServerMS: time.Now().UTC().UnixMilli()})
		default:
			s.sendError(c, "unsupported_message_type")
		}
	}
}

func (s *server) handleHello(c *client, hello *types.Hello) {
	spawn := simulation.VehicleSpawn{PlayerID: c.playerID}
	if hello != nil {
		spawn.DisplayName = hello.DisplayName
		spawn.Archetype = hello.Archetype
	}
	if _, err := s.world.Spawn(spawn); err != nil {
		if errors.Is(err, simulation.ErrUnknownArchetype) {
			s.sendError(c, "unknown_archetype")
			return
		}
		s.log.Error().Err(err).Str("player", c.playerID).Msg("spawn failed")
		s.sendError(c, "spawn_failed")
		return
	}
	c.spawned = true
	s.maintainBotBalance()

	state := s.world.Snapshot()
	s.sendEnvelope(c, types.ServerEnvelope{
		Type:       "welcome",
		PlayerID:   c.playerID,
		Archetypes: s.world.Archetypes(),
		Tick:       state.Tick,
		State:      &state,
		ServerMS:   time.Now().UTC().UnixMilli(),
		Message:    "connected",
	})
}

func (s *server) writePump(c *client) {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

// register claims c's player id. It reports false when the id is already
// connected.
func (s *server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.clients[c.playerID]; taken {
		return false
	}
	s.clients[c.playerID] = c
	return true
}

func (s *server) unregister(c *client) {
	s.mu.Lock()
	if cur, ok := s.clients[c.playerID]; ok && cur == c {
		close(c.send)
		delete(s.clients, c.playerID)
	}
	s.mu.Unlock()

	if c.spawned {
		s.world.Despawn(c.playerID)
		s.maintainBotBalance()
	}
}

func (s *server) sendEnvelope(c *client, env types.ServerEnvelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		s.log.Error().Err(err).Str("type", env.Type).Msg("marshal envelope failed")
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (s *server) sendError(c *client, message string) {
	s.sendEnvelope(c, types.ServerEnvelope{Type: "error", Message: message})
}

// runSimulationLoop latches input once per wake-up and then runs however
// many fixed ticks the elapsed wall time calls for.
func (s *server) runSimulationLoop(ctx context.Context) {
	ticker := time.NewTicker(s.stepper.Step())
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.advance(now.Sub(last))
			last = now
		}
	}
}

// advance samples input and runs the fixed ticks due for elapsed.
func (s *server) advance(elapsed time.Duration) int {
	s.world.Sample()
	n := s.stepper.Advance(elapsed)
	for i := 0; i < n; i++ {
		s.world.Tick(s.stepper.Seconds())
		events := s.world.Events()
		if len(events) == 0 {
			continue
		}
		s.metrics.observe(events)
		s.pendingMu.Lock()
		s.pending = append(s.pending, events...)
		s.pendingMu.Unlock()
	}
	return n
}

func (s *server) runReplicationLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReplicationInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.replicate()
		}
	}
}

// replicate sends one state snapshot, carrying every event raised since the
// previous one, to each connected client.
func (s *server) replicate() {
	state := s.world.Snapshot()
	state.Events = s.takePending()
	now := time.Now().UTC().UnixMilli()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, c := range s.clients {
		s.sendEnvelope(c, types.ServerEnvelope{
			Type:     "state",
			Tick:     state.Tick,
			State:    &state,
			ServerMS: now,
			AckSeq:   s.world.AckedSequence(id),
		})
	}
}

func (s *server) takePending() []types.GameplayEvent {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	out := s.pending
	s.pending = nil
	if out == nil {
		out = []types.GameplayEvent{}
	}
	return out
}

// maintainBotBalance keeps a pace bot on track while exactly one human is
// driving.
func (s *server) maintainBotBalance() {
	if s.world.HumanCount() == 1 {
		if id := s.world.EnsureBot(); id != "" {
			s.log.Debug().Str("bot", id).Msg("pace bot active")
		}
		return
	}
	s.world.RemoveAllBots()
}
