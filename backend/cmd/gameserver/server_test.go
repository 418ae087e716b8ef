package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/config"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/types"
	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/simulation"
)

func newTestServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	s := newServer(cfg, zerolog.Nop())
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?player_id=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, env types.ClientEnvelope) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(env))
}

func receive(t *testing.T, conn *websocket.Conn, wantType string) types.ServerEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var env types.ServerEnvelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == wantType {
			return env
		}
	}
}

func TestHelloSpawnsVehicleAndPaceBot(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "p1")

	send(t, conn, types.ClientEnvelope{Type: "hello", Hello: &types.Hello{DisplayName: "Rider"}})
	welcome := receive(t, conn, "welcome")

	assert.Equal(t, "p1", welcome.PlayerID)
	assert.Contains(t, welcome.Archetypes, "default")
	require.NotNil(t, welcome.State)
	assert.Len(t, welcome.State.Vehicles, 2, "a single human gets a pace bot")
	assert.Equal(t, "Rider", welcome.State.Vehicles["p1"].DisplayName)
	assert.True(t, welcome.State.Vehicles["p1"].IsGrounded)
}

func TestHelloWithUnknownArchetype(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "p1")

	send(t, conn, types.ClientEnvelope{Type: "hello", Hello: &types.Hello{Archetype: "hovercraft"}})
	env := receive(t, conn, "error")
	assert.Equal(t, "unknown_archetype", env.Message)
}

func TestInputBeforeHelloIsRejected(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "p1")

	send(t, conn, types.ClientEnvelope{Type: "input", Input: &types.VehicleInput{Throttle: 1}})
	env := receive(t, conn, "error")
	assert.Equal(t, "hello_required", env.Message)
}

func TestPing(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "p1")

	send(t, conn, types.ClientEnvelope{Type: "ping"})
	env := receive(t, conn, "pong")
	assert.NotZero(t, env.ServerMS)
}

func TestInputDrivesVehicleAndIsAcked(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts, "p1")
	send(t, conn, types.ClientEnvelope{Type: "hello"})
	receive(t, conn, "welcome")

	send(t, conn, types.ClientEnvelope{Type: "input", Input: &types.VehicleInput{Sequence: 7, Throttle: 1}})
	require.Eventually(t, func() bool {
		return s.world.AckedSequence("p1") == 7
	}, 2*time.Second, 10*time.Millisecond)

	for i := 0; i < 50; i++ {
		s.advance(s.stepper.Step())
	}
	s.replicate()

	state := receive(t, conn, "state")
	assert.Equal(t, uint64(7), state.AckSeq)
	require.NotNil(t, state.State)
	car := state.State.Vehicles["p1"]
	assert.Greater(t, car.ForwardSpeed, 10.0)
	assert.Equal(t, 1.0, car.LastInput.Throttle)
}

func TestDuplicatePlayerIsRejected(t *testing.T) {
	_, ts := newTestServer(t)
	first := dial(t, ts, "p1")
	send(t, first, types.ClientEnvelope{Type: "ping"})
	receive(t, first, "pong")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?player_id=p1"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterClaimsPlayerIDOnce(t *testing.T) {
	s, _ := newTestServer(t)

	var claimed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.register(&client{playerID: "p1", send: make(chan []byte, 1)}) {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), claimed.Load())
	assert.Len(t, s.clients, 1)
}

func TestDisconnectDespawnsAndRemovesBot(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts, "p1")
	send(t, conn, types.ClientEnvelope{Type: "hello"})
	receive(t, conn, "welcome")

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	require.Eventually(t, func() bool {
		return len(s.world.Snapshot().Vehicles) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthAndMetrics(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts, "p1")
	send(t, conn, types.ClientEnvelope{Type: "hello"})
	receive(t, conn, "welcome")
	for i := 0; i < 10; i++ {
		s.advance(s.stepper.Step())
	}

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	_ = resp.Body.Close()
	assert.Equal(t, "ok", health["status"])

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "horsegame_sim_ticks_total 10\n")
	assert.Contains(t, text, "horsegame_vehicle_grounded_ticks_total 20\n")
	assert.Contains(t, text, "horsegame_vehicle_airborne_ticks_total 0\n")
	assert.Contains(t, text, "horsegame_vehicles 2\n")
	assert.Contains(t, text, "horsegame_clients 1\n")
}

func TestReplicationCarriesEventsOnce(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.world.Spawn(simulation.VehicleSpawn{PlayerID: "p1"})
	require.NoError(t, err)

	body, ok := s.world.Body("p1")
	require.True(t, ok)
	body.Teleport(body.Position().Add(mgl64.Vec3{0, 3, 0}), body.Rotation())

	for i := 0; i < 100; i++ {
		s.advance(s.stepper.Step())
	}
	events := s.takePending()
	var kinds []string
	for _, ev := range events {
		kinds = append(kinds, ev.Type)
	}
	assert.Contains(t, kinds, "landed")
	assert.Empty(t, s.takePending())
}
