package main

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/Cmav0711/Untitled-Horse-Game-2/backend/internal/shared/types"
)

type eventCounter struct {
	mu          sync.RWMutex
	connections int64
	total       int64
	byType      map[string]int64
}

func newEventCounter() *eventCounter {
	return &eventCounter{byType: make(map[string]int64)}
}

func (e *eventCounter) connected() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connections++
}

func (e *eventCounter) observe(events []types.GameplayEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range events {
		e.total++
		e.byType[ev.Type]++
	}
}

type eventSummary struct {
	Connections int64
	Total       int64
	ByType      map[string]int64
}

func (e *eventCounter) summary() eventSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	byType := make(map[string]int64, len(e.byType))
	for k, v := range e.byType {
		byType[k] = v
	}
	return eventSummary{Connections: e.connections, Total: e.total, ByType: byType}
}

func (s *server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	stats := s.world.Stats()
	events := s.metrics.summary()
	s.mu.RLock()
	clients := len(s.clients)
	s.mu.RUnlock()

	counter(w, "horsegame_sim_ticks_total", "Fixed simulation ticks run", stats.Ticks)
	counter(w, "horsegame_vehicle_grounded_ticks_total", "Vehicle ticks classified grounded", stats.GroundedTicks)
	counter(w, "horsegame_vehicle_airborne_ticks_total", "Vehicle ticks classified airborne", stats.AirborneTicks)
	counter(w, "horsegame_vehicle_ground_transitions_total", "Grounded/airborne state changes", stats.Transitions)
	counter(w, "horsegame_connections_total", "Websocket connections accepted", uint64(events.Connections))

	_, _ = fmt.Fprintln(w, "# HELP horsegame_vehicles Vehicles in the world")
	_, _ = fmt.Fprintln(w, "# TYPE horsegame_vehicles gauge")
	_, _ = fmt.Fprintf(w, "horsegame_vehicles %d\n", stats.Vehicles)
	_, _ = fmt.Fprintln(w, "# HELP horsegame_clients Connected websocket clients")
	_, _ = fmt.Fprintln(w, "# TYPE horsegame_clients gauge")
	_, _ = fmt.Fprintf(w, "horsegame_clients %d\n", clients)

	_, _ = fmt.Fprintln(w, "# HELP horsegame_gameplay_events_total Gameplay events raised")
	_, _ = fmt.Fprintln(w, "# TYPE horsegame_gameplay_events_total counter")
	kinds := make([]string, 0, len(events.ByType))
	for typ := range events.ByType {
		kinds = append(kinds, typ)
	}
	sort.Strings(kinds)
	for _, typ := range kinds {
		_, _ = fmt.Fprintf(w, "horsegame_gameplay_events_total{event_type=\"%s\"} %d\n", typ, events.ByType[typ])
	}
}

func counter(w http.ResponseWriter, name, help string, v uint64) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, v)
}
