package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"starseeder/server/logging"
)

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// clientState tracks one connected observer. Clients watch and command the
// shared expedition; they own no entity of their own.
type clientState struct {
	ID            string
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// Hub owns the authoritative world, the pending command queue, and the set of
// connected clients. All world access goes through the hub mutex; the tick
// loop holds it only while stepping, never while writing to sockets.
type Hub struct {
	mu          sync.Mutex
	world       *World
	commands    []Command
	tick        uint64
	clients     map[string]*clientState
	subscribers map[string]*subscriber

	naming    *namingClient
	metrics   *metricsRecorder
	publisher logging.Publisher
	tuning    simTuning
	config    worldConfig
}

func newHub(cfg worldConfig, tuning simTuning, publisher logging.Publisher, naming *namingClient, metrics *metricsRecorder) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Hub{
		world:       newWorld(cfg, tuning, publisher),
		commands:    make([]Command, 0),
		clients:     make(map[string]*clientState),
		subscribers: make(map[string]*subscriber),
		naming:      naming,
		metrics:     metrics,
		publisher:   publisher,
		tuning:      tuning,
		config:      cfg,
	}
}

// Join registers a new observer and returns the full world snapshot.
func (h *Hub) Join() joinResponse {
	clientID := uuid.NewString()

	h.mu.Lock()
	h.clients[clientID] = &clientState{ID: clientID, lastHeartbeat: time.Now()}
	probes, systems := h.world.Snapshot()
	pool := h.world.SciencePool()
	seed := h.world.seed
	h.mu.Unlock()

	return joinResponse{
		Ver:         ProtocolVersion,
		ID:          clientID,
		Probes:      probes,
		Systems:     systems,
		SciencePool: pool,
		Seed:        seed,
		TickRate:    tickRate,
	}
}

// Subscribe attaches a websocket to a joined client, replacing any previous
// connection, and returns the initial state message to send.
func (h *Hub) Subscribe(clientID string, conn *websocket.Conn) (*subscriber, stateMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.clients[clientID]
	if !ok {
		return nil, stateMessage{}, false
	}
	state.lastHeartbeat = time.Now()

	if existing, ok := h.subscribers[clientID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	h.subscribers[clientID] = sub

	probes, systems := h.world.Snapshot()
	initial := stateMessage{
		Ver:         ProtocolVersion,
		Type:        "state",
		Tick:        h.tick,
		ServerTime:  time.Now().UnixMilli(),
		Probes:      probes,
		Systems:     systems,
		SciencePool: h.world.SciencePool(),
		Patches:     []Patch{},
	}
	return sub, initial, true
}

// Disconnect drops a client and closes its socket. The expedition carries on
// without it.
func (h *Hub) Disconnect(clientID string) {
	h.mu.Lock()
	sub, subOK := h.subscribers[clientID]
	if subOK {
		delete(h.subscribers, clientID)
	}
	delete(h.clients, clientID)
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
}

// EnqueueCommand stages a command for the next tick. Returns false when the
// client is unknown.
func (h *Hub) EnqueueCommand(clientID string, cmd Command) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[clientID]; !ok {
		return false
	}
	cmd.OriginTick = h.tick
	cmd.IssuedAt = time.Now()
	h.commands = append(h.commands, cmd)
	return true
}

// UpdateHeartbeat refreshes a client's liveness window and records its RTT.
func (h *Hub) UpdateHeartbeat(clientID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.clients[clientID]
	if !ok {
		return 0, false
	}
	state.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

// step advances the world one tick under the hub lock and returns the outbound
// state message plus any sockets that timed out.
func (h *Hub) step(now time.Time, dt float64) (stateMessage, []*subscriber) {
	results := h.naming.Drain()

	h.mu.Lock()
	h.tick++

	if len(results) > 0 {
		h.world.applyNameResults(results)
	}

	commands := h.commands
	h.commands = make([]Command, 0, cap(commands))

	h.world.Step(h.tick, now, dt, commands)
	patches := h.world.journal.DrainPatches()
	requests := h.world.flushNameRequests()

	probes, systems := h.world.Snapshot()
	msg := stateMessage{
		Ver:         ProtocolVersion,
		Type:        "state",
		Tick:        h.tick,
		ServerTime:  now.UnixMilli(),
		Probes:      probes,
		Systems:     systems,
		SciencePool: h.world.SciencePool(),
		Patches:     patches,
	}

	h.metrics.Sample(h.world, len(patches))

	toClose := make([]*subscriber, 0)
	for id, state := range h.clients {
		if now.Sub(state.lastHeartbeat) > disconnectAfter {
			if sub, ok := h.subscribers[id]; ok {
				toClose = append(toClose, sub)
				delete(h.subscribers, id)
			}
			delete(h.clients, id)
			log.Printf("disconnecting %s due to heartbeat timeout", id)
		}
	}
	h.mu.Unlock()

	// External lookups launch after the lock drops; results reconcile on a
	// later tick.
	h.naming.Dispatch(requests)

	return msg, toClose
}

// RunSimulation drives the fixed-rate tick loop until stop closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(tickRate)
			}
			last = now

			msg, toClose := h.step(now, dt)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.broadcastState(msg)

			h.mu.Lock()
			telemetry := h.world.telemetry
			h.mu.Unlock()
			telemetry.RecordTickDuration(time.Since(now))
		}
	}
}

func (h *Hub) broadcastState(msg stateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	telemetry := h.world.telemetry
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id)
			continue
		}
		telemetry.RecordBroadcast(len(data))
	}
}

// BuildSnapshot captures the world for persistence.
func (h *Hub) BuildSnapshot() SnapshotDocument {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.BuildSnapshot()
}

// RestoreWorld atomically swaps in a world rebuilt from a snapshot. On error
// the running world is untouched.
func (h *Hub) RestoreWorld(doc SnapshotDocument) error {
	restored, err := restoreWorld(doc, h.tuning, h.publisher)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.world = restored
	h.tick = restored.currentTick
	h.commands = h.commands[:0]
	h.mu.Unlock()
	return nil
}

// ResetWorld discards the current world and starts a fresh expedition.
func (h *Hub) ResetWorld(cfg worldConfig) {
	fresh := newWorld(cfg, h.tuning, h.publisher)

	h.mu.Lock()
	h.world = fresh
	h.config = cfg.normalized()
	h.tick = 0
	h.commands = h.commands[:0]
	h.mu.Unlock()
}

type diagnosticsClient struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

type diagnosticsSnapshot struct {
	Status      string              `json:"status"`
	ServerTime  int64               `json:"serverTime"`
	Tick        uint64              `json:"tick"`
	TickRate    int                 `json:"tickRate"`
	Probes      int                 `json:"probes"`
	Systems     int                 `json:"systems"`
	SciencePool float64             `json:"sciencePool"`
	PendingName int                 `json:"pendingNameLookups"`
	Clients     []diagnosticsClient `json:"clients"`
	Telemetry   telemetrySnapshot   `json:"telemetry"`
}

// DiagnosticsSnapshot summarizes hub and world health for the HTTP endpoint.
func (h *Hub) DiagnosticsSnapshot() diagnosticsSnapshot {
	h.mu.Lock()
	snapshot := diagnosticsSnapshot{
		Status:      "ok",
		ServerTime:  time.Now().UnixMilli(),
		Tick:        h.tick,
		TickRate:    tickRate,
		Probes:      len(h.world.probes),
		Systems:     len(h.world.systems),
		SciencePool: h.world.sciencePool,
		Clients:     make([]diagnosticsClient, 0, len(h.clients)),
		Telemetry:   h.world.telemetry.Snapshot(),
	}
	for _, state := range h.clients {
		snapshot.Clients = append(snapshot.Clients, diagnosticsClient{
			ID:            state.ID,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	h.mu.Unlock()

	snapshot.PendingName = h.naming.PendingCount()
	return snapshot
}
