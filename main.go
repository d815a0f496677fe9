package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"starseeder/server/logging"
	loggingSinks "starseeder/server/logging/sinks"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	var (
		addr           = flag.String("addr", envOr("ADDR", ":8080"), "listen address")
		seed           = flag.String("seed", envOr("WORLD_SEED", defaultWorldSeed), "deterministic universe seed")
		initialProbes  = flag.Int("probes", 1, "number of probes at expedition start")
		tuningPath     = flag.String("tuning", envOr("TUNING_PATH", ""), "optional tuning override file (yaml)")
		namingEndpoint = flag.String("naming", envOr("NAMING_ENDPOINT", ""), "external naming/narrative service URL")
		snapshotPath   = flag.String("snapshots", envOr("SNAPSHOT_PATH", ""), "sqlite snapshot database path (empty disables persistence)")
		metricsPath    = flag.String("metrics", envOr("METRICS_PATH", ""), "csv metrics output path (empty disables metrics)")
		schemaOut      = flag.String("write-schema", "", "write the snapshot JSON schema to this path and exit")
	)
	flag.Parse()

	if *schemaOut != "" {
		if err := writeSnapshotSchema(*schemaOut); err != nil {
			log.Fatalf("failed to write schema: %v", err)
		}
		return
	}

	if raw := os.Getenv("INITIAL_PROBES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			*initialProbes = value
		} else {
			log.Printf("invalid INITIAL_PROBES=%q: %v", raw, err)
		}
	}

	tuning, err := loadTuning(*tuningPath)
	if err != nil {
		log.Fatalf("failed to load tuning: %v", err)
	}

	logConfig := logging.DefaultConfig()
	router, err := logging.NewRouter(nil, logConfig, []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)},
	})
	if err != nil {
		log.Fatalf("failed to construct logging router: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(ctx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	cfg := worldConfig{
		Seed:           *seed,
		InitialProbes:  *initialProbes,
		TuningPath:     *tuningPath,
		NamingEndpoint: *namingEndpoint,
		SnapshotPath:   *snapshotPath,
		MetricsPath:    *metricsPath,
	}.normalized()

	naming := newNamingClient(cfg.NamingEndpoint, router)
	metrics := newMetricsRecorder(cfg.MetricsPath)

	var store *SnapshotStore
	if cfg.SnapshotPath != "" {
		store, err = OpenSnapshotStore(cfg.SnapshotPath)
		if err != nil {
			log.Fatalf("failed to open snapshot store: %v", err)
		}
		defer store.Close()
	}

	hub := newHub(cfg, tuning, router, naming, metrics)

	if store != nil {
		doc, err := store.LoadLatest()
		if err != nil {
			log.Printf("ignoring stored snapshot: %v", err)
		} else if doc != nil {
			if err := hub.RestoreWorld(*doc); err != nil {
				log.Printf("stored snapshot rejected, starting fresh: %v", err)
			} else {
				log.Printf("resumed expedition at tick %d", doc.Tick)
			}
		}
	}

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hub.DiagnosticsSnapshot())
	})

	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, hub.Join())
	})

	mux.HandleFunc("/snapshot/save", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if store == nil {
			http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
			return
		}
		doc := hub.BuildSnapshot()
		revision, err := store.Save(doc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"revision": revision, "tick": doc.Tick})
	})

	mux.HandleFunc("/snapshot/load", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if store == nil {
			http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
			return
		}
		doc, err := store.LoadLatest()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if doc == nil {
			http.Error(w, "no snapshot stored", http.StatusNotFound)
			return
		}
		if err := hub.RestoreWorld(*doc); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, map[string]any{"tick": doc.Tick})
	})

	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fresh := cfg
		if seed := r.URL.Query().Get("seed"); seed != "" {
			fresh.Seed = seed
		}
		hub.ResetWorld(fresh)
		writeJSON(w, map[string]any{"seed": fresh.Seed})
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("id")
		if clientID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed for %s: %v", clientID, err)
			return
		}

		sub, initial, ok := hub.Subscribe(clientID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown client")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		if err := sub.send(initial); err != nil {
			hub.Disconnect(clientID)
			return
		}

		readLoop(hub, clientID, sub, conn)
	})

	srv := &http.Server{Addr: *addr, Handler: mux}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		if store != nil {
			if _, err := store.Save(hub.BuildSnapshot()); err != nil {
				log.Printf("failed to save shutdown snapshot: %v", err)
			}
		}
		if err := metrics.Flush(); err != nil {
			log.Printf("failed to flush metrics: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Printf("server listening on %s (seed %q)", *addr, cfg.Seed)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// send serializes one message onto the subscriber socket under its write lock.
func (s *subscriber) send(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop consumes client messages until the socket errors out.
func readLoop(hub *Hub, clientID string, sub *subscriber, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			hub.Disconnect(clientID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", clientID, err)
			continue
		}

		switch msg.Type {
		case "heartbeat":
			now := time.Now()
			rtt, ok := hub.UpdateHeartbeat(clientID, now, msg.SentAt)
			if !ok {
				continue
			}
			ack := heartbeatMessage{
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			if err := sub.send(ack); err != nil {
				hub.Disconnect(clientID)
				return
			}
		default:
			cmd, ok := commandFromMessage(msg)
			if !ok {
				sub.send(errorMessage{Type: "error", Reason: "unknown message type"})
				continue
			}
			if !hub.EnqueueCommand(clientID, cmd) {
				log.Printf("command ignored for unknown client %s", clientID)
			}
		}
	}
}
