package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"starseeder/server/logging"
	"starseeder/server/logging/economy"
)

// nameRequestKind selects what the narrative service should produce.
type nameRequestKind string

const (
	nameRequestProbe      nameRequestKind = "probe_name"
	nameRequestSystemLore nameRequestKind = "system_lore"
)

// nameRequest is staged inside a tick and dispatched after it ends.
type nameRequest struct {
	Kind     nameRequestKind
	EntityID string
	Hint     string
}

// nameResult flows back from the service (or the fallback generator) and is
// reconciled by entity id before the next tick. A result for an entity that
// no longer exists is dropped as a no-op.
type nameResult struct {
	Kind     nameRequestKind
	EntityID string
	Text     string
}

const namingRequestTimeout = 3 * time.Second

// namingClient talks to the external narrative/naming service. Requests are
// fire-and-forget: they never block the tick, are never retried, and degrade
// to deterministic fallback text when the service is absent or failing.
type namingClient struct {
	endpoint  string
	client    *http.Client
	publisher logging.Publisher

	mu      sync.Mutex
	pending map[string]nameRequestKind

	results chan nameResult
}

func newNamingClient(endpoint string, publisher logging.Publisher) *namingClient {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &namingClient{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: namingRequestTimeout},
		publisher: publisher,
		pending:   make(map[string]nameRequestKind),
		results:   make(chan nameResult, 64),
	}
}

// Dispatch registers the requests in the pending table and resolves each on
// its own goroutine.
func (c *namingClient) Dispatch(requests []nameRequest) {
	if c == nil || len(requests) == 0 {
		return
	}
	c.mu.Lock()
	for _, req := range requests {
		c.pending[req.EntityID] = req.Kind
	}
	c.mu.Unlock()

	for _, req := range requests {
		go c.resolve(req)
	}
}

func (c *namingClient) resolve(req nameRequest) {
	text, err := c.lookup(req)
	if err != nil {
		economy.ExternalUnavailable(context.Background(), c.publisher, 0, logging.EntityRef{ID: req.EntityID}, economy.ExternalUnavailablePayload{
			Kind:   string(req.Kind),
			Reason: err.Error(),
		})
		text = fallbackNarrative(req)
	}
	c.deliver(nameResult{Kind: req.Kind, EntityID: req.EntityID, Text: text})
}

func (c *namingClient) lookup(req nameRequest) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("naming service not configured")
	}
	body, err := json.Marshal(map[string]string{
		"kind": string(req.Kind),
		"id":   req.EntityID,
		"hint": req.Hint,
	})
	if err != nil {
		return "", err
	}
	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("naming service returned %d", resp.StatusCode)
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Text == "" {
		return "", fmt.Errorf("naming service returned empty text")
	}
	return payload.Text, nil
}

// deliver hands a result to the drain channel without ever blocking. A full
// channel drops the result; the placeholder text simply stands.
func (c *namingClient) deliver(result nameResult) {
	select {
	case c.results <- result:
	default:
	}
}

// Drain returns any resolved results and clears their pending entries.
func (c *namingClient) Drain() []nameResult {
	if c == nil {
		return nil
	}
	var drained []nameResult
	for {
		select {
		case result := <-c.results:
			c.mu.Lock()
			delete(c.pending, result.EntityID)
			c.mu.Unlock()
			drained = append(drained, result)
		default:
			return drained
		}
	}
}

// PendingCount reports outstanding lookups; useful for diagnostics.
func (c *namingClient) PendingCount() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

var fallbackCallsigns = []string{
	"Cartographer", "Longshot", "Veil", "Harbinger", "Lodestar",
	"Drift", "Palisade", "Sojourner", "Kestrel", "Atlas",
}

var fallbackLoreTemplates = []string{
	"Spectral survey of %s notes an unremarkable main-sequence star and long-period debris rings.",
	"Automated analysis of %s flags tidally locked inner bodies and strong metallic albedo.",
	"%s shows faint fusion byproducts in its heliopause, consistent with ancient stellar flare activity.",
	"Deep-field imaging around %s resolves a sparse cometary halo and no artificial signatures.",
}

// fallbackNarrative produces deterministic text keyed on the entity id so a
// degraded service still yields stable names across runs.
func fallbackNarrative(req nameRequest) string {
	h := fnv.New32a()
	h.Write([]byte(req.EntityID))
	index := int(h.Sum32())
	if index < 0 {
		index = -index
	}
	switch req.Kind {
	case nameRequestSystemLore:
		template := fallbackLoreTemplates[index%len(fallbackLoreTemplates)]
		return fmt.Sprintf(template, req.Hint)
	default:
		return fmt.Sprintf("%s %s", fallbackCallsigns[index%len(fallbackCallsigns)], req.Hint)
	}
}

// applyNameResults reconciles resolved lookups against the current world.
// Entities removed since the request was issued are skipped.
func (w *World) applyNameResults(results []nameResult) {
	for _, result := range results {
		switch result.Kind {
		case nameRequestProbe:
			if _, ok := w.probes[result.EntityID]; ok {
				w.SetProbeName(result.EntityID, result.Text)
			}
		case nameRequestSystemLore:
			if _, ok := w.systems[result.EntityID]; ok {
				w.SetSystemLore(result.EntityID, result.Text)
			}
		}
	}
}
