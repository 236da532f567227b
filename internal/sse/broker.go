// Package sse streams catalog change events to browsers over Server-Sent
// Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"
)

// Event is a single SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ItemEvent is the payload of item.* and inbox.updated events.
type ItemEvent struct {
	Type string `json:"type"`
	Slug string `json:"slug,omitempty"`
}

// CatalogEvent is the payload of catalog.updated: the types that changed
// since the previous catalog.updated.
type CatalogEvent struct {
	Types []string `json:"types"`
}

type itemEventReq struct {
	kind string
	ItemEvent
}

// client is one connected stream. An empty types set receives every type.
type client struct {
	ch    chan []byte
	types map[string]bool
}

func (c *client) wants(types ...string) bool {
	if len(c.types) == 0 || len(types) == 0 {
		return true
	}
	for _, t := range types {
		if c.types[t] {
			return true
		}
	}
	return false
}

const keepAliveMsg = ": keep-alive\n\n"

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often an SSE comment is sent to idle clients so
// proxies do not drop the connection. Zero disables it.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// Broker manages SSE client connections and event fan-out.
//
// A single goroutine (run loop) owns all mutable state: clients, the last
// catalog.updated time and the types changed since. Public methods talk to
// the loop through channels, so no mutexes are required.
type Broker struct {
	catalogMin time.Duration
	keepAlive  time.Duration

	subscribeCh   chan *client
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	itemEventCh   chan itemEventReq
	countReqCh    chan chan int
	stopCh        chan struct{}
	stopped       chan struct{}
	closed        atomic.Bool
}

// NewBroker creates a new SSE broker. catalog.updated is sent at most once
// per catalogThrottle; changes inside the window are batched into one
// trailing event.
func NewBroker(catalogThrottle time.Duration, opts ...Option) *Broker {
	if catalogThrottle <= 0 {
		catalogThrottle = 2 * time.Second
	}
	b := &Broker{
		catalogMin:    catalogThrottle,
		keepAlive:     30 * time.Second,
		subscribeCh:   make(chan *client),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		itemEventCh:   make(chan itemEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]*client)
	var lastCatalog time.Time
	changed := make(map[string]struct{})
	var catalogTimer *time.Timer
	var catalogC <-chan time.Time

	var keepAliveC <-chan time.Time
	if b.keepAlive > 0 {
		ticker := time.NewTicker(b.keepAlive)
		defer ticker.Stop()
		keepAliveC = ticker.C
	}

	send := func(raw []byte, types ...string) {
		for _, c := range clients {
			if !c.wants(types...) {
				continue
			}
			select {
			case c.ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}
	broadcast := func(event Event, types ...string) {
		raw, err := encode(event)
		if err != nil {
			return
		}
		send(raw, types...)
	}
	flushCatalog := func() {
		types := make([]string, 0, len(changed))
		for t := range changed {
			types = append(types, t)
		}
		slices.Sort(types)
		clear(changed)
		lastCatalog = time.Now()
		broadcast(Event{Type: "catalog.updated", Data: CatalogEvent{Types: types}}, types...)
	}

	for {
		select {
		case <-b.stopCh:
			if catalogTimer != nil {
				catalogTimer.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case c := <-b.subscribeCh:
			clients[c.ch] = c

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.itemEventCh:
			switch req.kind {
			case "created", "updated", "deleted":
				broadcast(Event{Type: "item." + req.kind, Data: req.ItemEvent}, req.Type)
			case "inbox":
				broadcast(Event{Type: "inbox.updated", Data: req.ItemEvent}, req.Type)
			default:
				continue
			}

			changed[req.Type] = struct{}{}
			if catalogC != nil {
				continue // trailing event already scheduled
			}
			if wait := b.catalogMin - time.Since(lastCatalog); wait > 0 {
				catalogTimer = time.NewTimer(wait)
				catalogC = catalogTimer.C
				continue
			}
			flushCatalog()

		case <-catalogC:
			catalogC = nil
			flushCatalog()

		case <-keepAliveC:
			send([]byte(keepAliveMsg))

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client interested in types (every type when none
// are given) and returns its channel.
func (b *Broker) Subscribe(types ...string) chan []byte {
	c := &client{ch: make(chan []byte, 64)}
	for _, t := range types {
		if t != "" {
			if c.types == nil {
				c.types = make(map[string]bool)
			}
			c.types[t] = true
		}
	}
	if b.closed.Load() {
		close(c.ch)
		return c.ch
	}

	select {
	case b.subscribeCh <- c:
	case <-b.stopped:
		close(c.ch)
	}

	return c.ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to every connected client regardless of type.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishItemEvent publishes an item or inbox change and schedules a
// catalog.updated for its type. kind is "created", "updated", "deleted" or
// "inbox"; other kinds are ignored.
func (b *Broker) PublishItemEvent(kind, typ, slug string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.itemEventCh <- itemEventReq{kind: kind, ItemEvent: ItemEvent{Type: typ, Slug: slug}}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). Repeated or
// comma separated ?type= parameters narrow the stream to those types.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var types []string
	for _, v := range r.URL.Query()["type"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(types...)
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
