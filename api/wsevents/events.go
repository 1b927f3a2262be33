// Package wsevents publishes facade lifecycle events to WebSocket
// subscribers (§6), adapted from the teacher's agent/streaming
// WebSocketStreamConnection (coder/websocket, the nhooyr.io/websocket
// successor module) into a pub/sub broker keyed by per-client filters
// instead of a single bidirectional stream.
package wsevents

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// EventType enumerates the event envelope kinds published over WebSocket
// (§6).
type EventType string

const (
	EventAgentExecutionStarted       EventType = "AgentExecutionStarted"
	EventAgentExecutionProgress      EventType = "AgentExecutionProgress"
	EventAgentExecutionCompleted     EventType = "AgentExecutionCompleted"
	EventAgentStatusChanged          EventType = "AgentStatusChanged"
	EventSystemHealthUpdate          EventType = "SystemHealthUpdate"
	EventWorkflowExecutionUpdate     EventType = "WorkflowExecutionUpdate"
	EventProfileConfigurationChanged EventType = "ProfileConfigurationChanged"
	EventResourceUsageAlert          EventType = "ResourceUsageAlert"
	EventNotification                EventType = "Notification"
	EventConnected                   EventType = "Connected"
	EventHeartbeat                   EventType = "Heartbeat"
)

// Event is the wire envelope for every published message.
type Event struct {
	Type      EventType      `json:"type"`
	AgentName string         `json:"agent_name,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ProgressPayload is AgentExecutionProgress's payload shape.
type ProgressPayload struct {
	Progress float64 `json:"progress"`
	Stage    string  `json:"stage"`
}

// CompletedPayload is AgentExecutionCompleted's payload shape.
type CompletedPayload struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Filter narrows which events a subscriber receives (§6).
type Filter struct {
	AgentNames            []string    `json:"agent_names,omitempty"`
	MessageTypes          []EventType `json:"message_types,omitempty"`
	UserID                string      `json:"user_id,omitempty"`
	IncludeSystemHealth   bool        `json:"include_system_health"`
	IncludeResourceAlerts bool        `json:"include_resource_alerts"`
}

func (f Filter) matches(e Event) bool {
	switch e.Type {
	case EventSystemHealthUpdate:
		if !f.IncludeSystemHealth {
			return false
		}
	case EventResourceUsageAlert:
		if !f.IncludeResourceAlerts {
			return false
		}
	}
	if len(f.MessageTypes) > 0 && !containsType(f.MessageTypes, e.Type) {
		return false
	}
	if len(f.AgentNames) > 0 && e.AgentName != "" && !containsString(f.AgentNames, e.AgentName) {
		return false
	}
	return true
}

func containsType(types []EventType, t EventType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// subscriber is one connected WebSocket client's outbound queue.
type subscriber struct {
	filter Filter
	outbox chan Event
}

// Hub is the pub/sub broker every WebSocket connection registers with. It
// serializes publishes to per-subscriber buffered channels so a slow reader
// can't block the publisher, mirroring the mutex-guarded-write discipline
// the teacher's WebSocketStreamConnection applies per-connection.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	logger      *zap.Logger
}

// NewHub builds an empty Hub. A nil logger defaults to zap.NewNop().
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subscribers: make(map[string]*subscriber), logger: logger}
}

// Subscribe registers clientID with filter and returns a channel of events
// matching it, buffered so Publish never blocks on a slow consumer.
func (h *Hub) Subscribe(clientID string, filter Filter) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := &subscriber{filter: filter, outbox: make(chan Event, 64)}
	h.subscribers[clientID] = sub
	return sub.outbox
}

// Unsubscribe removes clientID and closes its outbox.
func (h *Hub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[clientID]; ok {
		close(sub.outbox)
		delete(h.subscribers, clientID)
	}
}

// Publish fans e out to every subscriber whose filter matches, dropping the
// event for subscribers whose outbox is full rather than blocking.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, sub := range h.subscribers {
		if !sub.filter.matches(e) {
			continue
		}
		select {
		case sub.outbox <- e:
		default:
			h.logger.Warn("dropping event for slow subscriber", zap.String("client_id", id), zap.String("type", string(e.Type)))
		}
	}
}

// Serve accepts a WebSocket connection, registers it with the hub under
// clientID/filter, writes a Connected handshake, and pumps matching events
// until the connection closes or ctx is done. Mirrors the teacher's
// WebSocketStreamConnection.WriteChunk JSON-over-websocket.Write idiom.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, clientID string, filter Filter) error {
	events := h.Subscribe(clientID, filter)
	defer h.Unsubscribe(clientID)

	if err := writeEvent(ctx, conn, Event{
		Type:      EventConnected,
		Payload:   map[string]any{"client_id": clientID, "server_time": time.Now()},
		Timestamp: time.Now(),
	}); err != nil {
		return err
	}

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return conn.Close(websocket.StatusNormalClosure, "closing")
		case e, ok := <-events:
			if !ok {
				return conn.Close(websocket.StatusNormalClosure, "unsubscribed")
			}
			if err := writeEvent(ctx, conn, e); err != nil {
				return err
			}
		case <-heartbeat.C:
			if err := writeEvent(ctx, conn, Event{Type: EventHeartbeat, Timestamp: time.Now()}); err != nil {
				return err
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
