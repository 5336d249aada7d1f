package sse

import (
	"encoding/json"
	"sync"

	"dormdrop/pkg/logger"
)

// Manager is the process-wide connection registry plus event fan-out. All
// state is in memory; a restart drops every connection and clients must
// re-establish their stream. It is safe for concurrent use from multiple
// request goroutines.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection to the set for its user. Registering the same
// client twice is a no-op: the registry holds sets, not lists.
func (m *Manager) Register(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		m.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes a connection and closes its event channel. The user's
// entry is pruned when its set becomes empty so one-time visitors do not
// grow the map forever.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(c)
}

func (m *Manager) removeLocked(c *Client) {
	set, ok := m.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(m.clients, c.UserID)
	}
	c.close()
}

// Publish delivers a named event to every open connection of one user.
// A user with no connections is a silent no-op: there is no queue and no
// redelivery, missed events are recovered by the client's next full fetch.
// A connection whose buffer is full is treated as dead and dropped; that
// never prevents delivery to the remaining connections.
func (m *Manager) Publish(userID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("sse: marshal %s event for user %s: %v", event, userID, err)
		return
	}
	evt := Event{Name: event, Data: data}

	// Sends happen under the read lock: channels are only ever closed
	// under the write lock, so a send can never race a close. The sends
	// are non-blocking, so holding the lock here is cheap.
	var dead []*Client
	m.mu.RLock()
	for c := range m.clients[userID] {
		select {
		case c.send <- evt:
		default:
			logger.Warn("sse: dropping stalled connection for user %s", userID)
			dead = append(dead, c)
		}
	}
	m.mu.RUnlock()

	if len(dead) > 0 {
		m.mu.Lock()
		for _, c := range dead {
			m.removeLocked(c)
		}
		m.mu.Unlock()
	}
}

// ClientCount returns the number of open connections for a user.
func (m *Manager) ClientCount(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID])
}
