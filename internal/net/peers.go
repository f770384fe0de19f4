package net

import (
	"errors"
	"sync"
)

// ErrTooManyPeers is returned when the peer limit is reached.
var ErrTooManyPeers = errors.New("too many connected sessions")

// DefaultMaxPeers bounds concurrent browser sessions. Each one owns a full
// editor with its own undo history.
const DefaultMaxPeers = 8

// Peer is one connected browser.
type Peer struct {
	SessionID string `json:"session"`
	Remote    string `json:"remote"`
	PageID    string `json:"page"`
}

// PeerManager tracks the live websocket sessions. Sessions never share
// state; the manager exists for status reporting and shutdown.
type PeerManager struct {
	mu    sync.RWMutex
	peers map[string]*conn
	max   int
}

// NewPeerManager creates an empty manager admitting at most limit peers.
// A limit below 1 means no limit.
func NewPeerManager(limit int) *PeerManager {
	return &PeerManager{peers: make(map[string]*conn), max: limit}
}

func (pm *PeerManager) add(c *conn) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.max > 0 && len(pm.peers) >= pm.max {
		return ErrTooManyPeers
	}
	pm.peers[c.session.ID] = c
	return nil
}

func (pm *PeerManager) remove(c *conn) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.peers, c.session.ID)
}

// Len returns the number of connected peers.
func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Peers returns a description of every connected peer.
func (pm *PeerManager) Peers() []Peer {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	out := make([]Peer, 0, len(pm.peers))
	for _, c := range pm.peers {
		out = append(out, c.peer())
	}
	return out
}

// CloseAll disconnects every peer.
func (pm *PeerManager) CloseAll() {
	pm.mu.RLock()
	conns := make([]*conn, 0, len(pm.peers))
	for _, c := range pm.peers {
		conns = append(conns, c)
	}
	pm.mu.RUnlock()
	for _, c := range conns {
		c.close()
	}
}
