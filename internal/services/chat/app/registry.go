package app

import "sync"

// Registry tracks live WebSocket connections by user.
//
// The reverse index is the only delivery path: resolving a recipient set to
// connections is a map lookup, never a scan over every open socket. A user can
// hold several connections at once and each one receives every frame addressed
// to that user exactly once.
type Registry struct {
	mu     sync.Mutex
	byUser map[int64]map[*wsPeer]struct{}
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{byUser: make(map[int64]map[*wsPeer]struct{})}
}

// Add records a connection for the user.
func (r *Registry) Add(userID int64, peer *wsPeer) {
	if peer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	peers, ok := r.byUser[userID]
	if !ok {
		peers = make(map[*wsPeer]struct{})
		r.byUser[userID] = peers
	}
	peers[peer] = struct{}{}
}

// Remove drops a connection for the user. Removing the last connection clears
// the user's index entry.
func (r *Registry) Remove(userID int64, peer *wsPeer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	peers, ok := r.byUser[userID]
	if !ok {
		return
	}
	delete(peers, peer)
	if len(peers) == 0 {
		delete(r.byUser, userID)
	}
}

// Connections resolves the live connections of every listed user. Users with
// no open connection contribute nothing.
func (r *Registry) Connections(userIDs []int64) []*wsPeer {
	r.mu.Lock()
	defer r.mu.Unlock()
	var peers []*wsPeer
	for _, id := range userIDs {
		for peer := range r.byUser[id] {
			peers = append(peers, peer)
		}
	}
	return peers
}

// ConnectionCount reports how many connections the user currently holds.
func (r *Registry) ConnectionCount(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser[userID])
}
