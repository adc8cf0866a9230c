package hub

import "sync"

// Registry maps a user ID to its single live connection ID. A second
// connection from the same user overwrites the first; multi-device delivery
// is out of scope. Runtime-only state, rebuilt empty on every process start.
type Registry struct {
	mutex sync.Mutex
	conns map[int64]int64
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]int64)}
}

func (r *Registry) Set(userID int64, connID int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.conns[userID] = connID
}

func (r *Registry) Get(userID int64) (int64, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	connID, exists := r.conns[userID]
	return connID, exists
}

// RemoveByConn drops the entry whose value is connID, if any. A stale
// disconnect for a connection that was already overwritten must not remove
// the user's newer entry, which is why removal matches on the connection and
// not the user.
func (r *Registry) RemoveByConn(connID int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for userID, current := range r.conns {
		if current == connID {
			delete(r.conns, userID)
			break
		}
	}
}
