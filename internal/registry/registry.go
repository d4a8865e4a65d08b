package registry

import (
	"maps"
	"slices"
)

type Entry struct {
	Client *Client
	Name   string
	Rooms  map[string]struct{}
}

// Registry tracks live connections. It is not safe for concurrent use; the
// hub goroutine owns it.
type Registry struct {
	conns map[string]*Entry
}

func New() *Registry {
	return &Registry{conns: make(map[string]*Entry)}
}

func (r *Registry) Register(c *Client) {
	if _, ok := r.conns[c.ID]; ok {
		return
	}
	r.conns[c.ID] = &Entry{Client: c, Rooms: make(map[string]struct{})}
}

func (r *Registry) SetName(id, name string) {
	if e, ok := r.conns[id]; ok {
		e.Name = name
	}
}

// Name reports false for unknown connections and for connections that have
// not sent a name yet.
func (r *Registry) Name(id string) (string, bool) {
	e, ok := r.conns[id]
	if !ok || e.Name == "" {
		return "", false
	}
	return e.Name, true
}

func (r *Registry) Client(id string) (*Client, bool) {
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.Client, true
}

func (r *Registry) AddRoom(id, roomID string) {
	if e, ok := r.conns[id]; ok {
		e.Rooms[roomID] = struct{}{}
	}
}

// RemoveRoom returns how many rooms the connection is still in.
func (r *Registry) RemoveRoom(id, roomID string) int {
	e, ok := r.conns[id]
	if !ok {
		return 0
	}
	delete(e.Rooms, roomID)
	return len(e.Rooms)
}

func (r *Registry) RoomsOf(id string) []string {
	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(e.Rooms))
}

// Unregister removes the connection and hands back what the caller needs for
// the leave cascade: the rooms it was in and its last known name.
func (r *Registry) Unregister(id string) ([]string, string) {
	e, ok := r.conns[id]
	if !ok {
		return nil, ""
	}
	delete(r.conns, id)
	return slices.Sorted(maps.Keys(e.Rooms)), e.Name
}

func (r *Registry) Len() int { return len(r.conns) }

func (r *Registry) Each(fn func(id string, e *Entry)) {
	for id, e := range r.conns {
		fn(id, e)
	}
}
