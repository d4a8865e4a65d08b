package directory

import (
	"errors"
	"maps"
	"math/rand/v2"
	"slices"
)

var ErrNotAuthorized = errors.New("not authorized")

// Namer resolves display names; members without one are left out of listings.
type Namer interface {
	Name(id string) (string, bool)
}

type Room struct {
	ID      string
	Members []string // join order
	Leader  string
}

type Member struct {
	ID       string
	Name     string
	IsLeader bool
}

type JoinResult struct {
	Created       bool
	AlreadyMember bool
	Leader        string
}

type LeaveResult struct {
	Remaining     []string
	NewLeader     string
	LeaderChanged bool
	Emptied       bool
}

// Directory maps room ids to members and leaders. A room exists only while it
// has members: leader != "" iff len(Members) > 0, and the leader is always a
// member. Not safe for concurrent use; the hub goroutine owns it.
type Directory struct {
	rooms map[string]*Room
	rng   *rand.Rand
}

func New(rng *rand.Rand) *Directory {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Directory{rooms: make(map[string]*Room), rng: rng}
}

// Join adds connID to the room, creating it if needed. The first member of a
// room becomes its leader; nobody else is ever granted leadership on join.
func (d *Directory) Join(roomID, connID string) JoinResult {
	r, ok := d.rooms[roomID]
	if !ok {
		r = &Room{ID: roomID}
		d.rooms[roomID] = r
	}
	if slices.Contains(r.Members, connID) {
		return JoinResult{AlreadyMember: true, Leader: r.Leader}
	}
	r.Members = append(r.Members, connID)
	if len(r.Members) == 1 {
		r.Leader = connID
	}
	return JoinResult{Created: !ok, Leader: r.Leader}
}

// Leave removes connID and reassigns leadership to the earliest remaining
// member if needed. It reports false when connID was not a member.
func (d *Directory) Leave(roomID, connID string) (LeaveResult, bool) {
	r, ok := d.rooms[roomID]
	if !ok {
		return LeaveResult{}, false
	}
	return d.remove(r, connID)
}

// Kick removes targetID on behalf of requesterID, who must be the leader.
// A target that is not a member (or the leader itself) is a no-op.
func (d *Directory) Kick(roomID, requesterID, targetID string) (LeaveResult, bool, error) {
	r, ok := d.rooms[roomID]
	if !ok || r.Leader != requesterID {
		return LeaveResult{}, false, ErrNotAuthorized
	}
	if targetID == requesterID {
		return LeaveResult{}, false, nil
	}
	res, removed := d.remove(r, targetID)
	return res, removed, nil
}

func (d *Directory) remove(r *Room, connID string) (LeaveResult, bool) {
	i := slices.Index(r.Members, connID)
	if i < 0 {
		return LeaveResult{}, false
	}
	r.Members = slices.Delete(r.Members, i, i+1)

	res := LeaveResult{Remaining: append([]string{}, r.Members...)}
	if len(r.Members) == 0 {
		delete(d.rooms, r.ID)
		res.Emptied = true
		res.LeaderChanged = r.Leader == connID
		r.Leader = ""
		return res, true
	}
	if r.Leader == connID {
		r.Leader = r.Members[0]
		res.NewLeader = r.Leader
		res.LeaderChanged = true
	}
	return res, true
}

func (d *Directory) MembersOf(roomID string, names Namer) []Member {
	r, ok := d.rooms[roomID]
	if !ok {
		return []Member{}
	}
	out := make([]Member, 0, len(r.Members))
	for _, id := range r.Members {
		name, ok := names.Name(id)
		if !ok {
			continue
		}
		out = append(out, Member{ID: id, Name: name, IsLeader: id == r.Leader})
	}
	return out
}

// MemberIDs includes unnamed members.
func (d *Directory) MemberIDs(roomID string) []string {
	r, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	return slices.Clone(r.Members)
}

func (d *Directory) Leader(roomID string) string {
	if r, ok := d.rooms[roomID]; ok {
		return r.Leader
	}
	return ""
}

func (d *Directory) IsMember(roomID, connID string) bool {
	r, ok := d.rooms[roomID]
	return ok && slices.Contains(r.Members, connID)
}

func (d *Directory) Exists(roomID string) bool {
	_, ok := d.rooms[roomID]
	return ok
}

func (d *Directory) Len() int { return len(d.rooms) }

// PickRandomNonEmptyRoom chooses uniformly among rooms with at least one member.
func (d *Directory) PickRandomNonEmptyRoom() (string, bool) {
	ids := make([]string, 0, len(d.rooms))
	for _, id := range slices.Sorted(maps.Keys(d.rooms)) {
		if len(d.rooms[id].Members) > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", false
	}
	return ids[d.rng.IntN(len(ids))], true
}

// Rooms returns a copy of every room, for diagnostics and tests.
func (d *Directory) Rooms() []Room {
	out := make([]Room, 0, len(d.rooms))
	for _, id := range slices.Sorted(maps.Keys(d.rooms)) {
		r := d.rooms[id]
		out = append(out, Room{ID: r.ID, Members: slices.Clone(r.Members), Leader: r.Leader})
	}
	return out
}
