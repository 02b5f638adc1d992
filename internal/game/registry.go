package game

import (
	"errors"
	"math/rand"
	"sync"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomClosed       = errors.New("room closed")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNoActiveRound    = errors.New("no active round in this room")
	ErrNotAPlayer       = errors.New("you are not a player in this room")
	ErrEliminated       = errors.New("you are eliminated")
	ErrInvalidBid       = errors.New("bid must be a positive amount")
	ErrBidExceedsPoints = errors.New("bid exceeds available points")
	ErrBidNotFound      = errors.New("bid not found")
	ErrAlreadyEvaluated = errors.New("bid already evaluated")
	ErrGameOver         = errors.New("game already has a winner")
)

const (
	DefaultCodeLength     = 6
	DefaultStartingPoints = 100
)

type Settings struct {
	CodeLength     int
	StartingPoints int
}

func (s Settings) withDefaults() Settings {
	if s.CodeLength <= 0 {
		s.CodeLength = DefaultCodeLength
	}
	if s.StartingPoints <= 0 {
		s.StartingPoints = DefaultStartingPoints
	}
	return s
}

// Registry is the process-wide map of active rooms. Its lock covers only the
// map itself; each Room serializes its own mutations.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	settings Settings
}

func NewRegistry(s Settings) *Registry {
	return &Registry{rooms: make(map[string]*Room), settings: s.withDefaults()}
}

// CreateRoom registers a new room owned by the host connection and returns it.
// The code is freshly generated; collisions are retried.
func (r *Registry) CreateRoom(host ConnID, hostName string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := randomCode(r.settings.CodeLength)
	for r.rooms[code] != nil {
		code = randomCode(r.settings.CodeLength)
	}
	room := &Room{
		Code:        code,
		HostID:      host,
		HostName:    hostName,
		phase:       PhaseIdle,
		players:     make(map[ConnID]*Player),
		startPoints: r.settings.StartingPoints,
	}
	r.rooms[code] = room
	return room
}

func (r *Registry) Get(code string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[code]
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (r *Registry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
}

// FindByConn scans all rooms for one where the connection is the host or a
// player. A connection belongs to at most one room in normal operation.
func (r *Registry) FindByConn(id ConnID) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, room := range r.rooms {
		if room.HostID == id || room.HasPlayer(id) {
			return room, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// no I/O/0/1, codes get read out loud
var codeAlphabet = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

func randomCode(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
