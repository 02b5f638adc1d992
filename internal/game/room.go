package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Room is one game instance. Code, HostID and HostName are fixed at creation;
// everything else is guarded by mu. The host is not a player and never appears
// in the player map.
type Room struct {
	Code     string
	HostID   ConnID
	HostName string

	mu          sync.Mutex
	closed      bool
	phase       Phase
	players     map[ConnID]*Player
	round       *Round
	roundNum    int
	history     []Evaluation
	startPoints int
}

// Join adds a player with the starting point balance. Joining is allowed in any
// phase; a late joiner in a finished game simply has nothing left to bid on.
func (rm *Room) Join(id ConnID, name string) (*Player, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed {
		return nil, ErrRoomClosed
	}
	p := &Player{Name: name, Points: rm.startPoints}
	rm.players[id] = p
	return p, nil
}

// StartRound replaces the current round with a fresh empty one. Host only.
// The previous round's bids are discarded; evaluations already applied live on
// in player points and in the history log.
func (rm *Room) StartRound(requester ConnID) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed {
		return ErrRoomClosed
	}
	if requester != rm.HostID {
		return ErrNotHost
	}
	if rm.phase == PhaseFinished {
		return ErrGameOver
	}
	rm.roundNum++
	rm.round = &Round{Index: rm.roundNum, Bids: make(map[ConnID]*Bid)}
	rm.phase = PhaseBidding
	return nil
}

// SubmitBid stores the player's bid for the current round. Submitting again
// overwrites the earlier bid. The amount is validated against the player's
// points as of submission; evaluation applies it without re-checking.
func (rm *Room) SubmitBid(requester ConnID, amount int) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed {
		return ErrRoomClosed
	}
	if rm.phase == PhaseFinished {
		return ErrGameOver
	}
	if rm.round == nil {
		return ErrNoActiveRound
	}
	p := rm.players[requester]
	if p == nil {
		return ErrNotAPlayer
	}
	if p.Eliminated {
		return ErrEliminated
	}
	if amount <= 0 {
		return ErrInvalidBid
	}
	if amount > p.Points {
		return ErrBidExceedsPoints
	}
	rm.round.Bids[requester] = &Bid{Amount: amount}
	return nil
}

// EvaluateBid marks the player's bid correct or incorrect and settles points:
// correct adds the amount, incorrect subtracts it and eliminates the player if
// the balance drops to zero or below. Host only; a bid can be judged once.
func (rm *Room) EvaluateBid(requester, playerID ConnID, correct bool) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed {
		return ErrRoomClosed
	}
	if requester != rm.HostID {
		return ErrNotHost
	}
	if rm.phase == PhaseFinished {
		return ErrGameOver
	}
	if rm.round == nil {
		return ErrBidNotFound
	}
	b := rm.round.Bids[playerID]
	if b == nil {
		return ErrBidNotFound
	}
	p := rm.players[playerID]
	if p == nil {
		// bidder disconnected after submitting
		return ErrBidNotFound
	}
	if b.Evaluated {
		return ErrAlreadyEvaluated
	}
	b.Evaluated = true
	b.Correct = correct
	if correct {
		p.Points += b.Amount
	} else {
		p.Points -= b.Amount
		if p.Points <= 0 {
			p.Eliminated = true
		}
	}
	rm.history = append(rm.history, Evaluation{
		ID:          uuid.NewString(),
		Round:       rm.round.Index,
		PlayerID:    playerID,
		PlayerName:  p.Name,
		Amount:      b.Amount,
		Correct:     correct,
		PointsAfter: p.Points,
		At:          time.Now().UTC(),
	})
	return nil
}

// Winner reports the sole surviving player, if there is exactly one with
// eliminated=false and points>0. Pure read, no state change.
func (rm *Room) Winner() (ConnID, Player, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.winnerLocked()
}

func (rm *Room) winnerLocked() (ConnID, Player, bool) {
	var id ConnID
	var w *Player
	alive := 0
	for pid, p := range rm.players {
		if !p.Eliminated && p.Points > 0 {
			alive++
			id, w = pid, p
		}
	}
	if alive != 1 {
		return "", Player{}, false
	}
	return id, *w, true
}

// CheckWinner latches the room into the Finished phase the first time a sole
// survivor exists and reports the winner for that one transition. Repeated
// calls after the latch are no-ops, so callers can fire it after every
// points-affecting mutation without spamming winner notifications.
func (rm *Room) CheckWinner() (ConnID, Player, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed || rm.phase == PhaseFinished {
		return "", Player{}, false
	}
	id, w, ok := rm.winnerLocked()
	if !ok {
		return "", Player{}, false
	}
	rm.phase = PhaseFinished
	return id, w, true
}

// RemovePlayer drops a player from the room, reporting whether they were
// present. Their bids stay in the current round but can no longer be judged.
func (rm *Room) RemovePlayer(id ConnID) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.closed {
		return false
	}
	if _, ok := rm.players[id]; !ok {
		return false
	}
	delete(rm.players, id)
	return true
}

// Close marks the room dead. Mutations arriving after Close fail with
// ErrRoomClosed, which keeps a host-disconnect teardown from racing an
// in-flight evaluation on the same room.
func (rm *Room) Close() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.closed = true
}

func (rm *Room) Phase() Phase {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.phase
}

func (rm *Room) HasPlayer(id ConnID) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	_, ok := rm.players[id]
	return ok
}

func (rm *Room) PlayerCount() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.players)
}

// Players returns a copy of the player map keyed by connection id, shaped for
// the roomUpdate broadcast.
func (rm *Room) Players() map[string]Player {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make(map[string]Player, len(rm.players))
	for id, p := range rm.players {
		out[string(id)] = *p
	}
	return out
}

// Bids returns a copy of the current round's bid map, or ok=false when no
// round has been started yet.
func (rm *Room) Bids() (map[string]Bid, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.round == nil {
		return nil, false
	}
	out := make(map[string]Bid, len(rm.round.Bids))
	for id, b := range rm.round.Bids {
		out[string(id)] = *b
	}
	return out, true
}

// History returns a copy of the room's evaluation log in append order.
func (rm *Room) History() []Evaluation {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]Evaluation, len(rm.history))
	copy(out, rm.history)
	return out
}
