package game

import (
	"time"
)

// ConnID identifies a live connection. The transport layer decides what it is
// (socket ids today); the game core only compares it for equality. A player is
// keyed by the connection that joined, so a reconnect shows up as a new player.
type ConnID string

type Phase string

const (
	PhaseIdle     Phase = "Idle"
	PhaseBidding  Phase = "Bidding"
	PhaseFinished Phase = "Finished"
)

type Player struct {
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Eliminated bool   `json:"eliminated"`
}

// Bid is a player's wager for the current round. Evaluated flips false->true
// exactly once; Correct is meaningless until then.
type Bid struct {
	Amount    int  `json:"bidAmount"`
	Evaluated bool `json:"evaluated"`
	Correct   bool `json:"correct"`
}

type Round struct {
	Index int
	Bids  map[ConnID]*Bid
}

// Evaluation is one entry of a room's append-only history, recorded when the
// host judges a bid. It survives round turnover and feeds the CSV report.
type Evaluation struct {
	ID          string    `json:"id"`
	Round       int       `json:"round"`
	PlayerID    ConnID    `json:"playerId"`
	PlayerName  string    `json:"playerName"`
	Amount      int       `json:"bidAmount"`
	Correct     bool      `json:"correct"`
	PointsAfter int       `json:"pointsAfter"`
	At          time.Time `json:"at"`
}
