package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"
	"github.com/smazur/bidwars/internal/game"
)

// ConnCtx is what a connection currently is: which room it sits in and
// whether it is the host or a player there.
type ConnCtx struct {
	Code string
	Role string // "host" | "player"
}

type Server struct {
	Reg *game.Registry

	mu      sync.Mutex
	members map[string]map[string]socketio.Conn // roomCode -> socketID -> Conn
}

func New(reg *game.Registry) *Server {
	return &Server{Reg: reg, members: make(map[string]map[string]socketio.Conn)}
}

// Mount attaches the Socket.IO server with all game event handlers to the
// given Gin engine. Handler return values become the socket.io ack payload;
// errors are acked as {"error": message} to the requester only, never
// broadcast.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// createRoom: the creator becomes the host and is not added to the
	// player map.
	io.OnEvent("/", "createRoom", func(s socketio.Conn, payload struct {
		HostName string `json:"hostName"`
	}) map[string]any {
		room := srv.Reg.CreateRoom(game.ConnID(s.ID()), payload.HostName)
		s.SetContext(&ConnCtx{Code: room.Code, Role: "host"})
		s.Join(room.Code)
		srv.addMember(room.Code, s)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Str("host", payload.HostName).Msg("createRoom")
		srv.broadcastRoom(io, room)
		return map[string]any{"roomCode": room.Code}
	})

	// joinRoom: new players start with the configured point balance.
	io.OnEvent("/", "joinRoom", func(s socketio.Conn, payload struct {
		RoomCode   string `json:"roomCode"`
		PlayerName string `json:"playerName"`
	}) map[string]any {
		room, err := srv.Reg.Get(payload.RoomCode)
		if err != nil {
			return errAck(err)
		}
		if _, err := room.Join(game.ConnID(s.ID()), payload.PlayerName); err != nil {
			return errAck(err)
		}
		s.SetContext(&ConnCtx{Code: room.Code, Role: "player"})
		s.Join(room.Code)
		srv.addMember(room.Code, s)
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Str("player", payload.PlayerName).Msg("joinRoom")
		srv.broadcastRoom(io, room)
		return map[string]any{"success": true}
	})

	// startRound: host signals a new bidding cycle. No question is stored,
	// it is asked out loud.
	io.OnEvent("/", "startRound", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
	}) map[string]any {
		room, err := srv.Reg.Get(payload.RoomCode)
		if err != nil {
			return errAck(err)
		}
		if err := room.StartRound(game.ConnID(s.ID())); err != nil {
			return errAck(err)
		}
		log.Info().Str("code", room.Code).Msg("startRound")
		io.BroadcastToRoom("/", room.Code, "newRound", map[string]any{
			"message": "Round started! Answer orally and place your bid.",
		})
		return map[string]any{"success": true}
	})

	io.OnEvent("/", "submitBid", func(s socketio.Conn, payload struct {
		RoomCode  string `json:"roomCode"`
		BidAmount int    `json:"bidAmount"`
	}) map[string]any {
		room, err := srv.Reg.Get(payload.RoomCode)
		if err != nil {
			return errAck(game.ErrNoActiveRound)
		}
		if err := room.SubmitBid(game.ConnID(s.ID()), payload.BidAmount); err != nil {
			return errAck(err)
		}
		log.Info().Str("sid", s.ID()).Str("code", room.Code).Int("amount", payload.BidAmount).Msg("submitBid")
		if bids, ok := room.Bids(); ok {
			io.BroadcastToRoom("/", room.Code, "bidUpdate", bids)
		}
		return map[string]any{"success": true}
	})

	io.OnEvent("/", "evaluateBid", func(s socketio.Conn, payload struct {
		RoomCode  string `json:"roomCode"`
		PlayerID  string `json:"playerId"`
		IsCorrect bool   `json:"isCorrect"`
	}) map[string]any {
		room, err := srv.Reg.Get(payload.RoomCode)
		if err != nil {
			return errAck(err)
		}
		if err := room.EvaluateBid(game.ConnID(s.ID()), game.ConnID(payload.PlayerID), payload.IsCorrect); err != nil {
			return errAck(err)
		}
		log.Info().Str("code", room.Code).Str("playerId", payload.PlayerID).Bool("correct", payload.IsCorrect).Msg("evaluateBid")
		srv.broadcastRoom(io, room)
		srv.announceWinner(io, room)
		return map[string]any{"success": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		conn := game.ConnID(s.ID())
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.Code != "" {
			srv.removeMember(ctx.Code, s)
		}
		room, ok := srv.Reg.FindByConn(conn)
		if ok {
			if room.HostID == conn {
				// the room's lifetime is the host connection's lifetime
				io.BroadcastToRoom("/", room.Code, "roomClosed")
				room.Close()
				srv.Reg.Delete(room.Code)
				for _, c := range srv.dropRoom(room.Code) {
					c.Leave(room.Code)
					c.SetContext(&ConnCtx{})
				}
				log.Info().Str("code", room.Code).Msg("room closed, host disconnected")
			} else if room.RemovePlayer(conn) {
				srv.broadcastRoom(io, room)
				srv.announceWinner(io, room)
				log.Info().Str("sid", s.ID()).Str("code", room.Code).Msg("player removed")
			}
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// broadcastRoom emits the full room state. Clients replace their view
// wholesale, diffs are never sent.
func (srv *Server) broadcastRoom(io *socketio.Server, room *game.Room) {
	io.BroadcastToRoom("/", room.Code, "roomUpdate", map[string]any{
		"hostName": room.HostName,
		"players":  room.Players(),
	})
}

func (srv *Server) announceWinner(io *socketio.Server, room *game.Room) {
	if id, winner, ok := room.CheckWinner(); ok {
		io.BroadcastToRoom("/", room.Code, "winner", map[string]any{
			"winnerId": string(id),
			"winner":   winner,
		})
		log.Info().Str("code", room.Code).Str("winner", winner.Name).Msg("winner")
	}
}

func (srv *Server) addMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][c.ID()] = c
}

func (srv *Server) removeMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[code]; m != nil {
		delete(m, c.ID())
	}
}

// dropRoom forgets the room's membership and hands back the connections that
// were still in it so the caller can detach them.
func (srv *Server) dropRoom(code string) []socketio.Conn {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	m := srv.members[code]
	delete(srv.members, code)
	out := make([]socketio.Conn, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

func errAck(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
