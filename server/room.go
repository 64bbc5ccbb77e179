package server

import (
	"errors"
	"sync"
	"time"

	"github.com/sidestacker/sidestacker/db"
	"github.com/sidestacker/sidestacker/game"
	"github.com/sidestacker/sidestacker/protocol"
)

var ErrGameFull = errors.New("game is at max capacity and can't accept any more players")

// Room holds the single game in progress: at most two connected
// players, the turn log, and whose turn it is.
type Room struct {
	mu            sync.Mutex
	height, width int
	peers         map[game.Player]*peer
	current       game.Player
	turns         []protocol.Turn
	started       time.Time
}

// peer is one connected player. Messages queued on send are drained
// by the connection's writer goroutine. closed is guarded by the
// room's mutex.
type peer struct {
	player game.Player
	send   chan protocol.Message
	closed bool
}

func NewRoom(height, width int) *Room {
	return &Room{
		height: height,
		width:  width,
		peers:  make(map[game.Player]*peer),
	}
}

// Join adds a player to the room. The first connector is First, the
// second is Second; any more get ErrGameFull.
func (r *Room) Join() (*peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.peers) >= 2 {
		return nil, ErrGameFull
	}

	player := game.First
	if _, taken := r.peers[game.First]; taken {
		player = game.Second
	}

	p := &peer{
		player: player,
		send:   make(chan protocol.Message, 32),
	}
	r.peers[player] = p

	if len(r.peers) == 1 {
		r.started = time.Now()
		r.current = game.First
		r.turns = nil
	}

	return p, nil
}

// Ready reports whether both players are present.
func (r *Room) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.peers) == 2
}

// Broadcast queues a message for every connected player.
func (r *Room) Broadcast(m protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.peers {
		p.queue(m)
	}
}

// HandleTurn validates turn order, records the turn, relays it to
// the opponent, and acknowledges the sender. An out-of-turn move is
// bounced back with not_your_turn.
func (r *Room) HandleTurn(p *peer, t protocol.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.Player != p.player || t.Player != r.current {
		p.queue(protocol.NotYourTurn())
		return
	}

	r.turns = append(r.turns, t)
	if other := r.peers[p.player.Next()]; other != nil {
		other.queue(protocol.TurnMessage(t))
	}
	p.queue(protocol.Acknowledged())
	r.current = r.current.Next()
}

// Leave removes a player, notifying the opponent. When the room
// empties and turns were played, the finished game is returned for
// persistence and the room resets for the next pair.
func (r *Room) Leave(p *peer) *db.Game {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.peers[p.player] != p {
		return nil
	}
	delete(r.peers, p.player)
	if !p.closed {
		p.closed = true
		close(p.send)
	}

	for _, other := range r.peers {
		other.queue(protocol.PlayerDisconnected(p.player))
	}

	if len(r.peers) > 0 || len(r.turns) == 0 {
		return nil
	}

	finished := &db.Game{
		StartedAt:  r.started,
		FinishedAt: time.Now(),
		Winner:     replayWinner(r.height, r.width, r.turns),
		Turns:      r.turns,
	}
	r.turns = nil
	return finished
}

// Snapshot returns the room state for the status page.
func (r *Room) Snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	board := game.NewBoard(r.height, r.width)
	for _, t := range r.turns {
		board.Insert(t.Move, t.Player.Slot())
	}

	return Status{
		Players: len(r.peers),
		Current: r.current,
		Turns:   len(r.turns),
		Board:   board.String(),
	}
}

// queue never blocks. A peer whose buffer fills is disconnected:
// dropping a relayed turn would leave the opponent's board desynced
// for the rest of the game. Callers hold the room's mutex.
func (p *peer) queue(m protocol.Message) {
	if p.closed {
		return
	}
	select {
	case p.send <- m:
	default:
		p.closed = true
		close(p.send)
	}
}

// replayWinner replays a turn log on a fresh board and returns the
// winning player, or NoPlayer for a tie or abandoned game.
func replayWinner(height, width int, turns []protocol.Turn) game.Player {
	board := game.NewBoard(height, width)
	for _, t := range turns {
		row, col, err := board.Insert(t.Move, t.Player.Slot())
		if err != nil {
			continue
		}
		if board.Wins(row, col, t.Player.Slot()) {
			return t.Player
		}
	}
	return game.NoPlayer
}
