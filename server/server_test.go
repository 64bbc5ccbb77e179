package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/sidestacker/sidestacker/config"
	"github.com/sidestacker/sidestacker/db"
	"github.com/sidestacker/sidestacker/game"
	"github.com/sidestacker/sidestacker/protocol"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "games.db")
	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("Open(%q) failed: %v", path, err)
	}
	t.Cleanup(func() { database.Close() })

	conf := config.Default()
	conf.Server.Height = 7
	conf.Server.Width = 7
	s := New(conf, database)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		if err := s.serve(ctx, ln); err != nil && ctx.Err() == nil {
			t.Errorf("serve failed: %v", err)
		}
	}()

	return s, ln.Addr().String()
}

// join dials the server and completes the join handshake.
func join(t *testing.T, addr string) (*protocol.Conn, protocol.Message) {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial(%q) failed: %v", addr, err)
	}
	pc := protocol.NewConn(conn)
	t.Cleanup(func() { pc.Close() })

	if err := pc.Write(protocol.Join()); err != nil {
		t.Fatalf("Write(join) failed: %v", err)
	}
	m, err := pc.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return pc, m
}

func expect(t *testing.T, pc *protocol.Conn, want protocol.Type) protocol.Message {
	t.Helper()
	m, err := pc.Read()
	if err != nil {
		t.Fatalf("Read failed waiting for '%s': %v", want, err)
	}
	if m.Type != want {
		t.Fatalf("got '%s'; expect '%s'", m.Type, want)
	}
	return m
}

func TestServer_JoinAndStart(t *testing.T) {
	_, addr := newTestServer(t)

	p1, w1 := join(t, addr)
	if w1.Type != protocol.TypeWelcome || w1.Player != game.First {
		t.Fatalf("first join got %+v; expect welcome as First", w1)
	}
	if w1.Height != 7 || w1.Width != 7 {
		t.Errorf("welcome dimensions %dx%d; expect 7x7", w1.Height, w1.Width)
	}

	p2, w2 := join(t, addr)
	if w2.Type != protocol.TypeWelcome || w2.Player != game.Second {
		t.Fatalf("second join got %+v; expect welcome as Second", w2)
	}

	// Both players get game_start once the room is full.
	expect(t, p1, protocol.TypeGameStart)
	expect(t, p2, protocol.TypeGameStart)
}

func TestServer_GameFull(t *testing.T) {
	_, addr := newTestServer(t)

	p1, _ := join(t, addr)
	p2, _ := join(t, addr)
	expect(t, p1, protocol.TypeGameStart)
	expect(t, p2, protocol.TypeGameStart)

	_, m3 := join(t, addr)
	if m3.Type != protocol.TypeGameFull {
		t.Errorf("third join got '%s'; expect game_full", m3.Type)
	}
}

func TestServer_TurnRelay(t *testing.T) {
	_, addr := newTestServer(t)

	p1, _ := join(t, addr)
	p2, _ := join(t, addr)
	expect(t, p1, protocol.TypeGameStart)
	expect(t, p2, protocol.TypeGameStart)

	turn := protocol.Turn{Player: game.First, Move: game.Move{Row: 2, Side: game.Right}}
	if err := p1.Write(protocol.TurnMessage(turn)); err != nil {
		t.Fatalf("Write(turn) failed: %v", err)
	}

	expect(t, p1, protocol.TypeAcknowledged)
	relayed := expect(t, p2, protocol.TypeTurn)
	if relayed.Turn.Player != game.First || relayed.Turn.Move.Row != 2 {
		t.Errorf("relayed turn=%+v; expect First's move on row 2", relayed.Turn)
	}
}

func TestServer_OutOfTurn(t *testing.T) {
	_, addr := newTestServer(t)

	p1, _ := join(t, addr)
	p2, _ := join(t, addr)
	expect(t, p1, protocol.TypeGameStart)
	expect(t, p2, protocol.TypeGameStart)

	// Second moves first.
	turn := protocol.Turn{Player: game.Second, Move: game.Move{Row: 0, Side: game.Left}}
	if err := p2.Write(protocol.TurnMessage(turn)); err != nil {
		t.Fatalf("Write(turn) failed: %v", err)
	}
	expect(t, p2, protocol.TypeNotYourTurn)
}

func TestServer_DisconnectNotifiesAndPersists(t *testing.T) {
	s, addr := newTestServer(t)

	p1, _ := join(t, addr)
	p2, _ := join(t, addr)
	expect(t, p1, protocol.TypeGameStart)
	expect(t, p2, protocol.TypeGameStart)

	turn := protocol.Turn{Player: game.First, Move: game.Move{Row: 1, Side: game.Right}}
	if err := p1.Write(protocol.TurnMessage(turn)); err != nil {
		t.Fatalf("Write(turn) failed: %v", err)
	}
	expect(t, p1, protocol.TypeAcknowledged)
	expect(t, p2, protocol.TypeTurn)

	p1.Close()
	m := expect(t, p2, protocol.TypePlayerDisconnected)
	if m.Player != game.First {
		t.Errorf("disconnect names %v; expect First", m.Player)
	}
	p2.Close()

	// The emptied room persists the game.
	deadline := time.After(5 * time.Second)
	for {
		games, err := s.db.ListGames(context.Background(), 10)
		if err != nil {
			t.Fatalf("ListGames failed: %v", err)
		}
		if len(games) == 1 {
			if len(games[0].Turns) != 1 {
				t.Errorf("persisted %d turns; expect 1", len(games[0].Turns))
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("game was not persisted after both players left")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRoom_StalledPeerDisconnects(t *testing.T) {
	r := NewRoom(7, 7)
	p1, err := r.Join()
	if err != nil {
		t.Fatalf("first Join failed: %v", err)
	}
	p2, err := r.Join()
	if err != nil {
		t.Fatalf("second Join failed: %v", err)
	}

	// Overflow p2's buffer while keeping p1 drained.
	for i := 0; i < cap(p2.send)+1; i++ {
		r.Broadcast(protocol.GameStart())
		select {
		case <-p1.send:
		default:
		}
	}

	got := 0
	for range p2.send {
		got++
	}
	if got != cap(p2.send) {
		t.Errorf("drained %d messages; expect a full buffer of %d then a closed channel", got, cap(p2.send))
	}

	// Queueing to the disconnected peer must not panic.
	r.Broadcast(protocol.GameStart())
	r.Leave(p2)
}

func TestReplayWinner(t *testing.T) {
	var turns []protocol.Turn
	// First stacks column 0 via rows 0-3 from the right; Second
	// fills row 6.
	for i := 0; i < 4; i++ {
		turns = append(turns, protocol.Turn{Player: game.First, Move: game.Move{Row: i, Side: game.Right}})
		if i < 3 {
			turns = append(turns, protocol.Turn{Player: game.Second, Move: game.Move{Row: 6, Side: game.Right}})
		}
	}

	if got := replayWinner(7, 7, turns); got != game.First {
		t.Errorf("replayWinner=%v; expect First", got)
	}

	if got := replayWinner(7, 7, turns[:3]); got != game.NoPlayer {
		t.Errorf("replayWinner of unfinished game=%v; expect NoPlayer", got)
	}
}
