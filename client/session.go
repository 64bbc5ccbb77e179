// Package client implements the interactive terminal client for a
// SideStacker game.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/sidestacker/sidestacker/game"
	"github.com/sidestacker/sidestacker/protocol"
)

const welcomeText = `Welcome to SideStacker!
On your turn, specify your move with the format
[ROW-NUMBER][SIDE] with no spaces in between.

The following are examples of valid moves:
2R, 5r, 1l, 3L.

The game ends when there are no spaces left
available, or when a player has four consecutive
pieces on a diagonal, column, or row.

Type 'quit' to leave the game.
`

var (
	ErrGameFull         = errors.New("game is at max capacity and can't accept any more players")
	ErrPeerDisconnected = errors.New("the other player left the game")
	ErrServerClosed     = errors.New("the server closed the connection")
)

// Session is one player's view of a game in progress.
type Session struct {
	board   *game.Board
	player  game.Player
	current game.Player
	conn    *protocol.Conn
	in      io.Reader
	out     io.Writer
}

// Dial connects to the server, joins the game, and waits for the
// welcome frame.
func Dial(ctx context.Context, addr string) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}

	pc := protocol.NewConn(conn)
	if err := pc.Write(protocol.Join()); err != nil {
		pc.Close()
		return nil, err
	}

	m, err := pc.Read()
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("waiting for welcome: %w", err)
	}
	switch m.Type {
	case protocol.TypeWelcome:
	case protocol.TypeGameFull:
		pc.Close()
		return nil, ErrGameFull
	default:
		pc.Close()
		return nil, fmt.Errorf("expected welcome, got '%s'", m.Type)
	}

	return NewSession(m.Player, m.Height, m.Width, pc, os.Stdin, os.Stdout), nil
}

// NewSession builds a session around an established connection. The
// input reader supplies the player's moves.
func NewSession(player game.Player, height, width int, conn *protocol.Conn, in io.Reader, out io.Writer) *Session {
	return &Session{
		board:   game.NewBoard(height, width),
		player:  player,
		current: game.First,
		conn:    conn,
		in:      in,
		out:     out,
	}
}

// Play runs the game loop until the game ends, the player quits, or
// ctx is cancelled.
func (s *Session) Play(ctx context.Context) error {
	defer s.conn.Close()

	g, ctx := errgroup.WithContext(ctx)

	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	msgs := make(chan protocol.Message)
	g.Go(func() error {
		defer close(msgs)
		for {
			m, err := s.conn.Read()
			if err != nil {
				return nil
			}
			select {
			case msgs <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	// Stdin reading stays outside the errgroup: a Scan blocked on the
	// terminal would otherwise keep Wait from returning. The goroutine
	// exits via ctx once the group is done.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		defer s.conn.Close()
		return s.play(ctx, msgs, lines)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Session) play(ctx context.Context, msgs <-chan protocol.Message, lines <-chan string) error {
	fmt.Fprintf(s.out, "You are the %s player. Waiting for the game to start...\n", s.player)

	if err := s.awaitStart(ctx, msgs); err != nil {
		return err
	}

	fmt.Fprintln(s.out, welcomeText)

	for {
		if s.board.Full() {
			fmt.Fprintln(s.out, "Game ended in a tie!")
			return nil
		}

		fmt.Fprintln(s.out, s.board)
		fmt.Fprintf(s.out, "%s player's turn.\n", s.current)

		var done bool
		var err error
		if s.current == s.player {
			done, err = s.takeTurn(ctx, msgs, lines)
		} else {
			done, err = s.awaitTurn(ctx, msgs)
		}
		if err != nil || done {
			return err
		}
	}
}

// awaitStart consumes messages until game_start arrives.
func (s *Session) awaitStart(ctx context.Context, msgs <-chan protocol.Message) error {
	for {
		select {
		case m, ok := <-msgs:
			if !ok {
				return ErrServerClosed
			}
			switch m.Type {
			case protocol.TypeGameStart:
				return nil
			case protocol.TypeGameFull:
				return ErrGameFull
			case protocol.TypePlayerDisconnected:
				return ErrPeerDisconnected
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// takeTurn prompts for a move, submits it, and applies it once the
// server acknowledges. Returns done=true when the player quits or
// the move ends the game.
func (s *Session) takeTurn(ctx context.Context, msgs <-chan protocol.Message, lines <-chan string) (bool, error) {
	fmt.Fprintln(s.out, "What's the move?")

	var input string
	select {
	case line, ok := <-lines:
		if !ok {
			return true, nil
		}
		input = line
	case m, ok := <-msgs:
		if !ok {
			return false, ErrServerClosed
		}
		if done, err := s.handleInterrupt(m); done || err != nil {
			return done, err
		}
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}

	if input == "quit" {
		return true, nil
	}

	mov, err := game.ParseMove(input)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return false, nil
	}
	// Validate before sending so the server's turn log never carries
	// a move the board rejects.
	if err := s.board.CanInsert(mov); err != nil {
		fmt.Fprintln(s.out, err)
		return false, nil
	}

	turn := protocol.Turn{Player: s.player, Move: mov}
	if err := s.conn.Write(protocol.TurnMessage(turn)); err != nil {
		return false, err
	}

	// Wait for the server's verdict.
	for {
		select {
		case m, ok := <-msgs:
			if !ok {
				return false, ErrServerClosed
			}
			switch m.Type {
			case protocol.TypeAcknowledged:
				return s.apply(turn)
			case protocol.TypeNotYourTurn:
				fmt.Fprintln(s.out, "It isn't your turn!")
				return false, nil
			default:
				if done, err := s.handleInterrupt(m); done || err != nil {
					return done, err
				}
			}
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// awaitTurn waits for the opponent's move and applies it.
func (s *Session) awaitTurn(ctx context.Context, msgs <-chan protocol.Message) (bool, error) {
	for {
		select {
		case m, ok := <-msgs:
			if !ok {
				return false, ErrServerClosed
			}
			switch m.Type {
			case protocol.TypeTurn:
				return s.apply(*m.Turn)
			default:
				if done, err := s.handleInterrupt(m); done || err != nil {
					return done, err
				}
			}
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// apply places the turn on the local board, announces a win when the
// move completes one, and advances the current player.
func (s *Session) apply(t protocol.Turn) (bool, error) {
	slot := t.Player.Slot()
	row, col, err := s.board.Insert(t.Move, slot)
	if err != nil {
		if t.Player == s.player {
			fmt.Fprintln(s.out, err)
			return false, nil
		}
		return false, fmt.Errorf("applying opponent's move %s: %w", t.Move, err)
	}

	if s.board.Wins(row, col, slot) {
		fmt.Fprintln(s.out, s.board)
		fmt.Fprintf(s.out, "Game won by %s Player!\n", t.Player)
		return true, nil
	}

	s.current = s.current.Next()
	return false, nil
}

func (s *Session) handleInterrupt(m protocol.Message) (bool, error) {
	switch m.Type {
	case protocol.TypePlayerDisconnected:
		fmt.Fprintf(s.out, "Player %d has left the game.\n", m.Player)
		return true, nil
	case protocol.TypeServerError:
		return false, fmt.Errorf("server error: %s", m.Error)
	default:
		return false, nil
	}
}
