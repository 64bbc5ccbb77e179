// Package server runs the SideStacker game server: a TCP listener
// relaying turns between two players, sqlite persistence of finished
// games, and a status web UI.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/sidestacker/sidestacker/atom"
	"github.com/sidestacker/sidestacker/config"
	"github.com/sidestacker/sidestacker/db"
	"github.com/sidestacker/sidestacker/logger"
	"github.com/sidestacker/sidestacker/protocol"
)

type Server struct {
	addr          string
	statusAddr    string
	height, width int
	db            *db.DB
	logs          *logger.Buffer
	global        logger.Logger
	room          *Room
	version       *atom.Atom[int64]
	versionCh     chan struct{}
}

func New(conf *config.Config, database *db.DB) *Server {
	logs := logger.NewBuffer(200)
	return &Server{
		addr:       conf.Server.Addr,
		statusAddr: conf.Server.StatusAddr,
		height:     conf.Server.Height,
		width:      conf.Server.Width,
		db:         database,
		logs:       logs,
		global:     logs.Logger("global"),
		room:       NewRoom(conf.Server.Height, conf.Server.Width),
		version:    atom.New[int64](0),
		versionCh:  make(chan struct{}, 1),
	}
}

// Go runs the game listener and the status server until ctx is
// cancelled.
func (s *Server) Go(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Serve(ctx)
	})

	g.Go(func() error {
		return s.ServeStatus(ctx)
	})

	return g.Wait()
}

// Serve accepts player connections until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.global.Printf("game server listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		go func() {
			if err := s.process(ctx, protocol.NewConn(conn)); err != nil {
				s.global.Printf("connection error: %v", err)
			}
		}()
	}
}

// process runs one player connection from join to disconnect.
func (s *Server) process(ctx context.Context, conn *protocol.Conn) error {
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	first, err := conn.Read()
	if err != nil {
		return err
	}
	if first.Type != protocol.TypeJoin {
		conn.Write(protocol.ServerError(fmt.Errorf("expected join, got '%s'", first.Type)))
		return fmt.Errorf("peer %s opened with '%s'", conn.RemoteAddr(), first.Type)
	}

	p, err := s.room.Join()
	if errors.Is(err, ErrGameFull) {
		s.global.Printf("turned away %s: game full", conn.RemoteAddr())
		return conn.Write(protocol.GameFull())
	} else if err != nil {
		return err
	}

	log := s.logs.Logger(fmt.Sprintf("player-%d", p.player))
	log.Printf("joined from %s", conn.RemoteAddr())

	if err := conn.Write(protocol.Welcome(p.player, s.height, s.width)); err != nil {
		s.leave(p, log)
		return err
	}

	if s.room.Ready() {
		s.room.Broadcast(protocol.GameStart())
		s.global.Printf("both players present, game on")
	}
	s.notifyStateChange()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case m, ok := <-p.send:
				if !ok {
					// The room closed the channel: the peer left or
					// stalled. Closing the conn unblocks the reader.
					conn.Close()
					return nil
				}
				if err := conn.Write(m); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		defer s.leave(p, log)
		for {
			m, err := conn.Read()
			if err != nil {
				// Normal disconnect path.
				return nil
			}
			switch m.Type {
			case protocol.TypeTurn:
				s.room.HandleTurn(p, *m.Turn)
				s.notifyStateChange()
			default:
				log.Printf("unexpected '%s' message", m.Type)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// leave detaches the peer and persists the finished game when the
// room empties.
func (s *Server) leave(p *peer, log logger.Logger) {
	finished := s.room.Leave(p)
	log.Printf("left the game")
	s.notifyStateChange()

	if finished == nil {
		return
	}

	// Persist even when we're shutting down.
	if err := s.db.SaveGame(context.Background(), finished); err != nil {
		s.global.Printf("saving game: %v", err)
		return
	}
	s.global.Printf("saved game %s (winner: %s, %d turns)", finished.ID, finished.Winner, len(finished.Turns))
}

func (s *Server) notifyStateChange() {
	s.version.Swap(func(v int64) int64 { return v + 1 })
	select {
	case s.versionCh <- struct{}{}:
	default:
	}
}
