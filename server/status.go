package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/sidestacker/sidestacker/game"
)

// Status is the room state rendered on the status page.
type Status struct {
	Players int
	Current game.Player
	Turns   int
	Board   string
}

// ServeStatus runs the status web UI until ctx is cancelled.
func (s *Server) ServeStatus(ctx context.Context) error {
	mux := http.NewServeMux()

	// Long-polling endpoint for state changes.
	mux.HandleFunc("/poll", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		select {
		case <-s.versionCh:
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "refresh")
		case <-time.After(5 * time.Minute):
			w.WriteHeader(http.StatusNoContent)
		case <-req.Context().Done():
			w.WriteHeader(http.StatusNoContent)
		}
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}

		games, err := s.db.ListGames(req.Context(), 20)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error listing games: %v", err), http.StatusInternalServerError)
			return
		}

		templ.Handler(index(s.room.Snapshot(), games, s.logs.Entries())).ServeHTTP(w, req)
	})

	s.global.Printf("status page on http://%s/", s.statusAddr)
	return listenAndServe(ctx, s.statusAddr, mux)
}

func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
