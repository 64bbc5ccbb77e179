package server

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/sidestacker/sidestacker/db"
	"github.com/sidestacker/sidestacker/game"
	"github.com/sidestacker/sidestacker/logger"
)

// index renders the status page: the live room, recently finished
// games, and recent log lines.
func index(st Status, games []*db.Game, logs []logger.Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html><head><title>sidestacker</title><style>
body { font-family: monospace; margin: 2em; }
pre { background: #f4f4f4; padding: 1em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: left; }
</style></head><body><h1>sidestacker</h1>`); err != nil {
			return err
		}

		if err := room(st).Render(ctx, w); err != nil {
			return err
		}
		if err := gameTable(games).Render(ctx, w); err != nil {
			return err
		}
		if err := logList(logs).Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `<script>
(function poll() {
	fetch("/poll").then(function(resp) {
		if (resp.status === 200) { location.reload(); } else { poll(); }
	}).catch(function() { setTimeout(poll, 5000); });
})();
</script></body></html>`)
		return err
	})
}

func room(st Status) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if st.Players == 0 && st.Turns == 0 {
			_, err := io.WriteString(w, `<h2>Room</h2><p>Waiting for players.</p>`)
			return err
		}
		_, err := fmt.Fprintf(w, `<h2>Room</h2><p>%d player(s) connected, %d turn(s) played, %s to move.</p><pre>%s</pre>`,
			st.Players, st.Turns, templ.EscapeString(st.Current.String()), templ.EscapeString(st.Board))
		return err
	})
}

func gameTable(games []*db.Game) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h2>Finished games</h2>`); err != nil {
			return err
		}
		if len(games) == 0 {
			_, err := io.WriteString(w, `<p>None yet.</p>`)
			return err
		}
		if _, err := io.WriteString(w, `<table><tr><th>id</th><th>finished</th><th>winner</th><th>turns</th></tr>`); err != nil {
			return err
		}
		for _, g := range games {
			winner := g.Winner.String()
			if g.Winner == game.NoPlayer {
				winner = "-"
			}
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>`,
				templ.EscapeString(g.ID),
				templ.EscapeString(g.FinishedAt.Format("2006-01-02 15:04:05")),
				templ.EscapeString(winner),
				len(g.Turns),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</table>`)
		return err
	})
}

func logList(logs []logger.Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h2>Log</h2><pre>`); err != nil {
			return err
		}
		// Newest first.
		for i := len(logs) - 1; i >= 0; i-- {
			entry := logs[i]
			if _, err := fmt.Fprintf(w, "%s  %s\n",
				entry.At.Format("15:04:05"),
				templ.EscapeString(entry.Log),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</pre>`)
		return err
	})
}
