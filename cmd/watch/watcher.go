package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/inconshreveable/log15/v3"
	"github.com/jpillora/backoff"

	"github.com/wricardo/fliplabyrinth/game/engine"
	"github.com/wricardo/fliplabyrinth/game/service"
)

var logger = log15.New("module", "watch")

// readLimit covers a full game view of the largest grid
const readLimit = 1 << 20

// event mirrors the hub's wire message
type event struct {
	SessionID string          `json:"session_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
}

// Watcher prints the events of one session to out
type Watcher struct {
	wsURL   string
	out     io.Writer
	backoff *backoff.Backoff
}

// NewWatcher derives the WebSocket URL from the server base URL
func NewWatcher(serverURL, sessionID string, out io.Writer) (*Watcher, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()

	return &Watcher{
		wsURL: u.String(),
		out:   out,
		backoff: &backoff.Backoff{
			Min:    500 * time.Millisecond,
			Max:    30 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}, nil
}

// Run follows the session until ctx is done, reconnecting on failures
func (w *Watcher) Run(ctx context.Context) error {
	for {
		err := w.follow(ctx)
		if ctx.Err() != nil {
			return nil
		}
		delay := w.backoff.Duration()
		logger.Warn("connection lost, reconnecting", "err", err, "attempt", int(w.backoff.Attempt()), "in", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) follow(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	logger.Debug("connected", "url", w.wsURL)
	w.backoff.Reset()

	for {
		var ev event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			var closeErr websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("closed by server: %s", closeErr.Reason)
			}
			return err
		}
		if err := printEvent(w.out, ev); err != nil {
			logger.Warn("undecodable event", "event", ev.Event, "err", err)
		}
	}
}

func printEvent(out io.Writer, ev event) error {
	stamp := time.Now().Format("15:04:05")

	switch ev.Event {
	case service.EventStateUpdate, service.EventMessage:
		var view service.GameView
		if err := json.Unmarshal(ev.Data, &view); err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s] %s\n", stamp, ev.Event)
		printView(out, &view)

	case service.EventTick:
		var tick struct {
			Elapsed string `json:"elapsed"`
		}
		if err := json.Unmarshal(ev.Data, &tick); err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s] tick %s\n", stamp, tick.Elapsed)

	case service.EventEnemyTurn:
		var turn struct {
			Outcome   engine.Outcome    `json:"outcome"`
			GameState *service.GameView `json:"game_state"`
		}
		if err := json.Unmarshal(ev.Data, &turn); err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s] enemy turn\n", stamp)
		if b := turn.Outcome.Battle; b != nil {
			fmt.Fprintf(out, "  battle over vs %s, victory=%v, HP %d\n", b.Enemy, b.Victory, b.FinalPlayerHP)
		}
		if turn.GameState != nil {
			printView(out, turn.GameState)
		}

	case service.EventSubmission:
		var st service.SubmissionState
		if err := json.Unmarshal(ev.Data, &st); err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s] score %d: %s", stamp, st.Score, st.Status)
		if st.Error != "" {
			fmt.Fprintf(out, " (%s)", st.Error)
		}
		fmt.Fprintln(out)

	default:
		fmt.Fprintf(out, "[%s] %s\n", stamp, ev.Event)
	}
	return nil
}

func printView(out io.Writer, v *service.GameView) {
	fmt.Fprintf(out, "  %s  %s  HP %d/%d  moves %d  time %s  score %d\n",
		v.LevelName, v.Status, v.HP, v.MaxHP, v.MoveCount, v.Elapsed, v.Score.Total)
	if v.Combat != nil {
		fmt.Fprintf(out, "  fighting %s (%d HP)\n", v.Combat.Enemy.Name, v.Combat.EnemyHP)
	}
	if v.Message != "" {
		fmt.Fprintf(out, "  %s\n", v.Message)
	}
	for _, row := range v.State.Render() {
		fmt.Fprintf(out, "  %s\n", row)
	}
}
