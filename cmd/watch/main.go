// Command watch follows a game session over the WebSocket endpoint and prints
// every state push: moves, clock ticks, enemy turns, message expiry and score
// submission. Dropped connections are retried with exponential backoff.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/inconshreveable/log15/v3"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:      "watch",
		Usage:     "follow a game session live",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "game server base URL",
				Sources: cli.EnvVars("FLIPLAB_SERVER"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log reconnect attempts",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sessionID := cmd.Args().First()
			if sessionID == "" {
				return cli.Exit("session id required", 2)
			}
			lvl := log15.LvlInfo
			if cmd.Bool("debug") {
				lvl = log15.LvlDebug
			}
			log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StderrHandler))

			w, err := NewWatcher(cmd.String("server"), sessionID, os.Stdout)
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
