// Command fliplabyrinth runs the Flip Labyrinth game.
//
// It supports three modes:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays in the terminal
//
// Flags control host/port, level and session directories, the highscore
// backend, language, debug logging and optional ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/fliplabyrinth/api"
	"github.com/wricardo/fliplabyrinth/game/highscore"
	"github.com/wricardo/fliplabyrinth/game/levels"
	"github.com/wricardo/fliplabyrinth/game/service"
	"github.com/wricardo/fliplabyrinth/game/session"
	"github.com/wricardo/fliplabyrinth/messages"
	"github.com/wricardo/fliplabyrinth/transport/mcp"
	"github.com/wricardo/fliplabyrinth/transport/websocket"
	"github.com/wricardo/fliplabyrinth/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Flip Labyrinth"
)

const (
	sessionMaxAge   = 24 * time.Hour
	janitorInterval = time.Hour
)

// appConfig holds the resolved global flags
type appConfig struct {
	host           string
	port           int
	levelsDir      string
	sessionsDir    string
	highscoresFile string
	highscoreURL   string
	lang           string
	debug          bool
	ngrok          bool
	ngrokAuth      string
	ngrokDomain    string
}

func (c appConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

func configFrom(cmd *cli.Command) appConfig {
	return appConfig{
		host:           cmd.String("host"),
		port:           int(cmd.Int("port")),
		levelsDir:      cmd.String("levels-dir"),
		sessionsDir:    cmd.String("sessions-dir"),
		highscoresFile: cmd.String("highscores-file"),
		highscoreURL:   cmd.String("highscore-url"),
		lang:           cmd.String("lang"),
		debug:          cmd.Bool("debug"),
		ngrok:          cmd.Bool("ngrok"),
		ngrokAuth:      cmd.String("ngrok-auth"),
		ngrokDomain:    cmd.String("ngrok-domain"),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "fliplabyrinth",
		Usage:   "reveal the maze one tile at a time and find the exit",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "levels-dir", Usage: "directory of level files (built-in levels when empty)", Sources: cli.EnvVars("LEVELS_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for persisted sessions (empty disables persistence)", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "highscores-file", Value: "highscores.json", Usage: "file backing the highscore board (empty keeps scores in memory)", Sources: cli.EnvVars("HIGHSCORES_FILE")},
			&cli.StringFlag{Name: "highscore-url", Usage: "remote highscore API instead of the in-process board", Sources: cli.EnvVars("HIGHSCORE_URL")},
			&cli.StringFlag{Name: "lang", Value: "en", Usage: "message language (en, fr)", Sources: cli.EnvVars("GAME_LANG")},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server with API, WebSocket and MCP endpoint (default)",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "run an MCP stdio server backed by the HTTP API",
				Action: runMCP,
			},
			{
				Name:  "play",
				Usage: "play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "player name", Sources: cli.EnvVars("USER")},
				},
				Action: runPlay,
			},
		},
	}
}

// main loads .env, then runs the selected command until a signal arrives.
func main() {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// setupLogging configures the process logger and the log15 root handler
func setupLogging(debug bool, out io.Writer) {
	log.SetOutput(out)
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	lvl := log15.LvlInfo
	if debug {
		lvl = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(out, log15.LogfmtFormat())))
}

// stack is the wired game backend
type stack struct {
	service  service.GameService
	sessions *session.Manager
	levels   *levels.Manager
}

// buildStack wires levels, highscores, sessions and the game service.
// notifier may be nil.
func buildStack(cfg appConfig, notifier service.Notifier) (*stack, error) {
	var levelMgr *levels.Manager
	var err error
	if cfg.levelsDir != "" {
		levelMgr, err = levels.NewDirManager(cfg.levelsDir)
	} else {
		levelMgr, err = levels.NewDefaultManager()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}

	text, err := messages.New(cfg.lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	var scores service.ScoreBoard
	if cfg.highscoreURL != "" {
		scores = highscore.NewClient(cfg.highscoreURL)
		log.Printf("Using remote highscore API at %s", cfg.highscoreURL)
	} else {
		var store highscore.Store
		if cfg.highscoresFile != "" {
			fileStore, err := highscore.NewFileStore(cfg.highscoresFile)
			if err != nil {
				return nil, fmt.Errorf("failed to open highscores: %w", err)
			}
			store = fileStore
		}
		board, err := highscore.NewBoard(levelMgr, store)
		if err != nil {
			return nil, fmt.Errorf("failed to create highscore board: %w", err)
		}
		scores = board
	}

	sessionMgr := session.NewManager()
	if cfg.sessionsDir != "" {
		persistence, err := session.NewFilePersistence(cfg.sessionsDir, levelMgr, text)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		sessionMgr = session.NewManagerWithPersistence(persistence)
		if err := sessionMgr.LoadPersistedSessions(); err != nil {
			log.Printf("Warning: Failed to load persisted sessions: %v", err)
		}
	}

	opts := service.DefaultOptions()
	opts.Language = cfg.lang

	return &stack{
		service:  service.NewGameService(sessionMgr, levelMgr, scores, notifier, opts),
		sessions: sessionMgr,
		levels:   levelMgr,
	}, nil
}

// close stops the service and flushes every session to disk
func (s *stack) close() {
	s.service.Close()
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Printf("Failed to save sessions: %v", err)
	}
}

// newHandler mounts the API at the root and the MCP JSON-RPC endpoint at /mcp
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runServe starts the HTTP server, the WebSocket hub, the session janitor and
// optionally an ngrok tunnel, all under one errgroup.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(cmd)
	setupLogging(cfg.debug, os.Stderr)
	log.Printf("Starting %s v%s", AppName, Version)

	hub := websocket.NewHub()
	st, err := buildStack(cfg, hub)
	if err != nil {
		return err
	}
	defer st.close()

	addr := cfg.addr()
	handler := newHandler(api.NewServer(st.service, hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		sessionJanitor(ctx, st.service, janitorInterval, sessionMaxAge)
		return nil
	})

	if cfg.ngrok {
		g.Go(func() error {
			runTunnel(ctx, cfg, handler)
			return nil
		})
	}

	err = g.Wait()
	log.Println("Server stopped")
	return err
}

// sessionJanitor periodically removes sessions that have not been accessed
// within maxAge.
func sessionJanitor(ctx context.Context, svc service.GameService, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svc.CleanupExpired(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// runTunnel serves handler through an ngrok tunnel until ctx is done.
// Tunnel failures are logged and never stop the local server.
func runTunnel(ctx context.Context, cfg appConfig, handler http.Handler) {
	if cfg.ngrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.ngrokDomain))
		log.Printf("Using custom ngrok domain: %s", cfg.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.ngrokAuth))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runMCP runs an MCP stdio server. It reuses an API already listening on
// host:port; otherwise it starts an internal API on a random loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(cmd)
	setupLogging(cfg.debug, os.Stderr)

	externalURL := "http://" + cfg.addr()
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		st, err := buildStack(cfg, hub)
		if err != nil {
			return err
		}
		defer st.close()

		httpServer := &http.Server{Handler: api.NewServer(st.service, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Printf("Internal HTTP server on %s for MCP stdio", baseURL)
	}

	log.Println("MCP stdio server ready")
	return mcp.NewClient(baseURL).Serve()
}

// runPlay plays in the terminal against an in-process service
func runPlay(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(cmd)
	// The program owns the screen; logs would corrupt it.
	setupLogging(cfg.debug, io.Discard)

	notifier := tui.NewNotifier()
	st, err := buildStack(cfg, notifier)
	if err != nil {
		return err
	}
	defer st.close()

	return tui.Run(ctx, st.service, notifier, cmd.String("name"))
}
