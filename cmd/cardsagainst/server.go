package main

import (
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/francemazzi/cards-against-humanity/cmd/cardsagainst/shared"
	"github.com/francemazzi/cards-against-humanity/internal/credential"
	"github.com/francemazzi/cards-against-humanity/internal/deck"
	"github.com/francemazzi/cards-against-humanity/internal/game"
	"github.com/francemazzi/cards-against-humanity/internal/llm"
	"github.com/francemazzi/cards-against-humanity/internal/server"
	"github.com/francemazzi/cards-against-humanity/internal/storage/sqlite"
)

// ServerCmd runs the WebSocket game server.
type ServerCmd struct {
	Config string `kong:"short='c',default='cardsagainst.hcl',help='Path to HCL configuration file'"`
	Addr   string `kong:"short='a',help='Server address to bind to (overrides config)'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	DB     string `kong:"help='SQLite database path (overrides config)'"`
	NoDB   bool   `kong:"help='Disable snapshot persistence and the leaderboard'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.DB != "" {
		cfg.Storage.Path = c.DB
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}

	addr := c.Addr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	}

	// The game packages log through charmbracelet/log
	gameLogger := charmlog.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		gameLogger.SetLevel(charmlog.DebugLevel)
	case "warn":
		gameLogger.SetLevel(charmlog.WarnLevel)
	case "error":
		gameLogger.SetLevel(charmlog.ErrorLevel)
	default:
		gameLogger.SetLevel(charmlog.InfoLevel)
	}

	agents := llm.NewClient(llm.Config{
		HostedModel:   cfg.LLM.HostedModel,
		HostedTimeout: time.Duration(cfg.LLM.HostedTimeoutMs) * time.Millisecond,
		SharedKey:     os.Getenv(cfg.LLM.SharedKeyEnv),
		LocalBaseURL:  cfg.LLM.LocalBaseURL,
		LocalModel:    cfg.LLM.LocalModel,
		LocalTimeout:  time.Duration(cfg.LLM.LocalTimeoutMs) * time.Millisecond,
	}, gameLogger)

	wsServer := server.NewServer(addr, gameLogger)
	manager := server.NewGameManager(logger)

	opts := []server.ServiceOption{
		server.WithDefaultSettings(game.Settings{
			MaxPlayers:  cfg.Game.MaxPlayers,
			PointsToWin: cfg.Game.PointsToWin,
		}),
	}

	if len(cfg.Personas) > 0 {
		personas := make([]llm.Persona, len(cfg.Personas))
		for i, p := range cfg.Personas {
			personas[i] = llm.Persona{
				ID:           p.ID,
				Name:         p.Name,
				SystemPrompt: p.SystemPrompt,
				Description:  p.Description,
			}
		}
		logger.Info().Int("count", len(personas)).Msg("Loaded persona roster")
		opts = append(opts, server.WithPersonas(personas))
	}

	if cfg.Game.PackFile != "" {
		pack, err := deck.LoadPack(cfg.Game.PackFile)
		if err != nil {
			return fmt.Errorf("load pack: %w", err)
		}
		logger.Info().Str("pack", pack.Name).
			Int("prompts", len(pack.Prompts)).
			Int("answers", len(pack.Answers)).
			Msg("Loaded card pack")
		opts = append(opts, server.WithPack(pack))
	}

	var store *sqlite.Store
	if !c.NoDB {
		store, err = sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() { _ = store.Close() }()
		logger.Info().Str("path", cfg.Storage.Path).Msg("Storage opened")
		opts = append(opts, server.WithStore(store, logger))
	}

	secret := cfg.Server.Secret
	if secret == "" {
		secret = os.Getenv("CARDSAGAINST_SECRET")
	}
	if secret != "" {
		sealer, err := credential.NewSealer(secret)
		if err != nil {
			return fmt.Errorf("init sealer: %w", err)
		}
		opts = append(opts, server.WithCredentials(credential.NewService(sealer, agents)))
	} else {
		logger.Warn().Msg("No sealing secret configured, per-user API keys disabled")
	}

	service := server.NewGameService(wsServer, manager, agents, gameLogger, opts...)
	wsServer.SetGameService(service)

	logger.Info().
		Str("address", addr).
		Int("max_players", cfg.Game.MaxPlayers).
		Int("points_to_win", cfg.Game.PointsToWin).
		Bool("persistence", store != nil).
		Msg("Starting cardsagainst server")

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(wsServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("Shutting down server...")
		service.Close()
		return wsServer.Stop()
	})
	return g.Wait()
}
