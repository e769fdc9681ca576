package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexanderramin/eventwise/internal/cli"
	"github.com/alexanderramin/eventwise/internal/completeness"
	"github.com/alexanderramin/eventwise/internal/config"
	"github.com/alexanderramin/eventwise/internal/db"
	"github.com/alexanderramin/eventwise/internal/export"
	"github.com/alexanderramin/eventwise/internal/generation"
	"github.com/alexanderramin/eventwise/internal/httpapi"
	"github.com/alexanderramin/eventwise/internal/intelligence"
	"github.com/alexanderramin/eventwise/internal/llm"
	"github.com/alexanderramin/eventwise/internal/logger"
	"github.com/alexanderramin/eventwise/internal/metrics"
	"github.com/alexanderramin/eventwise/internal/service"
	"github.com/alexanderramin/eventwise/internal/session"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return err
	}

	// Logs go to stderr so the chat transcript on stdout stays clean.
	log := logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	m := metrics.New(prometheus.DefaultRegisterer)

	ctx := context.Background()

	// Live session store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Chat archive
	var archive service.ChatArchive = service.NoopArchive{}
	if cfg.Archive.Enabled {
		database, err := db.OpenDB(cfg.Archive.Path)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer database.Close()
		archive = service.NewChatArchive(database, db.NewSQLiteUnitOfWork(database))
	}

	// Dialogue model and confirmation classifier
	dialogue, classifier, err := wireIntelligence(cfg, m, log)
	if err != nil {
		return err
	}

	// Recommendation sources
	photos := generation.NewPhotoSearch(cfg.UnsplashConfig())
	dispatcher := generation.NewDispatcher(cfg.Planner.GenerationTimeout, log,
		generation.NewImageGenerator(cfg.ImageConfig()),
		generation.NewMusicRecommender(cfg.YouTubeConfig()),
		generation.NewVenueRecommender(cfg.QlooConfig()),
		generation.NewFoodRecommender(cfg.QlooConfig()),
	)

	turns := service.NewTurnService(service.TurnDeps{
		Store:      store,
		Analyzer:   completeness.NewAnalyzer(completeness.NewValidator(cfg.Policy())),
		Dialogue:   dialogue,
		Classifier: classifier,
		Dispatcher: dispatcher,
		Archive:    archive,
		Metrics:    m,
		Logger:     log,
	}, service.TurnOptions{
		HistoryWindow: cfg.Planner.HistoryWindow,
		TurnTimeout:   cfg.Planner.TurnTimeout,
	}, service.NewLogUseCaseObserver(log))

	handler := httpapi.NewHandler(httpapi.Deps{
		Conversation: turns,
		History:      archive,
		Sessions:     store,
		Gallery:      export.NewGallery(photos, log),
		Logger:       log,
	})

	app := &cli.App{
		Conversation: turns,
		History:      archive,
		Sessions:     store,
		Serve: func(ctx context.Context) error {
			e := httpapi.NewServer(handler, httpapi.ServerOptions{
				Logger:   log,
				Metrics:  m,
				Gatherer: prometheus.DefaultGatherer,
			})
			log.Info("http server listening", "addr", cfg.Server.Addr())
			return httpapi.Serve(ctx, e, cfg.Server.Addr(), cfg.Server.ShutdownTimeout)
		},
	}

	// Detect interactive terminal for the TUI chat and confirm prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

// configPath picks --config out of args before the command tree is built,
// since every dependency is wired from the loaded configuration.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("eventwise", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	path := fs.StringP(cli.ConfigFlag, "c", "", "")
	_ = fs.Parse(args)
	return *path
}

func openStore(ctx context.Context, cfg *config.Config) (*session.SessionStore, func(), error) {
	if cfg.Store.Backend != "redis" {
		return session.NewMemoryStore(), func() {}, nil
	}
	r := cfg.Store.Redis
	rdb, err := session.OpenRedis(ctx, r.Addr, r.Password, r.DB)
	if err != nil {
		return nil, nil, err
	}
	store := session.NewRedisStore(rdb, session.RedisOptions{KeyPrefix: r.KeyPrefix, TTL: r.TTL})
	return store, func() { _ = rdb.Close() }, nil
}

func wireIntelligence(cfg *config.Config, m *metrics.Metrics, log *slog.Logger) (intelligence.DialogueService, intelligence.ConfirmationClassifier, error) {
	llmCfg := cfg.LLMSettings()
	if !llmCfg.Enabled {
		log.Info("dialogue model disabled, turns use deterministic extraction and phrase confirmation")
		return intelligence.NewDialogueService(llm.DisabledClient{}), intelligence.NewPhraseClassifier(), nil
	}

	observers := llm.MultiObserver{m}
	if llmCfg.LogCalls {
		observers = append(observers, llm.NewLogObserver(log.With("component", "llm")))
	}
	client, err := llm.NewClient(llmCfg, observers)
	if err != nil {
		return nil, nil, fmt.Errorf("creating llm client: %w", err)
	}

	classifier := intelligence.NewConfirmationClassifier(client, func(mode intelligence.ConfirmationMode, err error) {
		log.Warn("confirmation classifier failed, treating as no", "mode", mode.String(), "error", err)
	})
	return intelligence.NewDialogueService(client), classifier, nil
}
