package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docaudit/internal/catalog"
	"docaudit/internal/chunk"
	"docaudit/internal/config"
	"docaudit/internal/detect"
	"docaudit/internal/embedding"
	"docaudit/internal/helper"
	"docaudit/internal/index"
	"docaudit/internal/llmservice"
	"docaudit/internal/pipeline"
	"docaudit/internal/report"
	"docaudit/internal/server"
	"docaudit/internal/service"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// API keys may live in a .env next to the binary.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		log.Warn().Str("path", *configPath).Msg("Config file not found, using defaults")
		cfg = config.Default()
	}
	if cfg.Storage.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	for _, dir := range []string{cfg.Storage.IndexRoot, cfg.Storage.TempRoot} {
		if err := helper.CreateFolder(dir); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Error creating folder")
		}
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	llm, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM client")
	}

	store, err := index.NewStore(cfg.Storage.IndexRoot, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating index store")
	}

	cat, err := catalog.Open(cfg.Storage.CatalogPath, cfg.Storage.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening catalog")
	}
	defer cat.Close()
	if err := cat.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Error initializing catalog")
	}

	detector := detect.NewDetector(llm, cfg.RAG.Terms)
	synthesizer := report.NewSynthesizer(llm, report.NewPDFRenderer(), cfg.Storage.TempRoot)
	pipe := pipeline.New(store, detector, synthesizer, cfg.RAG.Terms, cfg.RAG.TopK)
	splitter := chunk.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	core := service.New(splitter, store, pipe, cat)

	srv := server.NewServer(core, cfg.Storage.TempRoot, &cfg.Server)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("Server stopped")
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("Error during shutdown")
		}
	}
}
