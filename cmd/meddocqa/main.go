package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"meddoc-rag/internal/chunker"
	"meddoc-rag/internal/config"
	"meddoc-rag/internal/database"
	"meddoc-rag/internal/embedding"
	"meddoc-rag/internal/llm"
	"meddoc-rag/internal/processor"
	"meddoc-rag/internal/prompt"
	"meddoc-rag/internal/retriever"
	"meddoc-rag/internal/workflow"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to yaml configuration file")
	pdfPath := flag.String("pdf", "", "Path to the PDF document to answer questions about (required)")
	queryFlag := flag.String("q", "", "Question to answer (non-interactive mode)")
	interactive := flag.Bool("i", false, "Run in interactive mode")
	sessionID := flag.String("session", "", "Session id (generated when empty)")
	indexType := flag.String("index", "", "Vector index backend: postgres or memory (overrides config)")
	pgConnString := flag.String("pg", "", "PostgreSQL connection string (overrides config)")
	ollamaHost := flag.String("ollama", "", "Ollama host (overrides config, default uses OLLAMA_HOST)")
	model := flag.String("model", "", "Ollama model for answering (overrides config)")
	embeddingModel := flag.String("embedding-model", "", "Ollama model for embeddings (overrides config)")
	templatePath := flag.String("template", "", "Path to the instruction template (overrides config)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	applyOverrides(cfg, *indexType, *pgConnString, *ollamaHost, *model, *embeddingModel, *templatePath)

	if *pdfPath == "" {
		logger.Fatal("PDF path is required, use -pdf path/to/document.pdf")
	}
	if !*interactive && *queryFlag == "" {
		logger.Fatal("Question is required in non-interactive mode, use -q 'your question'")
	}

	ctx := context.Background()

	text, err := processor.New().ExtractText(*pdfPath)
	if err != nil {
		logger.Fatal("failed to extract PDF text", zap.String("pdf", *pdfPath), zap.Error(err))
	}
	logger.Info("document loaded", zap.String("pdf", *pdfPath), zap.Int("characters", len(text)))

	embedder, err := embedding.NewOllamaEmbedder(cfg.Ollama.Host, cfg.Ollama.EmbeddingModel)
	if err != nil {
		logger.Fatal("failed to create embedder", zap.Error(err))
	}

	index, err := buildIndex(ctx, cfg, embedder)
	if err != nil {
		logger.Fatal("failed to create vector index", zap.Error(err))
	}
	if pg, ok := index.(*database.PostgresIndex); ok {
		defer pg.Close()
	}

	generator, err := llm.NewOllamaLLM(cfg.Ollama.Host, cfg.Ollama.Model)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	agent := workflow.NewAgent(
		chunker.New(
			chunker.WithChunkSize(cfg.Chunker.ChunkSize),
			chunker.WithOverlap(cfg.Chunker.ChunkOverlap),
			chunker.WithPageSize(cfg.Chunker.PageSize),
		),
		index,
		retriever.New(index),
		generator,
		prompt.NewAssembler(cfg.Prompt.TemplatePath),
		logger,
	)

	filename := filepath.Base(*pdfPath)
	if *interactive {
		runInteractiveMode(ctx, agent, text, filename, *sessionID)
		return
	}

	fmt.Println(agent.Answer(ctx, *queryFlag, text, filename, *sessionID))
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func applyOverrides(cfg *config.Config, indexType, pgConnString, ollamaHost, model, embeddingModel, templatePath string) {
	if indexType != "" {
		cfg.Index.Type = indexType
	}
	if pgConnString != "" {
		if cfg.Index.Postgres == nil {
			cfg.Index.Postgres = &config.PostgresConfig{}
		}
		cfg.Index.Postgres.ConnString = pgConnString
	}
	if ollamaHost != "" {
		cfg.Ollama.Host = ollamaHost
	}
	if model != "" {
		cfg.Ollama.Model = model
	}
	if embeddingModel != "" {
		cfg.Ollama.EmbeddingModel = embeddingModel
	}
	if templatePath != "" {
		cfg.Prompt.TemplatePath = templatePath
	}
}

func buildIndex(ctx context.Context, cfg *config.Config, embedder embedding.Embedder) (database.VectorIndex, error) {
	switch cfg.Index.Type {
	case "postgres":
		pg := cfg.Index.Postgres
		if pg == nil {
			return nil, fmt.Errorf("postgres index selected but not configured")
		}
		return database.NewPostgresIndex(ctx, pg.ConnString, pg.Collection, embedder)
	case "memory", "":
		return database.NewMemoryIndex(embedder), nil
	default:
		return nil, fmt.Errorf("unknown index type %q (use postgres or memory)", cfg.Index.Type)
	}
}

func runInteractiveMode(ctx context.Context, agent *workflow.Agent, text, filename, sessionID string) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Medical Document Assistant - ask questions about %s (type 'exit' to quit)\n", filename)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}
		if input == "" {
			continue
		}

		fmt.Print("Analyzing document... ")
		answer := agent.Answer(ctx, input, text, filename, sessionID)
		fmt.Println("\r" + answer)
	}
}
