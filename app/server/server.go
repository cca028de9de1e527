package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"paperchat/app/agent"
	"paperchat/app/api"
	"paperchat/loader"
	"paperchat/model"
	"paperchat/retriever"
	"paperchat/store"
	"paperchat/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
	BodyLimit:    50 * 1024 * 1024, // uploaded papers
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))

	pool, err := store.NewPostgresStore(ctx, connStr, envInt("EMBEDDING_DIMENSION", 1536))
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	embedder := model.NewOpenAIEmbedder(model.EmbedderConfig{
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
	})
	agentClient := agent.NewClient(agent.Config{
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("CHAT_MODEL"),
	})

	svc, err := loader.NewService(embedder, pool, types.ChunkConfig{
		Size:    envInt("CHUNK_SIZE", 1200),
		Overlap: envInt("CHUNK_OVERLAP", 200),
	})
	if err != nil {
		log.Fatal("invalid chunking configuration: ", err)
	}

	var (
		app          = fiber.New(config)
		checkHandler = api.NewCheckHandler()
		paperHandler = api.NewPaperHandler(
			svc,
			retriever.New(embedder, pool),
			agentClient,
			pool,
			api.PaperHandlerConfig{
				UploadDir:       envStr("UPLOAD_DIR", "./data/uploads"),
				MaxContextChars: envInt("MAX_CONTEXT_CHARS", 8000),
			},
		)
		check = app.Group("/check")
		apiv1 = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/upload", paperHandler.HandleUpload)
	apiv1.Post("/chat", paperHandler.HandleChat)
	apiv1.Delete("/session/:id", paperHandler.HandleDeleteSession)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
