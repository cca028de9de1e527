package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"paperchat/loader"
	"paperchat/model"
	"paperchat/store"
	"paperchat/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))

	pool, err := store.NewPostgresStore(ctx, connStr, envInt("EMBEDDING_DIMENSION", 1536))
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
	}
	defer pool.Close()

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
	}

	embedder := model.NewOpenAIEmbedder(model.EmbedderConfig{
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
	})

	svc, err := loader.NewService(embedder, pool, types.ChunkConfig{
		Size:    envInt("CHUNK_SIZE", 1200),
		Overlap: envInt("CHUNK_OVERLAP", 200),
	})
	if err != nil {
		log.Fatal("invalid chunking configuration: ", err)
	}

	watcher, err := loader.NewWatcher(loader.WatcherConfig{
		SourceDir:  envStr("LOADER_SOURCE_DIR", "./data/source"),
		ArchiveDir: envStr("LOADER_ARCHIVE_DIR", "./data/archive"),
		BadDir:     envStr("LOADER_BAD_DIR", "./data/bad"),
		Settle:     time.Duration(envInt("LOADER_SETTLE_SECONDS", 5)) * time.Second,
	}, svc)
	if err != nil {
		log.Fatal("error to prepare watcher directories: ", err)
	}

	go watcher.Run(ctx)

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down loader...")
	cancel()
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
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
