package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tmc/langchaingo/llms/ollama"
	"golang.org/x/sync/errgroup"

	"github.com/menuvoice/menuvoice-rag/config"
)

func main() {
	cfg := config.LoadConfig()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, err := NewNats(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer nc.Close()

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.Ollama.Address()),
		ollama.WithModel(cfg.Ollama.EmbeddingModel),
	)
	if err != nil {
		log.Fatal(err)
	}

	pg, err := NewPg(cfg.Postgres.ConnStr())
	if err != nil {
		log.Fatal(err)
	}

	handler, err := NewHandler(llm, pg, cfg.Embedder.ChunkSize, cfg.Embedder.ChunkOverlap)
	if err != nil {
		log.Fatal(err)
	}

	subjectHandlers := map[string]func(ctx context.Context, msg []byte) error{
		cfg.Nats.DocumentsSubject: handler.HandleDocumentMessage,
	}

	workers := cfg.Embedder.Workers
	if workers < 1 {
		workers = 2
	}
	queueSize := cfg.Embedder.QueueSize
	if queueSize < 1 {
		queueSize = 100
	}
	slog.Info("Starting embedder", "workers", workers, "queueSize", queueSize)

	workerPools := make(map[string]*WorkerPool)
	for subject, h := range subjectHandlers {
		workerPools[subject] = NewWorkerPool(ctx, workers, queueSize, h)
	}

	worker := errgroup.Group{}
	errChan := make(chan error)

	for subject, pool := range workerPools {
		subject, pool := subject, pool // per-iteration copies; go directive is below 1.22
		worker.Go(func() error {
			return nc.Subscribe(ctx, subject, pool)
		})
	}

	go func() {
		errChan <- worker.Wait()
	}()

	select {
	case <-shutdown:
		slog.Info("Shutting down")
		cancel()
	case err := <-errChan:
		slog.Info("Shutting down due to error", "error", err)
		cancel()
	}
}
