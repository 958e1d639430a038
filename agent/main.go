package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/menuvoice/menuvoice-rag/config"
	"github.com/menuvoice/menuvoice-rag/retrieval"
)

type Agent struct {
	config   *config.Config
	handler  *Handler
	upgrader websocket.Upgrader
}

func main() {
	cfg := config.LoadConfig()

	db, err := NewMenuPg(cfg.Postgres.ConnStr())
	if err != nil {
		log.Fatal(err)
	}

	registry, err := db.ListRestaurants(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if len(registry) == 0 {
		log.Fatal("restaurant registry is empty, run cmd/backfill first")
	}

	embeddingLLM, err := ollama.New(
		ollama.WithServerURL(cfg.Ollama.Address()),
		ollama.WithModel(cfg.Ollama.EmbeddingModel),
	)
	if err != nil {
		log.Fatal(err)
	}

	menus := retrieval.LoadMenuStore(cfg.Data.Dir, registry)
	orchestrator := retrieval.NewOrchestrator(registry, NewChunkBackend(db, embeddingLLM), menus)

	queryLogDB, err := sql.Open("sqlite3", cfg.Data.QueryLog)
	if err != nil {
		log.Fatal(err)
	}
	queryLog, err := NewQueryLog(queryLogDB)
	if err != nil {
		log.Fatal(err)
	}

	agent := &Agent{
		config:   cfg,
		handler:  NewHandler(db, orchestrator, queryLog),
		upgrader: websocket.Upgrader{},
	}

	if err := agent.Run(); err != nil {
		log.Fatalf("failed to run the agent: %v", err)
	}
}

func (a *Agent) Run() error {
	r := gin.Default()

	r.GET("/query", func(ctx *gin.Context) {
		input, _ := ctx.GetQuery("input")

		w, req := ctx.Writer, ctx.Request
		c, err := a.upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		defer c.Close()

		resultChan := a.handler.ProcessQuery(ctx, input)
		for {
			select {
			case <-ctx.Request.Context().Done():
				return
			case result := <-resultChan:
				if result == nil {
					return
				}
				if result.Err != nil {
					if result.Err == io.EOF {
						return
					}
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": result.Err.Error()})
					return
				}

				if err := c.WriteJSON(result.Msg); err != nil {
					slog.Error("failed to write to ws connection", "error", err)
					return
				}
			}
		}
	})

	r.POST("/query", func(ctx *gin.Context) {
		var req QueryRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
			return
		}

		result := a.handler.Process(ctx, req.Query)
		ctx.JSON(http.StatusOK, result)
	})

	r.GET("/restaurants", func(ctx *gin.Context) {
		restaurants, err := a.handler.ListRestaurants(ctx)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, restaurants)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r.Run(a.config.Server.Address())
}
