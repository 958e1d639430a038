package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/menuvoice/menuvoice-rag/models"
	"github.com/menuvoice/menuvoice-rag/retrieval"
)

type Handler struct {
	pg           *Pg
	orchestrator *retrieval.Orchestrator
	queryLog     *QueryLog
}

func NewHandler(pg *Pg, orchestrator *retrieval.Orchestrator, queryLog *QueryLog) *Handler {
	return &Handler{
		pg:           pg,
		orchestrator: orchestrator,
		queryLog:     queryLog,
	}
}

func (h *Handler) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	restaurants, err := h.pg.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	return restaurants, nil
}

// Process runs the retrieval pipeline once and records metrics and the query
// log. The pipeline itself never fails; a degraded backend just produces an
// emptier result.
func (h *Handler) Process(ctx context.Context, query string) retrieval.Result {
	start := time.Now()
	result := h.orchestrator.Process(ctx, query)
	took := time.Since(start)

	queriesTotal.WithLabelValues(result.QueryType).Inc()
	queryDuration.Observe(took.Seconds())
	if result.Context == "" {
		emptyContexts.Inc()
	}

	if err := h.queryLog.Insert(ctx, query, result, took); err != nil {
		slog.Error("failed to record query", "error", err)
	}

	return result
}

// ProcessQuery streams the pipeline stages over a channel so the websocket
// consumer renders detections before the full context arrives. The channel
// closes after an io.EOF sentinel.
func (h *Handler) ProcessQuery(ctx context.Context, query string) chan *ProcessingResult {
	resultChan := make(chan *ProcessingResult)

	go func() {
		defer close(resultChan)

		if strings.TrimSpace(query) == "" {
			resultChan <- &ProcessingResult{
				Err: fmt.Errorf("query must not be empty"),
			}

			return
		}

		result := h.Process(ctx, query)

		resultChan <- &ProcessingResult{
			Msg: WebSocketsMessage{
				Type: "restaurants",
				Data: result.DetectedRestaurants,
			},
		}

		resultChan <- &ProcessingResult{
			Msg: WebSocketsMessage{
				Type: "context",
				Data: result.Context,
			},
		}

		resultChan <- &ProcessingResult{
			Msg: WebSocketsMessage{
				Type: "suggestions",
				Data: result.Suggestions,
			},
		}

		resultChan <- &ProcessingResult{
			Err: io.EOF,
		}
	}()

	return resultChan
}
