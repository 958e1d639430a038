package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/menuvoice/menuvoice-rag/models"
)

// DocumentJob is the CDC payload identifying one changed document row.
type DocumentJob struct {
	Table string `json:"table"`
	Kind  string `json:"kind"`
	ID    uint64 `json:"id"`
}

type Handler struct {
	llm      *ollama.LLM
	pg       *Pg
	splitter textsplitter.RecursiveCharacter
}

func NewHandler(llm *ollama.LLM, pg *Pg, chunkSize, chunkOverlap int) (*Handler, error) {
	if chunkSize < 1 {
		chunkSize = 800
	}
	if chunkOverlap < 0 {
		chunkOverlap = 100
	}

	return &Handler{
		llm: llm,
		pg:  pg,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}, nil
}

func (h *Handler) GenerateTextVector(ctx context.Context, text string) ([]float32, error) {
	embeds, err := h.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(embeds) == 0 {
		return nil, fmt.Errorf("empty embeddings")
	}

	return embeds[0], nil
}

// HandleDocumentMessage re-chunks and re-embeds one document on receiving a
// cdc message from nats. The old chunks are replaced atomically so the agent
// never sees a half-embedded document.
func (h *Handler) HandleDocumentMessage(ctx context.Context, msg []byte) error {
	var job DocumentJob
	if err := json.Unmarshal(msg, &job); err != nil {
		return fmt.Errorf("malformed document job: %w", err)
	}

	doc, err := h.pg.GetDocument(ctx, job.ID)
	if err != nil {
		return err
	}
	if doc.ID == 0 {
		// Row deleted between the cdc event and now.
		slog.Warn("document no longer exists, skipping", "id", job.ID)
		return nil
	}

	parts, err := h.splitter.SplitText(doc.Content)
	if err != nil {
		return fmt.Errorf("failed to split document %d: %w", doc.ID, err)
	}

	chunks := make([]models.MenuChunk, 0, len(parts))
	for i, part := range parts {
		vector, err := h.GenerateTextVector(ctx, part)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of document %d: %w", i, doc.ID, err)
		}

		sum := sha256.Sum256([]byte(part))
		chunks = append(chunks, models.MenuChunk{
			DocumentID:     doc.ID,
			RestaurantID:   doc.RestaurantID,
			RestaurantName: doc.RestaurantName,
			ChunkIndex:     i,
			ChunkType:      doc.SourceType,
			Content:        part,
			ContentHash:    hex.EncodeToString(sum[:]),
			Embedding:      pgvector.NewVector(normalizeVector(vector)),
		})
	}

	if err := h.pg.ReplaceDocumentChunks(ctx, doc.ID, chunks); err != nil {
		return err
	}

	slog.Info("document embedded", "document", doc.ID, "restaurant", doc.RestaurantID, "chunks", len(chunks))

	return nil
}

// normalizeVector scales to unit length so the agent's L2 distances behave
// like cosine distances. The query side normalizes the same way.
func normalizeVector(vec []float32) []float32 {
	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	norm := float32(math.Sqrt(float64(sum)))
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}
