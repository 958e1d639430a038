package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/tmc/langchaingo/llms/ollama"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/menuvoice/menuvoice-rag/models"
	"github.com/menuvoice/menuvoice-rag/retrieval"
)

type Pg struct {
	db *gorm.DB
}

func NewMenuPg(connStr string) (*Pg, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	return &Pg{db: db}, nil
}

func (s *Pg) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := s.db.WithContext(ctx).Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	return restaurants, nil
}

// ChunkBackend answers vector queries against the menu_chunks table. It
// embeds the query text with the same model the embedder used for the
// chunks, so distances are comparable.
type ChunkBackend struct {
	pg  *Pg
	llm *ollama.LLM
}

func NewChunkBackend(pg *Pg, llm *ollama.LLM) *ChunkBackend {
	return &ChunkBackend{pg: pg, llm: llm}
}

type chunkHit struct {
	ID             uint64
	RestaurantID   string
	RestaurantName string
	ChunkIndex     int
	ChunkType      string
	Content        string
	ContentHash    string
	Distance       float64
}

func (b *ChunkBackend) Query(ctx context.Context, text string, filter *retrieval.BackendFilter, limit int) ([]retrieval.Hit, error) {
	vectors, err := b.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding model returned no vector")
	}

	vectorStr := vectorToStr(vectors[0])

	query := b.pg.db.WithContext(ctx).
		Table("menu_chunks").
		Select("id, restaurant_id, restaurant_name, chunk_index, chunk_type, content, content_hash, embedding <-> ? AS distance", vectorStr).
		Order("distance ASC").
		Limit(limit)

	if filter != nil && filter.RestaurantID != "" {
		query = query.Where("restaurant_id = ?", filter.RestaurantID)
	}

	var rows []chunkHit
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query menu chunks: %w", err)
	}

	hits := make([]retrieval.Hit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, retrieval.Hit{
			ID:       strconv.FormatUint(row.ID, 10),
			Distance: row.Distance,
			Document: row.Content,
			Metadata: map[string]string{
				"restaurant_id":   row.RestaurantID,
				"restaurant_name": row.RestaurantName,
				"chunk_index":     strconv.Itoa(row.ChunkIndex),
				"type":            row.ChunkType,
				"content_hash":    row.ContentHash,
			},
		})
	}

	return hits, nil
}

func vectorToStr(vector []float32) string {
	normalizeVector(vector)

	vectorStr := "["
	for i, v := range vector {
		if i > 0 {
			vectorStr += ","
		}
		vectorStr += fmt.Sprintf("%f", v)
	}
	vectorStr += "]"

	return vectorStr
}

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
