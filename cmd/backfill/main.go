package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/menuvoice/menuvoice-rag/config"
	"github.com/menuvoice/menuvoice-rag/models"
	"github.com/menuvoice/menuvoice-rag/retrieval"
)

// Backfill brings a fresh database up to serving state: it seeds the
// restaurant registry from the data directory, flattens each restaurant's
// JSON data file into menu_documents, and publishes embed jobs for every
// document that has no chunks yet. All steps are idempotent.

type CDCMessage struct {
	Table string `json:"table"`
	Kind  string `json:"kind"`
	ID    uint64 `json:"id"`
}

type restaurantIndex struct {
	Restaurants []models.Restaurant `json:"restaurants"`
}

func main() {
	cfg := config.LoadConfig()

	db, err := gorm.Open(postgres.Open(cfg.Postgres.ConnStr()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to postgres:", err)
	}

	nc, err := nats.Connect(cfg.Nats.ConnStr())
	if err != nil {
		log.Fatal("failed to connect to nats:", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatal("failed to get jetstream context:", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      cfg.Nats.Stream,
		Subjects:  []string{cfg.Nats.DocumentsSubject},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    time.Hour * 24 * 7,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		log.Fatal("failed to create stream:", err)
	}

	registry, err := seedRegistry(db, cfg.Data.Dir)
	if err != nil {
		log.Fatal("failed to seed registry:", err)
	}

	documents := 0
	for _, r := range registry {
		n, err := seedDocuments(db, cfg.Data.Dir, r)
		if err != nil {
			slog.Error("failed to seed documents", "restaurant", r.ID, "err", err)
			continue
		}
		documents += n
	}
	slog.Info("seeded documents", "count", documents)

	var docIDs []uint64
	err = db.Table("menu_documents").
		Where("NOT EXISTS (SELECT 1 FROM menu_chunks WHERE menu_chunks.document_id = menu_documents.id)").
		Pluck("id", &docIDs).Error
	if err != nil {
		log.Fatal("failed to query unchunked documents:", err)
	}
	slog.Info("found unchunked documents", "count", len(docIDs))

	for _, id := range docIDs {
		msg := CDCMessage{
			Table: "menu_documents",
			Kind:  "insert",
			ID:    id,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			slog.Error("failed to marshal message", "err", err)
			continue
		}
		if _, err := js.Publish(cfg.Nats.DocumentsSubject, data); err != nil {
			slog.Error("failed to publish document", "id", id, "err", err)
			continue
		}
		slog.Info("published document for embedding", "id", id)
	}

	slog.Info("backfill complete", "restaurants", len(registry), "documents", len(docIDs))
}

// seedRegistry loads the restaurants table from restaurant_index.json when
// the table is empty, and returns the registry either way.
func seedRegistry(db *gorm.DB, dataDir string) ([]models.Restaurant, error) {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return nil, err
	}

	if count == 0 {
		data, err := os.ReadFile(filepath.Join(dataDir, "restaurant_index.json"))
		if err != nil {
			return nil, fmt.Errorf("read restaurant index: %w", err)
		}

		var index restaurantIndex
		if err := json.Unmarshal(data, &index); err != nil {
			return nil, fmt.Errorf("parse restaurant index: %w", err)
		}
		if len(index.Restaurants) == 0 {
			return nil, fmt.Errorf("restaurant index is empty")
		}

		if err := db.Create(&index.Restaurants).Error; err != nil {
			return nil, fmt.Errorf("insert registry rows: %w", err)
		}
		slog.Info("seeded restaurant registry", "count", len(index.Restaurants))
	}

	var registry []models.Restaurant
	if err := db.Find(&registry).Error; err != nil {
		return nil, err
	}

	return registry, nil
}

// seedDocuments flattens one restaurant's data file into menu_documents.
// Restaurants that already have documents are left alone.
func seedDocuments(db *gorm.DB, dataDir string, r models.Restaurant) (int, error) {
	var count int64
	err := db.Model(&models.MenuDocument{}).Where("restaurant_id = ?", r.ID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	if count > 0 || r.DataFile == "" {
		return 0, nil
	}

	data, err := os.ReadFile(filepath.Join(dataDir, r.DataFile))
	if err != nil {
		return 0, fmt.Errorf("read data file: %w", err)
	}

	var record retrieval.MenuRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return 0, fmt.Errorf("parse data file: %w", err)
	}

	docs := flattenRecord(r, record)
	if len(docs) == 0 {
		return 0, nil
	}

	if err := db.Create(&docs).Error; err != nil {
		return 0, fmt.Errorf("insert documents: %w", err)
	}

	return len(docs), nil
}

// flattenRecord turns the nested data file into one document per concern:
// brand info, branches, and one per top-level menu section. Section
// documents carry their section name as the chunk type so the reranker can
// tell menu text from deal text.
func flattenRecord(r models.Restaurant, record retrieval.MenuRecord) []models.MenuDocument {
	var docs []models.MenuDocument

	add := func(sourceType, title, content string) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		docs = append(docs, models.MenuDocument{
			RestaurantID:   r.ID,
			RestaurantName: r.Name,
			SourceType:     sourceType,
			Title:          title,
			Content:        content,
		})
	}

	var info strings.Builder
	info.WriteString(r.Stringify() + "\n")
	if record.Brand.Description != "" {
		info.WriteString(record.Brand.Description + "\n")
	}
	if record.Brand.Founded != "" {
		info.WriteString("Founded: " + record.Brand.Founded + "\n")
	}
	if record.Brand.Country != "" {
		info.WriteString("Country: " + record.Brand.Country + "\n")
	}
	if len(record.Brand.USP) > 0 {
		info.WriteString("Known for: " + strings.Join(record.Brand.USP, ", ") + "\n")
	}
	add("info", "About "+r.Name, info.String())

	var branches strings.Builder
	if len(record.Branches.Cities) > 0 {
		branches.WriteString("Cities: " + strings.Join(record.Branches.Cities, ", ") + "\n")
	}
	if record.Branches.Hours != "" {
		branches.WriteString("Hours: " + record.Branches.Hours + "\n")
	}
	if record.Branches.TotalBranches != "" {
		branches.WriteString("Total branches: " + record.Branches.TotalBranches + "\n")
	}
	add("branches", r.Name+" branches", branches.String())

	for _, sectionName := range sortedSectionNames(record.Menu) {
		section := record.Menu[sectionName]

		var body strings.Builder
		section.Walk(nil, func(path []string, item retrieval.MenuItem) {
			line := item.Name
			if item.Price != "" {
				line += ": " + item.Price
			}
			if item.Description != "" {
				line += " - " + item.Description
			}
			if len(path) > 0 {
				line = strings.Join(path, " / ") + " / " + line
			}
			body.WriteString(line + "\n")
		})

		sourceType := "menu_" + sectionName
		add(sourceType, r.Name+" "+sectionName, body.String())
	}

	return docs
}

func sortedSectionNames(menu map[string]retrieval.MenuSection) []string {
	names := make([]string, 0, len(menu))
	for name := range menu {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
