package main

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/menuvoice/menuvoice-rag/models"
)

type Pg struct {
	db *gorm.DB
}

func NewPg(connString string) (*Pg, error) {
	db, err := gorm.Open(postgres.Open(connString), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return &Pg{
		db: db,
	}, nil
}

func (p *Pg) GetDocument(ctx context.Context, documentID uint64) (*models.MenuDocument, error) {
	var doc models.MenuDocument
	if err := p.db.WithContext(ctx).Find(&doc, "id = ?", documentID).Error; err != nil {
		return nil, err
	}

	return &doc, nil
}

// ReplaceDocumentChunks swaps a document's chunks in one transaction.
func (p *Pg) ReplaceDocumentChunks(ctx context.Context, documentID uint64, chunks []models.MenuChunk) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&models.MenuChunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}

		return tx.Create(&chunks).Error
	})
}
