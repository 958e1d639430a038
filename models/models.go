package models

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Location struct {
	Lon, Lat float64
}

func NewGeoPoint(lng, lat float64) Location {
	return Location{
		Lon: lng,
		Lat: lat,
	}
}

func (g *Location) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case string:
		var err error
		data, err = hex.DecodeString(v)
		if err != nil {
			return err
		}
	case []byte:
		data = v
	default:
		return fmt.Errorf("expected string or []byte, got %T", value)
	}

	t, err := ewkb.Unmarshal(data)
	if err != nil {
		return err
	}

	if point, ok := t.(*geom.Point); ok {
		g.Lon = point.X()
		g.Lat = point.Y()

		return nil
	}

	return fmt.Errorf("expected Point, got %T", t)
}

func (loc Location) GormDataType() string {
	return "geometry"
}

func (loc Location) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return clause.Expr{
		SQL:  "ST_PointFromText(?)",
		Vars: []interface{}{fmt.Sprintf("POINT(%f %f)", loc.Lon, loc.Lat)},
	}
}

// Restaurant is one registry row. The registry is loaded once at process
// start and treated as immutable for the process lifetime; every retrieval
// component receives it by value instead of looking it up globally.
type Restaurant struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Name           string         `json:"name"`
	Keywords       pq.StringArray `gorm:"type:text[]" json:"keywords"`
	FoodCategories pq.StringArray `gorm:"type:text[]" json:"food_categories"`
	DataFile       string         `json:"file"`
	Cities         pq.StringArray `gorm:"type:text[]" json:"cities"`
	Hours          string         `json:"hours"`
	Location       Location       `json:"location"`
}

func (r *Restaurant) TableName() string {
	return "restaurants"
}

func (r *Restaurant) Stringify() string {
	return fmt.Sprintf("Restaurant: %s, Categories: %s, Cities: %s, Hours: %s",
		r.Name, strings.Join(r.FoodCategories, ", "), strings.Join(r.Cities, ", "), r.Hours)
}

// MenuDocument is a flattened span of restaurant source data (a menu
// section, the deals list, brand or branch info). Documents are the CDC
// unit: the embedder re-chunks a whole document whenever it changes.
type MenuDocument struct {
	ID             uint64 `gorm:"primaryKey" json:"id"`
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	SourceType     string `json:"source_type"`
	Title          string `json:"title"`
	Content        string `json:"content"`
}

func (d *MenuDocument) TableName() string {
	return "menu_documents"
}

// MenuChunk is the retrieval unit: a bounded span of a document with its
// embedding. The agent searches this table by vector distance.
type MenuChunk struct {
	ID             uint64          `gorm:"primaryKey" json:"id"`
	DocumentID     uint64          `json:"document_id"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	ChunkIndex     int             `json:"chunk_index"`
	ChunkType      string          `json:"chunk_type"`
	Content        string          `json:"content"`
	ContentHash    string          `json:"content_hash"`
	Embedding      pgvector.Vector `gorm:"type:vector(768)" json:"-"`
}

func (c *MenuChunk) TableName() string {
	return "menu_chunks"
}
