package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
)

// orderRecord is the persisted shape of an order. The undo history is
// stored as a JSON blob; it is append-only and never queried by column.
type orderRecord struct {
	ID          string `gorm:"primary_key"`
	TableID     string
	CreatedAt   time.Time
	UndoHistory string `gorm:"type:text"`
}

func (orderRecord) TableName() string { return "orders" }

type itemRecord struct {
	ID          string `gorm:"primary_key"`
	OrderID     string `gorm:"index"`
	Position    int
	Name        string
	Quantity    int
	UnitPrice   float64
	Status      string
	Course      string
	CourseIndex int
	Comment     string `gorm:"type:text"`
	PrepStartAt *time.Time
	ServedAt    *time.Time
}

func (itemRecord) TableName() string { return "order_items" }

// GormRepository persists orders through gorm. The local state machine
// remains authoritative; this mirror is the external persistence
// collaborator and may fail independently of a local mutation.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository opens the database and migrates the order tables.
// Supported dialects are sqlite3 and postgres.
func NewGormRepository(dialect, dsn string) (*GormRepository, error) {
	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if err := db.AutoMigrate(&orderRecord{}, &itemRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate order tables: %w", err)
	}
	return &GormRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *GormRepository) Close() error {
	return r.db.Close()
}

func (r *GormRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var rec orderRecord
	if err := r.db.Where("id = ?", id).First(&rec).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}

	var items []itemRecord
	if err := r.db.Where("order_id = ?", id).Order("position").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items for order %s: %w", id, err)
	}

	return decodeOrder(rec, items)
}

// Save replaces the stored snapshot of the order atomically.
func (r *GormRepository) Save(ctx context.Context, order *models.Order) error {
	rec, items, err := encodeOrder(order)
	if err != nil {
		return err
	}

	tx := r.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Where("id = ?", order.ID).Delete(&orderRecord{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to replace order %s: %w", order.ID, err)
	}
	if err := tx.Where("order_id = ?", order.ID).Delete(&itemRecord{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to replace items for order %s: %w", order.ID, err)
	}
	if err := tx.Create(&rec).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	for i := range items {
		if err := tx.Create(&items[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save item %s: %w", items[i].ID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit order %s: %w", order.ID, err)
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context) ([]*models.Order, error) {
	var recs []orderRecord
	if err := r.db.Order("created_at").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]*models.Order, 0, len(recs))
	for _, rec := range recs {
		var items []itemRecord
		if err := r.db.Where("order_id = ?", rec.ID).Order("position").Find(&items).Error; err != nil {
			return nil, fmt.Errorf("failed to load items for order %s: %w", rec.ID, err)
		}
		order, err := decodeOrder(rec, items)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

func (r *GormRepository) ListOpen(ctx context.Context) ([]*models.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var open []*models.Order
	for _, order := range all {
		if order.Open() {
			open = append(open, order)
		}
	}
	return open, nil
}

func encodeOrder(order *models.Order) (orderRecord, []itemRecord, error) {
	history, err := json.Marshal(order.UndoHistory)
	if err != nil {
		return orderRecord{}, nil, fmt.Errorf("failed to encode undo history: %w", err)
	}

	rec := orderRecord{
		ID:          order.ID,
		TableID:     order.TableID,
		CreatedAt:   order.CreatedAt,
		UndoHistory: string(history),
	}

	items := make([]itemRecord, 0, len(order.Items))
	for pos, item := range order.Items {
		comment := ""
		if item.Comment != nil {
			raw, err := json.Marshal(item.Comment)
			if err != nil {
				return orderRecord{}, nil, fmt.Errorf("failed to encode comment for item %s: %w", item.ID, err)
			}
			comment = string(raw)
		}
		items = append(items, itemRecord{
			ID:          item.ID,
			OrderID:     order.ID,
			Position:    pos,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Status:      string(item.Status),
			Course:      string(item.Course),
			CourseIndex: item.CourseIndex,
			Comment:     comment,
			PrepStartAt: item.PrepStartAt,
			ServedAt:    item.ServedAt,
		})
	}
	return rec, items, nil
}

func decodeOrder(rec orderRecord, items []itemRecord) (*models.Order, error) {
	order := &models.Order{
		ID:        rec.ID,
		TableID:   rec.TableID,
		CreatedAt: rec.CreatedAt,
	}
	if rec.UndoHistory != "" {
		if err := json.Unmarshal([]byte(rec.UndoHistory), &order.UndoHistory); err != nil {
			return nil, fmt.Errorf("failed to decode undo history for order %s: %w", rec.ID, err)
		}
	}

	for _, it := range items {
		item := &models.OrderItem{
			ID:          it.ID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Status:      models.ItemStatus(it.Status),
			Course:      models.CourseType(it.Course),
			CourseIndex: it.CourseIndex,
			PrepStartAt: it.PrepStartAt,
			ServedAt:    it.ServedAt,
		}
		if it.Comment != "" {
			var comment models.Comment
			if err := json.Unmarshal([]byte(it.Comment), &comment); err != nil {
				return nil, fmt.Errorf("failed to decode comment for item %s: %w", it.ID, err)
			}
			item.Comment = &comment
		}
		order.Items = append(order.Items, item)
	}
	return order, nil
}
