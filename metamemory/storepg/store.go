package storepg

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cogniscale/cortex/metamemory"
	"github.com/cogniscale/cortex/types"
)

// record is the GORM row shape for a metamemory.Item.
type record struct {
	ID              string `gorm:"primaryKey"`
	ComponentID     string `gorm:"index"`
	KnowledgeType   string `gorm:"index"`
	ConfidenceScore float64
	ValidationCount uint32
	SuccessCount    uint32
	FailureCount    uint32
	UsageCount      uint32
	Source          string
	MetadataJSON    string
	CreatedAt       time.Time
	LastAccessed    *time.Time
	LastValidated   *time.Time
}

func (record) TableName() string { return "metamemory_items" }

func toRecord(item *metamemory.Item) (*record, error) {
	meta, err := json.Marshal(item.Metadata)
	if err != nil {
		return nil, err
	}
	return &record{
		ID:              item.ID,
		ComponentID:     item.ComponentID,
		KnowledgeType:   string(item.KnowledgeType),
		ConfidenceScore: item.ConfidenceScore,
		ValidationCount: item.ValidationCount,
		SuccessCount:    item.SuccessCount,
		FailureCount:    item.FailureCount,
		UsageCount:      item.UsageCount,
		Source:          item.Source,
		MetadataJSON:    string(meta),
		CreatedAt:       item.CreatedAt,
		LastAccessed:    item.LastAccessed,
		LastValidated:   item.LastValidated,
	}, nil
}

func (r *record) toItem() (*metamemory.Item, error) {
	var meta map[string]string
	if r.MetadataJSON != "" {
		if err := json.Unmarshal([]byte(r.MetadataJSON), &meta); err != nil {
			return nil, err
		}
	}
	return &metamemory.Item{
		ID:              r.ID,
		ComponentID:     r.ComponentID,
		KnowledgeType:   metamemory.KnowledgeType(r.KnowledgeType),
		ConfidenceScore: r.ConfidenceScore,
		ValidationCount: r.ValidationCount,
		SuccessCount:    r.SuccessCount,
		FailureCount:    r.FailureCount,
		UsageCount:      r.UsageCount,
		Source:          r.Source,
		Metadata:        meta,
		CreatedAt:       r.CreatedAt,
		LastAccessed:    r.LastAccessed,
		LastValidated:   r.LastValidated,
	}, nil
}

// Store is a GORM-backed durable counterpart of metamemory.Store. The
// facade does not use it: facade.Initialize always builds an in-memory
// metamemory.Store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New opens (and auto-migrates) the metamemory_items table against db.
func New(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, types.Errorf(types.ErrStorage, "migrate metamemory_items: %v", err)
	}
	return &Store{db: db, logger: logger.With(zap.String("component", "metamemory_storepg"))}, nil
}

func (s *Store) StoreItem(ctx context.Context, item *metamemory.Item) error {
	rec, err := toRecord(item)
	if err != nil {
		return types.Errorf(types.ErrInternal, "encode item: %v", err)
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return types.Errorf(types.ErrStorage, "insert metamemory item: %v", err)
	}
	return nil
}

func (s *Store) GetItemByComponent(ctx context.Context, componentID string) (*metamemory.Item, error) {
	var rec record
	err := s.db.WithContext(ctx).Where("component_id = ?", componentID).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, types.Errorf(types.ErrNotFound, "no meta-memory item for component %q", componentID)
	}
	if err != nil {
		return nil, types.Errorf(types.ErrStorage, "query metamemory item: %v", err)
	}
	return rec.toItem()
}

func (s *Store) Save(ctx context.Context, item *metamemory.Item) error {
	rec, err := toRecord(item)
	if err != nil {
		return types.Errorf(types.ErrInternal, "encode item: %v", err)
	}
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return types.Errorf(types.ErrStorage, "save metamemory item: %v", err)
	}
	return nil
}

func (s *Store) RemoveByComponent(ctx context.Context, componentID string) error {
	if err := s.db.WithContext(ctx).Where("component_id = ?", componentID).Delete(&record{}).Error; err != nil {
		return types.Errorf(types.ErrStorage, "delete metamemory item: %v", err)
	}
	return nil
}

// LoadAll reads every persisted item, skipping rows whose metadata cannot
// be decoded.
func (s *Store) LoadAll(ctx context.Context) ([]*metamemory.Item, error) {
	var recs []record
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, types.Errorf(types.ErrStorage, "load metamemory items: %v", err)
	}
	items := make([]*metamemory.Item, 0, len(recs))
	for i := range recs {
		item, err := recs[i].toItem()
		if err != nil {
			s.logger.Warn("skipping unreadable metamemory row", zap.String("id", recs[i].ID), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
