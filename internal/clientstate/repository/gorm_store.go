package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewGormStore(db *gorm.DB, genID *snowflake.Node) domain.Store {
	return &gormStore{db: db, genID: genID}
}

func (s *gormStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	var entry domain.Entry
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND state_key = ?", clientID, key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var value string
	if err := json.Unmarshal(entry.Value, &value); err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *gormStore) Set(ctx context.Context, clientID, key, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := domain.Entry{
		ID:        s.genID.Generate(),
		ClientID:  clientID,
		Key:       key,
		Value:     datatypes.JSON(raw),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *gormStore) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("client_id = ? AND state_key IN ?", clientID, keys).
		Delete(&domain.Entry{}).Error
}
