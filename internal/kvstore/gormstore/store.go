package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/docflow/internal/kvstore/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const placeholder = "null"

// Entry is one row of the kv_entries table. Values must be JSON documents.
// Value is text on AutoMigrate dialects so SQLite keeps scalar documents
// verbatim; Postgres gets JSONB from the versioned migrations.
type Entry struct {
	EntryKey  string         `gorm:"column:entry_key;primaryKey;type:varchar(255)"`
	Value     datatypes.JSON `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string { return "kv_entries" }

// Migrate creates the kv_entries table on dialects without versioned migrations.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{})
}

type Store struct {
	db        *gorm.DB
	namespace string
	now       func() time.Time
}

func New(db *gorm.DB, namespace string) *Store {
	return &Store{db: db, namespace: namespace, now: time.Now}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(key); err != nil {
		return nil, false, err
	}
	var e Entry
	err := s.db.WithContext(ctx).
		Where("entry_key = ?", domain.NamespacedKey(s.namespace, key)).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(e.Value) == placeholder {
		return nil, false, nil
	}
	return []byte(e.Value), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	return upsert(s.db.WithContext(ctx), Entry{
		EntryKey:  domain.NamespacedKey(s.namespace, key),
		Value:     jsonValue(value),
		UpdatedAt: s.now().UTC(),
	})
}

// Update runs fn inside a transaction holding the row. A placeholder row is
// inserted first so concurrent writers of a brand new key also serialize on it.
func (s *Store) Update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	if err := s.check(key); err != nil {
		return err
	}
	k := domain.NamespacedKey(s.namespace, key)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Entry{
			EntryKey:  k,
			Value:     datatypes.JSON(placeholder),
			UpdatedAt: s.now().UTC(),
		}).Error
		if err != nil {
			return err
		}

		q := tx
		if tx.Dialector.Name() != "sqlite" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var e Entry
		if err := q.Where("entry_key = ?", k).Take(&e).Error; err != nil {
			return err
		}

		var current []byte
		exists := string(e.Value) != placeholder
		if exists {
			current = []byte(e.Value)
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		return tx.Model(&Entry{}).
			Where("entry_key = ?", k).
			Updates(map[string]any{
				"value":      jsonValue(next),
				"updated_at": s.now().UTC(),
			}).Error
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("entry_key = ?", domain.NamespacedKey(s.namespace, key)).
		Delete(&Entry{}).Error
}

func (s *Store) check(key string) error {
	if s == nil || s.db == nil {
		return domain.ErrNotConfigured
	}
	if strings.TrimSpace(key) == "" {
		return domain.ErrEmptyKey
	}
	return nil
}

func upsert(db *gorm.DB, e Entry) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func jsonValue(b []byte) datatypes.JSON {
	if len(b) == 0 {
		return datatypes.JSON(placeholder)
	}
	return datatypes.JSON(b)
}
