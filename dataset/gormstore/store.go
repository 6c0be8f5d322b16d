// Package gormstore serves measurement records from postgres through gorm.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/config"
	"github.com/jenshnielsen/nanotune/dataset"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Measurement is the table row of one record. Grids, labels and features
// are stored as jsonb.
type Measurement struct {
	ID            uint                   `gorm:"primaryKey"`
	Source        string                 `gorm:"not null;uniqueIndex:idx_source_data_id"`
	DataID        int                    `gorm:"not null;uniqueIndex:idx_source_data_id"`
	Labels        []string               `gorm:"type:jsonb;serializer:json;not null"`
	Quality       int                    `gorm:"not null;default:0"`
	Readouts      map[string]common.Grid `gorm:"type:jsonb;serializer:json;not null"`
	PowerSpectrum map[string]common.Grid `gorm:"type:jsonb;serializer:json"`
	Features      json.RawMessage        `gorm:"type:jsonb"`
}

func (Measurement) TableName() string { return "measurements" }

// FromRecord converts a record into its row.
func FromRecord(rec *dataset.MeasurementRecord) (*Measurement, error) {
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	return &Measurement{
		Source:        rec.Source,
		DataID:        rec.ID,
		Labels:        rec.Labels,
		Quality:       rec.Quality,
		Readouts:      rec.Readouts,
		PowerSpectrum: rec.PowerSpectrum,
		Features:      features,
	}, nil
}

// Record converts the row back into a record.
func (m *Measurement) Record() (*dataset.MeasurementRecord, error) {
	rec := &dataset.MeasurementRecord{
		Source:        m.Source,
		ID:            m.DataID,
		Readouts:      m.Readouts,
		PowerSpectrum: m.PowerSpectrum,
		Labels:        m.Labels,
		Quality:       m.Quality,
	}
	if len(m.Features) > 0 {
		if err := json.Unmarshal(m.Features, &rec.Features); err != nil {
			return nil, fmt.Errorf("decode features of %s/%d: %w", m.Source, m.DataID, err)
		}
	}
	for method, g := range rec.Readouts {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("readout %q of %s/%d: %w", method, m.Source, m.DataID, err)
		}
	}
	return rec, nil
}

// Store is a dataset.RecordStore backed by a gorm database.
type Store struct {
	db *gorm.DB
}

// New wraps an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to postgres with the configured credentials.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetMaxOpenConns(16)

	return New(db), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the measurements table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Measurement{})
}

// Save inserts or replaces a record.
func (s *Store) Save(ctx context.Context, rec *dataset.MeasurementRecord) error {
	row, err := FromRecord(rec)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source = ? AND data_id = ?", rec.Source, rec.ID).
			Delete(&Measurement{}).Error; err != nil {
			return err
		}
		return tx.Create(row).Error
	})
}

func (s *Store) ResolveIDs(ctx context.Context, source, stage string, quality *int) ([]int, error) {
	label, err := json.Marshal([]string{stage})
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&Measurement{}).
		Where("source = ?", source).
		Where("labels @> ?::jsonb", string(label))
	if quality != nil {
		q = q.Where("quality = ?", *quality)
	}

	var ids []int
	if err := q.Order("data_id").Pluck("data_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("resolve %s ids in %s: %w", stage, source, err)
	}
	return ids, nil
}

func (s *Store) LoadRecord(ctx context.Context, source string, id int) (*dataset.MeasurementRecord, error) {
	var row Measurement
	err := s.db.WithContext(ctx).
		Where("source = ? AND data_id = ?", source, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%d", dataset.ErrRecordNotFound, source, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%d: %w", source, id, err)
	}
	return row.Record()
}

var _ dataset.RecordStore = (*Store)(nil)
