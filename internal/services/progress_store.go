package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressStore persists onboarding records keyed by (user, flow).
type ProgressStore interface {
	// Find returns ErrNotFound when the user has no record for the flow.
	Find(ctx context.Context, userID, flow string) (*models.OnboardingRecord, error)
	// Save writes rec if the stored version still equals expectedVersion
	// (0 for a record that does not exist yet), else wizard.ErrVersionConflict.
	Save(ctx context.Context, rec *models.OnboardingRecord, expectedVersion int) error
	Delete(ctx context.Context, userID, flow string) error
}

type GormProgressStore struct {
	DB *gorm.DB
}

func NewGormProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{DB: db}
}

func (s *GormProgressStore) Find(ctx context.Context, userID, flow string) (*models.OnboardingRecord, error) {
	var rec models.OnboardingRecord
	err := s.DB.WithContext(ctx).Where("user_id = ? AND flow = ?", userID, flow).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find progress: %w", err)
	}
	return &rec, nil
}

// Save tries an upsert first. If that fails for any reason other than a version
// conflict, typically a first-insert race, it falls back to a select followed by
// an update or insert inside a transaction.
func (s *GormProgressStore) Save(ctx context.Context, rec *models.OnboardingRecord, expectedVersion int) error {
	err := s.upsert(ctx, rec, expectedVersion)
	if err == nil || errors.Is(err, wizard.ErrVersionConflict) {
		return err
	}
	slog.Warn("Progress upsert failed, falling back to select-then-write.",
		"user", rec.UserID, "flow", rec.Flow, "err", err)

	ferr := s.selectThenWrite(ctx, rec, expectedVersion)
	if ferr == nil || errors.Is(ferr, wizard.ErrVersionConflict) {
		return ferr
	}
	return fmt.Errorf("save progress: %w (upsert: %v)", ferr, err)
}

var progressColumns = []string{"current_step", "completed_steps", "status", "data", "version", "job_posting_id", "updated_at"}

func (s *GormProgressStore) upsert(ctx context.Context, rec *models.OnboardingRecord, expectedVersion int) error {
	db := s.DB.WithContext(ctx)
	if expectedVersion == 0 {
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "flow"}},
			DoNothing: true,
		}).Create(rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return wizard.ErrVersionConflict
		}
		return nil
	}

	res := db.Model(rec).
		Where("version = ?", expectedVersion).
		Select(progressColumns).
		Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return wizard.ErrVersionConflict
	}
	return nil
}

func (s *GormProgressStore) selectThenWrite(ctx context.Context, rec *models.OnboardingRecord, expectedVersion int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.OnboardingRecord
		err := tx.Where("user_id = ? AND flow = ?", rec.UserID, rec.Flow).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if expectedVersion != 0 {
				return wizard.ErrVersionConflict
			}
			rec.ID = 0
			err := tx.Create(rec).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return wizard.ErrVersionConflict
			}
			return err
		case err != nil:
			return err
		}
		if existing.Version != expectedVersion {
			return wizard.ErrVersionConflict
		}
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		return tx.Save(rec).Error
	})
}

func (s *GormProgressStore) Delete(ctx context.Context, userID, flow string) error {
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND flow = ?", userID, flow).
		Delete(&models.OnboardingRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
