package repository

import (
	"context"
	"errors"

	"github.com/weibaohui/energyaudit/backend/internal/model"
	"gorm.io/gorm"
)

type timeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *timeEntryRepository) Get(ctx context.Context, id uint) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *timeEntryRepository) List(ctx context.Context, from, to string, newestFirst bool) ([]model.TimeEntry, error) {
	tx := r.db.WithContext(ctx).Model(&model.TimeEntry{})
	if from != "" {
		tx = tx.Where("date >= ?", from)
	}
	if to != "" {
		tx = tx.Where("date <= ?", to)
	}
	if newestFirst {
		tx = tx.Order("date DESC, start_time DESC")
	} else {
		tx = tx.Order("date ASC, start_time ASC")
	}
	var entries []model.TimeEntry
	err := tx.Find(&entries).Error
	return entries, err
}

func (r *timeEntryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.TimeEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTimeEntryNotFound
	}
	return nil
}
