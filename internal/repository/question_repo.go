package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"gorm.io/gorm"
)

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, q *model.Question) error {
	exists, err := r.Exists(ctx, model.QuestionKey{Ref: q.Ref(), Question: q.Question})
	if err != nil {
		return err
	}
	if exists {
		return ErrQuestionExists
	}
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *questionRepository) Get(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	err := r.db.WithContext(ctx).First(&q, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	var questions []model.Question
	err := applyFilter(r.db.WithContext(ctx).Model(&model.Question{}), filter).
		Order("category, instance_index, sub_instance_index, sort_order, id").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) ListByRef(ctx context.Context, ref domain.InstanceRef) ([]model.Question, error) {
	var questions []model.Question
	err := whereRef(r.db.WithContext(ctx).Model(&model.Question{}), ref).
		Order("sort_order, id").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) Find(ctx context.Context, key model.QuestionKey) (*model.Question, error) {
	var q model.Question
	err := whereRef(r.db.WithContext(ctx).Model(&model.Question{}), key.Ref).
		Where("question = ?", key.Question).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) Exists(ctx context.Context, key model.QuestionKey) (bool, error) {
	var count int64
	err := whereRef(r.db.WithContext(ctx).Model(&model.Question{}), key.Ref).
		Where("question = ?", key.Question).
		Count(&count).Error
	return count > 0, err
}

func (r *questionRepository) MaxSortOrder(ctx context.Context, category domain.Category) (int, bool, error) {
	var maxOrder sql.NullInt64
	if err := r.db.WithContext(ctx).Model(&model.Question{}).
		Where("category = ?", category).
		Select("MAX(sort_order)").
		Scan(&maxOrder).Error; err != nil {
		return 0, false, err
	}
	if !maxOrder.Valid {
		return 0, false, nil
	}
	return int(maxOrder.Int64), true, nil
}

func (r *questionRepository) UpdateAnswer(ctx context.Context, id uint, answer *string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Question{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrQuestionNotFound
	}
	return r.db.WithContext(ctx).Model(&model.Question{}).
		Where("id = ?", id).
		Update("answer", answer).Error
}

func (r *questionRepository) UpdateAnswers(ctx context.Context, answers map[uint]*string) error {
	ids := make([]uint, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := r.UpdateAnswer(ctx, id, answers[id]); err != nil {
			return fmt.Errorf("question %d: %w", id, err)
		}
	}
	return nil
}

func (r *questionRepository) ResetAnswers(ctx context.Context, filter model.QuestionFilter) (int64, error) {
	res := applyFilter(r.db.WithContext(ctx).Model(&model.Question{}), filter).
		Where("answer IS NOT NULL").
		Update("answer", nil)
	return res.RowsAffected, res.Error
}

func (r *questionRepository) DeleteByText(ctx context.Context, category domain.Category, text string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("category = ? AND question = ?", category, text).
		Delete(&model.Question{})
	return res.RowsAffected, res.Error
}

func (r *questionRepository) DeleteSubInstancesAbove(ctx context.Context, category domain.Category, instance, maxSub int) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("category = ? AND instance_index = ? AND sub_instance_index > ?", category, instance, maxSub).
		Delete(&model.Question{})
	return res.RowsAffected, res.Error
}

func (r *questionRepository) Transaction(ctx context.Context, fn func(repo QuestionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&questionRepository{db: tx})
	})
}

func whereRef(tx *gorm.DB, ref domain.InstanceRef) *gorm.DB {
	tx = tx.Where("category = ? AND instance_index = ?", ref.Category, ref.Instance)
	if ref.Sub == nil {
		return tx.Where("sub_instance_index = 0")
	}
	return tx.Where("sub_instance_index = ?", *ref.Sub)
}

func applyFilter(tx *gorm.DB, filter model.QuestionFilter) *gorm.DB {
	if filter.Category != nil {
		tx = tx.Where("category = ?", *filter.Category)
	}
	if filter.Instance != nil {
		tx = tx.Where("instance_index = ?", *filter.Instance)
	}
	if filter.Sub != nil {
		tx = tx.Where("sub_instance_index = ?", *filter.Sub)
	}
	if filter.AnsweredOnly != "" {
		tx = tx.Where("answer IS NOT NULL AND TRIM(answer) <> '' AND LOWER(TRIM(answer)) <> ?",
			strings.ToLower(strings.TrimSpace(filter.AnsweredOnly)))
	}
	return tx
}
