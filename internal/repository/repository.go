package repository

import (
	"context"
	"errors"

	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
)

var (
	ErrQuestionNotFound  = errors.New("question not found")
	ErrQuestionExists    = errors.New("question already exists for this instance")
	ErrTimeEntryNotFound = errors.New("time entry not found")
)

// QuestionRepository 问题及答案的存储
type QuestionRepository interface {
	// Create 插入一个问题，键重复时返回 ErrQuestionExists
	Create(ctx context.Context, q *model.Question) error

	Get(ctx context.Context, id uint) (*model.Question, error)

	// List 按实例、排序号、id 返回问题
	List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error)

	// ListByRef 返回某一个实例的问题
	ListByRef(ctx context.Context, ref domain.InstanceRef) ([]model.Question, error)

	// Find 按唯一键查找问题
	Find(ctx context.Context, key model.QuestionKey) (*model.Question, error)

	Exists(ctx context.Context, key model.QuestionKey) (bool, error)

	// MaxSortOrder 返回类别的最大排序号，类别还没有问题时 ok 为 false
	MaxSortOrder(ctx context.Context, category domain.Category) (max int, ok bool, err error)

	UpdateAnswer(ctx context.Context, id uint, answer *string) error

	// UpdateAnswers 批量写入答案，遇到未知 id 时中止
	UpdateAnswers(ctx context.Context, answers map[uint]*string) error

	// ResetAnswers 清空符合 filter 的问题的答案
	ResetAnswers(ctx context.Context, filter model.QuestionFilter) (int64, error)

	// DeleteByText 从类别的所有实例中删除该问题
	DeleteByText(ctx context.Context, category domain.Category, text string) (int64, error)

	// DeleteSubInstancesAbove 删除嵌套实例中序号大于 maxSub 的子实例
	DeleteSubInstancesAbove(ctx context.Context, category domain.Category, instance, maxSub int) (int64, error)

	// Transaction 在同一个事务中执行 fn
	Transaction(ctx context.Context, fn func(repo QuestionRepository) error) error
}

type TimeEntryRepository interface {
	Create(ctx context.Context, entry *model.TimeEntry) error
	Get(ctx context.Context, id uint) (*model.TimeEntry, error)
	// List 返回 from <= date <= to 的记录，空边界不限制
	// newestFirst 用于列表页，否则按报表顺序
	List(ctx context.Context, from, to string, newestFirst bool) ([]model.TimeEntry, error)
	Delete(ctx context.Context, id uint) error
}
