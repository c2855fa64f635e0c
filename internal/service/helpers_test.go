package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Question{}, &model.TimeEntry{}))
	return db
}

// testConfig 每个类别指向三列区域：两列问题，一列解决方案
func testConfig() *config.Config {
	cfg := config.Default()
	for _, c := range domain.Categories() {
		cfg.Questionnaire.Regions[c] = config.RegionConfig{Sheet: c.Label(), HeaderRow: 1, DataStartRow: 2, SolutionColumn: 3}
	}
	return cfg
}

func newQuestionService(t *testing.T) (*QuestionService, repository.QuestionRepository) {
	t.Helper()
	repo := repository.NewQuestionRepository(newTestDB(t))
	return NewQuestionService(testConfig(), repo), repo
}

// seedMasters 为类别创建模板问题
func seedMasters(t *testing.T, repo repository.QuestionRepository, c domain.Category, texts ...string) []*model.Question {
	t.Helper()
	var out []*model.Question
	for i, text := range texts {
		q := (&model.Question{Question: text, Options: "a,b", SortOrder: i + 1}).CloneFor(domain.Master(c))
		require.NoError(t, repo.Create(context.Background(), q))
		out = append(out, q)
	}
	return out
}

func answer(t *testing.T, repo repository.QuestionRepository, ref domain.InstanceRef, text, value string) {
	t.Helper()
	q, err := repo.Find(context.Background(), model.QuestionKey{Ref: ref, Question: text})
	require.NoError(t, err, "%s %s", ref, text)
	require.NoError(t, repo.UpdateAnswer(context.Background(), q.ID, model.StringPtr(value)))
}

func countQuestions(t *testing.T, repo repository.QuestionRepository) int {
	t.Helper()
	all, err := repo.List(context.Background(), model.QuestionFilter{})
	require.NoError(t, err)
	return len(all)
}

// memorySource 提供预置的区域和工作表
type memorySource struct {
	regions map[string]*workbook.Region
	sheets  map[string][][]workbook.Cell
}

func (m *memorySource) ReadRegion(sheet string, headerRow, dataStartRow int) (*workbook.Region, error) {
	r, ok := m.regions[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workbook.ErrSheetNotFound, sheet)
	}
	return r, nil
}

func (m *memorySource) ReadSheet(sheet string) ([][]workbook.Cell, error) {
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workbook.ErrSheetNotFound, sheet)
	}
	return rows, nil
}

func (m *memorySource) Close() error { return nil }

func (m *memorySource) opener() workbook.Opener {
	return workbook.OpenerFunc(func() (workbook.Source, error) { return m, nil })
}

func cells(values ...string) []workbook.Cell {
	out := make([]workbook.Cell, len(values))
	for i, v := range values {
		out[i] = workbook.TextCell(v)
	}
	return out
}

type mockFieldReader struct {
	ReadFieldsFunc func(rs io.ReadSeeker) (map[string]string, error)
}

func (m *mockFieldReader) ReadFields(rs io.ReadSeeker) (map[string]string, error) {
	if m.ReadFieldsFunc != nil {
		return m.ReadFieldsFunc(rs)
	}
	return map[string]string{}, nil
}
