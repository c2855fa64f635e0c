package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"github.com/weibaohui/energyaudit/backend/internal/service"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
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

// testServer 将所有 handler 挂到内存数据库上，并像浏览器一样在请求间保留会话 cookie
type testServer struct {
	t         *testing.T
	engine    *gin.Engine
	db        *gorm.DB
	questions repository.QuestionRepository
	reader    *mockFieldReader
	cookies   []*http.Cookie
}

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

func newTestServer(t *testing.T, opener workbook.Opener) *testServer {
	t.Helper()
	cfg := config.Default()
	for _, c := range domain.Categories() {
		cfg.Questionnaire.Regions[c] = config.RegionConfig{Sheet: c.Label(), HeaderRow: 1, DataStartRow: 2, SolutionColumn: 2}
	}
	cfg.Session.Secret = "test-secret"

	db := newTestDB(t)
	questionRepo := repository.NewQuestionRepository(db)
	reader := &mockFieldReader{}
	store := NewProjectStore(cfg.Session)
	questionService := service.NewQuestionService(cfg, questionRepo)

	r := gin.New()
	api := r.Group("/api")
	NewProjectHandler(store, questionService).RegisterRoutes(api)
	NewQuestionHandler(store, questionService).RegisterRoutes(api)
	NewReportHandler(store, service.NewReportService(cfg, questionRepo, opener)).RegisterRoutes(api)
	NewQuestionnaireHandler(store, service.NewQuestionnaireService(cfg, questionRepo, reader)).RegisterRoutes(api)
	NewTimeEntryHandler(service.NewTimeEntryService(repository.NewTimeEntryRepository(db))).RegisterRoutes(api)
	NewGlossaryHandler(service.NewGlossaryService(cfg.Glossary, opener)).RegisterRoutes(api)

	return &testServer{t: t, engine: r, db: db, questions: questionRepo, reader: reader}
}

func (s *testServer) send(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		s.cookies = set
	}
	return w
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) seedMaster(c domain.Category, texts ...string) []*model.Question {
	s.t.Helper()
	var out []*model.Question
	for i, text := range texts {
		q := (&model.Question{Question: text, Options: "a,b", SortOrder: i + 1}).CloneFor(domain.Master(c))
		require.NoError(s.t, s.questions.Create(context.Background(), q))
		out = append(out, q)
	}
	return out
}

type memorySource struct {
	regions map[string]*workbook.Region
	sheets  map[string][][]workbook.Cell
}

func (m *memorySource) ReadRegion(sheet string, headerRow, dataStartRow int) (*workbook.Region, error) {
	if r, ok := m.regions[sheet]; ok {
		return r, nil
	}
	return nil, workbook.ErrSheetNotFound
}

func (m *memorySource) ReadSheet(sheet string) ([][]workbook.Cell, error) {
	if rows, ok := m.sheets[sheet]; ok {
		return rows, nil
	}
	return nil, workbook.ErrSheetNotFound
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
