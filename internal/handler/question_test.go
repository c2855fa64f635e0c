package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
)

func TestQuestionLifecycle(t *testing.T) {
	s := newTestServer(t, (&memorySource{}).opener())
	s.seedMaster(domain.Feeder, "Messung")
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/project", map[string]any{"counts": map[string]int{"feeder": 2}}).Code)

	w := s.do(http.MethodPost, "/api/questions", map[string]any{"category": "feeder", "question": "Netzform", "options": "TN,TT,IT"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Question](t, w)
	assert.Equal(t, 2, created.SortOrder)

	w = s.do(http.MethodPost, "/api/questions", map[string]any{"category": "feeder", "question": "Netzform", "options": "TN"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(http.MethodPost, "/api/questions", map[string]any{"category": "pump", "question": "x", "options": "y"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/questions?configured=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]model.Question](t, w)
	assert.Len(t, all, 4, "both instances carry both questions")

	w = s.do(http.MethodPut, "/api/questions/answers", map[string]any{"answers": map[string]string{fmt.Sprint(created.ID): " TN "}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/questions/has-answers", nil)
	assert.Equal(t, true, decode[map[string]any](t, w)["has_answers"])

	w = s.do(http.MethodGet, "/api/questions?category=feeder&instance=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, q := range decode[[]model.Question](t, w) {
		if q.ID == created.ID {
			assert.Equal(t, "TN", q.AnswerText())
		}
	}

	w = s.do(http.MethodPut, "/api/questions/answers", map[string]any{"answers": map[string]string{"9999": "x"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/questions/reset-answers", map[string]any{"category": "feeder"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["reset"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/questions/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["removed"])
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/questions/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, "/api/questions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestionListRejectsBadFilters(t *testing.T) {
	s := newTestServer(t, (&memorySource{}).opener())
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/questions?category=pump", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/questions?instance=one", nil).Code)
}

func TestSynchronizeAndCopyAnswers(t *testing.T) {
	s := newTestServer(t, (&memorySource{}).opener())
	s.seedMaster(domain.OutletSub, "Wandler")
	w := s.do(http.MethodPut, "/api/project", map[string]any{
		"counts":     map[string]int{"outlet_sub": 1},
		"sub_counts": map[string]int{"1": 2},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/questions/synchronize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["added"])

	w = s.do(http.MethodGet, "/api/questions?category=outlet_sub&sub=1", nil)
	master := decode[[]model.Question](t, w)
	require.Len(t, master, 1)
	w = s.do(http.MethodPut, "/api/questions/answers", map[string]any{"answers": map[string]string{fmt.Sprint(master[0].ID): "100/5A"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/questions/copy-answers", map[string]int{"instance": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["updated"])

	w = s.do(http.MethodGet, "/api/questions?category=outlet_sub&sub=2", nil)
	copied := decode[[]model.Question](t, w)
	require.Len(t, copied, 1)
	assert.Equal(t, "100/5A", copied[0].AnswerText())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/questions/copy-answers", map[string]int{"instance": 2}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/questions/copy-answers", map[string]int{"instance": 0}).Code)
}
