package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/pdfform"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
)

func newQuestionnaireService(t *testing.T, reader pdfform.FieldReader) (*QuestionnaireService, repository.QuestionRepository) {
	t.Helper()
	repo := repository.NewQuestionRepository(newTestDB(t))
	return NewQuestionnaireService(testConfig(), repo, reader), repo
}

func TestImportNeinBecomesNotRelevant(t *testing.T) {
	svc, repo := newQuestionnaireService(t, nil)
	ctx := context.Background()
	qs := seedMasters(t, repo, domain.Transformer, "Messung", "Versorgungsspannung", "Bauform")

	fields := map[string]string{
		pdfform.FieldName(qs[0].ID, 0): "Nein",
		pdfform.FieldName(qs[1].ID, 0): " 24V DC ",
		pdfform.FieldName(qs[2].ID, 0): "",
		"question_999":                 "x",
		"unrelated":                    "y",
	}
	res, err := svc.ApplyFields(ctx, domain.NewProjectConfig(), fields)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.NotRelevant)
	assert.Equal(t, []string{"question_999"}, res.Unknown)

	got, err := repo.Get(ctx, qs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Nicht relevant", got.AnswerText())
	got, err = repo.Get(ctx, qs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "24V DC", got.AnswerText())
	got, err = repo.Get(ctx, qs[2].ID)
	require.NoError(t, err)
	assert.Nil(t, got.Answer, "empty fields leave the answer alone")
}

func TestImportCheckboxMarkerAndNo(t *testing.T) {
	svc, repo := newQuestionnaireService(t, nil)
	ctx := context.Background()
	qs := seedMasters(t, repo, domain.Feeder, "Vorhanden")

	_, err := svc.ApplyFields(ctx, domain.NewProjectConfig(), map[string]string{pdfform.FieldName(qs[0].ID, 0): "/NO"})
	require.NoError(t, err)
	got, err := repo.Get(ctx, qs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Nicht relevant", got.AnswerText())
}

func TestImportCopiesNestedAnswers(t *testing.T) {
	svc, repo := newQuestionnaireService(t, nil)
	ctx := context.Background()
	seedMasters(t, repo, domain.OutletSub, "Wandler")

	cfg := domain.NewProjectConfig()
	cfg.Counts[domain.OutletSub] = 1
	cfg.SubCounts[1] = 3
	_, err := NewQuestionService(testConfig(), repo).Reconcile(ctx, domain.NewProjectConfig(), cfg)
	require.NoError(t, err)

	master, err := repo.Find(ctx, model.QuestionKey{Ref: domain.Master(domain.OutletSub), Question: "Wandler"})
	require.NoError(t, err)

	fields := map[string]string{
		pdfform.FieldName(master.ID, 1): "100/5A",
		pdfform.CopyFieldName(1):        "Yes",
		pdfform.CopyFieldName(4):        "/Yes",
	}
	res, err := svc.ApplyFields(ctx, cfg, fields)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Copied)
	assert.Len(t, res.Messages, 3)

	for sub := 2; sub <= 3; sub++ {
		q, err := repo.Find(ctx, model.QuestionKey{Ref: domain.NewSubInstanceRef(domain.OutletSub, 1, sub), Question: "Wandler"})
		require.NoError(t, err)
		assert.Equal(t, "100/5A", q.AnswerText(), "sub %d", sub)
	}
}

func TestImportReaderFailure(t *testing.T) {
	boom := errors.New("not a form")
	reader := &mockFieldReader{ReadFieldsFunc: func(io.ReadSeeker) (map[string]string, error) { return nil, boom }}
	svc, _ := newQuestionnaireService(t, reader)
	_, err := svc.Import(context.Background(), domain.NewProjectConfig(), strings.NewReader("%PDF-"))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrUnreadableForm)
}

func TestImportThroughReader(t *testing.T) {
	svc, repo := newQuestionnaireService(t, nil)
	qs := seedMasters(t, repo, domain.Outlet, "Netzform")
	svc.reader = &mockFieldReader{ReadFieldsFunc: func(io.ReadSeeker) (map[string]string, error) {
		return map[string]string{pdfform.FieldName(qs[0].ID, 0): "nein"}, nil
	}}

	res, err := svc.Import(context.Background(), domain.NewProjectConfig(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "1 Antworten importiert", res.Messages[0])
}

func TestExportQuestionnaire(t *testing.T) {
	svc, repo := newQuestionnaireService(t, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	assert.ErrorIs(t, svc.Export(ctx, &buf, domain.NewProjectConfig(), "", false), ErrNoQuestions)

	seedMasters(t, repo, domain.Transformer, "Versorgungsspannung", "Messung")
	require.NoError(t, svc.Export(ctx, &buf, domain.NewProjectConfig(), "M. Müller", false))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFillableExportImportRoundTrip(t *testing.T) {
	svc, repo := newQuestionnaireService(t, pdfform.NewReader())
	ctx := context.Background()
	seedMasters(t, repo, domain.Transformer, "Messung")
	seedMasters(t, repo, domain.OutletSub, "Wandler")

	cfg := domain.NewProjectConfig()
	cfg.Counts[domain.Transformer] = 1
	cfg.Counts[domain.OutletSub] = 1
	cfg.SubCounts[1] = 2
	_, err := NewQuestionService(testConfig(), repo).Reconcile(ctx, domain.NewProjectConfig(), cfg)
	require.NoError(t, err)
	answer(t, repo, domain.Master(domain.Transformer), "Messung", "Nein")
	answer(t, repo, domain.Master(domain.OutletSub), "Wandler", "100/5A")

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, cfg, "M. Müller", true), "the copy checkbox must render")

	res, err := svc.Import(ctx, cfg, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.NotRelevant)
	assert.Zero(t, res.Copied, "the checkbox is exported unticked")

	got, err := repo.Find(ctx, model.QuestionKey{Ref: domain.Master(domain.Transformer), Question: "Messung"})
	require.NoError(t, err)
	assert.Equal(t, "Nicht relevant", got.AnswerText())
}
