package pdfdoc

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPDF(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	require.Greater(t, buf.Len(), 100)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "pdf header")
}

func TestSolutionReport(t *testing.T) {
	var buf bytes.Buffer
	sections := []SolutionSection{
		{
			Title:   "Transformator 1",
			Answers: []AnswerLine{{Question: "Versorgungsspannung", Answer: "24V DC"}},
			Headers: []string{"Gerät", "Zubehör"},
			Rows:    [][]string{{"PQ-Box 50", "Stromzange für große Querschnitte"}},
		},
		{Title: "Abgang 1", Answers: []AnswerLine{{Question: "Messung", Answer: "Klasse A"}}},
	}
	generated := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, SolutionReport(&buf, "Gefilterte Lösungen", generated, sections, nil))
	assertPDF(t, &buf)

	var withLog bytes.Buffer
	log := []LogLine{
		{Scope: "Transformator 1", Message: "Transformator 1: 1 Antworten, 1 Lösungen gefunden"},
		{Scope: "Einspeisung", Message: "Einspeisung: Arbeitsblatt \"Einspeisung\" fehlt, übersprungen"},
	}
	require.NoError(t, SolutionReport(&withLog, "Gefilterte Lösungen", generated, sections, log))
	assertPDF(t, &withLog)
	assert.Greater(t, withLog.Len(), buf.Len(), "protocol table adds content")
}

func TestQuestionnaireManyRows(t *testing.T) {
	var rows []QuestionRow
	for i := 0; i < 120; i++ {
		rows = append(rows, QuestionRow{
			Section:  fmt.Sprintf("Abgang %d", i/40+1),
			Question: fmt.Sprintf("Frage %d mit einem längeren Text, der in der Spalte umbrechen muss", i),
			Options:  "Ja,Nein,Nicht relevant",
		})
	}
	var buf bytes.Buffer
	doc := QuestionnaireDoc{Title: "Fragebogen zur ISO50001", Editor: "M. Müller", Date: time.Now(), LogoPath: "/does/not/exist.png", Rows: rows}
	require.NoError(t, Questionnaire(&buf, doc))
	assertPDF(t, &buf)
}

func TestTimeSheet(t *testing.T) {
	var buf bytes.Buffer
	rows := []TimeRow{{Date: "02.03.2026", Start: "08:00", End: "12:00", Duration: "04:00", Category: "Planung", Project: "P1"}}
	require.NoError(t, TimeSheet(&buf, "Zeiterfassungsbericht für den 02.03.2026", rows, "04:00"))
	assertPDF(t, &buf)
}

func TestSpread(t *testing.T) {
	assert.Equal(t, []float64{60, 40}, spread(100, 3, 2))
}
