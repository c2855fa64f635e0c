package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
)

func TestPeriodRange(t *testing.T) {
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	from, to, title, err := PeriodRange(PeriodWeek, wednesday)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", from.Format("2006-01-02"))
	assert.Equal(t, "2026-03-08", to.Format("2006-01-02"))
	assert.Equal(t, "Zeiterfassungsbericht für KW10 (02.03. - 08.03.2026)", title)

	from, to, title, err = PeriodRange(PeriodMonth, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 1, from.Day())
	assert.Equal(t, 31, to.Day())
	assert.Equal(t, "Zeiterfassungsbericht für März 2026", title)

	// 周日属于前一个周一开始的那一周
	from, _, _, err = PeriodRange(PeriodWeek, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, from.Day())

	_, _, title, err = PeriodRange(PeriodDay, wednesday)
	require.NoError(t, err)
	assert.Equal(t, "Zeiterfassungsbericht für den 04.03.2026", title)

	_, _, _, err = PeriodRange("year", wednesday)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestTimeEntryServiceReport(t *testing.T) {
	svc := NewTimeEntryService(repository.NewTimeEntryRepository(newTestDB(t)))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTimeEntryRequest{Date: "02.03.2026", StartTime: "08:00", EndTime: "12:00", Category: "Planung", Project: "P1"})
	assert.ErrorIs(t, err, ErrInvalidEntry, "dates are ISO formatted")
	_, err = svc.Create(ctx, CreateTimeEntryRequest{Date: "2026-03-02", StartTime: "08:00", EndTime: "25:00", Category: "Planung", Project: "P1"})
	assert.Error(t, err)

	for _, req := range []CreateTimeEntryRequest{
		{Date: "2026-03-02", StartTime: "08:00", EndTime: "12:00", Category: "Planung", Project: "P1"},
		{Date: "2026-03-03", StartTime: "22:00", EndTime: "01:30", Category: "Messung", Project: "P1", InfoText: "Nachtmessung"},
		{Date: "2026-03-03", StartTime: "13:00", EndTime: "14:00", Category: "Planung", Project: "P2"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, svc.Report(ctx, &buf, PeriodWeek, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	assert.ErrorIs(t, svc.Report(ctx, &buf, PeriodDay, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)), ErrNoEntries)

	hours, err := svc.CategoryHours(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, []CategoryHours{{Category: "Planung", Hours: 5}, {Category: "Messung", Hours: 3.5}}, hours)

	entries, err := svc.List(ctx, "2026-03-03", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "22:00", entries[0].StartTime, "newest first")

	require.NoError(t, svc.Delete(ctx, entries[0].ID))
	assert.ErrorIs(t, svc.Delete(ctx, entries[0].ID), repository.ErrTimeEntryNotFound)
}
