package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/pdfdoc"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"k8s.io/klog/v2"
)

var (
	ErrNoEntries     = errors.New("no time entries in the selected period")
	ErrInvalidPeriod = errors.New("period must be day, week or month")
	ErrInvalidEntry  = errors.New("invalid time entry")
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

type TimeEntryService struct {
	repo repository.TimeEntryRepository
}

func NewTimeEntryService(repo repository.TimeEntryRepository) *TimeEntryService {
	return &TimeEntryService{repo: repo}
}

type CreateTimeEntryRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Category  string `json:"category" binding:"required"`
	Project   string `json:"project" binding:"required"`
	InfoText  string `json:"info_text"`
}

func (s *TimeEntryService) Create(ctx context.Context, req CreateTimeEntryRequest) (*model.TimeEntry, error) {
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", ErrInvalidEntry, req.Date, err)
	}
	for _, t := range []string{req.StartTime, req.EndTime} {
		if _, err := time.Parse(model.ClockLayout, t); err != nil {
			return nil, fmt.Errorf("%w: time %q: %v", ErrInvalidEntry, t, err)
		}
	}
	entry := &model.TimeEntry{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Category:  strings.TrimSpace(req.Category),
		Project:   strings.TrimSpace(req.Project),
		InfoText:  strings.TrimSpace(req.InfoText),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		klog.Errorf("CreateTimeEntry: %v", err)
		return nil, err
	}
	klog.V(6).Infof("CreateTimeEntry: id=%d date=%s %s-%s", entry.ID, entry.Date, entry.StartTime, entry.EndTime)
	return entry, nil
}

// List 按时间倒序返回记录，空边界不限制
func (s *TimeEntryService) List(ctx context.Context, from, to string) ([]model.TimeEntry, error) {
	return s.repo.List(ctx, from, to, true)
}

func (s *TimeEntryService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// PeriodRange 返回 day 所在周期的首末日期和报表标题，周从周一到周日
func PeriodRange(period Period, day time.Time) (time.Time, time.Time, string, error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	const title = "Zeiterfassungsbericht"
	switch period {
	case PeriodDay:
		return day, day, fmt.Sprintf("%s für den %s", title, day.Format("02.01.2006")), nil
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 6)
		_, week := start.ISOWeek()
		return start, end, fmt.Sprintf("%s für KW%d (%s - %s)", title, week, start.Format("02.01."), end.Format("02.01.2006")), nil
	case PeriodMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		return start, end, fmt.Sprintf("%s für %s %d", title, germanMonths[start.Month()-1], start.Year()), nil
	}
	return time.Time{}, time.Time{}, "", ErrInvalidPeriod
}

// Report 生成某个周期的工时表
func (s *TimeEntryService) Report(ctx context.Context, w io.Writer, period Period, day time.Time) error {
	from, to, title, err := PeriodRange(period, day)
	if err != nil {
		return err
	}
	entries, err := s.repo.List(ctx, from.Format(model.DateLayout), to.Format(model.DateLayout), false)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}

	var total time.Duration
	rows := make([]pdfdoc.TimeRow, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		total += e.Duration()
		date := e.Date
		if d, err := time.Parse(model.DateLayout, e.Date); err == nil {
			date = d.Format("02.01.2006")
		}
		rows = append(rows, pdfdoc.TimeRow{
			Date:     date,
			Start:    e.StartTime,
			End:      e.EndTime,
			Duration: e.DurationString(),
			Category: e.Category,
			Project:  e.Project,
			Info:     e.InfoText,
		})
	}
	klog.V(6).Infof("TimeSheet: %s, %d entries, total %s", period, len(entries), model.FormatHours(total))
	return pdfdoc.TimeSheet(w, title, rows, model.FormatHours(total))
}

type CategoryHours struct {
	Category string  `json:"category"`
	Hours    float64 `json:"hours"`
}

// CategoryHours 按类别汇总工时，从大到小
func (s *TimeEntryService) CategoryHours(ctx context.Context, from, to string) ([]CategoryHours, error) {
	entries, err := s.repo.List(ctx, from, to, false)
	if err != nil {
		return nil, err
	}
	sums := map[string]time.Duration{}
	for i := range entries {
		sums[entries[i].Category] += entries[i].Duration()
	}
	out := make([]CategoryHours, 0, len(sums))
	for c, d := range sums {
		out = append(out, CategoryHours{Category: c, Hours: d.Hours()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}
