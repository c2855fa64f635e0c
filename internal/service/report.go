package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/pdfdoc"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"github.com/weibaohui/energyaudit/backend/internal/service/solutionfilter"
	"k8s.io/klog/v2"
)

var (
	// ErrNoSolutions 没有实例保留解决方案行，这不是故障
	ErrNoSolutions = errors.New("no solutions found for the given answers")
	// ErrNoAnswers 已配置实例都没有可用答案
	ErrNoAnswers = errors.New("no answered questions")
)

// DiagnosticKind 报告诊断记录的类型
type DiagnosticKind string

const (
	DiagFound           DiagnosticKind = "found"
	DiagNoAnswers       DiagnosticKind = "no_answers"
	DiagNoMatches       DiagnosticKind = "no_matches"
	DiagMissingSheet    DiagnosticKind = "missing_sheet"
	DiagMissingRegion   DiagnosticKind = "missing_region"
	DiagRegionFailed    DiagnosticKind = "region_failed"
	DiagInstanceSkipped DiagnosticKind = "instance_skipped"
	DiagAnswerSkipped   DiagnosticKind = "answer_skipped"
)

type Diagnostic struct {
	Kind     DiagnosticKind      `json:"kind"`
	Category domain.Category     `json:"category"`
	Instance *domain.InstanceRef `json:"instance,omitempty"`
	Message  string              `json:"message"`
}

// InstanceResult 至少保留一个解决方案的实例
type InstanceResult struct {
	Instance  domain.InstanceRef            `json:"instance"`
	Title     string                        `json:"title"`
	Answers   []pdfdoc.AnswerLine           `json:"answers"`
	Block     *solutionfilter.SolutionBlock `json:"block"`
	Decisions []solutionfilter.Decision     `json:"decisions"`
}

type Report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Results     []InstanceResult `json:"results"`
	Diagnostics []Diagnostic     `json:"diagnostics"`
	NoSolutions bool             `json:"no_solutions"`
	NoAnswers   bool             `json:"no_answers"`
}

func (r *Report) diag(kind DiagnosticKind, c domain.Category, ref *domain.InstanceRef, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Kind: kind, Category: c, Instance: ref, Message: fmt.Sprintf(format, args...)})
}

// Err 将结果标志映射为对应的错误
func (r *Report) Err() error {
	switch {
	case r.NoAnswers:
		return ErrNoAnswers
	case r.NoSolutions:
		return ErrNoSolutions
	}
	return nil
}

type ReportService struct {
	cfg    *config.Config
	repo   repository.QuestionRepository
	opener workbook.Opener
	engine *solutionfilter.Engine
	now    func() time.Time
}

func NewReportService(cfg *config.Config, repo repository.QuestionRepository, opener workbook.Opener) *ReportService {
	return &ReportService{
		cfg:    cfg,
		repo:   repo,
		opener: opener,
		engine: solutionfilter.NewEngine(cfg.Questionnaire.Special, cfg.Questionnaire.NotRelevant),
		now:    time.Now,
	}
}

// Build 用类别区域筛选每个已配置实例
// 区域无法读取时只记录诊断，工作簿无法打开或存储出错时中止
func (s *ReportService) Build(ctx context.Context, cfg domain.ProjectConfig) (*Report, error) {
	src, err := s.opener.Open()
	if err != nil {
		klog.Errorf("Build: open workbook: %v", err)
		return nil, err
	}
	defer src.Close()

	report := &Report{GeneratedAt: s.now()}
	answeredAnywhere := false
	for _, c := range domain.Categories() {
		refs := cfg.Instances(c)
		if len(refs) == 0 {
			continue
		}
		region, err := s.readRegion(src, c, report)
		if err != nil {
			return nil, err
		}

		for i := range refs {
			ref := refs[i]
			questions, err := s.repo.ListByRef(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("load questions of %s: %w", ref, err)
			}
			answered := make([]model.Question, 0, len(questions))
			for _, q := range questions {
				if q.IsAnswered(s.cfg.Questionnaire.NotRelevant) {
					answered = append(answered, q)
				}
			}
			if len(answered) == 0 {
				report.diag(DiagNoAnswers, c, &ref, "%s: keine Antworten, übersprungen", ref)
				continue
			}
			answeredAnywhere = true
			if region == nil {
				report.diag(DiagInstanceSkipped, c, &ref, "%s: %d Antworten, übersprungen: Tabellenbereich nicht verfügbar", ref, len(answered))
				continue
			}

			block, decisions := s.engine.Filter(ref, answered, region.region, region.solutionColumn)
			for _, d := range decisions {
				if d.Outcome != solutionfilter.Applied {
					report.diag(DiagAnswerSkipped, c, &ref, "%s: Frage %q ignoriert (%s)", ref, d.Question, d.Outcome)
				}
			}
			if block.Empty() {
				report.diag(DiagNoMatches, c, &ref, "%s: %d Antworten, keine passenden Lösungen", ref, len(answered))
				continue
			}
			report.diag(DiagFound, c, &ref, "%s: %d Antworten, %d Lösungen gefunden", ref, len(answered), len(block.Rows))

			lines := make([]pdfdoc.AnswerLine, 0, len(answered))
			for _, q := range answered {
				lines = append(lines, pdfdoc.AnswerLine{Question: q.Question, Answer: q.AnswerText()})
			}
			report.Results = append(report.Results, InstanceResult{
				Instance:  ref,
				Title:     ref.String(),
				Answers:   lines,
				Block:     block,
				Decisions: decisions,
			})
		}
	}

	report.NoAnswers = !answeredAnywhere
	report.NoSolutions = len(report.Results) == 0
	klog.V(6).Infof("Build: %d instances with solutions, %d diagnostics", len(report.Results), len(report.Diagnostics))
	return report, nil
}

type loadedRegion struct {
	region         *workbook.Region
	solutionColumn int
}

// readRegion 需要跳过类别时返回 nil 且无错误，只有工作簿不可用才返回错误
func (s *ReportService) readRegion(src workbook.Source, c domain.Category, report *Report) (*loadedRegion, error) {
	rc, ok := s.cfg.Questionnaire.Region(c)
	if !ok {
		report.diag(DiagMissingRegion, c, nil, "%s: kein Tabellenbereich konfiguriert", c.Label())
		return nil, nil
	}
	region, err := src.ReadRegion(rc.Sheet, rc.HeaderRow, rc.DataStartRow)
	if err != nil {
		if errors.Is(err, workbook.ErrSheetNotFound) {
			klog.Warningf("Build: %v", err)
			report.diag(DiagMissingSheet, c, nil, "%s: Arbeitsblatt %q fehlt, übersprungen", c.Label(), rc.Sheet)
			return nil, nil
		}
		if errors.Is(err, workbook.ErrWorkbookUnavailable) {
			return nil, err
		}
		klog.Warningf("Build: %s: %v", c, err)
		report.diag(DiagRegionFailed, c, nil, "%s: Tabellenbereich in %q nicht lesbar (%v), übersprungen", c.Label(), rc.Sheet, err)
		return nil, nil
	}
	return &loadedRegion{region: region, solutionColumn: rc.SolutionColumn}, nil
}

// RenderPDF 排版有解决方案的报告
func (s *ReportService) RenderPDF(w io.Writer, report *Report) error {
	if err := report.Err(); err != nil {
		return err
	}
	sections := make([]pdfdoc.SolutionSection, 0, len(report.Results))
	for _, r := range report.Results {
		sections = append(sections, pdfdoc.SolutionSection{
			Title:   r.Title,
			Answers: r.Answers,
			Headers: r.Block.Headers,
			Rows:    r.Block.Rows,
		})
	}
	return pdfdoc.SolutionReport(w, "Gefilterte Lösungen", report.GeneratedAt, sections, report.logLines())
}

func (r *Report) logLines() []pdfdoc.LogLine {
	lines := make([]pdfdoc.LogLine, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		scope := d.Category.Label()
		if d.Instance != nil {
			scope = d.Instance.String()
		}
		lines = append(lines, pdfdoc.LogLine{Scope: scope, Message: d.Message})
	}
	return lines
}
