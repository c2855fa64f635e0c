package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/pdfdoc"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/pdfform"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"k8s.io/klog/v2"
)

var (
	ErrNoQuestions    = errors.New("no questions to export")
	ErrUnreadableForm = errors.New("uploaded document is not a readable questionnaire form")
)

// QuestionnaireService 导出问卷并读回已填写的表单
type QuestionnaireService struct {
	cfg    *config.Config
	repo   repository.QuestionRepository
	reader pdfform.FieldReader
	now    func() time.Time
}

func NewQuestionnaireService(cfg *config.Config, repo repository.QuestionRepository, reader pdfform.FieldReader) *QuestionnaireService {
	return &QuestionnaireService{cfg: cfg, repo: repo, reader: reader, now: time.Now}
}

type instanceQuestions struct {
	ref       domain.InstanceRef
	questions []model.Question
}

// collect 按实例分组返回问题，没有配置实例时使用各类别的模板问题
func (s *QuestionnaireService) collect(ctx context.Context, pc domain.ProjectConfig) ([]instanceQuestions, error) {
	var groups []instanceQuestions
	for _, c := range domain.Categories() {
		refs := pc.Instances(c)
		if pc.IsEmpty() {
			refs = []domain.InstanceRef{domain.Master(c)}
		}
		for _, ref := range refs {
			qs, err := s.repo.ListByRef(ctx, ref)
			if err != nil {
				return nil, err
			}
			if len(qs) > 0 {
				groups = append(groups, instanceQuestions{ref: ref, questions: qs})
			}
		}
	}
	if len(groups) == 0 {
		return nil, ErrNoQuestions
	}
	return groups, nil
}

// Export 将问卷写成 PDF：可打印的表格，或 fillable=true 时带当前答案的表单
func (s *QuestionnaireService) Export(ctx context.Context, w io.Writer, pc domain.ProjectConfig, editor string, fillable bool) error {
	groups, err := s.collect(ctx, pc)
	if err != nil {
		return err
	}
	klog.V(6).Infof("Export: %d instances, fillable=%v", len(groups), fillable)

	title := s.cfg.Questionnaire.Title
	if fillable {
		form := pdfform.Form{Title: title}
		for _, g := range groups {
			section := pdfform.FormSection{Title: g.ref.String()}
			if g.ref.Category.Nested() && g.ref.SubIndex() == 1 && pc.SubCount(g.ref.Instance) > 1 {
				section.CopyInstance = g.ref.Instance
			}
			for _, q := range g.questions {
				section.Questions = append(section.Questions, pdfform.FormQuestion{
					ID:       q.ID,
					Sub:      g.ref.SubIndex(),
					Question: q.Question,
					Options:  q.Options,
					Answer:   q.AnswerText(),
				})
			}
			form.Sections = append(form.Sections, section)
		}
		return pdfform.Render(w, form)
	}

	doc := pdfdoc.QuestionnaireDoc{
		Title:    title,
		Editor:   editor,
		Date:     s.now(),
		LogoPath: s.cfg.Data.LogoPath,
	}
	for _, g := range groups {
		for _, q := range g.questions {
			doc.Rows = append(doc.Rows, pdfdoc.QuestionRow{
				Section:  g.ref.String(),
				Question: q.Question,
				Options:  q.Options,
				Answer:   q.AnswerText(),
			})
		}
	}
	return pdfdoc.Questionnaire(w, doc)
}

// ImportResult 导入结果汇总
type ImportResult struct {
	Updated     int      `json:"updated"`
	NotRelevant int      `json:"not_relevant"`
	Copied      int      `json:"copied"`
	Unknown     []string `json:"unknown,omitempty"`
	Messages    []string `json:"messages"`
}

// Import 读取已填写的表单并保存答案
func (s *QuestionnaireService) Import(ctx context.Context, pc domain.ProjectConfig, rs io.ReadSeeker) (*ImportResult, error) {
	fields, err := s.reader.ReadFields(rs)
	if err != nil {
		klog.Warningf("Import: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUnreadableForm, err)
	}
	return s.ApplyFields(ctx, pc, fields)
}

// ApplyFields 将答案字段写入存储，在同一个事务中完成
// "Nein" 答案转为“不相关”，空字段不处理；勾选的复制复选框在所有答案写入后执行
func (s *QuestionnaireService) ApplyFields(ctx context.Context, pc domain.ProjectConfig, fields map[string]string) (*ImportResult, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var result *ImportResult
	err := s.repo.Transaction(ctx, func(tx repository.QuestionRepository) error {
		result = &ImportResult{}
		var copies []int
		for _, name := range names {
			raw := fields[name]
			if inst, ok := pdfform.ParseCopyFieldName(name); ok {
				if pdfform.Checked(raw) {
					copies = append(copies, inst)
				}
				continue
			}
			id, ok := pdfform.ParseFieldName(name)
			if !ok {
				klog.V(6).Infof("ApplyFields: ignoring field %q", name)
				continue
			}
			value := pdfform.FieldValue(raw)
			if value == "" {
				continue
			}
			if s.isNo(value) {
				value = s.cfg.Questionnaire.NotRelevant
				result.NotRelevant++
			}
			if err := tx.UpdateAnswer(ctx, id, model.StringPtr(value)); err != nil {
				if errors.Is(err, repository.ErrQuestionNotFound) {
					result.Unknown = append(result.Unknown, name)
					result.Messages = append(result.Messages, fmt.Sprintf("Feld %s: Frage %d existiert nicht", name, id))
					continue
				}
				return err
			}
			result.Updated++
		}

		sort.Ints(copies)
		for _, inst := range copies {
			if inst > pc.Count(domain.OutletSub) {
				result.Messages = append(result.Messages,
					fmt.Sprintf("%s %d ist nicht konfiguriert, Antworten nicht übertragen", domain.OutletSub.Label(), inst))
				continue
			}
			n, err := copySubInstanceAnswers(ctx, tx, pc, inst)
			if err != nil {
				return err
			}
			result.Copied += n
			result.Messages = append(result.Messages,
				fmt.Sprintf("Antworten von %s auf %d Unterabgänge übertragen", domain.NewSubInstanceRef(domain.OutletSub, inst, 1), pc.SubCount(inst)-1))
		}
		return nil
	})
	if err != nil {
		klog.Errorf("ApplyFields: import rolled back: %v", err)
		return nil, err
	}
	result.Messages = append([]string{fmt.Sprintf("%d Antworten importiert", result.Updated)}, result.Messages...)
	klog.V(6).Infof("ApplyFields: updated=%d notRelevant=%d copied=%d unknown=%d",
		result.Updated, result.NotRelevant, result.Copied, len(result.Unknown))
	return result, nil
}

func (s *QuestionnaireService) isNo(value string) bool {
	for _, tok := range s.cfg.Questionnaire.NoTokens {
		if strings.EqualFold(value, strings.TrimSpace(tok)) {
			return true
		}
	}
	return false
}
