package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"k8s.io/klog/v2"
)

var ErrInvalidQuestion = errors.New("question text and options are required")

// QuestionService 管理项目的问题集：模板问题复制到实例、答案编辑、级联删除
type QuestionService struct {
	cfg  *config.Config
	repo repository.QuestionRepository
}

func NewQuestionService(cfg *config.Config, repo repository.QuestionRepository) *QuestionService {
	return &QuestionService{cfg: cfg, repo: repo}
}

// ReconcileResult Reconcile 的变更统计
type ReconcileResult struct {
	Added  int   `json:"added"`
	Pruned int64 `json:"pruned"`
}

// Reconcile 使问题库与变更后的项目配置一致
// next 中新增的实例获得缺少的模板问题副本
// 实例数减少时问题保留，但嵌套子实例超出新数量的部分会被删除
// 相同参数重复执行不会再有变化
func (s *QuestionService) Reconcile(ctx context.Context, prev, next domain.ProjectConfig) (*ReconcileResult, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}
	klog.V(6).Infof("Reconcile: prev=%v next=%v", prev.Counts, next.Counts)

	result := &ReconcileResult{}
	err := s.repo.Transaction(ctx, func(tx repository.QuestionRepository) error {
		for _, c := range domain.Categories() {
			known := make(map[string]bool)
			for _, ref := range prev.Instances(c) {
				known[ref.String()] = true
			}
			var fresh []domain.InstanceRef
			for _, ref := range next.Instances(c) {
				if !known[ref.String()] && !ref.IsMaster() {
					fresh = append(fresh, ref)
				}
			}
			if len(fresh) > 0 {
				added, err := replicateMaster(ctx, tx, c, fresh)
				if err != nil {
					return err
				}
				result.Added += added
			}

			if !c.Nested() {
				continue
			}
			for inst := 1; inst <= next.Count(c) && inst <= prev.Count(c); inst++ {
				keep := next.SubCount(inst)
				if keep >= prev.SubCount(inst) {
					continue
				}
				if inst == 1 && keep < 1 {
					// 模板子实例永不删除
					keep = 1
				}
				n, err := tx.DeleteSubInstancesAbove(ctx, c, inst, keep)
				if err != nil {
					return fmt.Errorf("prune %s %d: %w", c.Label(), inst, err)
				}
				result.Pruned += n
			}
		}
		return nil
	})
	if err != nil {
		klog.Errorf("Reconcile: failed: %v", err)
		return nil, err
	}
	klog.V(6).Infof("Reconcile: added=%d pruned=%d", result.Added, result.Pruned)
	return result, nil
}

// replicateMaster 将类别的模板问题复制到 refs，跳过实例已有的问题
func replicateMaster(ctx context.Context, tx repository.QuestionRepository, c domain.Category, refs []domain.InstanceRef) (int, error) {
	masters, err := tx.ListByRef(ctx, domain.Master(c))
	if err != nil {
		return 0, fmt.Errorf("load master questions of %s: %w", c.Label(), err)
	}
	return copyQuestions(ctx, tx, masters, refs)
}

func copyQuestions(ctx context.Context, tx repository.QuestionRepository, source []model.Question, refs []domain.InstanceRef) (int, error) {
	added := 0
	for _, ref := range refs {
		for i := range source {
			exists, err := tx.Exists(ctx, model.QuestionKey{Ref: ref, Question: source[i].Question})
			if err != nil {
				return added, err
			}
			if exists {
				continue
			}
			if err := tx.Create(ctx, source[i].CloneFor(ref)); err != nil {
				return added, fmt.Errorf("copy %q to %s: %w", source[i].Question, ref, err)
			}
			added++
		}
	}
	return added, nil
}

// Synchronize 按类别将某个实例序号的问题定义同步到其他已配置实例
// 不复制答案，已有问题不变；嵌套类别以该序号的第一个子实例为来源
func (s *QuestionService) Synchronize(ctx context.Context, cfg domain.ProjectConfig, sourceInstance int) (int, error) {
	if sourceInstance < 1 {
		return 0, fmt.Errorf("invalid source instance %d", sourceInstance)
	}
	klog.V(6).Infof("Synchronize: source instance=%d", sourceInstance)

	added := 0
	err := s.repo.Transaction(ctx, func(tx repository.QuestionRepository) error {
		added = 0
		for _, c := range domain.Categories() {
			if cfg.Count(c) < sourceInstance {
				continue
			}
			source := domain.InstanceRef{Category: c, Instance: sourceInstance}
			if c.Nested() {
				source = domain.NewSubInstanceRef(c, sourceInstance, 1)
			}
			questions, err := tx.ListByRef(ctx, source)
			if err != nil {
				return err
			}
			var targets []domain.InstanceRef
			for _, ref := range cfg.Instances(c) {
				if !ref.Equal(source) {
					targets = append(targets, ref)
				}
			}
			n, err := copyQuestions(ctx, tx, questions, targets)
			if err != nil {
				return err
			}
			added += n
		}
		return nil
	})
	if err != nil {
		klog.Errorf("Synchronize: failed: %v", err)
		return 0, err
	}
	klog.V(6).Infof("Synchronize: added %d questions", added)
	return added, nil
}

// CopyAnswers 用第一个子实例的答案覆盖嵌套实例其他子实例的答案，按问题文本匹配
func (s *QuestionService) CopyAnswers(ctx context.Context, cfg domain.ProjectConfig, instance int) (int, error) {
	updated := 0
	err := s.repo.Transaction(ctx, func(tx repository.QuestionRepository) error {
		var err error
		updated, err = copySubInstanceAnswers(ctx, tx, cfg, instance)
		return err
	})
	if err != nil {
		klog.Errorf("CopyAnswers: instance=%d failed: %v", instance, err)
		return 0, err
	}
	return updated, nil
}

func copySubInstanceAnswers(ctx context.Context, tx repository.QuestionRepository, cfg domain.ProjectConfig, instance int) (int, error) {
	nested := domain.OutletSub
	if instance < 1 || instance > cfg.Count(nested) {
		return 0, fmt.Errorf("%s %d is not configured", nested.Label(), instance)
	}
	source, err := tx.ListByRef(ctx, domain.NewSubInstanceRef(nested, instance, 1))
	if err != nil {
		return 0, err
	}
	answers := make(map[string]*string, len(source))
	for i := range source {
		answers[source[i].Question] = source[i].Answer
	}

	updated := 0
	for sub := 2; sub <= cfg.SubCount(instance); sub++ {
		siblings, err := tx.ListByRef(ctx, domain.NewSubInstanceRef(nested, instance, sub))
		if err != nil {
			return updated, err
		}
		for i := range siblings {
			answer, ok := answers[siblings[i].Question]
			if !ok {
				continue
			}
			if err := tx.UpdateAnswer(ctx, siblings[i].ID, answer); err != nil {
				return updated, err
			}
			updated++
		}
	}
	klog.V(6).Infof("CopyAnswers: %s %d, %d answers copied", nested.Label(), instance, updated)
	return updated, nil
}

// AddQuestionRequest 新模板问题的定义
type AddQuestionRequest struct {
	Category  domain.Category `json:"category" binding:"required"`
	Question  string          `json:"question" binding:"required"`
	Options   string          `json:"options" binding:"required"`
	SortOrder *int            `json:"sort_order"`
}

// AddQuestion 创建模板问题并复制到 cfg 的每个实例
// 未指定排序号时排在该类别最后
func (s *QuestionService) AddQuestion(ctx context.Context, cfg domain.ProjectConfig, req AddQuestionRequest) (*model.Question, error) {
	text := strings.TrimSpace(req.Question)
	options := strings.TrimSpace(req.Options)
	if text == "" || options == "" {
		return nil, ErrInvalidQuestion
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}
	klog.V(6).Infof("AddQuestion: category=%s question=%q", req.Category, text)

	var master *model.Question
	err := s.repo.Transaction(ctx, func(tx repository.QuestionRepository) error {
		order := s.cfg.Questionnaire.DefaultSortOrder
		if req.SortOrder != nil {
			order = *req.SortOrder
		} else {
			highest, ok, err := tx.MaxSortOrder(ctx, req.Category)
			if err != nil {
				return err
			}
			if ok {
				order = highest + 1
			}
		}

		ref := domain.Master(req.Category)
		master = &model.Question{Question: text, Options: options, SortOrder: order}
		master = master.CloneFor(ref)
		if err := tx.Create(ctx, master); err != nil {
			return err
		}

		var targets []domain.InstanceRef
		for _, r := range cfg.Instances(req.Category) {
			if !r.Equal(ref) {
				targets = append(targets, r)
			}
		}
		_, err := copyQuestions(ctx, tx, []model.Question{*master}, targets)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrQuestionExists) {
			klog.Warningf("AddQuestion: %q already exists in %s", text, req.Category)
		} else {
			klog.Errorf("AddQuestion: failed: %v", err)
		}
		return nil, err
	}
	return master, nil
}

// DeleteQuestion 删除问题及同类别同文本的所有副本
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := s.repo.Transaction(ctx, func(tx repository.QuestionRepository) error {
		q, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		removed, err = tx.DeleteByText(ctx, q.Category, q.Question)
		return err
	})
	if err != nil {
		return 0, err
	}
	klog.V(6).Infof("DeleteQuestion: id=%d removed %d copies", id, removed)
	return removed, nil
}

// SaveAnswers 保存答案，空白答案存为 null
func (s *QuestionService) SaveAnswers(ctx context.Context, answers map[uint]string) error {
	values := make(map[uint]*string, len(answers))
	for id, a := range answers {
		if a = strings.TrimSpace(a); a == "" {
			values[id] = nil
			continue
		}
		values[id] = model.StringPtr(a)
	}
	err := s.repo.Transaction(ctx, func(tx repository.QuestionRepository) error {
		return tx.UpdateAnswers(ctx, values)
	})
	if err != nil {
		klog.Errorf("SaveAnswers: failed: %v", err)
		return err
	}
	klog.V(6).Infof("SaveAnswers: %d answers saved", len(values))
	return nil
}

// ResetAnswers 清空答案，category 非 nil 时只清空该类别
func (s *QuestionService) ResetAnswers(ctx context.Context, category *domain.Category) (int64, error) {
	n, err := s.repo.ResetAnswers(ctx, model.QuestionFilter{Category: category})
	if err != nil {
		klog.Errorf("ResetAnswers: failed: %v", err)
		return 0, err
	}
	return n, nil
}

func (s *QuestionService) List(ctx context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	return s.repo.List(ctx, filter)
}

// ListConfigured 按类别和实例顺序返回 cfg 中实例的问题
func (s *QuestionService) ListConfigured(ctx context.Context, cfg domain.ProjectConfig) ([]model.Question, error) {
	var out []model.Question
	for _, c := range domain.Categories() {
		for _, ref := range cfg.Instances(c) {
			qs, err := s.repo.ListByRef(ctx, ref)
			if err != nil {
				return nil, err
			}
			out = append(out, qs...)
		}
	}
	return out, nil
}

// HasAnswers 已配置实例中是否有参与筛选的答案
func (s *QuestionService) HasAnswers(ctx context.Context, cfg domain.ProjectConfig) (bool, error) {
	questions, err := s.ListConfigured(ctx, cfg)
	if err != nil {
		return false, err
	}
	for i := range questions {
		if questions[i].IsAnswered(s.cfg.Questionnaire.NotRelevant) {
			return true, nil
		}
	}
	return false, nil
}
