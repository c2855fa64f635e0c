// Package solutionfilter 用实例的答案筛选工作簿区域的候选行，并截取解决方案块
package solutionfilter

import (
	"strings"

	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/specparse"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"k8s.io/klog/v2"
)

// Outcome 单个答案对候选集的作用
type Outcome int

const (
	// Applied 答案已作为约束使用
	Applied Outcome = iota
	// SkippedNoColumn 问题不是区域的表头
	SkippedNoColumn
	// SkippedUnparseable 数值类答案中没有数字
	SkippedUnparseable
)

func (o Outcome) String() string {
	switch o {
	case SkippedNoColumn:
		return "no matching column"
	case SkippedUnparseable:
		return "answer not parseable"
	default:
		return "applied"
	}
}

// Decision 记录一个已回答问题的作用
type Decision struct {
	Question string              `json:"question"`
	Answer   string              `json:"answer"`
	Kind     domain.QuestionKind `json:"-"`
	Outcome  Outcome             `json:"-"`
	Before   int                 `json:"before"`
	After    int                 `json:"after"`
}

// SolutionBlock 实例筛选后剩下的解决方案列
type SolutionBlock struct {
	Instance domain.InstanceRef `json:"instance"`
	Headers  []string           `json:"headers"`
	Rows     [][]string         `json:"rows"`
}

func (b *SolutionBlock) Empty() bool {
	return b == nil || len(b.Rows) == 0
}

// predicate 判断非空单元格是否满足答案
type predicate interface {
	match(cell string) bool
}

type substringPredicate struct {
	needle string
}

func (p substringPredicate) match(cell string) bool {
	return strings.Contains(strings.ToLower(cell), p.needle)
}

type voltagePredicate struct {
	volts int
	kind  specparse.CurrentType
}

func (p voltagePredicate) match(cell string) bool {
	for _, spec := range specparse.ParseVoltageSpecs(cell) {
		if spec.Accepts(p.volts, p.kind) {
			return true
		}
	}
	return false
}

type harmonicPredicate struct {
	order int
}

func (p harmonicPredicate) match(cell string) bool {
	m, ok := specparse.MaxHarmonicOrder(cell)
	return ok && m >= p.order
}

// Engine 区域筛选器，无状态，可并发使用
type Engine struct {
	special     domain.SpecialQuestions
	notRelevant string
}

func NewEngine(special domain.SpecialQuestions, notRelevant string) *Engine {
	return &Engine{special: special, notRelevant: notRelevant}
}

// buildPredicate 解析问题类型并返回对应的判断函数，答案无法约束时 ok 为 false
func (e *Engine) buildPredicate(question, answer string) (predicate, domain.QuestionKind, bool) {
	kind := domain.ResolveKind(question, e.special)
	switch kind {
	case domain.KindVoltage:
		v, t, ok := specparse.ParseVoltageAnswer(answer)
		if !ok {
			return nil, kind, false
		}
		return voltagePredicate{volts: v, kind: t}, kind, true
	case domain.KindHarmonicOrder:
		h, ok := specparse.MaxHarmonicOrder(answer)
		if !ok {
			return nil, kind, false
		}
		return harmonicPredicate{order: h}, kind, true
	default:
		return substringPredicate{needle: strings.ToLower(answer)}, kind, true
	}
}

// Filter 依次用 ref 的已回答问题筛选 region，返回从 solutionColumn（从 1 开始）起的解决方案块
// 未回答或回答“不相关”的问题不构成约束，空单元格不会排除行
func (e *Engine) Filter(ref domain.InstanceRef, questions []model.Question, region *workbook.Region, solutionColumn int) (*SolutionBlock, []Decision) {
	surviving := make([]int, len(region.Rows))
	for i := range surviving {
		surviving[i] = i
	}

	var decisions []Decision
	for i := range questions {
		q := &questions[i]
		if !q.IsAnswered(e.notRelevant) {
			continue
		}
		answer := q.AnswerText()
		d := Decision{Question: q.Question, Answer: answer, Before: len(surviving)}

		col := region.Column(q.Question)
		pred, kind, ok := e.buildPredicate(q.Question, answer)
		d.Kind = kind
		switch {
		case col < 0:
			d.Outcome = SkippedNoColumn
		case !ok:
			d.Outcome = SkippedUnparseable
		default:
			kept := surviving[:0]
			for _, r := range surviving {
				cell := region.Rows[r][col]
				if cell.Missing() || pred.match(cell.Value) {
					kept = append(kept, r)
				}
			}
			surviving = kept
		}
		d.After = len(surviving)
		klog.V(6).Infof("Filter: %s %q=%q kind=%s outcome=%s rows %d->%d",
			ref, q.Question, answer, kind, d.Outcome, d.Before, d.After)
		decisions = append(decisions, d)
	}

	return solutionBlock(ref, region, surviving, solutionColumn), decisions
}

// solutionBlock 从剩余行中截取 solutionColumn 起的列，去掉全空的行和列
func solutionBlock(ref domain.InstanceRef, region *workbook.Region, rows []int, solutionColumn int) *SolutionBlock {
	block := &SolutionBlock{Instance: ref}
	start := max(solutionColumn-1, 0)
	if start >= len(region.Columns) {
		return block
	}

	var cols []int
	for c := start; c < len(region.Columns); c++ {
		for _, r := range rows {
			if region.Rows[r][c].Valid {
				cols = append(cols, c)
				break
			}
		}
	}
	if len(cols) == 0 {
		return block
	}

	for _, c := range cols {
		block.Headers = append(block.Headers, region.Columns[c])
	}
	for _, r := range rows {
		values := make([]string, len(cols))
		filled := false
		for i, c := range cols {
			cell := region.Rows[r][c]
			values[i] = cell.String()
			filled = filled || cell.Valid
		}
		if filled {
			block.Rows = append(block.Rows, values)
		}
	}
	return block
}
