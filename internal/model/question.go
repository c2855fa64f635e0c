package model

import (
	"strings"
	"time"

	"github.com/weibaohui/energyaudit/backend/internal/domain"
)

// Question 某个实例的一条问卷问题
// (category, instance, sub-instance, question) 唯一，实例 1 的副本是其他实例复制的模板
// 非嵌套类别的 SubInstanceIndex 为 0，保证唯一索引覆盖每一行
type Question struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Category         domain.Category `json:"category" gorm:"size:50;not null;uniqueIndex:idx_questions_key"`
	InstanceIndex    int             `json:"instance_index" gorm:"not null;uniqueIndex:idx_questions_key"`
	SubInstanceIndex int             `json:"sub_instance_index,omitempty" gorm:"not null;default:0;uniqueIndex:idx_questions_key"`
	Question         string          `json:"question" gorm:"size:500;not null;uniqueIndex:idx_questions_key"`
	Options          string          `json:"options" gorm:"size:500;not null"`
	Answer           *string         `json:"answer" gorm:"size:500"`
	SortOrder        int             `json:"sort_order" gorm:"not null;index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Ref 返回问题所属实例
func (q *Question) Ref() domain.InstanceRef {
	ref := domain.InstanceRef{Category: q.Category, Instance: q.InstanceIndex}
	if q.SubInstanceIndex > 0 {
		sub := q.SubInstanceIndex
		ref.Sub = &sub
	}
	return ref
}

// AnswerText 返回去掉空白的答案，未回答时为 ""
func (q *Question) AnswerText() string {
	if q.Answer == nil {
		return ""
	}
	return strings.TrimSpace(*q.Answer)
}

// IsAnswered 答案是否参与筛选，空值和“不相关”都视为未回答
func (q *Question) IsAnswered(notRelevant string) bool {
	a := q.AnswerText()
	return a != "" && !strings.EqualFold(a, strings.TrimSpace(notRelevant))
}

// OptionList 拆分逗号分隔的选项
func (q *Question) OptionList() []string {
	var out []string
	for _, o := range strings.Split(q.Options, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// CloneFor 将问题文本、选项和排序复制到另一个实例，副本没有答案
func (q *Question) CloneFor(ref domain.InstanceRef) *Question {
	clone := &Question{
		Category:      ref.Category,
		InstanceIndex: ref.Instance,
		Question:      q.Question,
		Options:       q.Options,
		SortOrder:     q.SortOrder,
	}
	if ref.Sub != nil {
		clone.SubInstanceIndex = *ref.Sub
	}
	return clone
}

// QuestionKey 问题的唯一键
type QuestionKey struct {
	Ref      domain.InstanceRef
	Question string
}

// QuestionFilter 问题列表过滤条件，零值不过滤
type QuestionFilter struct {
	Category *domain.Category
	Instance *int
	Sub      *int
	// AnsweredOnly 只保留答案非空且不等于该值的问题
	AnsweredOnly string
}

func StringPtr(s string) *string {
	return &s
}

func IntPtr(i int) *int {
	return &i
}
