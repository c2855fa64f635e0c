package domain

import "strings"

// QuestionKind 决定筛选候选行时使用的判断方式
type QuestionKind int

const (
	KindSubstring QuestionKind = iota
	KindVoltage
	KindHarmonicOrder
)

func (k QuestionKind) String() string {
	switch k {
	case KindVoltage:
		return "voltage"
	case KindHarmonicOrder:
		return "harmonic_order"
	default:
		return "substring"
	}
}

// SpecialQuestions 需要专用解析器的问题文本
type SpecialQuestions struct {
	Voltage       string `yaml:"voltage" json:"voltage"`
	HarmonicOrder string `yaml:"harmonic_order" json:"harmonic_order"`
}

// ResolveKind 规范化后精确匹配问题文本，未知问题按子串匹配处理
func ResolveKind(text string, special SpecialQuestions) QuestionKind {
	n := NormalizeQuestionText(text)
	switch {
	case special.Voltage != "" && n == NormalizeQuestionText(special.Voltage):
		return KindVoltage
	case special.HarmonicOrder != "" && n == NormalizeQuestionText(special.HarmonicOrder):
		return KindHarmonicOrder
	}
	return KindSubstring
}

// NormalizeQuestionText 去掉首尾空白和问号，使问题与表头可以直接比较
func NormalizeQuestionText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(s), "?", ""))
}
