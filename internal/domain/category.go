package domain

import "fmt"

// Category 组件类型，每个实例都复制一套该类别的问题
type Category string

const (
	Transformer Category = "transformer" // Transformator
	Feeder      Category = "feeder"      // Einspeisung
	Outlet      Category = "outlet"      // Abgang
	OutletSub   Category = "outlet_sub"  // Unterabgang，嵌套在 Abgang 下
)

var categoryLabels = map[Category]string{
	Transformer: "Transformator",
	Feeder:      "Einspeisung",
	Outlet:      "Abgang",
	OutletSub:   "Unterabgang",
}

// Categories 按显示顺序返回所有类别
func Categories() []Category {
	return []Category{Transformer, Feeder, Outlet, OutletSub}
}

// ParseCategory 解析类别的存储值
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Label 文档中使用的德语显示名称
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Nested 该类别的实例是否带子实例序号
func (c Category) Nested() bool {
	return c == OutletSub
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}
