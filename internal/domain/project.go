package domain

import "fmt"

// ProjectConfig 每个调用方的项目布局：各类别的实例数量，以及嵌套类别下每个实例的子实例数量
// 保存在客户端会话中，不使用全局状态
type ProjectConfig struct {
	Counts    map[Category]int `json:"counts"`
	SubCounts map[int]int      `json:"sub_counts,omitempty"`
}

// NewProjectConfig 创建空配置
func NewProjectConfig() ProjectConfig {
	return ProjectConfig{
		Counts:    make(map[Category]int),
		SubCounts: make(map[int]int),
	}
}

func (p ProjectConfig) Count(c Category) int {
	if p.Counts == nil {
		return 0
	}
	return p.Counts[c]
}

// SubCount 返回嵌套实例的子实例数量，未显式设置时为 1
func (p ProjectConfig) SubCount(instance int) int {
	if p.SubCounts != nil {
		if n, ok := p.SubCounts[instance]; ok {
			return n
		}
	}
	return 1
}

// IsEmpty 所有类别都没有实例
func (p ProjectConfig) IsEmpty() bool {
	for _, n := range p.Counts {
		if n > 0 {
			return false
		}
	}
	return true
}

func (p ProjectConfig) Validate() error {
	for c, n := range p.Counts {
		if !c.Valid() {
			return fmt.Errorf("unknown category %q", c)
		}
		if n < 0 {
			return fmt.Errorf("negative instance count %d for %s", n, c)
		}
	}
	for inst, n := range p.SubCounts {
		if n < 0 {
			return fmt.Errorf("negative sub-instance count %d for instance %d", n, inst)
		}
		if inst < 1 || inst > p.Count(OutletSub) {
			return fmt.Errorf("sub-instance count given for unknown %s instance %d", OutletSub, inst)
		}
	}
	return nil
}

// Normalize 删除已不存在的嵌套实例的子实例数量
func (p *ProjectConfig) Normalize() {
	if p.Counts == nil {
		p.Counts = make(map[Category]int)
	}
	if p.SubCounts == nil {
		p.SubCounts = make(map[int]int)
	}
	for inst := range p.SubCounts {
		if inst > p.Count(OutletSub) {
			delete(p.SubCounts, inst)
		}
	}
}

func (p ProjectConfig) Clone() ProjectConfig {
	out := NewProjectConfig()
	for c, n := range p.Counts {
		out.Counts[c] = n
	}
	for i, n := range p.SubCounts {
		out.SubCounts[i] = n
	}
	return out
}

// Instances 列出配置中某类别的全部实例，按实例、子实例排序
func (p ProjectConfig) Instances(c Category) []InstanceRef {
	var refs []InstanceRef
	for i := 1; i <= p.Count(c); i++ {
		if !c.Nested() {
			refs = append(refs, InstanceRef{Category: c, Instance: i})
			continue
		}
		for s := 1; s <= p.SubCount(i); s++ {
			refs = append(refs, NewSubInstanceRef(c, i, s))
		}
	}
	return refs
}

// InstanceRef 指向一个生成的实例，只有嵌套类别的 Sub 不为 nil
type InstanceRef struct {
	Category Category `json:"category"`
	Instance int      `json:"instance"`
	Sub      *int     `json:"sub,omitempty"`
}

func NewSubInstanceRef(c Category, instance, sub int) InstanceRef {
	s := sub
	return InstanceRef{Category: c, Instance: instance, Sub: &s}
}

// Master 返回类别的模板实例
func Master(c Category) InstanceRef {
	if c.Nested() {
		return NewSubInstanceRef(c, 1, 1)
	}
	return InstanceRef{Category: c, Instance: 1}
}

func (r InstanceRef) SubIndex() int {
	if r.Sub == nil {
		return 0
	}
	return *r.Sub
}

func (r InstanceRef) IsMaster() bool {
	return r.Instance == 1 && (r.Sub == nil || *r.Sub == 1)
}

func (r InstanceRef) Equal(o InstanceRef) bool {
	return r.Category == o.Category && r.Instance == o.Instance && r.SubIndex() == o.SubIndex()
}

func (r InstanceRef) String() string {
	if r.Sub != nil {
		return fmt.Sprintf("%s %d.%d", r.Category.Label(), r.Instance, *r.Sub)
	}
	return fmt.Sprintf("%s %d", r.Category.Label(), r.Instance)
}
