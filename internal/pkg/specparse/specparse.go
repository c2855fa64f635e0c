// Package specparse 将自由文本的电压和谐波次数描述解析为可比较的数值
// 解析不会失败，没有数字的文本返回空结果
package specparse

import (
	"regexp"
	"strconv"
	"strings"
)

// CurrentType 电压规格适用的供电类型
type CurrentType string

const (
	AC      CurrentType = "AC"
	DC      CurrentType = "DC"
	ACDC    CurrentType = "AC/DC"
	Unknown CurrentType = "UNKNOWN"
)

var integerPattern = regexp.MustCompile(`\d+`)

// VoltageSpec 电压描述中逗号分隔的一个变体
type VoltageSpec struct {
	Min  int         `json:"min"`
	Max  int         `json:"max"`
	Type CurrentType `json:"type"`
}

// Accepts 类型为 t、电压为 v 的供电是否符合规格
// 用户的类型必须包含在规格标签中：DC 符合 AC/DC，AC/DC 只符合 AC/DC
func (s VoltageSpec) Accepts(v int, t CurrentType) bool {
	return s.Min <= v && v <= s.Max && strings.Contains(string(s.Type), string(t))
}

// ParseVoltageSpecs 解析 "24-48V DC, 110-230V AC" 这类描述，忽略没有数字的变体
func ParseVoltageSpecs(s string) []VoltageSpec {
	var specs []VoltageSpec
	for _, part := range strings.Split(s, ",") {
		nums := Integers(part)
		if len(nums) == 0 {
			continue
		}
		lo, hi := nums[0], nums[0]
		for _, n := range nums[1:] {
			lo = min(lo, n)
			hi = max(hi, n)
		}
		specs = append(specs, VoltageSpec{Min: lo, Max: hi, Type: classify(part)})
	}
	return specs
}

// ParseVoltageAnswer 读取用户的供电电压：文本中的第一个数字及其类型，未注明时为 AC/DC
func ParseVoltageAnswer(s string) (int, CurrentType, bool) {
	nums := Integers(s)
	if len(nums) == 0 {
		return 0, "", false
	}
	t := classify(s)
	if t == Unknown {
		t = ACDC
	}
	return nums[0], t, true
}

// MaxHarmonicOrder 返回 s 中最大的整数，例如 "up to the 40th harmonic" 或 "13., 25., 40." 得到 40
func MaxHarmonicOrder(s string) (int, bool) {
	nums := Integers(s)
	if len(nums) == 0 {
		return 0, false
	}
	m := nums[0]
	for _, n := range nums[1:] {
		m = max(m, n)
	}
	return m, true
}

// Integers 提取 s 中所有连续数字
func Integers(s string) []int {
	matches := integerPattern.FindAllString(s, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			// 超出 int 范围，不可能是电压
			continue
		}
		out = append(out, n)
	}
	return out
}

func classify(s string) CurrentType {
	lower := strings.ToLower(s)
	hasAC := strings.Contains(lower, "ac")
	hasDC := strings.Contains(lower, "dc")
	switch {
	case hasAC && hasDC:
		return ACDC
	case hasAC:
		return AC
	case hasDC:
		return DC
	}
	return Unknown
}
