// Package pdfform 生成可填写的问卷表单并读回填写结果，两个方向共用以下字段名：
//
//	question_<id>         问题 <id> 的答案
//	question_<id>_<sub>   嵌套子实例中问题的答案
//	copy_answers_<n>      复选框：复制嵌套实例 n 中子实例 1 的答案
package pdfform

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	questionPrefix = "question_"
	copyPrefix     = "copy_answers_"
)

// FieldName 问题答案字段名，非嵌套类别的 sub 为 0
func FieldName(id uint, sub int) string {
	if sub > 0 {
		return fmt.Sprintf("%s%d_%d", questionPrefix, id, sub)
	}
	return fmt.Sprintf("%s%d", questionPrefix, id)
}

// ParseFieldName 从答案字段名解析问题 id
func ParseFieldName(name string) (uint, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(name), questionPrefix)
	if !ok {
		return 0, false
	}
	idPart, _, _ := strings.Cut(rest, "_")
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func CopyFieldName(instance int) string {
	return fmt.Sprintf("%s%d", copyPrefix, instance)
}

// ParseCopyFieldName 解析复制复选框对应的嵌套实例
func ParseCopyFieldName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(name), copyPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// FieldValue 去掉复选框值的前导名称标记 ("/Yes") 和首尾空白
func FieldValue(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "/"))
}

// Checked 复选框是否勾选
func Checked(raw string) bool {
	switch strings.ToLower(FieldValue(raw)) {
	case "", "off", "false", "no", "0":
		return false
	}
	return true
}
