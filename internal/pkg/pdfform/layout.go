package pdfform

import (
	"strconv"
	"strings"
)

// 页面尺寸（单位 pt），A4 纵向，原点在左上角
const (
	pageHeight   = 842.0
	marginTop    = 50.0
	marginBottom = 50.0
	marginLeft   = 40.0
	fieldX       = 360.0
	fieldWidth   = 195.0
	lineStep     = 12.0
	checkBoxSize = 12.0
	wrapColumns  = 62
)

type FormQuestion struct {
	ID       uint
	Sub      int
	Question string
	Options  string
	Answer   string
}

// FormSection 一个实例的问题分组
// 嵌套实例的第一个子实例设置 CopyInstance，并添加复制复选框
type FormSection struct {
	Title        string
	CopyInstance int
	Questions    []FormQuestion
}

type Form struct {
	Title    string
	Sections []FormSection
}

// Document 交给 PDF 写入器的页面描述
type Document struct {
	Paper  string           `json:"paper"`
	Origin string           `json:"origin"`
	Pages  map[string]*Page `json:"pages"`
}

type Page struct {
	Content Content `json:"content"`
}

type Content struct {
	Text      []Text      `json:"text,omitempty"`
	TextField []TextField `json:"textfield,omitempty"`
	CheckBox  []CheckBox  `json:"checkbox,omitempty"`
}

type Font struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type Text struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  Font       `json:"font"`
}

type TextField struct {
	ID    string     `json:"id"`
	Value string     `json:"value,omitempty"`
	Pos   [2]float64 `json:"pos"`
	Width float64    `json:"width"`
	Font  Font       `json:"font"`
}

type CheckBox struct {
	ID    string     `json:"id"`
	Value bool       `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Width float64    `json:"width"`
	Label *Label     `json:"label,omitempty"`
}

type Label struct {
	Value string  `json:"value"`
	Width float64 `json:"width"`
	Gap   float64 `json:"gap"`
	Pos   string  `json:"pos"`
	Font  Font    `json:"font"`
}

var (
	regular = Font{Name: "Helvetica", Size: 9}
	small   = Font{Name: "Helvetica", Size: 7}
	bold    = Font{Name: "Helvetica-Bold", Size: 11}
	heading = Font{Name: "Helvetica-Bold", Size: 16}
)

type cursor struct {
	doc  *Document
	page *Page
	n    int
	y    float64
}

func (c *cursor) newPage() {
	c.n++
	c.page = &Page{}
	c.doc.Pages[strconv.Itoa(c.n)] = c.page
	c.y = marginTop
}

// reserve 放不下 h 点时换页
func (c *cursor) reserve(h float64) {
	if c.y+h > pageHeight-marginBottom {
		c.newPage()
	}
}

func (c *cursor) text(x float64, s string, f Font) {
	c.page.Content.Text = append(c.page.Content.Text, Text{Value: s, Pos: [2]float64{x, c.y}, Font: f})
}

// Layout 排版 f 中的每个问题及其答案字段，预填当前答案
func Layout(f Form) *Document {
	doc := &Document{Paper: "A4P", Origin: "UpperLeft", Pages: map[string]*Page{}}
	c := &cursor{doc: doc}
	c.newPage()

	c.text(marginLeft, f.Title, heading)
	c.y += 30

	for _, s := range f.Sections {
		c.reserve(60)
		c.text(marginLeft, s.Title, bold)
		c.y += 18
		if s.CopyInstance > 0 {
			c.page.Content.CheckBox = append(c.page.Content.CheckBox, CheckBox{
				ID:    CopyFieldName(s.CopyInstance),
				Pos:   [2]float64{marginLeft, c.y},
				Width: checkBoxSize,
				Label: &Label{
					Value: "Antworten auf alle Unterabgänge übertragen",
					Width: 260,
					Gap:   6,
					Pos:   "right",
					Font:  regular,
				},
			})
			c.y += checkBoxSize + 8
		}

		for _, q := range s.Questions {
			lines := wrap(q.Question, wrapColumns)
			opts := strings.ReplaceAll(q.Options, ",", ", ")
			height := float64(len(lines)+1)*lineStep + 8
			c.reserve(height)

			top := c.y
			for _, l := range lines {
				c.text(marginLeft, l, regular)
				c.y += lineStep
			}
			if opts != "" {
				c.text(marginLeft, opts, small)
			}
			c.page.Content.TextField = append(c.page.Content.TextField, TextField{
				ID:    FieldName(q.ID, q.Sub),
				Value: q.Answer,
				Pos:   [2]float64{fieldX, top},
				Width: fieldWidth,
				Font:  regular,
			})
			c.y = top + height
		}
		c.y += 10
	}
	return doc
}

// wrap 在单词边界处换行，每行最多 width 个字符
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
