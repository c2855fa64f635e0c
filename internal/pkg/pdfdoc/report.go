package pdfdoc

import (
	"io"
	"time"
)

// AnswerLine 解决方案表上方打印的一条已回答问题
type AnswerLine struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SolutionSection 一个实例的打印结果
type SolutionSection struct {
	Title   string
	Answers []AnswerLine
	Headers []string
	Rows    [][]string
}

// LogLine 结尾协议表中的一条记录
type LogLine struct {
	Scope   string
	Message string
}

// SolutionReport 横向排版筛选后的解决方案，每个实例一节
// log 非空时在末尾打印协议表
func SolutionReport(w io.Writer, title string, generated time.Time, sections []SolutionSection, log []LogLine) error {
	d := newDocument("L")
	d.pdf.SetTitle(d.tr(title), false)
	d.pageFooter(0)
	d.pdf.AddPage()

	d.pdf.SetFont(fontFamily, "B", 16)
	d.pdf.CellFormat(0, 10, d.tr(title), "", 1, "C", false, 0, "")
	d.pdf.SetFont(fontFamily, "", 9)
	d.pdf.CellFormat(0, 6, d.tr("Erstellt am "+generated.Format("02.01.2006 15:04")), "", 1, "C", false, 0, "")
	d.pdf.Ln(4)

	width := d.contentWidth()
	for i, s := range sections {
		if i > 0 {
			d.pdf.Ln(6)
		}
		if !d.fits(30) {
			d.pdf.AddPage()
		}
		d.pdf.SetFont(fontFamily, "B", 13)
		d.pdf.CellFormat(0, 9, d.tr(s.Title), "B", 1, "L", false, 0, "")
		d.pdf.Ln(2)

		if len(s.Answers) > 0 {
			qa := spread(width, 3, 2)
			d.headerRow(qa, []string{"Frage", "Beantwortet mit"})
			for _, a := range s.Answers {
				d.row(qa, []string{a.Question, a.Answer}, func() { d.headerRow(qa, []string{"Frage", "Beantwortet mit"}) })
			}
			d.pdf.Ln(4)
		}

		if len(s.Headers) == 0 {
			continue
		}
		d.pdf.SetFont(fontFamily, "B", 11)
		d.pdf.CellFormat(0, 8, d.tr("Gefilterte Lösungen"), "", 1, "L", false, 0, "")
		weights := make([]float64, len(s.Headers))
		for j := range weights {
			weights[j] = 1
		}
		cols := spread(width, weights...)
		d.headerRow(cols, s.Headers)
		for _, r := range s.Rows {
			d.row(cols, r, func() { d.headerRow(cols, s.Headers) })
		}
	}

	if len(log) > 0 {
		d.pdf.Ln(8)
		if !d.fits(30) {
			d.pdf.AddPage()
		}
		d.pdf.SetFont(fontFamily, "B", 13)
		d.pdf.CellFormat(0, 9, d.tr("Protokoll"), "B", 1, "L", false, 0, "")
		d.pdf.Ln(2)
		cols := spread(width, 1, 4)
		header := []string{"Bereich", "Meldung"}
		d.headerRow(cols, header)
		for _, l := range log {
			d.row(cols, []string{l.Scope, l.Message}, func() { d.headerRow(cols, header) })
		}
	}
	return d.output(w)
}
