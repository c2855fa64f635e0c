package pdfdoc

import (
	"io"
	"strings"
	"time"
)

// QuestionRow 打印的一条问题，Section 变化时开始新的小节标题
type QuestionRow struct {
	Section  string
	Question string
	Options  string
	Answer   string
}

type QuestionnaireDoc struct {
	Title    string
	Editor   string
	Date     time.Time
	LogoPath string
	Rows     []QuestionRow
}

// Questionnaire 生成封面和问题表，页码从封面之后开始
func Questionnaire(w io.Writer, doc QuestionnaireDoc) error {
	d := newDocument("P")
	d.pdf.SetTitle(d.tr(doc.Title), false)
	d.pdf.SetHeaderFunc(func() {
		if d.pdf.PageNo() < 2 {
			return
		}
		d.pdf.SetFont(fontFamily, "B", 14)
		d.pdf.CellFormat(0, 10, d.tr(doc.Title), "", 1, "C", false, 0, "")
		d.pdf.Ln(3)
	})
	d.pageFooter(1)

	d.pdf.AddPage()
	pageW, _ := d.pdf.GetPageSize()
	d.image(doc.LogoPath, pageW/2-55, 40, 110)
	d.pdf.SetY(120)
	d.pdf.SetFont(fontFamily, "B", 24)
	d.pdf.CellFormat(0, 20, d.tr(doc.Title), "", 1, "C", false, 0, "")
	d.pdf.SetY(180)
	d.pdf.SetFont(fontFamily, "", 12)
	editor := doc.Editor
	if strings.TrimSpace(editor) == "" {
		editor = "N/A"
	}
	d.pdf.CellFormat(0, 10, d.tr("Bearbeiter: "+editor), "", 1, "C", false, 0, "")
	d.pdf.CellFormat(0, 10, d.tr("Datum: "+doc.Date.Format("02.01.2006")), "", 1, "C", false, 0, "")

	d.pdf.AddPage()
	cols := spread(d.contentWidth(), 95, 50, 45)
	titles := []string{"Frage", "Antwortmöglichkeiten", "Antwort"}
	header := func() { d.headerRow(cols, titles) }

	section := ""
	for i, r := range doc.Rows {
		if r.Section != section || i == 0 {
			section = r.Section
			if !d.fits(20) {
				d.pdf.AddPage()
			}
			if section != "" {
				d.pdf.Ln(2)
				d.pdf.SetFont(fontFamily, "B", 11)
				d.pdf.CellFormat(0, 8, d.tr(section), "", 1, "L", false, 0, "")
			}
			header()
		}
		d.row(cols, []string{r.Question, strings.ReplaceAll(r.Options, ",", ", "), r.Answer}, header)
	}
	return d.output(w)
}
