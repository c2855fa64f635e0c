package pdfdoc

import "io"

type TimeRow struct {
	Date     string
	Start    string
	End      string
	Duration string
	Category string
	Project  string
	Info     string
}

var timeColumns = []float64{25, 20, 20, 20, 35, 45, 110}

// TimeSheet 生成某个周期的工时表，末行为合计
func TimeSheet(w io.Writer, title string, rows []TimeRow, total string) error {
	d := newDocument("L")
	d.pdf.SetTitle(d.tr(title), false)
	d.pdf.SetHeaderFunc(func() {
		d.pdf.SetFont(fontFamily, "B", 15)
		d.pdf.CellFormat(0, 10, d.tr(title), "", 1, "C", false, 0, "")
		d.pdf.Ln(6)
	})
	d.pageFooter(0)
	d.pdf.AddPage()

	titles := []string{"Datum", "Start", "Ende", "Dauer", "Kategorie", "Projekt", "Infotext"}
	header := func() { d.headerRow(timeColumns, titles) }
	header()
	for _, r := range rows {
		d.row(timeColumns, []string{r.Date, r.Start, r.End, r.Duration, r.Category, r.Project, r.Info}, header)
	}

	d.pdf.Ln(5)
	d.pdf.SetFont(fontFamily, "B", 10)
	d.pdf.CellFormat(timeColumns[0]+timeColumns[1]+timeColumns[2], 10, "Gesamtdauer:", "1", 0, "L", false, 0, "")
	d.pdf.CellFormat(timeColumns[3], 10, total, "1", 0, "L", false, 0, "")
	rest := 0.0
	for _, c := range timeColumns[4:] {
		rest += c
	}
	d.pdf.CellFormat(rest, 10, "", "1", 1, "L", false, 0, "")
	return d.output(w)
}
