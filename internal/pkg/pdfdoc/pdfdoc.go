// Package pdfdoc 生成可打印的 PDF 文档
package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "Arial"
	lineHeight = 7.0
)

// document 封装 gofpdf，核心字体只支持 cp1252，需要转码
type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newDocument(orientation string) *document {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	return &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return d.pdf.Output(w)
}

func (d *document) contentWidth() float64 {
	pageW, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return pageW - left - right
}

// fits 底边距之上是否还能放下 h 毫米
func (d *document) fits(h float64) bool {
	_, pageH := d.pdf.GetPageSize()
	_, _, _, bottom := d.pdf.GetMargins()
	return d.pdf.GetY()+h <= pageH-bottom
}

// lines 计算 txt 在宽度 w 的列中换行后的行数
func (d *document) lines(txt string, w float64) int {
	n := len(d.pdf.SplitLines([]byte(d.tr(txt)), w-2))
	return max(n, 1)
}

// row 绘制一行带边框的单元格，行高取最长的单元格，放不下时先换页
func (d *document) row(widths []float64, texts []string, header func()) {
	height := lineHeight
	for i, txt := range texts {
		height = max(height, float64(d.lines(txt, widths[i]))*lineHeight)
	}
	if !d.fits(height) {
		d.pdf.AddPage()
		if header != nil {
			header()
		}
	}

	x, y := d.pdf.GetXY()
	for i, txt := range texts {
		d.pdf.Rect(x, y, widths[i], height, "D")
		d.pdf.SetXY(x, y)
		d.pdf.MultiCell(widths[i], lineHeight, d.tr(txt), "", "L", false)
		x += widths[i]
	}
	left, _, _, _ := d.pdf.GetMargins()
	d.pdf.SetXY(left, y+height)
}

func (d *document) headerRow(widths []float64, titles []string) {
	d.pdf.SetFont(fontFamily, "B", 9)
	for i, t := range titles {
		d.pdf.CellFormat(widths[i], 8, d.tr(t), "1", 0, "C", false, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetFont(fontFamily, "", 9)
}

func (d *document) pageFooter(offset int) {
	d.pdf.SetFooterFunc(func() {
		n := d.pdf.PageNo() - offset
		if n < 1 {
			return
		}
		d.pdf.SetY(-15)
		d.pdf.SetFont(fontFamily, "I", 8)
		d.pdf.CellFormat(0, 10, fmt.Sprintf("Seite %d", n), "", 0, "C", false, 0, "")
	})
}

// image 放置 PNG 或 JPEG 图片，文件不存在时跳过
func (d *document) image(path string, x, y, w float64) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	tp := strings.TrimPrefix(strings.ToUpper(filepath.Ext(path)), ".")
	d.pdf.ImageOptions(path, x, y, w, 0, false, gofpdf.ImageOptions{ImageType: tp, ReadDpi: true}, 0, "")
	if d.pdf.Err() {
		// logo 损坏时不影响文档生成
		d.pdf.ClearError()
	}
}

// spread 按权重分配列宽
func spread(total float64, weights ...float64) []float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = total * w / sum
	}
	return out
}
