// Package workbook 读取预先编写的解决方案工作簿
package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetNotFound       = errors.New("worksheet not found")
	ErrWorkbookUnavailable = errors.New("workbook unavailable")
	ErrInvalidRegion       = errors.New("invalid region")
)

// Cell 可选字符串，单元格统一读成格式化文本或缺失
type Cell struct {
	Value string
	Valid bool
}

func TextCell(s string) Cell {
	s = strings.TrimSpace(s)
	return Cell{Value: s, Valid: s != ""}
}

func (c Cell) Missing() bool {
	return !c.Valid
}

func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

// Region 表头行及其下方的数据行，每行正好 len(Columns) 个单元格
type Region struct {
	Columns []string
	Rows    [][]Cell
}

// Column 按规范化后的问题文本查找表头，找不到返回 -1
func (r *Region) Column(question string) int {
	want := domain.NormalizeQuestionText(question)
	for i, c := range r.Columns {
		if domain.NormalizeQuestionText(c) == want {
			return i
		}
	}
	return -1
}

// Source 筛选读取的表格数据
type Source interface {
	// ReadRegion 读取 headerRow 行的表头和从 dataStartRow 开始的数据，行号从 1 开始
	ReadRegion(sheet string, headerRow, dataStartRow int) (*Region, error)
	ReadSheet(sheet string) ([][]Cell, error)
	Close() error
}

// Opener 每个请求提供新的 Source
type Opener interface {
	Open() (Source, error)
}

type OpenerFunc func() (Source, error)

func (f OpenerFunc) Open() (Source, error) { return f() }

// FileOpener 每次调用都重新打开 Path 处的工作簿
type FileOpener struct {
	Path string
}

func (o FileOpener) Open() (Source, error) {
	f, err := excelize.OpenFile(o.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWorkbookUnavailable, o.Path, err)
	}
	return &ExcelSource{file: f}, nil
}

// ExcelSource 从 xlsx 工作簿读取区域
type ExcelSource struct {
	file *excelize.File
}

func OpenReader(r io.Reader) (*ExcelSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnavailable, err)
	}
	return &ExcelSource{file: f}, nil
}

func (s *ExcelSource) Close() error {
	return s.file.Close()
}

func (s *ExcelSource) ReadSheet(sheet string) ([][]Cell, error) {
	idx, err := s.file.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	raw, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	rows := make([][]Cell, len(raw))
	for i, r := range raw {
		cells := make([]Cell, len(r))
		for j, v := range r {
			cells[j] = TextCell(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (s *ExcelSource) ReadRegion(sheet string, headerRow, dataStartRow int) (*Region, error) {
	if headerRow < 1 || dataStartRow <= headerRow {
		return nil, fmt.Errorf("%w for %s: header row %d, data row %d", ErrInvalidRegion, sheet, headerRow, dataStartRow)
	}
	rows, err := s.ReadSheet(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < headerRow {
		return nil, fmt.Errorf("%w: %s has no header row %d", ErrSheetNotFound, sheet, headerRow)
	}
	return buildRegion(rows[headerRow-1], tail(rows, dataStartRow-1)), nil
}

func tail(rows [][]Cell, from int) [][]Cell {
	if from >= len(rows) {
		return nil
	}
	return rows[from:]
}

func buildRegion(header []Cell, data [][]Cell) *Region {
	width := len(header)
	for _, r := range data {
		width = max(width, len(r))
	}

	columns := make([]string, width)
	for i := range columns {
		if i < len(header) && header[i].Valid {
			columns[i] = header[i].Value
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			name = fmt.Sprint(i + 1)
		}
		columns[i] = "Spalte " + name
	}

	region := &Region{Columns: columns}
	for _, r := range data {
		if blank(r) {
			continue
		}
		row := make([]Cell, width)
		copy(row, r)
		region.Rows = append(region.Rows, row)
	}
	return region
}

func blank(r []Cell) bool {
	for _, c := range r {
		if c.Valid {
			return false
		}
	}
	return true
}
