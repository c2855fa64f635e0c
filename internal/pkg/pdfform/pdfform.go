package pdfform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

func configuration() *pdfmodel.Configuration {
	// 否则 pdfcpu 会把配置写到用户主目录
	disableConfigDir.Do(api.DisableConfigDir)
	return pdfmodel.NewDefaultConfiguration()
}

// Render 将 f 写成带 AcroForm 字段的 PDF
func Render(w io.Writer, f Form) error {
	layout, err := json.Marshal(Layout(f))
	if err != nil {
		return err
	}
	if err := api.Create(nil, bytes.NewReader(layout), w, configuration()); err != nil {
		return fmt.Errorf("create form: %w", err)
	}
	return nil
}

// FieldReader 从上传的文档中读取表单字段值
type FieldReader interface {
	ReadFields(rs io.ReadSeeker) (map[string]string, error)
}

// Reader 使用 pdfcpu 读取 AcroForm 字段
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadFields 返回字段名到值的映射，复选框的值为 "Yes" 或 "Off"
func (r *Reader) ReadFields(rs io.ReadSeeker) (map[string]string, error) {
	var buf bytes.Buffer
	if err := api.ExportFormJSON(rs, &buf, "upload.pdf", configuration()); err != nil {
		return nil, fmt.Errorf("read form fields: %w", err)
	}
	return parseExport(buf.Bytes())
}

type exportedField struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type exportedForm struct {
	TextFields []exportedField `json:"textfield"`
	CheckBoxes []exportedField `json:"checkbox"`
	ComboBoxes []exportedField `json:"combobox"`
}

type exportedDoc struct {
	Forms []exportedForm `json:"forms"`
}

func parseExport(data []byte) (map[string]string, error) {
	var doc exportedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode form fields: %w", err)
	}
	fields := make(map[string]string)
	for _, f := range doc.Forms {
		for _, group := range [][]exportedField{f.TextFields, f.CheckBoxes, f.ComboBoxes} {
			for _, fld := range group {
				name := fld.Name
				if name == "" {
					name = fld.ID
				}
				if name == "" {
					continue
				}
				fields[name] = rawValue(fld.Value)
			}
		}
	}
	return fields, nil
}

func rawValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "Yes"
		}
		return "Off"
	}
	return string(bytes.Trim(raw, `"`))
}
