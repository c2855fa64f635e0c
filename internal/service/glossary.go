package service

import (
	"errors"
	"strings"

	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"k8s.io/klog/v2"
)

var ErrTermNotFound = errors.New("term not found")

const noExplanation = "Keine Erklärung für diesen Begriff vorhanden."

// GlossaryService 在工作簿的术语表中查询术语
type GlossaryService struct {
	cfg    config.GlossaryConfig
	opener workbook.Opener
}

func NewGlossaryService(cfg config.GlossaryConfig, opener workbook.Opener) *GlossaryService {
	return &GlossaryService{cfg: cfg, opener: opener}
}

type glossaryEntry struct {
	term        string
	explanation string
}

func (s *GlossaryService) entries() ([]glossaryEntry, error) {
	src, err := s.opener.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	rows, err := src.ReadSheet(s.cfg.Sheet)
	if err != nil {
		klog.Warningf("Glossary: %v", err)
		return nil, err
	}
	termCol, explCol := s.cfg.TermColumn-1, s.cfg.ExplanationColumn-1
	var out []glossaryEntry
	for i := max(s.cfg.FirstRow-1, 0); i < len(rows); i++ {
		row := rows[i]
		if termCol >= len(row) || row[termCol].Missing() {
			continue
		}
		e := glossaryEntry{term: row[termCol].Value}
		if explCol < len(row) {
			e.explanation = row[explCol].String()
		}
		out = append(out, e)
	}
	return out, nil
}

// Lookup 返回术语的解释，不区分大小写
func (s *GlossaryService) Lookup(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrTermNotFound
	}
	entries, err := s.entries()
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if strings.EqualFold(e.term, term) {
			if e.explanation == "" {
				return noExplanation, nil
			}
			return e.explanation, nil
		}
	}
	return "", ErrTermNotFound
}

// Suggest 按表中顺序返回以 prefix 开头的术语，去重
func (s *GlossaryService) Suggest(prefix string) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []string{}, nil
	}
	entries, err := s.entries()
	if err != nil {
		return nil, err
	}
	limit := s.cfg.SuggestLimit
	if limit <= 0 {
		limit = 10
	}
	seen := map[string]bool{}
	out := []string{}
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if seen[e.term] || !strings.HasPrefix(strings.ToLower(e.term), prefix) {
			continue
		}
		seen[e.term] = true
		out = append(out, e.term)
	}
	return out, nil
}
