package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/taba-id/taba/internal/quiz"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(name))
}

// Config defines the import configuration.
type Config struct {
	Sheet     string // xlsx sheet; empty means the first sheet
	Separator string // list separator inside a cell, default "|"
}

func (c Config) sep() string {
	if c.Separator == "" {
		return "|"
	}
	return c.Separator
}

// Result holds the result of an import operation.
type Result struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// The header row names the columns; order is free and matching ignores case.
var columns = []string{"course", "topic", "type", "question", "options", "drag_items", "correct_answer", "explanation"}

var required = []string{"course", "topic", "type", "question", "correct_answer"}

// Rows reads all rows, header included, from r.
func Rows(r io.Reader, format Format, cfg Config) ([][]string, error) {
	switch format {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1 // allow ragged rows
		cr.LazyQuotes = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return rows, nil
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		sheet := cfg.Sheet
		if sheet == "" {
			sheet = f.GetSheetName(0)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Parse turns rows into validated questions. Bad rows are reported in the
// returned messages (1-based row numbers) and left out.
func Parse(rows [][]string, cfg Config) ([]quiz.Question, []string, error) {
	if len(rows) == 0 {
		return nil, nil, errors.New("empty file")
	}
	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, nil, err
	}
	var (
		out  []quiz.Question
		errs []string
	)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		q, err := parseRow(row, idx, cfg.sep())
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		out = append(out, q)
	}
	return out, errs, nil
}

// Import parses r and creates every valid question in store. Questions keep
// the file's order within their topic.
func Import(ctx context.Context, store quiz.QuestionStore, r io.Reader, format Format, cfg Config) (*Result, error) {
	rows, err := Rows(r, format, cfg)
	if err != nil {
		return nil, err
	}
	qs, errs, err := Parse(rows, cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{TotalProcessed: len(qs) + len(errs), Skipped: len(errs), Errors: errs}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	base := time.Now().UTC()
	for i, q := range qs {
		q.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			var du *quiz.DataUnavailableError
			if errors.As(err, &du) {
				return res, err
			}
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("question %q: %v", q.Prompt, err))
			continue
		}
		res.Created++
	}
	return res, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.ReplaceAll(h, " ", "_")
		for _, c := range columns {
			if h == c {
				idx[c] = i
			}
		}
	}
	var missing []string
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int, sep string) (quiz.Question, error) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	kind := quiz.Kind(strings.ToLower(cell("type")))
	if !kind.Valid() {
		return quiz.Question{}, fmt.Errorf("unknown type %q", cell("type"))
	}
	var correct quiz.Answer
	switch kind {
	case quiz.KindDragDrop:
		correct = quiz.Sequence(splitList(cell("correct_answer"), sep)...)
	case quiz.KindTrueFalse:
		correct = quiz.Text(trueFalse(cell("correct_answer")))
	default:
		correct = quiz.Text(cell("correct_answer"))
	}
	body, err := quiz.NewBody(kind, splitList(cell("options"), sep), splitList(cell("drag_items"), sep), correct)
	if err != nil {
		return quiz.Question{}, err
	}
	q := quiz.Question{
		Course:      cell("course"),
		Topic:       cell("topic"),
		Prompt:      cell("question"),
		Explanation: cell("explanation"),
		Body:        body,
	}
	if err := q.Validate(); err != nil {
		return quiz.Question{}, err
	}
	return q, nil
}

// trueFalse accepts the usual spellings of a true-false key.
func trueFalse(s string) string {
	switch strings.ToLower(s) {
	case "benar", "true", "b", "ya":
		return quiz.True
	case "salah", "false", "s", "tidak":
		return quiz.False
	}
	return s
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
