// Package importer turns spreadsheet rows into questions.
//
// Layout, one question per row:
//
//	A question | B, C, D options | E correct option (1-3) | F rationale
//
// The first row is skipped when it looks like a header.
package importer

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/stemsi/kbtrainer/internal/model"
)

var (
	// ErrEmptyFile is returned when the sheet has no rows at all.
	ErrEmptyFile = errors.New("the spreadsheet is empty")
	// ErrNoQuestions is returned when no row produced a question.
	ErrNoQuestions = errors.New("no questions found in the spreadsheet")
	// ErrUnreadable is returned when the file cannot be opened as a spreadsheet.
	ErrUnreadable = errors.New("the file is not a readable spreadsheet")
	// ErrUnsupportedFormat is returned for file types other than xlsx and csv.
	ErrUnsupportedFormat = errors.New("unsupported file format, use .xlsx or .csv")
)

const (
	colQuestion  = 0
	colFirstOpt  = 1
	colLastOpt   = 3
	colCorrect   = 4
	colRationale = 5

	minOptions = 2
)

var headerMarkers = []string{"domanda", "question"}

// Result holds the parsed questions plus the rows that were dropped.
type Result struct {
	Questions []model.Question
	// Skipped lists 1-based row numbers that had a question but fewer than two options.
	Skipped []int
}

// Report converts the result to the API summary.
func (r *Result) Report() model.ImportReport {
	skipped := r.Skipped
	if skipped == nil {
		skipped = []int{}
	}
	return model.ImportReport{Imported: len(r.Questions), Skipped: skipped}
}

// ParseRows maps rows positionally onto questions. Each question's ID is its
// 0-based row ordinal in the sheet.
func ParseRows(rows [][]string) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	start := 0
	if isHeader(rows[0]) {
		start = 1
	}

	res := &Result{Questions: []model.Question{}}
	for i := start; i < len(rows); i++ {
		row := rows[i]

		text := cell(row, colQuestion)
		if text == "" {
			continue
		}

		options := make([]string, 0, colLastOpt-colFirstOpt+1)
		for c := colFirstOpt; c <= colLastOpt; c++ {
			if opt := cell(row, c); opt != "" {
				options = append(options, opt)
			}
		}
		if len(options) < minOptions {
			res.Skipped = append(res.Skipped, i+1)
			continue
		}

		res.Questions = append(res.Questions, model.Question{
			ID:                 i,
			Question:           text,
			Options:            options,
			CorrectAnswerIndex: correctIndex(cell(row, colCorrect), len(options)),
			Rationale:          cell(row, colRationale),
		})
	}

	if len(res.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	return res, nil
}

// isHeader reports whether the first cell is text mentioning "question".
func isHeader(row []string) bool {
	first := cell(row, colQuestion)
	if first == "" || isNumeric(first) {
		return false
	}
	lower := strings.ToLower(first)
	for _, m := range headerMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// correctIndex converts the 1-based option number to a 0-based index.
// Missing, non-numeric, fractional or out-of-range values yield 0.
func correctIndex(raw string, optionCount int) int {
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0
	}
	idx := int(f) - 1
	if idx < 0 || idx >= optionCount {
		return 0
	}
	return idx
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
