package bank

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads a bank kept as a spreadsheet. The first row is a header
// naming the columns: pregunta, respuesta_correcta, pagina (optional) and one
// or more columns starting with "opcion". An empty sheet name picks the
// first sheet.
func ReadXLSX(r io.Reader, sheet string) ([]Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBank, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedBank)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrMalformedBank, sheet)
	}

	promptCol, correctCol, pageCol := -1, -1, -1
	var optionCols []int
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "pregunta":
			promptCol = i
		case h == "respuesta_correcta":
			correctCol = i
		case h == "pagina":
			pageCol = i
		case strings.HasPrefix(h, "opcion"):
			optionCols = append(optionCols, i)
		}
	}
	if promptCol < 0 || correctCol < 0 || len(optionCols) == 0 {
		return nil, fmt.Errorf("%w: header needs pregunta, respuesta_correcta and opcion columns", ErrMalformedBank)
	}

	var out []Question
	for n, row := range rows[1:] {
		line := n + 2
		prompt := strings.TrimSpace(cell(row, promptCol))
		if prompt == "" {
			continue
		}
		q := Question{Prompt: prompt}
		if q.Options, err = rowOptions(row, optionCols); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedBank, line, err)
		}
		q.Correct, err = strconv.Atoi(strings.TrimSpace(cell(row, correctCol)))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: respuesta_correcta: %v", ErrMalformedBank, line, err)
		}
		if pageCol >= 0 {
			if v := strings.TrimSpace(cell(row, pageCol)); v != "" {
				p, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: pagina: %v", ErrMalformedBank, line, err)
				}
				q.Page = &p
			}
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedBank, line, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// rowOptions keeps options at their column positions so respuesta_correcta
// still indexes the right one. Trailing empty columns are dropped; a gap
// between options is an error.
func rowOptions(row []string, cols []int) ([]string, error) {
	opts := make([]string, len(cols))
	last := -1
	for i, c := range cols {
		opts[i] = strings.TrimSpace(cell(row, c))
		if opts[i] != "" {
			last = i
		}
	}
	opts = opts[:last+1]
	for i, o := range opts {
		if o == "" {
			return nil, fmt.Errorf("option %d is empty", i)
		}
	}
	return opts, nil
}

// GetRows drops trailing empty cells, so rows can be shorter than the header.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
