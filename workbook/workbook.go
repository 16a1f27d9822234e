// Package workbook reads spreadsheet bytes into a typed in-memory cell grid.
//
// This is component C1 of the ingestion pipeline: it has no knowledge of the
// merged-spreadsheet shape, only of spreadsheet-file mechanics.
package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidFormat is returned when the input bytes are not a recognised
// spreadsheet format.
var ErrInvalidFormat = errors.New("workbook: not a recognised spreadsheet")

// ErrEmptySheet is returned when the first sheet has zero rows.
var ErrEmptySheet = errors.New("workbook: sheet has zero rows")

// Sheet is an in-memory 2D grid of typed cells.
type Sheet struct {
	Rows [][]Cell
}

// RowCount returns the number of rows in the sheet.
func (s *Sheet) RowCount() int { return len(s.Rows) }

// Cell returns the cell at (row, col), or an empty cell if out of range.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) {
		return Cell{Kind: KindEmpty}
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return Cell{Kind: KindEmpty}
	}
	return r[col]
}

// Read parses spreadsheet bytes into an in-memory cell grid, taking the
// workbook's first sheet. There is no streaming requirement: inputs are
// bounded (tens of thousands of rows, single-digit megabytes).
func Read(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, ErrInvalidFormat
	}
	sheetName := sheetNames[0]

	formattedRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(formattedRows) == 0 {
		return nil, ErrEmptySheet
	}

	rows := make([][]Cell, len(formattedRows))
	for r, rowVals := range formattedRows {
		cells := make([]Cell, len(rowVals))
		for c, v := range rowVals {
			axis, axErr := excelize.CoordinatesToCellName(c+1, r+1)
			if axErr != nil {
				cells[c] = Cell{Kind: KindEmpty}
				continue
			}
			cells[c] = readCell(f, sheetName, axis, v)
		}
		rows[r] = cells
	}

	return &Sheet{Rows: rows}, nil
}

// readCell classifies one cell using excelize's reported cell type, falling
// back to the formatted string value whenever the type is ambiguous. Cells
// never fail to parse here — only the accessor methods on Cell can fail, and
// they fail by returning ok=false rather than by erroring.
func readCell(f *excelize.File, sheet, axis, formattedValue string) Cell {
	if formattedValue == "" {
		return Cell{Kind: KindEmpty}
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return Cell{Kind: KindString, Str: formattedValue}
	}

	switch cellType {
	case excelize.CellTypeBool:
		b, err := strconv.ParseBool(formattedValue)
		if err != nil {
			return Cell{Kind: KindString, Str: formattedValue}
		}
		return Cell{Kind: KindBool, Bool: b}

	case excelize.CellTypeDate:
		raw, _ := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Cell{Kind: KindString, Str: formattedValue}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return Cell{Kind: KindString, Str: formattedValue}
		}
		return Cell{Kind: KindDateTime, Time: t}

	case excelize.CellTypeNumber, excelize.CellTypeFormula:
		raw, _ := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return Cell{Kind: KindString, Str: formattedValue}
		}
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Cell{Kind: KindInt, Int: i}
		}
		if fl, err := strconv.ParseFloat(raw, 64); err == nil {
			return Cell{Kind: KindFloat, Float: fl}
		}
		return Cell{Kind: KindString, Str: formattedValue}

	case excelize.CellTypeError:
		return Cell{Kind: KindError, ErrMsg: formattedValue}

	default:
		return Cell{Kind: KindString, Str: formattedValue}
	}
}
