// Package sheetstructure discovers the merged-spreadsheet layout used by the
// droplet-freezing assay export: a block of header rows identifying a date
// column, a time column, an optional image column, a probe-temperature
// column group, and a well-reading column group, followed by the first data
// row.
package sheetstructure

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/EERL-EPFL/spice-api-sub001/workbook"
)

// ErrMissingRequiredColumn is returned when the header scan cannot locate a
// column the rest of the pipeline depends on.
var ErrMissingRequiredColumn = errors.New("sheetstructure: missing required column")

// maxHeaderRows bounds how many leading rows are scanned for headers before
// giving up; merged exports observed in practice never nest headers deeper
// than this.
const maxHeaderRows = 8

var probeColumnPattern = regexp.MustCompile(`(?i)^probe\s*(\d+)$`)
var wellColumnPattern = regexp.MustCompile(`(?i)^P(\d+):([A-Za-z]+)(\d+)$`)

// Structure describes the column layout discovered in a Sheet.
type Structure struct {
	DateCol      int
	TimeCol      int
	ImageCol     *int
	ProbeColumns []int          // spreadsheet column indices, ordered by ascending probe number
	WellColumns  map[string]int // "P<trayOrder>:<RowLetter><Col>" -> spreadsheet column index
	DataStartRow int
}

type probeColumn struct {
	number int
	col    int
}

// Discover scans a Sheet's leading rows for the header layout described
// above and locates the first row that carries a parseable date and time.
func Discover(sheet *workbook.Sheet) (*Structure, error) {
	headerRows := sheet.RowCount()
	if headerRows > maxHeaderRows {
		headerRows = maxHeaderRows
	}

	maxCols := 0
	for r := 0; r < headerRows; r++ {
		if len(sheet.Rows[r]) > maxCols {
			maxCols = len(sheet.Rows[r])
		}
	}

	dateCol, timeCol := -1, -1
	var imageCol *int
	var probeCols []probeColumn
	wellCols := make(map[string]int)

	for r := 0; r < headerRows; r++ {
		for c := 0; c < maxCols; c++ {
			header, ok := sheet.Cell(r, c).AsString()
			if !ok {
				continue
			}
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			lower := strings.ToLower(header)

			switch {
			case lower == "date" && dateCol == -1:
				dateCol = c
				continue
			case lower == "time" && timeCol == -1:
				timeCol = c
				continue
			case imageCol == nil && (strings.Contains(lower, "image") || strings.Contains(lower, "picture")):
				cc := c
				imageCol = &cc
				continue
			}

			if m := probeColumnPattern.FindStringSubmatch(header); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					probeCols = append(probeCols, probeColumn{number: n, col: c})
				}
				continue
			}

			if m := wellColumnPattern.FindStringSubmatch(header); m != nil {
				key := fmt.Sprintf("P%s:%s%s", m[1], strings.ToUpper(m[2]), m[3])
				wellCols[key] = c
			}
		}
	}

	if dateCol == -1 {
		return nil, fmt.Errorf("%w: date column", ErrMissingRequiredColumn)
	}
	if timeCol == -1 {
		return nil, fmt.Errorf("%w: time column", ErrMissingRequiredColumn)
	}
	if len(wellCols) == 0 {
		return nil, fmt.Errorf("%w: well reading columns", ErrMissingRequiredColumn)
	}

	sort.Slice(probeCols, func(i, j int) bool { return probeCols[i].number < probeCols[j].number })
	orderedProbeCols := make([]int, len(probeCols))
	for i, pc := range probeCols {
		orderedProbeCols[i] = pc.col
	}

	dataStartRow := -1
	for r := 0; r < sheet.RowCount(); r++ {
		if _, ok := CombineTimestamp(sheet.Cell(r, dateCol), sheet.Cell(r, timeCol)); ok {
			dataStartRow = r
			break
		}
	}
	if dataStartRow == -1 {
		return nil, fmt.Errorf("%w: no row with a parseable date and time", ErrMissingRequiredColumn)
	}

	return &Structure{
		DateCol:      dateCol,
		TimeCol:      timeCol,
		ImageCol:     imageCol,
		ProbeColumns: orderedProbeCols,
		WellColumns:  wellCols,
		DataStartRow: dataStartRow,
	}, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

// ParseDate extracts the calendar date component of a cell, discarding any
// time-of-day it might also carry.
func ParseDate(c workbook.Cell) (time.Time, bool) {
	if t, ok := c.AsTime(); ok {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	s, ok := c.AsString()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimeOfDay extracts the hour/minute/second component of a cell.
func ParseTimeOfDay(c workbook.Cell) (hour, minute, second int, ok bool) {
	if t, okT := c.AsTime(); okT {
		return t.Hour(), t.Minute(), t.Second(), true
	}
	s, okS := c.AsString()
	if !okS {
		return 0, 0, 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), t.Second(), true
		}
	}
	return 0, 0, 0, false
}

// CombineTimestamp merges a date cell and a time cell into one timestamp,
// truncated to whole seconds: the layouts above never produce a sub-second
// component, but the truncation is made explicit since every downstream join
// (reading <-> phase transition) depends on second-precision equality.
func CombineTimestamp(dateCell, timeCell workbook.Cell) (time.Time, bool) {
	d, ok := ParseDate(dateCell)
	if !ok {
		return time.Time{}, false
	}
	h, mi, se, ok := ParseTimeOfDay(timeCell)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, mi, se, 0, time.UTC).Truncate(time.Second), true
}
