// Package sheet publishes ranked comment rows into a spreadsheet. Backends
// implement Provider and Sheet; Publisher owns the layout and ordering.
package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Provider interface {
	// Open looks a spreadsheet up by name. A missing spreadsheet is reported
	// as found=false with a nil error.
	Open(ctx context.Context, name string) (s Sheet, found bool, err error)
	Create(ctx context.Context, name string) (Sheet, error)
}

// Sheet is the first worksheet of an opened spreadsheet.
type Sheet interface {
	Name() string
	Share(ctx context.Context, email string, role string) error
	Clear(ctx context.Context) error
	AppendRow(ctx context.Context, values []any) error
	UpdateCell(ctx context.Context, cell string, value any) error
	MergeCells(ctx context.Context, r GridRange) error
	Format(ctx context.Context, a1Range string, f CellFormat) error
	Close() error
}

// RowsAppender is implemented by backends that can write many rows in one call.
type RowsAppender interface {
	AppendRows(ctx context.Context, rows [][]any) error
}

// GridRange is zero-based and half-open, like the Sheets API.
type GridRange struct {
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

func (r GridRange) TopLeft() string {
	c, _ := excelize.CoordinatesToCellName(r.StartCol+1, r.StartRow+1)
	return c
}

func (r GridRange) BottomRight() string {
	c, _ := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	return c
}

func (r GridRange) A1() string {
	tl, br := r.TopLeft(), r.BottomRight()
	if tl == br {
		return tl
	}
	return tl + ":" + br
}

// ParseA1Range accepts "B2" or "A1:D999". Open-ended ranges are not supported.
func ParseA1Range(s string) (GridRange, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return GridRange{}, fmt.Errorf("empty range")
	}
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		to = from
	}
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return GridRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return GridRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	return GridRange{StartRow: r1 - 1, EndRow: r2, StartCol: c1 - 1, EndCol: c2}, nil
}

type Color struct {
	Red   float64
	Green float64
	Blue  float64
}

// Hex renders the color as RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", channel(c.Red), channel(c.Green), channel(c.Blue))
}

func channel(v float64) int {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int(v*255 + 0.5)
}

const (
	AlignCenter = "CENTER"
	AlignMiddle = "MIDDLE"
)

// CellFormat only touches the fields that are set; nil and zero values leave
// the existing format alone.
type CellFormat struct {
	Bold                *bool
	FontSize            int
	Foreground          *Color
	HorizontalAlignment string
	VerticalAlignment   string
}
