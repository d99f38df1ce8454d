package sheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"comment-ranker/internal/logger"

	"github.com/xuri/excelize/v2"
)

// XlsxProvider stores each spreadsheet as {Dir}/{name}.xlsx. The workbook is
// written to disk on Close.
type XlsxProvider struct {
	Dir string
}

func NewXlsxProvider(dir string) *XlsxProvider {
	if strings.TrimSpace(dir) == "" {
		dir = "data/sheets"
	}
	return &XlsxProvider{Dir: dir}
}

func (p *XlsxProvider) path(name string) string {
	return filepath.Join(p.Dir, safeFilename(name)+".xlsx")
}

func (p *XlsxProvider) Open(ctx context.Context, name string) (Sheet, bool, error) {
	path := p.path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, err
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, false, fmt.Errorf("%s has no worksheet", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, false, err
	}
	return &xlsxSheet{name: name, path: path, f: f, sheet: sheets[0], nextRow: len(rows) + 1}, true, nil
}

func (p *XlsxProvider) Create(ctx context.Context, name string) (Sheet, error) {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return nil, err
	}
	path := p.path(name)
	f := excelize.NewFile()
	sheet := "Sheet1"
	if list := f.GetSheetList(); len(list) > 0 {
		sheet = list[0]
	}
	if err := f.SaveAs(path); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &xlsxSheet{name: name, path: path, f: f, sheet: sheet, nextRow: 1}, nil
}

type xlsxSheet struct {
	name    string
	path    string
	f       *excelize.File
	sheet   string
	nextRow int
}

func (x *xlsxSheet) Name() string { return x.name }

func (x *xlsxSheet) Share(ctx context.Context, email string, role string) error {
	logger.Warn("xlsx backend cannot share, skipping", "sheet", x.name, "email", email, "role", role)
	return nil
}

// Clear swaps the worksheet for a blank one, dropping values, merges and styles.
func (x *xlsxSheet) Clear(ctx context.Context) error {
	const tmp = "__blank__"
	if _, err := x.f.NewSheet(tmp); err != nil {
		return err
	}
	if err := x.f.DeleteSheet(x.sheet); err != nil {
		return err
	}
	if err := x.f.SetSheetName(tmp, x.sheet); err != nil {
		return err
	}
	idx, err := x.f.GetSheetIndex(x.sheet)
	if err != nil {
		return err
	}
	x.f.SetActiveSheet(idx)
	x.nextRow = 1
	return nil
}

func (x *xlsxSheet) AppendRow(ctx context.Context, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, x.nextRow)
	if err != nil {
		return err
	}
	row := append([]any(nil), values...)
	if err := x.f.SetSheetRow(x.sheet, cell, &row); err != nil {
		return err
	}
	x.nextRow++
	return nil
}

func (x *xlsxSheet) AppendRows(ctx context.Context, rows [][]any) error {
	for _, r := range rows {
		if err := x.AppendRow(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (x *xlsxSheet) UpdateCell(ctx context.Context, cell string, value any) error {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "=") {
		return x.f.SetCellFormula(x.sheet, cell, strings.TrimPrefix(s, "="))
	}
	return x.f.SetCellValue(x.sheet, cell, value)
}

func (x *xlsxSheet) MergeCells(ctx context.Context, r GridRange) error {
	return x.f.MergeCell(x.sheet, r.TopLeft(), r.BottomRight())
}

// Format overlays f on each cell's current style so earlier formats survive
// wherever f leaves a field unset.
func (x *xlsxSheet) Format(ctx context.Context, a1Range string, f CellFormat) error {
	r, err := ParseA1Range(a1Range)
	if err != nil {
		return err
	}
	derived := map[int]int{}
	for row := r.StartRow + 1; row <= r.EndRow; row++ {
		for col := r.StartCol + 1; col <= r.EndCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			cur, err := x.f.GetCellStyle(x.sheet, cell)
			if err != nil {
				return err
			}
			id, ok := derived[cur]
			if !ok {
				id, err = x.overlayStyle(cur, f)
				if err != nil {
					return err
				}
				derived[cur] = id
			}
			if err := x.f.SetCellStyle(x.sheet, cell, cell, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *xlsxSheet) overlayStyle(base int, f CellFormat) (int, error) {
	st, err := x.f.GetStyle(base)
	if err != nil || st == nil {
		st = &excelize.Style{}
	}
	if f.Bold != nil || f.FontSize > 0 || f.Foreground != nil {
		if st.Font == nil {
			st.Font = &excelize.Font{}
		}
		if f.Bold != nil {
			st.Font.Bold = *f.Bold
		}
		if f.FontSize > 0 {
			st.Font.Size = float64(f.FontSize)
		}
		if f.Foreground != nil {
			st.Font.Color = f.Foreground.Hex()
		}
	}
	if f.HorizontalAlignment != "" || f.VerticalAlignment != "" {
		if st.Alignment == nil {
			st.Alignment = &excelize.Alignment{}
		}
		if f.HorizontalAlignment != "" {
			st.Alignment.Horizontal = xlsxAlign(f.HorizontalAlignment)
		}
		if f.VerticalAlignment != "" {
			st.Alignment.Vertical = xlsxAlign(f.VerticalAlignment)
		}
	}
	return x.f.NewStyle(st)
}

func xlsxAlign(v string) string {
	switch strings.ToUpper(v) {
	case AlignMiddle:
		return "center"
	default:
		return strings.ToLower(v)
	}
}

func (x *xlsxSheet) Close() error {
	if x.f == nil {
		return nil
	}
	err := x.f.SaveAs(x.path)
	if cErr := x.f.Close(); err == nil {
		err = cErr
	}
	x.f = nil
	return err
}

func safeFilename(name string) string {
	name = strings.TrimSpace(name)
	r := strings.NewReplacer("/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_")
	name = r.Replace(name)
	if name == "" {
		name = "sheet"
	}
	return name
}
