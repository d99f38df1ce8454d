package sheet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"
)

// MemoryProvider keeps spreadsheets in process. Every call is journaled so
// callers can assert on ordering; it backs tests and dry runs.
type MemoryProvider struct {
	mu     sync.Mutex
	sheets map[string]*MemorySheet

	// SupportsBatch makes opened sheets implement RowsAppender.
	SupportsBatch bool
	OpenErr       error
	CreateErr     error
	ShareErr      error
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{sheets: map[string]*MemorySheet{}}
}

func (p *MemoryProvider) Open(ctx context.Context, name string) (Sheet, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.OpenErr != nil {
		return nil, false, p.OpenErr
	}
	s, ok := p.sheets[name]
	if !ok {
		return nil, false, nil
	}
	s.record("open")
	return p.wrap(s), true, nil
}

func (p *MemoryProvider) Create(ctx context.Context, name string) (Sheet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	s := &MemorySheet{name: name, shareErr: p.ShareErr, FailAppendAt: -1}
	s.record("create")
	p.sheets[name] = s
	return p.wrap(s), nil
}

// Sheet returns the stored spreadsheet, or nil.
func (p *MemoryProvider) Sheet(name string) *MemorySheet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sheets[name]
}

func (p *MemoryProvider) wrap(s *MemorySheet) Sheet {
	if p.SupportsBatch {
		return batchMemorySheet{s}
	}
	return s
}

type FormatCall struct {
	Range  string
	Format CellFormat
}

type Share struct {
	Email string
	Role  string
}

type MemorySheet struct {
	mu       sync.Mutex
	name     string
	shareErr error

	Rows    [][]any
	Merges  []GridRange
	Formats []FormatCall
	Shares  []Share
	Journal []string
	Closed  int

	// FailAppendAt makes the data append with this zero-based index fail;
	// header rows are not counted. -1 disables it.
	FailAppendAt int
	dataAppends  int
}

var ErrInjectedAppend = errors.New("injected append failure")

func (s *MemorySheet) record(op string) {
	s.Journal = append(s.Journal, op)
}

func (s *MemorySheet) Name() string { return s.name }

func (s *MemorySheet) Share(ctx context.Context, email string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("share")
	if s.shareErr != nil {
		return s.shareErr
	}
	s.Shares = append(s.Shares, Share{Email: email, Role: role})
	return nil
}

func (s *MemorySheet) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("clear")
	s.Rows = nil
	s.dataAppends = 0
	return nil
}

func (s *MemorySheet) AppendRow(ctx context.Context, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("append")
	return s.appendLocked(values)
}

func (s *MemorySheet) appendLocked(values []any) error {
	if len(s.Rows) >= 2 {
		if s.FailAppendAt >= 0 && s.dataAppends == s.FailAppendAt {
			return ErrInjectedAppend
		}
		s.dataAppends++
	}
	s.Rows = append(s.Rows, append([]any(nil), values...))
	return nil
}

func (s *MemorySheet) UpdateCell(ctx context.Context, cell string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("update " + cell)
	col, row, err := excelize.CellNameToCoordinates(cell)
	if err != nil {
		return err
	}
	for len(s.Rows) < row {
		s.Rows = append(s.Rows, nil)
	}
	r := s.Rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	s.Rows[row-1] = r
	return nil
}

func (s *MemorySheet) MergeCells(ctx context.Context, r GridRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("merge " + r.A1())
	for _, m := range s.Merges {
		if m == r {
			return nil
		}
	}
	s.Merges = append(s.Merges, r)
	return nil
}

func (s *MemorySheet) Format(ctx context.Context, a1Range string, f CellFormat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("format " + a1Range)
	if _, err := ParseA1Range(a1Range); err != nil {
		return err
	}
	s.Formats = append(s.Formats, FormatCall{Range: a1Range, Format: f})
	return nil
}

func (s *MemorySheet) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed++
	return nil
}

// Cell returns the display value at a 1-based row and column.
func (s *MemorySheet) Cell(row, col int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 1 || row > len(s.Rows) || col < 1 || col > len(s.Rows[row-1]) {
		return ""
	}
	return fmt.Sprint(s.Rows[row-1][col-1])
}

type batchMemorySheet struct {
	*MemorySheet
}

func (b batchMemorySheet) AppendRows(ctx context.Context, rows [][]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(fmt.Sprintf("append_rows %d", len(rows)))
	for _, r := range rows {
		if err := b.appendLocked(r); err != nil {
			return err
		}
	}
	return nil
}
