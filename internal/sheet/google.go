package sheet

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// appendDataOption writes into the cleared rows of the table instead of
// inserting new grid rows on every run.
const appendDataOption = "OVERWRITE"

// GoogleProvider resolves spreadsheets by name through Drive and edits them
// through the Sheets API, authenticated as a service account.
type GoogleProvider struct {
	sheets *sheets.Service
	drive  *drive.Service
}

func NewGoogleProvider(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*GoogleProvider, error) {
	base := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope)}
	if strings.TrimSpace(credentialsFile) != "" {
		base = append(base, option.WithCredentialsFile(credentialsFile))
	}
	base = append(base, opts...)

	ss, err := sheets.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	ds, err := drive.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &GoogleProvider{sheets: ss, drive: ds}, nil
}

func (p *GoogleProvider) Open(ctx context.Context, name string) (Sheet, bool, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMimeType)
	list, err := p.drive.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, false, fmt.Errorf("drive files.list: %w", err)
	}
	if len(list.Files) == 0 {
		return nil, false, nil
	}
	sp, err := p.sheets.Spreadsheets.Get(list.Files[0].Id).
		Fields("spreadsheetId,properties.title,sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, false, fmt.Errorf("spreadsheets.get: %w", err)
	}
	gs, err := p.firstSheet(sp)
	if err != nil {
		return nil, false, err
	}
	return gs, true, nil
}

func (p *GoogleProvider) Create(ctx context.Context, name string) (Sheet, error) {
	sp, err := p.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: name},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("spreadsheets.create: %w", err)
	}
	return p.firstSheet(sp)
}

func (p *GoogleProvider) firstSheet(sp *sheets.Spreadsheet) (*googleSheet, error) {
	if sp == nil || len(sp.Sheets) == 0 || sp.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet has no worksheet")
	}
	props := sp.Sheets[0].Properties
	name := ""
	if sp.Properties != nil {
		name = sp.Properties.Title
	}
	return &googleSheet{
		p:       p,
		id:      sp.SpreadsheetId,
		name:    name,
		sheetID: props.SheetId,
		title:   props.Title,
	}, nil
}

type googleSheet struct {
	p       *GoogleProvider
	id      string
	name    string
	sheetID int64
	title   string
}

func (g *googleSheet) Name() string { return g.name }

func (g *googleSheet) Share(ctx context.Context, email string, role string) error {
	_, err := g.p.drive.Permissions.Create(g.id, &drive.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: email,
	}).Context(ctx).Do()
	return err
}

func (g *googleSheet) Clear(ctx context.Context) error {
	_, err := g.p.sheets.Spreadsheets.Values.Clear(g.id, quoteTitle(g.title), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return err
}

func (g *googleSheet) AppendRow(ctx context.Context, values []any) error {
	return g.AppendRows(ctx, [][]any{values})
}

func (g *googleSheet) AppendRows(ctx context.Context, rows [][]any) error {
	vr := &sheets.ValueRange{Values: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		vr.Values = append(vr.Values, r)
	}
	_, err := g.p.sheets.Spreadsheets.Values.Append(g.id, quoteTitle(g.title)+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption(appendDataOption).
		Context(ctx).
		Do()
	return err
}

func (g *googleSheet) UpdateCell(ctx context.Context, cell string, value any) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := g.p.sheets.Spreadsheets.Values.Update(g.id, quoteTitle(g.title)+"!"+cell, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (g *googleSheet) MergeCells(ctx context.Context, r GridRange) error {
	return g.batch(ctx, &sheets.Request{
		MergeCells: &sheets.MergeCellsRequest{
			Range:     gridRange(g.sheetID, r),
			MergeType: "MERGE_ALL",
		},
	})
}

func (g *googleSheet) Format(ctx context.Context, a1Range string, f CellFormat) error {
	r, err := ParseA1Range(a1Range)
	if err != nil {
		return err
	}
	req := repeatCellRequest(g.sheetID, r, f)
	if req == nil {
		return nil
	}
	return g.batch(ctx, req)
}

func (g *googleSheet) Close() error { return nil }

func (g *googleSheet) batch(ctx context.Context, reqs ...*sheets.Request) error {
	_, err := g.p.sheets.Spreadsheets.BatchUpdate(g.id, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	return err
}

func gridRange(sheetID int64, r GridRange) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(r.StartRow),
		EndRowIndex:      int64(r.EndRow),
		StartColumnIndex: int64(r.StartCol),
		EndColumnIndex:   int64(r.EndCol),
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}

// repeatCellRequest builds a field-masked repeatCell so only the set parts of
// f overwrite the existing format. It returns nil when f sets nothing.
func repeatCellRequest(sheetID int64, r GridRange, f CellFormat) *sheets.Request {
	cf := &sheets.CellFormat{}
	var fields []string

	tf := &sheets.TextFormat{}
	if f.Bold != nil {
		tf.Bold = *f.Bold
		tf.ForceSendFields = append(tf.ForceSendFields, "Bold")
		fields = append(fields, "textFormat.bold")
	}
	if f.FontSize > 0 {
		tf.FontSize = int64(f.FontSize)
		fields = append(fields, "textFormat.fontSize")
	}
	if f.Foreground != nil {
		tf.ForegroundColor = &sheets.Color{
			Red:             f.Foreground.Red,
			Green:           f.Foreground.Green,
			Blue:            f.Foreground.Blue,
			ForceSendFields: []string{"Red", "Green", "Blue"},
		}
		fields = append(fields, "textFormat.foregroundColor")
	}
	if len(fields) > 0 {
		cf.TextFormat = tf
	}
	if f.HorizontalAlignment != "" {
		cf.HorizontalAlignment = f.HorizontalAlignment
		fields = append(fields, "horizontalAlignment")
	}
	if f.VerticalAlignment != "" {
		cf.VerticalAlignment = f.VerticalAlignment
		fields = append(fields, "verticalAlignment")
	}
	if len(fields) == 0 {
		return nil
	}
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range:  gridRange(sheetID, r),
			Cell:   &sheets.CellData{UserEnteredFormat: cf},
			Fields: "userEnteredFormat(" + strings.Join(fields, ",") + ")",
		},
	}
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
