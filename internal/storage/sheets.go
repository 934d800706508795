package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/starford/filmoteka/internal/models"
)

var spreadsheetIDRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the document ID from a Google Sheets URL.
// A value without slashes is taken to be the ID itself.
func SpreadsheetID(urlOrID string) (string, error) {
	s := strings.TrimSpace(urlOrID)
	if m := spreadsheetIDRe.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if s != "" && !strings.Contains(s, "/") {
		return s, nil
	}
	return "", fmt.Errorf("storage: cannot find spreadsheet id in %q", urlOrID)
}

// SheetsConfig identifies a worksheet and the service account used to reach it.
type SheetsConfig struct {
	SheetURL        string
	SheetName       string
	CredentialsFile string
	CredentialsJSON []byte
}

// Sheets implements Provider on one tab of a Google spreadsheet.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	tab           string

	mu      sync.Mutex
	sheetID *int64 // numeric tab id, resolved on first delete
}

// NewSheets builds a Sheets provider. Extra client options are appended after
// the credentials, so tests can point the client at a local endpoint.
func NewSheets(ctx context.Context, cfg SheetsConfig, extra ...option.ClientOption) (*Sheets, error) {
	id, err := SpreadsheetID(cfg.SheetURL)
	if err != nil {
		return nil, err
	}
	if cfg.SheetName == "" {
		return nil, fmt.Errorf("storage: sheet name is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: sheets client: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: id, tab: cfg.SheetName}, nil
}

// Name implements Provider.
func (s *Sheets) Name() string { return "sheets:" + s.spreadsheetID + "/" + s.tab }

// Rows implements Provider.
func (s *Sheets) Rows(ctx context.Context) ([]models.RawRow, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, a1Range(s.tab, "")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("storage: read sheet: %w", err)
	}
	return rowsFromTable(toTable(resp.Values)), nil
}

// AppendRow implements Provider. An empty tab gets the canonical header
// in the same call.
func (s *Sheets) AppendRow(ctx context.Context, row models.RawRow) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, a1Range(s.tab, "1:1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("storage: read header: %w", err)
	}

	var out [][]interface{}
	header := models.Columns(row[models.ColumnID] != "")
	if t := toTable(resp.Values); len(t) > 0 && strings.Join(t[0], "") != "" {
		header = t[0]
		if err := checkHeader(header); err != nil {
			return err
		}
	} else {
		out = append(out, toValues(header))
	}
	out = append(out, toValues(orderCells(header, row)))

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, a1Range(s.tab, ""), &sheets.ValueRange{
		Values: out,
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("storage: append row: %w", err)
	}
	return nil
}

// DeleteRow implements Provider.
func (s *Sheets) DeleteRow(ctx context.Context, physicalRow int) error {
	if physicalRow < 2 {
		return fmt.Errorf("storage: row %d out of range", physicalRow)
	}
	gid, err := s.resolveSheetID(ctx)
	if err != nil {
		return err
	}
	// The API counts rows from 0 with an exclusive end index.
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         gid,
					Dimension:       "ROWS",
					StartIndex:      int64(physicalRow - 1),
					EndIndex:        int64(physicalRow),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("storage: delete row %d: %w", physicalRow, err)
	}
	return nil
}

func (s *Sheets) resolveSheetID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheetID != nil {
		return *s.sheetID, nil
	}
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("storage: read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.tab {
			id := sh.Properties.SheetId
			s.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("storage: worksheet %q not found", s.tab)
}

// a1Range builds an A1 range for tab, quoting names that need it.
func a1Range(tab, cells string) string {
	name := tab
	if strings.ContainsAny(tab, " '!:-") {
		name = "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	}
	if cells == "" {
		return name
	}
	return name + "!" + cells
}

func toTable(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}

func toValues(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
