package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	ErrMissingSpreadsheetID = errors.New("missing spreadsheet id")
	ErrMissingCredentials   = errors.New("missing google credentials")
	ErrSheetNotFound        = errors.New("sheet not found")
	ErrMissingColumn        = errors.New("missing required column")
)

var requiredColumns = []string{colName, colDate}

// RawRow is one non-empty data row, keyed by normalized header name.
// Line is the 1-based row number in the sheet.
type RawRow struct {
	Line   int
	Values map[string]string
}

type ReaderParams struct {
	SpreadsheetID   string
	SheetTitle      string
	CredentialsFile string
	// ClientOptions replace the credentials file when set.
	ClientOptions []option.ClientOption
}

// Reader reads the race roster sheet of a spreadsheet.
type Reader struct {
	service       *sheets.Service
	spreadsheetID string
	sheetTitle    string
}

func NewReader(ctx context.Context, params ReaderParams) (*Reader, error) {
	if params.SpreadsheetID == "" {
		return nil, ErrMissingSpreadsheetID
	}

	opts := params.ClientOptions
	if len(opts) == 0 {
		if params.CredentialsFile == "" {
			return nil, ErrMissingCredentials
		}
		exists, err := pkg.PathExists(params.CredentialsFile, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMissingCredentials, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s not found", ErrMissingCredentials, params.CredentialsFile)
		}
		opts = []option.ClientOption{
			option.WithCredentialsFile(params.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope),
		}
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Reader{
		service:       service,
		spreadsheetID: params.SpreadsheetID,
		sheetTitle:    params.SheetTitle,
	}, nil
}

// ReadRows returns the data rows below the header row. Columns are matched
// by header name, so their order in the sheet does not matter.
func (r *Reader) ReadRows(ctx context.Context) (_ []RawRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.reader.readRows")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("sheet.title", r.sheetTitle))

	spreadsheet, err := r.service.Spreadsheets.Get(r.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}

	found := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == r.sheetTitle {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, r.sheetTitle)
	}

	valueRange, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, quoteSheetTitle(r.sheetTitle)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get values of %q: %w", r.sheetTitle, err)
	}

	rows, err := toRawRows(valueRange.Values)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	log.Debugf("read %d rows from sheet %q", len(rows), r.sheetTitle)

	return rows, nil
}

func toRawRows(values [][]any) ([]RawRow, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMissingColumn)
	}

	header := make(map[int]string, len(values[0]))
	present := make(map[string]bool, len(values[0]))
	for i, cell := range values[0] {
		name := normalizeHeader(fmt.Sprint(cell))
		if name == "" || present[name] {
			continue
		}
		header[i] = name
		present[name] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var rows []RawRow
	for i, row := range values[1:] {
		raw := RawRow{
			Line:   i + 2,
			Values: make(map[string]string, len(header)),
		}
		for j, cell := range row {
			name, ok := header[j]
			if !ok {
				continue
			}
			if value := strings.TrimSpace(fmt.Sprint(cell)); value != "" {
				raw.Values[name] = value
			}
		}
		if len(raw.Values) == 0 {
			continue
		}
		rows = append(rows, raw)
	}

	return rows, nil
}

// normalizeHeader turns "Moving Time" into "moving_time".
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "_")
}

func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

type unconfiguredReader struct {
	err error
}

func (r unconfiguredReader) ReadRows(context.Context) ([]RawRow, error) {
	return nil, r.err
}

// Unconfigured returns a RowsReader failing every read with err, for a
// service started without the spreadsheet settings.
func Unconfigured(err error) RowsReader {
	return unconfiguredReader{err: err}
}
