package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"statdesc/adapters/coercer"
	"statdesc/domain/table"
	"statdesc/internal"
	"statdesc/internal/errors"
	"statdesc/ports"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// CSVDelimiters are tried in order; the first that splits the header into
// more than one column wins
var CSVDelimiters = []rune{';', ',', '\t', '|'}

var readers = map[string]string{
	".csv":  "csv",
	".xlsx": "xlsx",
}

// SupportedExtensions lists the file extensions NewDataReader accepts
func SupportedExtensions() []string {
	out := make([]string, 0, len(readers))
	for ext := range readers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// DataReader reads CSV and XLSX files into tables
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// ReaderOption customizes a DataReader
type ReaderOption func(*DataReader)

// WithSheet selects the XLSX worksheet; the default is the first sheet
func WithSheet(name string) ReaderOption {
	return func(r *DataReader) { r.sheet = name }
}

// WithCoercion replaces the default coercion rules
func WithCoercion(cfg coercer.CoercionConfig) ReaderOption {
	return func(r *DataReader) { r.coercer = coercer.NewTypeCoercer(cfg) }
}

// WithLogger sets the reader logger
func WithLogger(logger *internal.Logger) ReaderOption {
	return func(r *DataReader) { r.logger = logger }
}

var _ ports.TableProvider = (*DataReader)(nil)

// NewDataReader picks the reader from the file extension
func NewDataReader(filePath string, opts ...ReaderOption) (*DataReader, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType, ok := readers[ext]
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q (supported: %s)",
			ext, strings.Join(SupportedExtensions(), ", ")))
	}
	r := &DataReader{
		filePath: filePath,
		fileType: fileType,
		coercer:  coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		logger:   internal.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ReadTable reads the file and coerces every column
func (r *DataReader) ReadTable(ctx context.Context) (*table.Table, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	tbl, err := BuildTable(name, rows, r.coercer)
	if err != nil {
		return nil, err
	}
	r.logger.Info("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(tbl.Columns), tbl.Rows())
	return tbl, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.InvalidInput("Excel file has no worksheets")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("worksheet %q not found", sheet))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read %s: %w", sheet, err))
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open CSV file: %w", err))
	}
	data = decodeText(data)

	for _, delim := range CSVDelimiters {
		rows, err := parseCSV(data, delim)
		if err != nil {
			r.logger.Trace("[DataReader] delimiter %q rejected: %v", delim, err)
			continue
		}
		if len(rows) > 0 && len(rows[0]) > 1 {
			r.logger.Debug("[DataReader] CSV delimiter detected: %q", delim)
			return rows, nil
		}
	}

	rows, err := parseCSV(data, ',')
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV file: %w", err))
	}
	return rows, nil
}

// decodeText strips a UTF-8 BOM and falls back to Latin-1 for invalid UTF-8
func decodeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

func parseCSV(data []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// BuildTable turns raw rows (header first) into a table. Short rows are
// padded with missing cells and cells beyond the header are dropped.
func BuildTable(name string, rows [][]string, c *coercer.TypeCoercer) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, errors.InvalidInput("file must have at least a header row")
	}
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	data := rows[1:]
	tbl := &table.Table{Name: name, Columns: make([]table.Column, len(headers))}
	for j, header := range headers {
		cells := make([]string, len(data))
		for i, row := range data {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		tbl.Columns[j] = c.CoerceColumn(header, cells)
	}
	return tbl, nil
}
