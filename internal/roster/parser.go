package roster

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/campushq/onboard/internal/domain"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// Normalized column names per member kind. The header row of an uploaded
// roster must match the set for its kind exactly.
const (
	ColFullName       = "full_name"
	ColEmail          = "email"
	ColRollNumber     = "roll_number"
	ColDepartment     = "department"
	ColYearOfStudy    = "year_of_study"
	ColPhone          = "phone"
	ColEmployeeID     = "employee_id"
	ColSpecialization = "specialization"
)

var (
	studentColumns = []string{ColFullName, ColEmail, ColRollNumber, ColDepartment, ColYearOfStudy, ColPhone}
	trainerColumns = []string{ColFullName, ColEmail, ColEmployeeID, ColSpecialization, ColPhone}
)

// Columns returns the expected header set for a member kind, in template order.
func Columns(kind domain.MemberKind) []string {
	if kind == domain.MemberKindTrainer {
		return append([]string(nil), trainerColumns...)
	}
	return append([]string(nil), studentColumns...)
}

// HeaderError reports a header row that does not match the expected schema.
// It is a job-level failure: no data rows are processed when it occurs.
type HeaderError struct {
	Missing []string
	Unknown []string
}

func (e *HeaderError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown columns: %s", strings.Join(e.Unknown, ", ")))
	}
	return "header mismatch: " + strings.Join(parts, "; ")
}

// Row is one parsed data row. Err is set for row-local parse problems (for
// example a stray extra cell); such rows still reach the orchestrator so they
// get a FAILED outcome instead of aborting the job.
type Row struct {
	Member domain.MemberRow
	Err    error
}

// Roster is a fully parsed upload. Rows are in file order and consumed once.
type Roster struct {
	Kind    domain.MemberKind
	Headers []string
	Rows    []Row
}

// Parse decodes a roster file and validates its header row against the schema
// for the given member kind. Any error returned here is fatal for the whole
// job; per-row problems are carried on the individual rows instead.
func Parse(fileName string, payload []byte, kind domain.MemberKind) (Roster, error) {
	if len(payload) == 0 {
		return Roster{}, errors.New("file is empty")
	}

	records, err := readTable(fileName, payload)
	if err != nil {
		return Roster{}, err
	}

	return buildRoster(records, kind)
}

// rawRecord is one line of the decoded table. A line the decoder could not
// parse carries its error instead of cells; it still occupies a file position.
type rawRecord struct {
	cells []string
	err   error
}

func readTable(fileName string, payload []byte) ([]rawRecord, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return readCSV(payload)
	case ".xlsx":
		return readExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func readCSV(payload []byte) ([]rawRecord, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	var records []rawRecord
	for {
		cells, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A line with broken quoting must not sink the whole upload; the
			// error travels with the record and becomes a per-row failure.
			records = append(records, rawRecord{err: err})
			continue
		}
		records = append(records, rawRecord{cells: cells})
	}
	return records, nil
}

func readExcel(payload []byte) ([]rawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	records := make([]rawRecord, len(rows))
	for i, cells := range rows {
		records[i] = rawRecord{cells: cells}
	}
	return records, nil
}

func buildRoster(records []rawRecord, kind domain.MemberKind) (Roster, error) {
	if len(records) == 0 {
		return Roster{}, errors.New("no rows found in file")
	}

	headerIdx := -1
	for idx, record := range records {
		if record.err != nil || !rowEmpty(record.cells) {
			headerIdx = idx
			break
		}
	}
	if headerIdx < 0 {
		return Roster{}, errors.New("header row could not be detected")
	}
	if err := records[headerIdx].err; err != nil {
		return Roster{}, fmt.Errorf("failed to read header row: %w", err)
	}

	headers := normalizeHeaders(records[headerIdx].cells)
	if err := checkHeaders(headers, kind); err != nil {
		return Roster{}, err
	}

	roster := Roster{Kind: kind, Headers: headers}
	rowNumber := 0
	for _, record := range records[headerIdx+1:] {
		rowNumber++
		if record.err != nil {
			roster.Rows = append(roster.Rows, Row{
				Member: domain.MemberRow{Number: rowNumber},
				Err:    fmt.Errorf("malformed line: %v", record.err),
			})
			continue
		}
		if rowEmpty(record.cells) {
			// Blank lines keep their file position but produce no row.
			continue
		}

		row := Row{Member: domain.MemberRow{Number: rowNumber}}
		if extra := countExtraCells(record.cells, len(headers)); extra > 0 {
			row.Err = fmt.Errorf("row has %d extra cell(s) beyond the %d expected columns", extra, len(headers))
		} else {
			padded := padRow(record.cells, len(headers))
			values := make(map[string]string, len(headers))
			for i, header := range headers {
				values[header] = strings.TrimSpace(padded[i])
			}
			row.Member.Values = values
		}
		roster.Rows = append(roster.Rows, row)
	}

	return roster, nil
}

func checkHeaders(headers []string, kind domain.MemberKind) error {
	expected := make(map[string]bool, len(Columns(kind)))
	for _, col := range Columns(kind) {
		expected[col] = true
	}

	seen := make(map[string]bool, len(headers))
	headerErr := &HeaderError{}
	for _, header := range headers {
		seen[header] = true
		if !expected[header] {
			headerErr.Unknown = append(headerErr.Unknown, header)
		}
	}
	for col := range expected {
		if !seen[col] {
			headerErr.Missing = append(headerErr.Missing, col)
		}
	}

	if len(headerErr.Missing) > 0 || len(headerErr.Unknown) > 0 {
		sort.Strings(headerErr.Missing)
		sort.Strings(headerErr.Unknown)
		return headerErr
	}
	return nil
}

func normalizeHeaders(raw []string) []string {
	headers := make([]string, 0, len(raw))
	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, ".", "_")
		name = strings.ReplaceAll(name, "-", "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}
		headers = append(headers, name)
	}
	return headers
}

func countExtraCells(row []string, width int) int {
	extra := 0
	for i := width; i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			extra++
		}
	}
	return extra
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
