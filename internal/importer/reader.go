package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
	apperrors "github.com/hsi-patrimonio/inventory-api/pkg/errors"
)

// Supported encodings after sniffing collapses the result
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding classifies raw bytes as utf-8 or latin1. Valid UTF-8 wins;
// anything else is treated as Windows-1252, a superset of Latin-1 and the
// encoding every observed non-UTF-8 inventory export actually uses.
func DetectEncoding(data []byte) string {
	if utf8.Valid(bytes.TrimPrefix(data, utf8BOM)) {
		return EncodingUTF8
	}
	return EncodingLatin1
}

// DecodeText converts raw file bytes to a UTF-8 string per the sniffed encoding
func DecodeText(data []byte, encoding string) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if encoding == EncodingLatin1 {
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err == nil {
			return string(out)
		}
	}
	return string(data)
}

// candidate delimiters, in preference order for ties
var candidateDelimiters = []string{";", ",", "\t", "|"}

// DetectDelimiter counts candidate delimiters on the header line and picks
// the most frequent, defaulting to ';' when none occur.
func DetectDelimiter(headerLine string) string {
	best := ";"
	bestCount := 0
	for _, d := range candidateDelimiters {
		if c := strings.Count(headerLine, d); c > bestCount {
			bestCount = c
			best = d
		}
	}
	return best
}

// Row is one data record keyed by trimmed header names
type Row struct {
	Number  int // approximate file line (header-relative index + skipped rows + 1)
	Columns int // raw field count before header alignment
	Fields  map[string]string
}

// Blank reports whether every field is empty after trimming
func (r Row) Blank() bool {
	for _, v := range r.Fields {
		if v != "" {
			return false
		}
	}
	return true
}

// RowReader streams CSV records as header-keyed rows with constant memory
type RowReader struct {
	file     *os.File
	csv      *csv.Reader
	headers  []string
	skipRows int
	count    int
}

// OpenRows opens a CSV stream with the given read options. Missing files map
// to ErrNotFound; a malformed header maps to ErrBadInput.
func OpenRows(path string, opts models.ReadOptions) (*RowReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("arquivo " + path)
		}
		return nil, err
	}

	var src io.Reader = f
	if opts.Encoding == EncodingLatin1 {
		src = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	}

	br := bufio.NewReaderSize(src, 64*1024)
	if head, err := br.Peek(3); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(3)
	}

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			break
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	if opts.Delimiter != "" {
		cr.Comma, _ = utf8.DecodeRuneInString(opts.Delimiter)
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	reader := &RowReader{file: f, csv: cr, skipRows: opts.SkipRows}

	header, err := cr.Read()
	if err == io.EOF {
		return reader, nil
	}
	if err != nil {
		f.Close()
		return nil, apperrors.BadInput("falha ao ler cabeçalho do CSV", err)
	}
	reader.headers = make([]string, len(header))
	for i, h := range header {
		reader.headers[i] = strings.TrimSpace(h)
	}
	return reader, nil
}

// Headers returns the trimmed header names
func (r *RowReader) Headers() []string {
	return r.headers
}

// Next returns the next record, io.EOF at end of stream. Fields are trimmed
// and aligned to the header row; extra columns are dropped, missing ones read
// as empty strings.
func (r *RowReader) Next() (Row, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, apperrors.BadInput("registro CSV malformado", err)
	}

	r.count++
	fields := make(map[string]string, len(r.headers))
	for i, h := range r.headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			fields[h] = strings.TrimSpace(record[i])
		} else {
			fields[h] = ""
		}
	}
	return Row{
		Number:  r.skipRows + 1 + r.count,
		Columns: len(record),
		Fields:  fields,
	}, nil
}

// Close releases the underlying file
func (r *RowReader) Close() error {
	return r.file.Close()
}
