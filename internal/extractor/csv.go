package extractor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Header is the first line of every export.
var Header = []string{"Street", "City", "State", "Zip", "PhoneNumber", "FirstName", "LastName"}

// Row is one exported lead.
type Row struct {
	Street    string
	City      string
	State     string
	Zip       string
	Phone     string
	FirstName string
	LastName  string
}

func (r Row) fields() []string {
	return []string{r.Street, r.City, r.State, r.Zip, r.Phone, r.FirstName, r.LastName}
}

// WriteCSV writes the header and rows with every field quoted, embedded
// quotes doubled and records separated by CRLF.
func WriteCSV(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	writeRecord(bw, Header)
	for _, row := range rows {
		bw.WriteString("\r\n")
		writeRecord(bw, row.fields())
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeRecord(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
}

// FileName is the export name for a run that produced count leads.
func FileName(count int) string {
	return fmt.Sprintf("dealmachine_wireless_%d.csv", count)
}
