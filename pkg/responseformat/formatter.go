package responseformat

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Supported output formats.
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
	FormatCSV     = "csv"
)

// Tabular is implemented by data that can be flattened to CSV rows.
type Tabular interface {
	CSVHeader() []string
	CSVRows() [][]string
}

// Formatter handles encoding results in JSON, MessagePack or CSV format
type Formatter struct {
	indent bool
}

// NewFormatter creates a new formatter. indent pretty-prints JSON output.
func NewFormatter(indent bool) *Formatter {
	return &Formatter{indent: indent}
}

// Write encodes data to w in the requested format. CSV output requires data
// to implement Tabular.
func (f *Formatter) Write(w io.Writer, format string, data any) error {
	switch format {
	case FormatJSON, "":
		return f.writeJSON(w, data)
	case FormatMsgPack:
		return f.writeMsgPack(w, data)
	case FormatCSV:
		t, ok := data.(Tabular)
		if !ok {
			return fmt.Errorf("%T cannot be written as CSV", data)
		}
		return f.writeCSV(w, t)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}

func (f *Formatter) writeCSV(w io.Writer, t Tabular) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.CSVHeader()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.CSVRows()); err != nil {
		return err
	}
	return cw.Error()
}
