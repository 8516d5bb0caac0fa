package format

import (
	"encoding/json"
	"io"
)

// Formatter abstracts CLI output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes one JSON document per payload. Indent, when set,
// pretty-prints with that indent string.
type JSONFormatter struct {
	Indent string
}

// Write encodes payload to w.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(payload)
}
