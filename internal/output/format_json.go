package output

import (
	"encoding/json"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

func (jf JSONFormatter) Name() string { return "json" }

// Format generates JSON output for a report.
func (jf JSONFormatter) Format(report *Report) ([]byte, error) {
	return MarshalJSON(report, jf.Pretty)
}

// MarshalJSON encodes any result value the way the report formatter does.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
