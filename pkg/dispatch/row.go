package dispatch

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Row is one recipient record: column name to cell value.
type Row map[string]string

// UnmarshalJSON accepts any JSON object. Scalar values are converted to their
// string form, null becomes "" and nested values keep their JSON text.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	row := make(Row, len(raw))
	for k, v := range raw {
		row[k] = cellString(v)
	}
	*r = row
	return nil
}

func cellString(v json.RawMessage) string {
	s := strings.TrimSpace(string(v))
	switch {
	case s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			return str
		}
	case s == "true" || s == "false":
		return s
	default:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return s
}

// Mapping declares which row columns hold the recipient address, the display name
// and, optionally, a literal per-row subject.
type Mapping struct {
	Recipient string `json:"recipient" validate:"required"`
	Name      string `json:"name"`
	Subject   string `json:"subject,omitempty"`
}

// Filter returns the rows whose recipient column is a non-empty string, in input order.
// The result defines the job total and each item's index.
func Filter(rows []Row, mapping Mapping) []Row {
	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row[mapping.Recipient] != "" {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
