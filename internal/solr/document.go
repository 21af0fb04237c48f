package solr

import (
	"fmt"
	"strconv"
)

// Document is one engine document: a free-form field map. Helpers below
// absorb the JSON type looseness (numbers arrive as float64, fields can
// be scalar or list).
type Document map[string]interface{}

// Has reports whether the field is present at all.
func (d Document) Has(field string) bool {
	_, ok := d[field]

	return ok
}

// GetString returns the field as a string, or "" when absent. Scalar
// numbers are rendered, lists yield their first element.
func (d Document) GetString(field string) string {
	value, ok := d[field]
	if ok == false {
		return ""
	}

	return stringifyField(value)
}

// GetStrings returns all of the field's values as strings.
func (d Document) GetStrings(field string) []string {
	value, ok := d[field]
	if ok == false {
		return nil
	}

	if list, isList := value.([]interface{}); isList == true {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, stringifyField(item))
		}

		return out
	}

	return []string{stringifyField(value)}
}

// GetInt returns the field as an int, or 0 when absent or non-numeric.
func (d Document) GetInt(field string) int {
	value, ok := d[field]
	if ok == false {
		return 0
	}

	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// GetFloat returns the field as a float64, or 0 when absent.
func (d Document) GetFloat(field string) float64 {
	value, ok := d[field]
	if ok == false {
		return 0
	}

	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func stringifyField(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON integers come through as floats; render them whole
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		return stringifyField(v[0])
	default:
		return fmt.Sprintf("%v", v)
	}
}
