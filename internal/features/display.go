package features

import "strings"

// DisplayValue maps the "no data" sentinels (nil, "null", "N/A" and -1) to 0
// and returns every other value unchanged. It is applied at presentation
// time only; Record keeps the derived values as computed.
func DisplayValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return 0
	case *string:
		if val == nil {
			return 0
		}
		return DisplayValue(*val)
	case string:
		s := strings.TrimSpace(val)
		if s == "null" || s == "N/A" {
			return 0
		}
		return val
	case int:
		if val == -1 {
			return 0
		}
	case int64:
		if val == -1 {
			return 0
		}
	case float64:
		if val == -1 {
			return 0
		}
	}
	return v
}

// Display returns the record's fields with sentinel values replaced by 0.
func (r Record) Display() []Field {
	fields := r.Fields()
	for i := range fields {
		fields[i].Value = DisplayValue(fields[i].Value)
	}
	return fields
}

// DisplayMap returns Display keyed by field name.
func (r Record) DisplayMap() map[string]interface{} {
	fields := r.Display()
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}
