package services

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// parseValue converts a request string into the bound value for kind.
// Dates and times are normalized to MySQL text form.
func parseValue(kind Kind, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", raw)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return f, nil
	case KindDate:
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date (YYYY-MM-DD)", raw)
		}
		return d.Format(dateLayout), nil
	case KindTime:
		for _, layout := range []string{timeLayout, "15:04"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(timeLayout), nil
			}
		}
		return nil, fmt.Errorf("%q is not a time (HH:MM)", raw)
	case KindDateTime:
		for _, layout := range []string{dateTimeLayout, time.RFC3339, "2006-01-02T15:04"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(dateTimeLayout), nil
			}
		}
		return nil, fmt.Errorf("%q is not a date and time", raw)
	default:
		return raw, nil
	}
}

// requestString flattens a decoded JSON or form value to text. ok is false for
// absent values.
func requestString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return strings.TrimSpace(fmt.Sprint(x)), true
	}
}

// columnArg validates one input value for c. An empty value maps to NULL.
func columnArg(c Column, raw string) (interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	if len(c.Enum) > 0 {
		for _, allowed := range c.Enum {
			if raw == allowed {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%s must be one of: %s", c.Label, strings.Join(c.Enum, ", "))
	}
	v, err := parseValue(c.Kind, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", c.Label, err)
	}
	return v, nil
}

func scanDest(kind Kind) interface{} {
	switch kind {
	case KindInt:
		return new(sql.NullInt64)
	case KindFloat:
		return new(sql.NullFloat64)
	case KindDate, KindDateTime:
		return new(sql.NullTime)
	default:
		return new(sql.NullString)
	}
}

// scannedValue turns a scanned destination into its JSON value.
func scannedValue(kind Kind, dest interface{}) interface{} {
	switch d := dest.(type) {
	case *sql.NullInt64:
		if d.Valid {
			return d.Int64
		}
	case *sql.NullFloat64:
		if d.Valid {
			return d.Float64
		}
	case *sql.NullTime:
		if d.Valid {
			if kind == KindDate {
				return d.Time.Format(dateLayout)
			}
			return d.Time.Format(dateTimeLayout)
		}
	case *sql.NullString:
		if d.Valid {
			return d.String
		}
	}
	return nil
}
