// Package series normalizes raw statement and price payloads into
// date-sorted, typed collections.
package series

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/tidwall/gjson"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

const profileIndustryPath = "fundamentals.profile.data"

// FieldError reports a record whose required field is missing or cannot be coerced.
type FieldError struct {
	Series string
	Index  int
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s record %d: field %q %s", e.Series, e.Index, e.Field, e.Reason)
}

// Industry extracts fundamentals.profile.data[0].industry from a profile
// payload. Any missing step, type mismatch or non-string value yields false.
func Industry(raw []byte) (string, bool) {
	data := records(raw, profileIndustryPath)
	if len(data) == 0 || !data[0].IsObject() {
		return "", false
	}
	v := data[0].Get("industry")
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// records returns the array at path. Anything other than an array along the
// way resolves to an empty list.
func records(raw []byte, path string) []gjson.Result {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil
	}
	cur := root
	for _, key := range strings.Split(path, ".") {
		if !cur.IsObject() {
			return nil
		}
		cur = cur.Get(gjsonEscape(key))
		if !cur.Exists() {
			return nil
		}
	}
	if !cur.IsArray() {
		return nil
	}
	return cur.Array()
}

func gjsonEscape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type fieldReader struct {
	series string
	index  int
	item   gjson.Result
}

func (r fieldReader) fail(field, reason string) error {
	return &FieldError{Series: r.series, Index: r.index, Field: field, Reason: reason}
}

func (r fieldReader) value(field string) gjson.Result {
	if !r.item.IsObject() {
		return gjson.Result{}
	}
	return r.item.Get(gjsonEscape(field))
}

func (r fieldReader) requiredString(field string) (string, error) {
	v := r.value(field)
	if !v.Exists() || v.Type == gjson.Null {
		return "", r.fail(field, "is required")
	}
	if v.Type != gjson.String {
		return "", r.fail(field, "must be a string")
	}
	return v.Str, nil
}

func (r fieldReader) requiredDate(field string) (time.Time, error) {
	s, err := r.requiredString(field)
	if err != nil {
		return time.Time{}, err
	}
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, r.fail(field, "is not a date")
}

func (r fieldReader) requiredInt(field string) (int, error) {
	v := r.value(field)
	switch v.Type {
	case gjson.Number:
		if v.Num != float64(int(v.Num)) {
			return 0, r.fail(field, "is not an integer")
		}
		return int(v.Num), nil
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, r.fail(field, "is not an integer")
		}
		return n, nil
	case gjson.Null:
		return 0, r.fail(field, "is required")
	default:
		return 0, r.fail(field, "is not an integer")
	}
}

// optionalFloat coerces numbers and numeric strings; absent and null become null.
func (r fieldReader) optionalFloat(field string) (null.Float, error) {
	v := r.value(field)
	switch v.Type {
	case gjson.Null:
		return null.Float{}, nil
	case gjson.Number:
		return null.FloatFrom(v.Num), nil
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return null.Float{}, r.fail(field, "is not a number")
		}
		return null.FloatFrom(n), nil
	default:
		return null.Float{}, r.fail(field, "is not a number")
	}
}
