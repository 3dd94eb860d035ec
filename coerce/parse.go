package coerce

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// timeLayouts are tried in order for time.Time targets. RFC3339 forms
// first, then the plain date-time and date shapes common in exports.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scalar reports whether t is a recognized scalar target type: bool,
// string, any integer or float kind, time.Time, or time.Duration.
func Scalar(t reflect.Type) bool {
	if t == timeType || t == durationType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Parse converts s into a value of type t. The boolean result reports
// success; on failure the returned value is invalid and must not be
// used. Parse never panics and never returns an error: failure is an
// expected outcome for dirty input.
func Parse(t reflect.Type, s string) (reflect.Value, bool) {
	if t == timeType {
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return reflect.ValueOf(ts), true
			}
		}
		return reflect.Value{}, false
	}
	if t == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(d), true
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, ok := parseBool(s)
		if !ok {
			return reflect.Value{}, false
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		v.SetFloat(n)
	default:
		return reflect.Value{}, false
	}
	return v, true
}

// parseBool accepts strconv.ParseBool forms plus yes/no/on/off.
func parseBool(s string) (value, ok bool) {
	if b, err := strconv.ParseBool(s); err == nil {
		return b, true
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true, true
	case "no", "off":
		return false, true
	}
	return false, false
}

// Assign parses s and stores the result into the field described by f
// on the struct value v. It reports whether the assignment happened;
// parse failures and unsettable fields simply report false.
func Assign(v reflect.Value, f Field, s string) bool {
	parsed, ok := Parse(f.Type, s)
	if !ok {
		return false
	}
	fv := v.Field(f.Index)
	if !fv.CanSet() {
		return false
	}
	fv.Set(parsed)
	return true
}
