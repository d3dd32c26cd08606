// Package jsonr reads typed fields out of untrusted JSON values without
// ever panicking. Failures accumulate on the Reader: the first one is
// recorded, later operations still run and hand back placeholders, and the
// caller checks Ok once at the end.
package jsonr

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Reader holds the sticky failure state for one decode call. Not safe for
// concurrent use; give every goroutine its own Reader.
type Reader struct {
	err error
}

// Ok reports whether no failure has been recorded yet.
func (r *Reader) Ok() bool {
	return r.err == nil
}

// Err returns the first recorded failure, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Fail records a failure. Only the first failure is kept; the reader stays
// failed either way.
func (r *Reader) Fail(message string) {
	if r.err == nil {
		r.err = errors.New(message)
	}
}

func (r *Reader) Failf(format string, args ...any) {
	if r.err == nil {
		r.err = errors.Errorf(format, args...)
	}
}

// SetErr records an error produced outside the reader, keeping the first
// failure as usual.
func (r *Reader) SetErr(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// RequireString returns object's string field name, or records a failure
// and returns "".
func (r *Reader) RequireString(name string, object gjson.Result) string {
	child := object.Get(name)
	if child.Exists() && child.Type == gjson.String {
		return child.Str
	}
	r.Failf("'%s' is missing or is not a string", name)
	return ""
}

// RequireArray returns object's array field name, or records a failure and
// returns an empty slice.
func (r *Reader) RequireArray(name string, object gjson.Result) []gjson.Result {
	child := object.Get(name)
	if child.Exists() && child.IsArray() {
		return child.Array()
	}
	r.Failf("'%s' is missing or is not an array", name)
	return nil
}

// Require returns the named child. When the child is missing the parent
// itself comes back as a placeholder that is safe to keep reading from.
func (r *Reader) Require(name string, object gjson.Result) gjson.Result {
	child := object.Get(name)
	if !child.Exists() {
		r.Failf("Missing child '%s'", name)
		return object
	}
	return child
}

// RequireDouble accepts a native JSON number or a string holding a decimal
// floating-point number.
func (r *Reader) RequireDouble(name string, object gjson.Result) float64 {
	child := object.Get(name)
	if child.Exists() {
		if child.Type == gjson.Number {
			return child.Num
		}
		if child.Type == gjson.String {
			result, err := strconv.ParseFloat(child.Str, 64)
			if err != nil {
				r.Fail("Failed to parse into double: " + child.Str)
				return 0
			}
			return result
		}
	}
	r.Failf("'%s' is missing or is not a double", name)
	return 0
}

// OptionalBool returns true only when the field is present, boolean, and
// true. It never records a failure.
func (r *Reader) OptionalBool(name string, object gjson.Result) bool {
	child := object.Get(name)
	return (child.Type == gjson.True || child.Type == gjson.False) && child.Bool()
}

// Integer covers the integer widths the bundle format uses.
type Integer interface {
	~int32 | ~int64 | ~uint32 | ~uint64
}

// RequireInt accepts a native JSON integer or a base-10 string fitting T.
// A package function because Go methods cannot take type parameters.
func RequireInt[T Integer](r *Reader, name string, object gjson.Result) T {
	child := object.Get(name)
	if child.Exists() {
		raw := ""
		switch child.Type {
		case gjson.Number:
			raw = child.Raw
		case gjson.String:
			raw = child.Str
		}
		if raw != "" {
			result, err := parseInteger[T](raw)
			if err != nil {
				r.Fail("Failed to parse into integer: " + raw)
				return 0
			}
			return result
		}
	}
	r.Failf("'%s' is missing or is not an integer", name)
	return 0
}

func parseInteger[T Integer](s string) (T, error) {
	var zero T
	if isUnsigned(zero) {
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, err
		}
		result := T(u)
		if uint64(result) != u {
			return 0, errors.Errorf("parseInteger error: %s out of range", s)
		}
		return result, nil
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	result := T(i)
	if int64(result) != i {
		return 0, errors.Errorf("parseInteger error: %s out of range", s)
	}
	return result, nil
}

func isUnsigned[T Integer](zero T) bool {
	return zero-1 > zero
}
