package laxcsv

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/laxcsv/laxcsv/coerce"
)

var (
	// ErrEndOfInput is returned when a read operation is attempted after the line source is exhausted.
	ErrEndOfInput = errors.New("laxcsv: no more input")
	// ErrHeaderNotFirst is returned when ReadHeader is called after any line has already been consumed.
	ErrHeaderNotFirst = errors.New("laxcsv: header must be the first read operation")
	// ErrNoHeader is returned by record reads that require a header; call ReadHeader first.
	ErrNoHeader = errors.New("laxcsv: no header captured, call ReadHeader first")
	// ErrNilMap is returned when a required field map is nil.
	ErrNilMap = errors.New("laxcsv: field map cannot be nil")
	// ErrNilTarget is returned when a required target instance is nil.
	ErrNilTarget = errors.New("laxcsv: target cannot be nil")
	// ErrBadTarget is returned when a typed read target is not a non-nil pointer to a struct.
	ErrBadTarget = errors.New("laxcsv: target must be a non-nil pointer to a struct")
	// ErrNilEncoding is returned when a constructor requiring an explicit encoding receives nil.
	ErrNilEncoding = errors.New("laxcsv: encoding cannot be nil")
)

// FieldMap maps header names to target field names for typed reads.
type FieldMap map[string]string

// Record is the loosely-typed result of an untyped record read, keyed
// by header name. Iteration order is not defined for Go maps; the
// canonical column order is the slice returned by Reader.Header.
type Record map[string]string

// Reader reads delimited records line by line from a LineSource. It is
// safe for use from multiple goroutines: every operation, including the
// separator and quote setters, serializes on one internal lock.
type Reader struct {
	mu     sync.Mutex
	src    LineSource
	closer io.Closer // nil when the underlying stream is externally owned

	sep   byte
	quote byte

	header    []string
	identity  FieldMap // header name -> itself, derived once by ReadHeader
	readCount int
}

func newReader(src LineSource, closer io.Closer) *Reader {
	return &Reader{
		src:    src,
		closer: closer,
		sep:    ',',
		quote:  '"',
	}
}

// Separator returns the current field separator byte.
func (r *Reader) Separator() byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sep
}

// SetSeparator changes the field separator. The change applies to the
// next parse; it is the caller's job to keep it distinct from the quote.
func (r *Reader) SetSeparator(c byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sep = c
}

// Quote returns the current quote byte.
func (r *Reader) Quote() byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quote
}

// SetQuote changes the quote byte, effective on the next parse.
func (r *Reader) SetQuote(c byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quote = c
}

// ReadCount reports how many lines have been consumed by counting
// operations (ReadHeader, ReadLine, and the record reads; SkipLine is
// deliberately exempt).
func (r *Reader) ReadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readCount
}

// AtEnd reports whether the line source has no more lines.
func (r *Reader) AtEnd() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.src.HasNext()
}

// Header returns a copy of the captured header row, or nil when no
// header has been read.
func (r *Reader) Header() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		return nil
	}
	return append([]string(nil), r.header...)
}

// DefaultFieldMap returns a copy of the identity map derived from the
// header (each header name mapping to itself), or nil before ReadHeader.
func (r *Reader) DefaultFieldMap() FieldMap {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.identity == nil {
		return nil
	}
	m := make(FieldMap, len(r.identity))
	for k, v := range r.identity {
		m[k] = v
	}
	return m
}

// ReadHeader consumes and parses the first line as the header row and
// derives the default identity field map from it. It is only valid as
// the very first read operation on the reader.
func (r *Reader) ReadHeader() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readCount != 0 {
		return nil, ErrHeaderNotFirst
	}
	fields, err := r.nextParsed()
	if err != nil {
		return nil, err
	}
	r.header = fields
	r.identity = make(FieldMap, len(fields))
	for _, h := range fields {
		r.identity[h] = h
	}
	return append([]string(nil), fields...), nil
}

// ReadLine consumes one line and returns its parsed fields.
func (r *Reader) ReadLine() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextParsed()
}

// SkipLine consumes and discards one line without parsing it. Unlike
// every other consuming operation it does not advance ReadCount.
func (r *Reader) SkipLine() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.nextLine()
	return err
}

// ReadRecord consumes one line and returns it as a Record keyed by
// header name. The map argument is required even though its target
// names are not consulted here; rows shorter than the header simply
// populate fewer keys.
func (r *Reader) ReadRecord(m FieldMap) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readRecord(m)
}

// ReadRecordDefault is ReadRecord using the default identity field map.
func (r *Reader) ReadRecordDefault() (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readRecord(r.identity)
}

func (r *Reader) readRecord(m FieldMap) (Record, error) {
	if r.header == nil {
		return nil, ErrNoHeader
	}
	if m == nil {
		return nil, ErrNilMap
	}
	values, err := r.nextParsed()
	if err != nil {
		return nil, err
	}
	rec := make(Record, len(r.header))
	for i, h := range r.header {
		if i >= len(values) {
			break
		}
		rec[h] = values[i]
	}
	return rec, nil
}

// ReadInto consumes one line and assigns its fields into target, an
// existing struct passed by pointer. For each header column, the field
// map resolves the struct field name; columns absent from the map, or
// mapped to a blank name, are skipped. Field values that fail to parse
// into the struct field's type are silently discarded, leaving the
// field at its prior value: one bad cell never aborts the record. Only
// structural misuse (no header, nil arguments, end of input) errors.
func (r *Reader) ReadInto(m FieldMap, target any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readInto(m, target)
}

// ReadIntoDefault is ReadInto using the default identity field map.
func (r *Reader) ReadIntoDefault(target any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readInto(r.identity, target)
}

func (r *Reader) readInto(m FieldMap, target any) error {
	if r.header == nil {
		return ErrNoHeader
	}
	if m == nil {
		return ErrNilMap
	}
	if target == nil {
		return ErrNilTarget
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrBadTarget
	}

	values, err := r.nextParsed()
	if err != nil {
		return err
	}

	elem := rv.Elem()
	fields := coerce.ScalarFields(elem.Type())
	for i, h := range r.header {
		if i >= len(values) {
			break
		}
		name, ok := m[h]
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		f, ok := coerce.Lookup(fields, name)
		if !ok {
			continue
		}
		// Best effort: a failed parse or assignment is dropped.
		coerce.Assign(elem, f, values[i])
	}
	return nil
}

// ReadObject consumes one line and returns it as a freshly allocated T,
// populated through m with the same best-effort semantics as ReadInto.
func ReadObject[T any](r *Reader, m FieldMap) (T, error) {
	var v T
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.readInto(m, &v)
	return v, err
}

// ReadObjectDefault is ReadObject using the default identity field map.
func ReadObjectDefault[T any](r *Reader) (T, error) {
	var v T
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.readInto(r.identity, &v)
	return v, err
}

// Close releases the underlying stream when the reader owns it; it is a
// no-op for externally owned streams and for repeated calls.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// nextParsed consumes one line, counts it, and parses it. Callers hold r.mu.
func (r *Reader) nextParsed() ([]string, error) {
	line, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	r.readCount++
	return ParseLine(line, r.quote, r.sep), nil
}

// nextLine consumes one raw line without counting it. Callers hold r.mu.
func (r *Reader) nextLine() (string, error) {
	if !r.src.HasNext() {
		return "", ErrEndOfInput
	}
	line, err := r.src.NextLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrEndOfInput
		}
		return "", fmt.Errorf("laxcsv: read line: %w", err)
	}
	return line, nil
}
