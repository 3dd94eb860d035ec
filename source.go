package laxcsv

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// maxLineSize bounds a single physical line. 1 MiB covers even very
// wide machine-generated rows.
const maxLineSize = 1 << 20

// LineSource supplies physical lines of text to a Reader. HasNext must
// be checked before NextLine; calling NextLine on an exhausted source
// returns io.EOF. Implementations are consumed by a single Reader and
// need no internal locking of their own.
type LineSource interface {
	HasNext() bool
	NextLine() (string, error)
}

// scanSource adapts a bufio.Scanner into a LineSource with one line of
// lookahead so HasNext is accurate without consuming input.
type scanSource struct {
	sc      *bufio.Scanner
	pending string
	ready   bool
	done    bool
	err     error
}

func newScanSource(r io.Reader) *scanSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &scanSource{sc: sc}
}

func (s *scanSource) prime() {
	if s.ready || s.done {
		return
	}
	if s.sc.Scan() {
		s.pending = s.sc.Text()
		s.ready = true
		return
	}
	s.err = s.sc.Err()
	s.done = true
}

func (s *scanSource) HasNext() bool {
	s.prime()
	return s.ready
}

func (s *scanSource) NextLine() (string, error) {
	s.prime()
	if !s.ready {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	line := s.pending
	s.pending = ""
	s.ready = false
	return line, nil
}

// NewReader wraps an existing stream, assumed UTF-8, panicking if r is
// nil. The stream stays owned by the caller; Close will not touch it.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("laxcsv: reader source cannot be nil")
	}
	return newReader(newScanSource(r), nil)
}

// NewReaderEncoding wraps an existing stream that carries text in the
// given encoding, decoding it to UTF-8 on the fly. When takeOwnership
// is set and r is an io.Closer, the reader closes it on Close;
// otherwise the caller keeps ownership.
func NewReaderEncoding(r io.Reader, enc encoding.Encoding, takeOwnership bool) (*Reader, error) {
	if r == nil {
		panic("laxcsv: reader source cannot be nil")
	}
	if enc == nil {
		return nil, ErrNilEncoding
	}
	var closer io.Closer
	if takeOwnership {
		if c, ok := r.(io.Closer); ok {
			closer = c
		}
	}
	decoded := transform.NewReader(r, enc.NewDecoder())
	return newReader(newScanSource(decoded), closer), nil
}

// NewSourceReader builds a Reader over a custom line source, such as a
// live file tail. It panics if src is nil.
func NewSourceReader(src LineSource) *Reader {
	if src == nil {
		panic("laxcsv: line source cannot be nil")
	}
	return newReader(src, nil)
}

// Open opens the file at path for reading as UTF-8 text. The returned
// reader owns the file and releases it on Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("laxcsv: open %s: %w", path, err)
	}
	return newReader(newScanSource(f), f), nil
}

// OpenEncoding opens the file at path, decoding its content from the
// given encoding. The returned reader owns the file.
func OpenEncoding(path string, enc encoding.Encoding) (*Reader, error) {
	if enc == nil {
		return nil, ErrNilEncoding
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("laxcsv: open %s: %w", path, err)
	}
	decoded := transform.NewReader(f, enc.NewDecoder())
	return newReader(newScanSource(decoded), f), nil
}
