// Package tail provides a line source over a file that is still being
// written, so a laxcsv.Reader can consume live CSV streams such as
// exported logs. Only complete lines are emitted; a partial tail is
// carried until its terminator arrives or the source is closed.
package tail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollInterval is the fallback wakeup period for filesystems that do
// not deliver change notifications reliably.
const pollInterval = 200 * time.Millisecond

// Source follows a file as it grows. It satisfies the laxcsv.LineSource
// contract: HasNext stays true until the source is closed and drained,
// and NextLine blocks until a full line is available. A Source feeds a
// single consumer; Close may be called from any goroutine.
type Source struct {
	f  *os.File
	rd *bufio.Reader
	w  *fsnotify.Watcher

	partial []byte // bytes of an incomplete trailing line

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Follow opens path and returns a Source positioned at the start of the
// file, so headers written before the follow began are still read.
//
// TODO: reopen the file when it is truncated or rotated; reads keep
// returning end-of-data against the old inode.
func Follow(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tail: open %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tail: create watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		f.Close()
		return nil, fmt.Errorf("tail: watch %s: %w", path, err)
	}
	return &Source{
		f:    f,
		rd:   bufio.NewReader(f),
		w:    w,
		done: make(chan struct{}),
	}, nil
}

// HasNext reports whether more lines can still arrive. It is true until
// Close, and after Close it stays true while buffered data remains.
func (s *Source) HasNext() bool {
	select {
	case <-s.done:
	default:
		return true
	}
	return s.rd.Buffered() > 0 || len(s.partial) > 0
}

// NextLine returns the next complete line, blocking until one is
// written or the source is closed. After Close, any buffered complete
// lines are drained first, then a trailing unterminated line is emitted
// once, and finally io.EOF is returned.
func (s *Source) NextLine() (string, error) {
	for {
		chunk, err := s.rd.ReadString('\n')
		if chunk != "" {
			s.partial = append(s.partial, chunk...)
		}
		if err == nil {
			return s.flushLine(), nil
		}
		if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
			return "", fmt.Errorf("tail: read: %w", err)
		}

		// Caught up with the writer. Wait for growth or shutdown.
		select {
		case <-s.done:
			if len(s.partial) > 0 {
				return s.flushLine(), nil
			}
			return "", io.EOF
		case _, ok := <-s.w.Events:
			if !ok {
				// Watcher shut down; the next read drains what is
				// left and the done branch finishes the source.
				continue
			}
		case _, ok := <-s.w.Errors:
			if !ok {
				continue
			}
		case <-time.After(pollInterval):
		}
	}
}

// Close stops the follow. The consumer's next reads drain buffered data
// and then see io.EOF.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		werr := s.w.Close()
		ferr := s.f.Close()
		if werr != nil {
			s.closeErr = werr
		} else {
			s.closeErr = ferr
		}
	})
	return s.closeErr
}

func (s *Source) flushLine() string {
	line := strings.TrimRight(string(s.partial), "\r\n")
	s.partial = s.partial[:0]
	return line
}
