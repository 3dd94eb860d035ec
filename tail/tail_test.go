package tail_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laxcsv/laxcsv"
	"github.com/laxcsv/laxcsv/tail"
)

var _ laxcsv.LineSource = (*tail.Source)(nil)

type lineResult struct {
	line string
	err  error
}

// nextLine pulls one line on a goroutine so a stuck source fails the
// test instead of hanging it.
func nextLine(t *testing.T, src *tail.Source) lineResult {
	t.Helper()
	ch := make(chan lineResult, 1)
	go func() {
		line, err := src.NextLine()
		ch <- lineResult{line: line, err: err}
	}()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatalf("NextLine did not return within 5s")
		return lineResult{}
	}
}

func appendTo(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestFollowReadsExistingAndAppended(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "live.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,widget\n"), 0o644))

	src, err := tail.Follow(path)
	require.NoError(t, err)
	defer src.Close()

	assert.True(t, src.HasNext())
	assert.Equal(t, lineResult{line: "id,name"}, nextLine(t, src))
	assert.Equal(t, lineResult{line: "1,widget"}, nextLine(t, src))

	// Lines written after the follow started arrive too.
	go func() {
		time.Sleep(50 * time.Millisecond)
		appendTo(t, path, "2,gadget\r\n")
	}()
	assert.Equal(t, lineResult{line: "2,gadget"}, nextLine(t, src))
}

func TestFollowAssemblesPartialWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partial.csv")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	src, err := tail.Follow(path)
	require.NoError(t, err)
	defer src.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		appendTo(t, path, "par")
		time.Sleep(50 * time.Millisecond)
		appendTo(t, path, "tial\n")
	}()

	assert.Equal(t, lineResult{line: "partial"}, nextLine(t, src))
}

func TestFollowCloseDrainsAndEnds(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "closing.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\ntrailing-without-newline"), 0o644))

	src, err := tail.Follow(path)
	require.NoError(t, err)

	assert.Equal(t, lineResult{line: "a"}, nextLine(t, src))

	go func() {
		time.Sleep(50 * time.Millisecond)
		src.Close()
	}()

	// The unterminated tail is flushed once, then the source ends.
	assert.Equal(t, lineResult{line: "trailing-without-newline"}, nextLine(t, src))
	res := nextLine(t, src)
	assert.True(t, errors.Is(res.err, io.EOF), "want io.EOF, got %v", res.err)
	assert.False(t, src.HasNext())

	assert.NoError(t, src.Close())
}

func TestFollowMissingFile(t *testing.T) {
	t.Parallel()

	_, err := tail.Follow(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestFollowFeedsReader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nada,36\n"), 0o644))

	src, err := tail.Follow(path)
	require.NoError(t, err)
	defer src.Close()

	r := laxcsv.NewSourceReader(src)
	_, err = r.ReadHeader()
	require.NoError(t, err)

	type row struct {
		Name string `csv:"name"`
		Age  int    `csv:"age"`
	}

	done := make(chan row, 1)
	go func() {
		existing, err := laxcsv.ReadObjectDefault[row](r)
		if err != nil || existing.Name != "ada" {
			t.Errorf("ReadObjectDefault() = %+v, %v, want ada", existing, err)
		}
		appended, err := laxcsv.ReadObjectDefault[row](r)
		if err != nil {
			t.Errorf("ReadObjectDefault() after append error = %v", err)
		}
		done <- appended
	}()

	time.Sleep(50 * time.Millisecond)
	appendTo(t, path, "bob,41\n")

	select {
	case got := <-done:
		assert.Equal(t, row{Name: "bob", Age: 41}, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("reader never saw the appended row")
	}
}
