package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
)

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

func TestSimulateError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "movies.txt")
	f, err := New(dst)
	assert.NoError(t, err)
	assert.True(t, fileExists(f.tmpPath))
	_, err = f.Write([]byte("tt01:Alien:horror:5\n"))
	assert.NoError(t, err)

	errSimulated := errors.New("simulated")
	f.err = errSimulated
	assert.Equal(t, errSimulated, f.Close())
	assert.False(t, fileExists(f.tmpPath))
	assert.False(t, fileExists(dst))
	// second Close() returns the same error
	assert.Equal(t, errSimulated, f.Close())
}

func TestReplace(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "movies.txt")
	assert.NoError(t, os.WriteFile(dst, []byte("old\n"), 0644))

	f, err := New(dst)
	assert.NoError(t, err)
	_, err = f.WriteString("new\n")
	assert.NoError(t, err)
	// not visible until Close()
	d, _ := os.ReadFile(dst)
	assert.Equal(t, "old\n", string(d))

	assert.NoError(t, f.Close())
	assert.False(t, fileExists(f.tmpPath))
	d, _ = os.ReadFile(dst)
	assert.Equal(t, "new\n", string(d))
	assert.NoError(t, f.Close())
}

func TestRemoveIfNotClosed(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "movies.txt")
	f, err := New(dst)
	assert.NoError(t, err)
	f.RemoveIfNotClosed()
	assert.False(t, fileExists(f.tmpPath))
	_, err = f.Write([]byte("foo"))
	assert.Equal(t, ErrCancelled, err)
	assert.Equal(t, ErrCancelled, f.Close())
	assert.False(t, fileExists(dst))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "movies.txt")
	assert.NoError(t, os.WriteFile(dst, []byte("old\n"), 0644))

	errFail := errors.New("fail")
	err := WriteFile(dst, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errFail
	})
	assert.Equal(t, errFail, err)
	d, _ := os.ReadFile(dst)
	assert.Equal(t, "old\n", string(d))
	entries, _ := os.ReadDir(dir)
	assert.Equal(t, 1, len(entries))

	err = WriteFile(dst, func(w io.Writer) error {
		_, err := io.WriteString(w, "new\n")
		return err
	})
	assert.NoError(t, err)
	d, _ = os.ReadFile(dst)
	assert.Equal(t, "new\n", string(d))
}

func TestMissingDir(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "foo", "bar.txt")
	f, err := New(dst)
	assert.Error(t, err)
	assert.Nil(t, f)
}
