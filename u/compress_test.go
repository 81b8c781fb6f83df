package u

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

func testCompressRoundtrip(t *testing.T, ext string) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movies.txt")
	d := []byte(strings.Repeat("tt01:Alien:horror:5.5\n", 100))
	assert.NoError(t, os.WriteFile(src, d, 0644))

	dst := filepath.Join(dir, "backup.txt"+ext)
	assert.NoError(t, CompressFile(dst, src))
	assert.True(t, FileExists(dst))
	if ext != "" {
		assert.True(t, FileSize(dst) < int64(len(d)), "ext: %s, size: %d", ext, FileSize(dst))
	}

	r, err := OpenFileMaybeCompressed(dst)
	assert.NoError(t, err)
	defer CloseNoError(r)
	d2, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, string(d), string(d2))
}

func TestCompress(t *testing.T) {
	for _, ext := range []string{"", ".gz", ".zst", ".br"} {
		testCompressRoundtrip(t, ext)
	}
}

func TestCompressionFromPath(t *testing.T) {
	tests := []string{
		"a.txt", "",
		"a.GZ", "gz",
		"a.txt.bz2", "bz2",
		"a.zst", "zstd",
		"a.zstd", "zstd",
		"a.br", "br",
	}
	for i := 0; i < len(tests); i += 2 {
		assert.Equal(t, tests[i+1], CompressionFromPath(tests[i]))
	}
}

func TestCompressMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "backup.zst")
	err := CompressFile(dst, filepath.Join(dir, "nope.txt"))
	assert.Error(t, err)
	assert.False(t, FileExists(dst))
	assert.Equal(t, int64(-1), FileSize(dst))
}

func TestCompressBzip2NotSupported(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movies.txt")
	assert.NoError(t, os.WriteFile(src, []byte("tt01:Alien:horror:5\n"), 0644))
	dst := filepath.Join(dir, "backup.txt.bz2")
	err := CompressFile(dst, src)
	assert.True(t, errors.Is(err, ErrNoCompressor), "got: %v", err)
	assert.False(t, FileExists(dst))
}
