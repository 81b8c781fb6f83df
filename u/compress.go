package u

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// implement io.ReadCloser over os.File wrapped with io.Reader.
// io.Closer goes to os.File, io.Reader goes to wrapping reader
type readerWrappedFile struct {
	f     *os.File
	r     io.Reader
	close func()
}

func (rc *readerWrappedFile) Close() error {
	if rc.close != nil {
		rc.close()
	}
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

func wrapInReadCloser(f *os.File, r io.Reader, err error) (io.ReadCloser, error) {
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readerWrappedFile{
		f: f,
		r: r,
	}, nil
}

// ErrNoCompressor is returned when we can read but not write a compression format
var ErrNoCompressor = errors.New("compression not supported for writing")

// CompressionFromPath returns compression implied by file extension:
// "gz", "bz2", "zstd", "br" or "" for uncompressed
func CompressionFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz":
		return "gz"
	case ".bz2":
		return "bz2"
	case ".zst", ".zstd":
		return "zstd"
	case ".br":
		return "br"
	}
	return ""
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip
// or bzip2 or zstd or brotli, based on file extension
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch CompressionFromPath(path) {
	case "gz":
		r, err := gzip.NewReader(f)
		return wrapInReadCloser(f, r, err)
	case "bz2":
		return wrapInReadCloser(f, bzip2.NewReader(f), nil)
	case "zstd":
		r, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r, close: r.Close}, nil
	case "br":
		return wrapInReadCloser(f, brotli.NewReader(f), nil)
	}
	return f, nil
}

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// compressFile streams src through a compressing writer created by newWriter
// dst is removed on failure
func compressFile(dst string, src string, newWriter func(w io.Writer) (io.WriteCloser, error)) error {
	fSrc, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fSrc.Close()
	fDst, err := os.Create(dst)
	if err != nil {
		return err
	}
	w, err := newWriter(fDst)
	if err != nil {
		fDst.Close()
		os.Remove(dst)
		return err
	}
	_, err = io.Copy(w, fSrc)
	err2 := w.Close()
	err3 := fDst.Close()

	err = getErr(err, err2, err3)
	if err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// GzipFile compresses src with gzip and saves as dst
func GzipFile(dst, src string) error {
	return compressFile(dst, src, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	})
}

func ZstdCompressFile(dst string, src string) error {
	return compressFile(dst, src, func(w io.Writer) (io.WriteCloser, error) {
		// zstd.SpeedBestCompression is much slower and not much better
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
}

func BrCompressFile(dst string, src string, level int) error {
	return compressFile(dst, src, func(w io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriterLevel(w, level), nil
	})
}

// CompressFile compresses src into dst using compression implied by
// dst extension. Extension that OpenFileMaybeCompressed reads as plain
// means a plain copy. bzip2 can only be read
func CompressFile(dst string, src string) error {
	switch c := CompressionFromPath(dst); c {
	case "":
		return CopyFile(dst, src)
	case "gz":
		return GzipFile(dst, src)
	case "zstd":
		return ZstdCompressFile(dst, src)
	case "br":
		return BrCompressFile(dst, src, brotli.BestCompression)
	default:
		return fmt.Errorf("%s: %w", c, ErrNoCompressor)
	}
}
