package moviestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kjk/movies/atomicfile"
	"github.com/kjk/movies/log"
	"github.com/kjk/movies/movie"
	"github.com/kjk/movies/u"
)

var (
	ErrNotFound = errors.New("movie not found")
	ErrNilMovie = errors.New("movie is nil")
	ErrSameFile = errors.New("backup destination is the data file")
)

type Store struct {
	// path of the data file, made absolute by OpenStore
	Path string

	// result of last LoadAll(), extended by Append()
	movies []movie.Movie
}

// OpenStore validates s.Path and creates its directory.
// The data file is created by the first Append()
func OpenStore(s *Store) error {
	if s.Path == "" {
		return fmt.Errorf("path of data file is not set")
	}
	path, err := filepath.Abs(s.Path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for '%s': %w", s.Path, err)
	}
	s.Path = path
	err = os.MkdirAll(filepath.Dir(s.Path), 0755)
	if err != nil {
		return err
	}
	s.movies = nil
	return nil
}

// Movies returns a copy of movies from the last LoadAll() and
// subsequent Append() calls
func (s *Store) Movies() []movie.Movie {
	return append([]movie.Movie{}, s.movies...)
}

func appendToFileRobust(path string, data []byte) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	_, err = file.Write(data)
	if err != nil {
		file.Close()
		return err
	}
	err = file.Sync()
	if err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Append writes m as a new line at the end of the data file.
// Errors are logged so callers that don't care can ignore them
func (s *Store) Append(m *movie.Movie) error {
	line, err := MarshalLine(m)
	if err != nil {
		log.Errorf("moviestore.Append: invalid movie: %s", err)
		return err
	}
	err = appendToFileRobust(s.Path, []byte(line+"\n"))
	if err != nil {
		log.Errorf("moviestore.Append: failed to write to '%s': %s", s.Path, err)
		return err
	}
	s.movies = append(s.movies, *m)
	log.Event("movie_append", "code", m.Code, "path", s.Path)
	return nil
}

func (s *Store) logBadLine(lineNo int, line string, err error) {
	log.Errorf("moviestore: %s:%d: skipping line: %s", s.Path, lineNo, err)
	log.Event("line_skipped", "path", s.Path, "line", lineNo, "error", err.Error())
}

// LoadAll re-reads all movies from the data file.
// Invalid lines are logged and skipped. If the file can't be read,
// the error is logged and the result is empty.
// The result is a copy, modifying it doesn't affect the store
func (s *Store) LoadAll() []movie.Movie {
	s.movies = nil
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Verbosef("moviestore.LoadAll: '%s' doesn't exist\n", s.Path)
		} else {
			log.Errorf("moviestore.LoadAll: failed to open '%s': %s", s.Path, err)
		}
		return s.Movies()
	}
	defer f.Close()
	s.movies, err = ReadMovies(f, s.logBadLine)
	if err != nil {
		log.Errorf("moviestore.LoadAll: failed to read '%s': %s", s.Path, err)
	}
	return s.Movies()
}

// Find returns the last movie with a given code, after re-reading the file
func (s *Store) Find(code string) (*movie.Movie, bool) {
	movies := s.LoadAll()
	for i := len(movies) - 1; i >= 0; i-- {
		if movies[i].Code == code {
			return &movies[i], true
		}
	}
	return nil, false
}

// rewrite replaces the data file with lines returned by fn.
// fn is called for every line, including invalid ones (with m == nil)
// and returns new line (without newline) and keep == false to drop it
func (s *Store) rewrite(fn func(line string, m *movie.Movie) (newLine string, keep bool)) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	err = forEachLine(f, func(lineNo int, line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		var m *movie.Movie
		if len(line) <= maxLineSize {
			m, _ = ParseLine(line)
		}
		newLine, keep := fn(line, m)
		if keep {
			lines = append(lines, newLine)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", s.Path, err)
	}

	return atomicfile.WriteFile(s.Path, func(w io.Writer) error {
		for _, line := range lines {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update replaces the movie with a given code with m.
// If there are multiple movies with this code, the first is replaced
// and the rest are removed
func (s *Store) Update(code string, m *movie.Movie) error {
	newLine, err := MarshalLine(m)
	if err != nil {
		return err
	}
	found := false
	err = s.rewrite(func(line string, old *movie.Movie) (string, bool) {
		if old == nil || old.Code != code {
			return line, true
		}
		if found {
			return "", false
		}
		found = true
		return newLine, true
	})
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		log.Errorf("moviestore.Update('%s') failed: %s", code, err)
		return err
	}
	if !found {
		return ErrNotFound
	}
	log.Event("movie_update", "code", code, "path", s.Path)
	s.LoadAll()
	return nil
}

// Delete removes all movies with a given code and returns how many were removed
func (s *Store) Delete(code string) (int, error) {
	n := 0
	err := s.rewrite(func(line string, m *movie.Movie) (string, bool) {
		if m != nil && m.Code == code {
			n++
			return "", false
		}
		return line, true
	})
	if os.IsNotExist(err) {
		return 0, ErrNotFound
	}
	if err != nil {
		log.Errorf("moviestore.Delete('%s') failed: %s", code, err)
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	log.Event("movie_delete", "code", code, "count", n, "path", s.Path)
	s.LoadAll()
	return n, nil
}

// isSameFile returns true if dstPath is, or would be, the data file
func (s *Store) isSameFile(dstPath string) bool {
	abs, err := filepath.Abs(dstPath)
	if err == nil && abs == s.Path {
		return true
	}
	st1, err1 := os.Stat(dstPath)
	st2, err2 := os.Stat(s.Path)
	return err1 == nil && err2 == nil && os.SameFile(st1, st2)
}

// Backup saves a copy of the data file to dstPath, compressed
// based on dstPath extension (.zst, .br, .gz, no extension is a plain copy).
// .bz2 and the data file itself are rejected
func (s *Store) Backup(dstPath string) error {
	if !u.FileExists(s.Path) {
		return fmt.Errorf("moviestore.Backup: '%s' doesn't exist", s.Path)
	}
	if s.isSameFile(dstPath) {
		return fmt.Errorf("moviestore.Backup: '%s': %w", dstPath, ErrSameFile)
	}
	err := os.MkdirAll(filepath.Dir(dstPath), 0755)
	if err != nil {
		return err
	}
	err = u.CompressFile(dstPath, s.Path)
	if err != nil {
		log.Errorf("moviestore.Backup: failed to write '%s': %s", dstPath, err)
		return err
	}
	log.Event("backup", "path", s.Path, "dst", dstPath, "size", u.FileSize(dstPath))
	return nil
}

// LoadFile reads movies from a file that might be compressed
// e.g. created by Backup(). Invalid lines are logged and skipped.
// Read and decompression errors are returned
func LoadFile(path string) ([]movie.Movie, error) {
	r, err := u.OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer u.CloseNoError(r)
	onErr := func(lineNo int, line string, err error) {
		log.Errorf("moviestore: %s:%d: skipping line: %s", path, lineNo, err)
	}
	movies, err := ReadMovies(r, onErr)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return movies, nil
}
