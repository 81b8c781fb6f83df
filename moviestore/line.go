package moviestore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kjk/movies/movie"
	"github.com/shopspring/decimal"
)

var (
	ErrFieldCount   = errors.New("line doesn't have 4 fields")
	ErrInvalidPrice = errors.New("invalid price")
	ErrLineTooLong  = errors.New("line too long")
)

// longer lines are skipped by ReadMovies
const maxLineSize = 1024 * 1024

// MarshalLine serializes m as "code:name:category:price", without newline
func MarshalLine(m *movie.Movie) (string, error) {
	if m == nil {
		return "", ErrNilMovie
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	parts := []string{m.Code, m.Name, m.Category, m.Price.String()}
	return strings.Join(parts, movie.Delimiter), nil
}

// splitFields splits on delimiter and drops trailing empty fields,
// so "a:b:c:5:" is 4 fields
func splitFields(line string) []string {
	parts := strings.Split(line, movie.Delimiter)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// ParseLine parses a line created by MarshalLine
func ParseLine(line string) (*movie.Movie, error) {
	line = strings.TrimSuffix(line, "\r")
	parts := splitFields(line)
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: '%s'", ErrFieldCount, line)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidPrice, parts[3])
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: '%s' is negative", ErrInvalidPrice, parts[3])
	}
	return movie.New(parts[0], parts[1], parts[2], price), nil
}

// forEachLine calls fn for every line in r, without the line terminator.
// Lines have no length limit. Returns the first read error other than io.EOF
func forEachLine(r io.Reader, fn func(lineNo int, line string)) error {
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			line = strings.TrimSuffix(line, "\n")
			fn(lineNo, strings.TrimSuffix(line, "\r"))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading line %d: %w", lineNo+1, err)
		}
	}
}

// ReadMovies parses movies from r, one per line.
// Empty lines are ignored. Invalid lines, including lines longer than 1 MB,
// are skipped and reported to onErr (if not nil) with 1-based line number.
// A read error stops reading and is returned with movies read so far
func ReadMovies(r io.Reader, onErr func(lineNo int, line string, err error)) ([]movie.Movie, error) {
	res := []movie.Movie{}
	err := forEachLine(r, func(lineNo int, line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		var m *movie.Movie
		var err error
		if len(line) > maxLineSize {
			err = fmt.Errorf("%w: %d bytes", ErrLineTooLong, len(line))
			line = line[:64] + "..."
		} else {
			m, err = ParseLine(line)
		}
		if err != nil {
			if onErr != nil {
				onErr(lineNo, line, err)
			}
			return
		}
		res = append(res, *m)
	})
	return res, err
}
