package moviestore

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
	"github.com/kjk/movies/log"
	"github.com/kjk/movies/movie"
	"github.com/kjk/movies/u"
	"github.com/shopspring/decimal"
)

var (
	f   = fmt.Sprintf
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func genRandomText(n int) string {
	letters := []byte("abcdefghijklmnopqrstuvwxyz ")
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

func genRandomMovies(n int) []*movie.Movie {
	res := make([]*movie.Movie, n)
	for i := 0; i < n; i++ {
		price := decimal.New(rng.Int63n(100000), -2)
		res[i] = movie.New(f("tt%05d", i), genRandomText(1+rng.Intn(40)), genRandomText(rng.Intn(10)), price)
	}
	return res
}

// captureErrors collects messages logged with log.Errorf until the test ends
func captureErrors(t *testing.T) *[]string {
	var logged []string
	log.Init(&log.Config{
		OnLog: func(s string) {
			logged = append(logged, s)
		},
	})
	prev := log.ErrorsOut
	log.ErrorsOut = io.Discard
	t.Cleanup(func() {
		log.ErrorsOut = prev
		log.Close()
	})
	return &logged
}

func createStore(t *testing.T) *Store {
	s := &Store{
		Path: filepath.Join(t.TempDir(), "data", "movies.txt"),
	}
	err := OpenStore(s)
	assert.NoError(t, err)
	return s
}

func verifyMovie(t *testing.T, i int, exp *movie.Movie, got *movie.Movie) {
	assert.True(t, exp.Equal(got), f("movie %d: expected '%s', got '%s'", i, exp, got))
}

func TestOpenStore(t *testing.T) {
	err := OpenStore(&Store{})
	assert.Error(t, err)

	s := createStore(t)
	assert.True(t, filepath.IsAbs(s.Path))
	st, err := os.Stat(filepath.Dir(s.Path))
	assert.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestRoundtrip(t *testing.T) {
	s := createStore(t)
	m := movie.New("tt0078748", "Alien", "horror", decimal.RequireFromString("9.99"))
	assert.NoError(t, s.Append(m))

	d, err := os.ReadFile(s.Path)
	assert.NoError(t, err)
	assert.Equal(t, "tt0078748:Alien:horror:9.99\n", string(d))

	movies := s.LoadAll()
	assert.Equal(t, 1, len(movies))
	verifyMovie(t, 0, m, &movies[0])
}

func TestAppendAccumulates(t *testing.T) {
	s := createStore(t)
	testMovies := genRandomMovies(500)
	for i, m := range testMovies {
		if i == 250 {
			// appending works across re-opening
			assert.NoError(t, OpenStore(s))
		}
		assert.NoError(t, s.Append(m))
	}

	movies := s.LoadAll()
	assert.Equal(t, len(testMovies), len(movies))
	for i, m := range testMovies {
		verifyMovie(t, i, m, &movies[i])
	}
}

func TestAppendInvalid(t *testing.T) {
	logged := captureErrors(t)
	s := createStore(t)

	err := s.Append(movie.New("tt01", "Star Wars: A New Hope", "sf", decimal.Zero))
	assert.True(t, errors.Is(err, movie.ErrDelimiter))
	err = s.Append(movie.New("tt01", "Alien", "horror", decimal.NewFromInt(-3)))
	assert.True(t, errors.Is(err, movie.ErrNegativePrice))
	assert.Equal(t, 2, len(*logged))

	// nothing was written
	_, err = os.Stat(s.Path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, len(s.Movies()))
}

func TestAppendWriteError(t *testing.T) {
	logged := captureErrors(t)
	// a directory can't be opened for writing
	s := &Store{Path: t.TempDir()}
	assert.NoError(t, OpenStore(s))
	err := s.Append(movie.New("tt01", "Alien", "horror", decimal.Zero))
	assert.Error(t, err)
	assert.Equal(t, 1, len(*logged))
	assert.Equal(t, 0, len(s.Movies()))
}

func TestMalformedLines(t *testing.T) {
	logged := captureErrors(t)
	s := createStore(t)
	lines := []string{
		"tt01:Alien:horror:9.99",
		"tt02:Heat:crime",
		"",
		"tt03:Up:animation:cheap",
		"tt04:Ran:drama:12.0\r",
		"tt05:Jaws:horror:-1",
		"tt06:Big:comedy:1.5E1",
		"a:b:c:d:5",
	}
	d := strings.Join(lines, "\n") + "\n"
	assert.NoError(t, os.WriteFile(s.Path, []byte(d), 0644))

	movies := s.LoadAll()
	assert.Equal(t, 3, len(movies))
	verifyMovie(t, 0, movie.New("tt01", "Alien", "horror", decimal.RequireFromString("9.99")), &movies[0])
	// a bad price only skips its own line
	verifyMovie(t, 1, movie.New("tt04", "Ran", "drama", decimal.NewFromInt(12)), &movies[1])
	verifyMovie(t, 2, movie.New("tt06", "Big", "comedy", decimal.NewFromInt(15)), &movies[2])
	assert.Equal(t, 4, len(*logged))
	assert.True(t, strings.Contains((*logged)[0], ":2:"), "got: %s", (*logged)[0])
}

func TestMissingFile(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "nope.txt")}
	assert.NoError(t, OpenStore(s))
	movies := s.LoadAll()
	assert.NotNil(t, movies)
	assert.Equal(t, 0, len(movies))

	_, ok := s.Find("tt01")
	assert.False(t, ok)
}

func TestReloadIsIdempotent(t *testing.T) {
	s := createStore(t)
	for _, m := range genRandomMovies(20) {
		assert.NoError(t, s.Append(m))
	}
	movies1 := s.LoadAll()
	movies2 := s.LoadAll()
	assert.Equal(t, 20, len(movies1))
	assert.Equal(t, len(movies1), len(movies2))
	for i := range movies1 {
		verifyMovie(t, i, &movies1[i], &movies2[i])
	}
}

func TestLoadAllReturnsCopy(t *testing.T) {
	s := createStore(t)
	assert.NoError(t, s.Append(movie.New("tt01", "Alien", "horror", decimal.NewFromInt(5))))
	movies := s.LoadAll()
	movies[0].Name = "Aliens"
	_ = append(movies, movie.Movie{Code: "tt02"})

	got := s.Movies()
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "Alien", got[0].Name)
}

func TestFind(t *testing.T) {
	s := createStore(t)
	assert.NoError(t, s.Append(movie.New("tt01", "Alien", "horror", decimal.NewFromInt(5))))
	assert.NoError(t, s.Append(movie.New("tt02", "Heat", "crime", decimal.NewFromInt(6))))
	assert.NoError(t, s.Append(movie.New("tt01", "Alien (director's cut)", "horror", decimal.NewFromInt(7))))

	m, ok := s.Find("tt01")
	assert.True(t, ok)
	assert.Equal(t, "Alien (director's cut)", m.Name)

	_, ok = s.Find("tt03")
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	captureErrors(t)
	s := createStore(t)
	d := "tt01:Alien:horror:5\ngarbage line\ntt02:Heat:crime:6\ntt01:Alien:horror:7\n"
	assert.NoError(t, os.WriteFile(s.Path, []byte(d), 0644))

	m := movie.New("tt01", "Aliens", "action", decimal.RequireFromString("8.5"))
	assert.NoError(t, s.Update("tt01", m))

	got, err := os.ReadFile(s.Path)
	assert.NoError(t, err)
	assert.Equal(t, "tt01:Aliens:action:8.5\ngarbage line\ntt02:Heat:crime:6\n", string(got))

	movies := s.Movies()
	assert.Equal(t, 2, len(movies))
	verifyMovie(t, 0, m, &movies[0])

	err = s.Update("tt99", m)
	assert.Equal(t, ErrNotFound, err)

	err = s.Update("tt01", movie.New("tt01", "a:b", "c", decimal.Zero))
	assert.True(t, errors.Is(err, movie.ErrDelimiter))

	empty := &Store{Path: filepath.Join(t.TempDir(), "nope.txt")}
	assert.NoError(t, OpenStore(empty))
	assert.Equal(t, ErrNotFound, empty.Update("tt01", m))
}

func TestDelete(t *testing.T) {
	s := createStore(t)
	assert.NoError(t, s.Append(movie.New("tt01", "Alien", "horror", decimal.NewFromInt(5))))
	assert.NoError(t, s.Append(movie.New("tt02", "Heat", "crime", decimal.NewFromInt(6))))
	assert.NoError(t, s.Append(movie.New("tt01", "Alien", "horror", decimal.NewFromInt(7))))

	n, err := s.Delete("tt01")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	movies := s.LoadAll()
	assert.Equal(t, 1, len(movies))
	assert.Equal(t, "tt02", movies[0].Code)

	n, err = s.Delete("tt01")
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, 0, n)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(s.Path))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}

func TestBackupAndLoadFile(t *testing.T) {
	s := createStore(t)
	testMovies := genRandomMovies(100)
	for _, m := range testMovies {
		assert.NoError(t, s.Append(m))
	}

	dir := t.TempDir()
	for _, name := range []string{"backup.txt", "backup.txt.zst", "backup.txt.br", "backup.txt.gz"} {
		dst := filepath.Join(dir, "backups", name)
		assert.NoError(t, s.Backup(dst))
		movies, err := LoadFile(dst)
		assert.NoError(t, err)
		assert.Equal(t, len(testMovies), len(movies), "backup: %s", name)
		for i, m := range testMovies {
			verifyMovie(t, i, m, &movies[i])
		}
	}

	_, err := LoadFile(filepath.Join(dir, "nope.zst"))
	assert.Error(t, err)

	empty := &Store{Path: filepath.Join(t.TempDir(), "nope.txt")}
	assert.NoError(t, OpenStore(empty))
	assert.Error(t, empty.Backup(filepath.Join(dir, "empty.zst")))
}

func TestAppendNil(t *testing.T) {
	logged := captureErrors(t)
	s := createStore(t)
	assert.Equal(t, ErrNilMovie, s.Append(nil))
	assert.Equal(t, 1, len(*logged))
	assert.Equal(t, ErrNilMovie, s.Update("tt01", nil))
}

func TestBackupToDataFile(t *testing.T) {
	captureErrors(t)
	s := createStore(t)
	assert.NoError(t, s.Append(movie.New("tt01", "Alien", "horror", decimal.NewFromInt(5))))

	dir := filepath.Dir(s.Path)
	for _, dst := range []string{s.Path, filepath.Join(dir, "..", filepath.Base(dir), "movies.txt")} {
		err := s.Backup(dst)
		assert.True(t, errors.Is(err, ErrSameFile), "dst: %s, got: %v", dst, err)
	}
	assert.Equal(t, 1, len(s.LoadAll()))
}

func TestBackupBzip2(t *testing.T) {
	captureErrors(t)
	s := createStore(t)
	assert.NoError(t, s.Append(movie.New("tt01", "Alien", "horror", decimal.NewFromInt(5))))
	dst := filepath.Join(t.TempDir(), "backup.txt.bz2")
	err := s.Backup(dst)
	assert.True(t, errors.Is(err, u.ErrNoCompressor), "got: %v", err)
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFileCorrupt(t *testing.T) {
	captureErrors(t)
	dir := t.TempDir()
	for _, name := range []string{"backup.txt.zst", "backup.txt.bz2", "backup.txt.gz"} {
		path := filepath.Join(dir, name)
		assert.NoError(t, os.WriteFile(path, []byte("tt01:Alien:horror:5\n"), 0644))
		movies, err := LoadFile(path)
		assert.Error(t, err, "file: %s", name)
		assert.Equal(t, 0, len(movies))
	}
}

func TestLongLine(t *testing.T) {
	logged := captureErrors(t)
	s := createStore(t)
	long := "tt02:" + strings.Repeat("x", 2*maxLineSize) + ":drama:5"
	d := "tt01:Alien:horror:5\n" + long + "\ntt03:Heat:crime:6\n"
	assert.NoError(t, os.WriteFile(s.Path, []byte(d), 0644))

	movies := s.LoadAll()
	assert.Equal(t, 2, len(movies))
	assert.Equal(t, "tt03", movies[1].Code)
	assert.Equal(t, 1, len(*logged))

	// rewrite keeps the long line as is
	n, err := s.Delete("tt01")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := os.ReadFile(s.Path)
	assert.NoError(t, err)
	assert.Equal(t, long+"\ntt03:Heat:crime:6\n", string(got))
}
