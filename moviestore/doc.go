// Package moviestore persists a list of movies in a flat text file.
//
// # File Format
//
// One movie per line, four fields separated by ':'
//
//	<code>:<name>:<category>:<price>
//
// Price is a decimal number. Lines written by other tools with "\r\n"
// line endings or prices like "100.0" or "1.0E7" are accepted.
//
// # Basic Usage
//
//	s := &moviestore.Store{Path: "./data/movies.txt"}
//	err := moviestore.OpenStore(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := movie.New("tt0078748", "Alien", "horror", decimal.RequireFromString("9.99"))
//	err = s.Append(m)
//
//	for _, m := range s.LoadAll() {
//	    // ...
//	}
//
// Append is append-only. LoadAll re-reads the whole file, lines that can't
// be parsed are logged and skipped.
//
// Update and Delete rewrite the whole file atomically, keyed by movie code.
// Lines that can't be parsed are preserved as is.
//
// # Thread Safety
//
// Store is not safe for concurrent use and there's no locking between
// processes writing to the same file.
package moviestore
