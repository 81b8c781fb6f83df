// Command movies manages a movie list stored in a flat text file.
//
//	movies add tt0078748 Alien horror 9.99
//	movies list
//	movies list --json
//	movies show tt0078748
//	movies update tt0078748 Alien sf 7.99
//	movies delete tt0078748
//	movies backup movies.txt.zst
//	movies list --from ~/.local/share/movies/backups/movies.txt.zst
//
// Settings are read from ~/.config/movies/config.toml (see `movies config`).
// --file or MOVIES_FILE override location of the data file.
package main
