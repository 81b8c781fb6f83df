package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kjk/movies/movie"
	"github.com/kjk/movies/moviestore"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type movieJSON struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Tax        decimal.Decimal `json:"tax"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
}

func toMovieJSON(m *movie.Movie) movieJSON {
	return movieJSON{
		Code:       m.Code,
		Name:       m.Name,
		Category:   m.Category,
		Price:      m.Price,
		Tax:        m.Tax(),
		FinalPrice: m.FinalPrice(),
	}
}

// movieFromArgs builds a movie from CODE NAME CATEGORY PRICE
func movieFromArgs(args []string) (*movie.Movie, error) {
	price, err := decimal.NewFromString(args[3])
	if err != nil {
		return nil, fmt.Errorf("invalid price '%s'", args[3])
	}
	m := movie.New(args[0], args[1], args[2], price)
	if err = m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func newMovieCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newAddCommand(ctx),
		newListCommand(ctx),
		newShowCommand(ctx),
		newUpdateCommand(ctx),
		newDeleteCommand(ctx),
		newBackupCommand(ctx),
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add CODE NAME CATEGORY PRICE",
		Short: "Append a movie to the list",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := movieFromArgs(args)
			if err != nil {
				return err
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			if err = s.Append(m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", m.Code)
			return nil
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var from string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show all movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var movies []movie.Movie
			if from != "" {
				var err error
				movies, err = moviestore.LoadFile(from)
				if err != nil {
					return err
				}
			} else {
				s, err := ctx.openStore()
				if err != nil {
					return err
				}
				movies = s.LoadAll()
			}
			if jsonOut {
				res := make([]movieJSON, 0, len(movies))
				for i := range movies {
					res = append(res, toMovieJSON(&movies[i]))
				}
				return writeJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMoviesTable(movies))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	cmd.Flags().StringVar(&from, "from", "", "Read movies from a backup file instead of the data file")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show CODE",
		Short: "Show a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			m, ok := s.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: '%s'", moviestore.ErrNotFound, args[0])
			}
			if jsonOut {
				return writeJSON(cmd, toMovieJSON(m))
			}
			price, tax, final := fmtPrice(m)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Code:     %s\n", m.Code)
			fmt.Fprintf(w, "Name:     %s\n", m.Name)
			fmt.Fprintf(w, "Category: %s\n", m.Category)
			fmt.Fprintf(w, "Price:    %s\n", price)
			fmt.Fprintf(w, "Tax:      %s\n", tax)
			fmt.Fprintf(w, "Final:    %s\n", final)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update CODE NAME CATEGORY PRICE",
		Short: "Replace a movie with a given code",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := movieFromArgs(args)
			if err != nil {
				return err
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			err = s.Update(m.Code, m)
			if errors.Is(err, moviestore.ErrNotFound) {
				return fmt.Errorf("%w: '%s'", err, m.Code)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", m.Code)
			return nil
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CODE",
		Short: "Delete all movies with a given code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			n, err := s.Delete(args[0])
			if errors.Is(err, moviestore.ErrNotFound) {
				return fmt.Errorf("%w: '%s'", err, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d movie(s)\n", n)
			return nil
		},
	}
}

func newBackupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [DST]",
		Short: "Save a compressed copy of the movie list (.zst, .br, .gz or plain)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dst := "movies-" + time.Now().Format("20060102-150405") + ".txt.zst"
			if len(args) > 0 {
				dst = args[0]
			}
			if !filepath.IsAbs(dst) && cfg.BackupDir != "" {
				dst = filepath.Join(cfg.BackupDir, dst)
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			if err = s.Backup(dst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved backup to %s\n", dst)
			return nil
		},
	}
}
