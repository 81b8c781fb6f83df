package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kjk/movies/movie"
)

func fmtPrice(m *movie.Movie) (price, tax, final string) {
	return m.Price.StringFixed(2), m.Tax().StringFixed(2), m.FinalPrice().StringFixed(2)
}

// renderMoviesTable renders movies with prices right-aligned and
// a footer with count and total final price
func renderMoviesTable(movies []movie.Movie) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Code", "Name", "Category", "Price", "Tax", "Final"})

	var total movie.Movie
	for i := range movies {
		m := &movies[i]
		price, tax, final := fmtPrice(m)
		tw.AppendRow(table.Row{m.Code, m.Name, m.Category, price, tax, final})
		total.Price = total.Price.Add(m.Price)
	}
	price, tax, final := fmtPrice(&total)
	tw.AppendFooter(table.Row{len(movies), "", "", price, tax, final})

	var columnConfigs []table.ColumnConfig
	for i := 4; i <= 6; i++ {
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)
	return tw.Render()
}
