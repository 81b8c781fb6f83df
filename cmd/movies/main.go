package main

import (
	"fmt"
	"os"

	"github.com/kjk/movies/log"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	log.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
