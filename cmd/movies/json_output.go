package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

// writeJSON writes v as pretty printed JSON to the command's stdout
func writeJSON(cmd *cobra.Command, v any) error {
	d, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(pretty.Pretty(d))
	return err
}
