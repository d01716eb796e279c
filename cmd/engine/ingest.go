package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass and print the summary as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = rt.log.Sync() }()

		js, err := rt.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer js.Close()

		_, runner := rt.pipeline(js, nil)
		sum, err := runner.Run(cmd.Context())

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(sum); encErr != nil {
			return encErr
		}
		return err
	},
}
