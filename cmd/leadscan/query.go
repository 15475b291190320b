package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/FranksOps/leadscan/internal/storage"
	"github.com/FranksOps/leadscan/internal/storage/csvbackend"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type queryOptions struct {
	filter storage.Filter
	format string
}

func newQueryCmd(v *viper.Viper) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print stored records from the configured backend",
		Long: `query reads records back from the output backend, newest run first and
in input order within a run. The csv backend keeps only the four output
columns, so --run-id never matches there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			backend, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			records, err := backend.Query(cmd.Context(), opts.filter)
			if err != nil {
				return err
			}
			return writeRecords(cmd.OutOrStdout(), opts.format, records)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.filter.RunID, "run-id", "", "only records of this run")
	f.StringVar(&opts.filter.Domain, "domain", "", "only records for this domain")
	f.StringVar(&opts.filter.Status, "status", "", `only records with this status, e.g. "Dead" or "Error 404"`)
	f.BoolVar(&opts.filter.OKOnly, "ok", false, "only records fetched with status 200")
	f.IntVar(&opts.filter.Limit, "limit", 0, "maximum number of records (0: all)")
	f.IntVar(&opts.filter.Offset, "offset", 0, "records to skip")
	f.StringVar(&opts.format, "format", "csv", "output format: csv or json")
	return cmd
}

func writeRecords(w io.Writer, format string, records []*storage.Record) error {
	switch format {
	case "csv":
		return csvbackend.Write(w, records)
	case "json":
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (want csv or json)", format)
}
