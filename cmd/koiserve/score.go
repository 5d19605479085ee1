package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"koiserve/internal/common/fsutil"
	"koiserve/internal/config"
	"koiserve/internal/scoring"
)

// serveOnly flags are registered on score for a shared config surface but
// hidden from its help.
var serveOnly = []string{"addr", "max-body-bytes", "predict-timeout", "cors", "cors-origins"}

func newScoreCmd(cfgPath *string) *cobra.Command {
	var where, format string
	cmd := &cobra.Command{
		Use:   "score [FILE|-]",
		Short: "Append a prediction column to every row of a CSV file",
		Example: "  koiserve score --model kepler_model_all_data.json koi.csv\n" +
			"  koiserve score --where 'koi_model_snr > 10' --format csv - < koi.csv",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}
			cfg, err := config.Resolve(*cfgPath, cmd.Flags())
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				path, err := fsutil.ExpandHome(args[0])
				if err != nil {
					return err
				}
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			b, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := b.ScoreCSV(cmd.Context(), in, where)
			if err != nil {
				return err
			}
			log.Info().Int("rows", len(res.Rows)).Msg("scored")
			return writeScore(cmd.OutOrStdout(), format, res.Columns, res.Rows)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&where, "where", "", "CEL filter over KOI columns, e.g. 'koi_model_snr > 10'")
	fs.StringVar(&format, "format", "json", "output format: json or csv")
	config.RegisterFlags(fs)
	for _, name := range serveOnly {
		_ = fs.MarkHidden(name)
	}
	return cmd
}

func writeScore(w io.Writer, format string, cols []string, rows []map[string]any) error {
	if format == "csv" {
		return scoring.WriteCSV(w, cols, rows)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
