package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/filmwiki/internal/pipeline"
)

var (
	outputPath  string
	indent      bool
	geoProvider string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract records from a raw snapshot",
	Long: `Extract reads a snapshot written by fetch and writes one record per page
to a JSON document keyed "0", "1", ... in snapshot order. No network
requests are made unless the llm geo provider is selected.

Example:
  filmwiki extract
  filmwiki extract --snapshot data/raw_movies.json --output data/films2018.json --indent`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	addSnapshotFlag(extractCmd)
	addExtractFlags(extractCmd)
}

func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputPath, "output", "", "records output path (default from config: data/films2018.json)")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the records document")
	cmd.Flags().StringVar(&geoProvider, "geo", "", "location recognizer: gazetteer or llm (default from config)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, newLogger(cfg.Output.Verbose))
	if err != nil {
		return err
	}

	_, records, err := p.ExtractFile(cfg.Output.SnapshotPath, cfg.Output.RecordsPath)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	p.RenderCoverage(records)
	return nil
}
