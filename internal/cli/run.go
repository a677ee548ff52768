package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/filmwiki/internal/pipeline"
)

var (
	mongoURI   string
	reportPath string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch (if needed), extract and write records in one go",
	Long: `Run performs the whole flow: fetch the category into a snapshot unless
one already exists, extract every page, write the records document,
optionally insert the records into MongoDB and print a coverage summary.

Example:
  filmwiki run
  filmwiki run --category "Category:2019 films" --snapshot data/raw_2019.json --output data/films2019.json
  filmwiki run --mongo-uri mongodb://localhost:27017 --report run.json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&category, "category", "", "category to list (default from config: Category:2018 films)")
	addSnapshotFlag(runCmd)
	addFetchFlags(runCmd)
	addExtractFlags(runCmd)
	runCmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "also insert records into MongoDB at this URI")
	runCmd.Flags().StringVar(&reportPath, "report", "", "write the run report as JSON to this path")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeout)
	defer cancel()

	p, err := pipeline.NewPipeline(cfg, newLogger(cfg.Output.Verbose))
	if err != nil {
		return err
	}

	report, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if reportPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(reportPath, data, 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	p.RenderSummary(report)
	return nil
}
