package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/filmwiki/internal/model"
	"github.com/ppiankov/filmwiki/internal/pipeline"
	"github.com/ppiankov/filmwiki/internal/worker"
)

var (
	category     string
	snapshotPath string
	titlesFile   string
	workers      int
	noCache      bool
	timeout      time.Duration
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch every page of a category into a raw snapshot",
	Long: `Fetch lists the members of a Wikipedia category and downloads each page's
wikitext and infobox into a snapshot file. If the snapshot already exists
nothing is fetched.

Example:
  filmwiki fetch
  filmwiki fetch --category "Category:2019 films" --snapshot data/raw_2019.json
  filmwiki fetch --titles titles.txt --snapshot data/picked.json`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&category, "category", "", "category to list (default from config: Category:2018 films)")
	fetchCmd.Flags().StringVar(&titlesFile, "titles", "", "fetch titles from a file (one per line) instead of listing a category")
	addSnapshotFlag(fetchCmd)
	addFetchFlags(fetchCmd)
}

func addSnapshotFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "raw snapshot path (default from config: data/raw_movies.json)")
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent page fetches (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response cache (force fresh fetch)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall timeout")
}

// resolveConfig loads the configuration and applies flags set on cmd
func resolveConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("category") {
		cfg.Category.Name = category
	}
	if flags.Changed("snapshot") {
		cfg.Output.SnapshotPath = snapshotPath
	}
	if flags.Changed("output") {
		cfg.Output.RecordsPath = outputPath
	}
	if flags.Changed("indent") {
		cfg.Output.Indent = indent
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("mongo-uri") {
		cfg.Output.MongoURI = mongoURI
	}
	if flags.Changed("geo") {
		cfg.Geo.Provider = geoProvider
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// commandContext is canceled on SIGINT/SIGTERM or after timeout
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	var res *pipeline.FetchResult
	if titlesFile != "" {
		titles, err := worker.ReadTitlesFromFile(titlesFile)
		if err != nil {
			return fmt.Errorf("read titles: %w", err)
		}
		res, err = p.FetchTitles(ctx, titlesFile, titles, cfg.Output.SnapshotPath)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
	} else {
		res, err = p.Fetch(ctx, cfg.Category.Name, cfg.Output.SnapshotPath)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
	}

	p.RenderFetch(cfg.Output.SnapshotPath, res)
	return nil
}
