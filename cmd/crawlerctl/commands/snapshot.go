package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/quietpath/crawlerctl/pkg/crawler"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statsCmd = &cobra.Command{
	Use:   "stats <snapshot-file>",
	Short: "Print the counters recorded in a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := readSnapshotSummary(args[0])
		if err != nil {
			return err
		}
		s := summary.Stats
		fmt.Printf("processed:   %s\n", humanize.Comma(s.Processed))
		fmt.Printf("remaining:   %s\n", humanize.Comma(s.Remaining))
		fmt.Printf("success:     %s\n", humanize.Comma(s.ResponseSuccess))
		fmt.Printf("redirects:   %s\n", humanize.Comma(s.RequestRedirect))
		fmt.Printf("non-html:    %s\n", humanize.Comma(s.NonHtmlResponse))
		fmt.Printf("http errors: %s\n", humanize.Comma(s.ResponseError))
		fmt.Printf("net errors:  %s\n", humanize.Comma(s.NetworkError))
		fmt.Printf("timeouts:    %s\n", humanize.Comma(s.PageLoadTimeout))
		fmt.Printf("filtered:    %s duplicate, %s offsite, %s depth\n",
			humanize.Comma(s.FilteredDuplicate), humanize.Comma(s.FilteredOffsite), humanize.Comma(s.FilteredDepthExceeded))
		fmt.Printf("elapsed:     %s\n", summary.Elapsed.Round(time.Second))
		return nil
	},
}

// describeYAML is the human-readable rendering of a snapshot summary,
// shaped for yaml.v3 rather than mirroring crawler.SnapshotSummary's
// internal field layout.
type describeYAML struct {
	Strategy      string   `yaml:"strategy"`
	MaxCrawlDepth int      `yaml:"max_crawl_depth"`
	AllowedDomains []string `yaml:"allowed_domains,omitempty"`
	Pending       int      `yaml:"pending_candidates"`
	ElapsedSecs   float64  `yaml:"elapsed_seconds"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <snapshot-file>",
	Short: "Dump a snapshot's configuration as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := readSnapshotSummary(args[0])
		if err != nil {
			return err
		}
		domains := make([]string, 0, len(summary.Configuration.AllowedCrawlDomains))
		for _, d := range summary.Configuration.AllowedCrawlDomains {
			domains = append(domains, d.String())
		}
		out := describeYAML{
			Strategy:       string(summary.Configuration.Strategy),
			MaxCrawlDepth:  summary.Configuration.MaxCrawlDepth,
			AllowedDomains: domains,
			Pending:        summary.PendingCount,
			ElapsedSecs:    summary.Elapsed.Seconds(),
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, describeCmd)
}

func readSnapshotSummary(path string) (crawler.SnapshotSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return crawler.SnapshotSummary{}, err
	}
	defer f.Close()
	return crawler.ReadSnapshotSummary(f)
}
