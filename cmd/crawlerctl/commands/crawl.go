package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/quietpath/crawlerctl/internal/browser"
	"github.com/quietpath/crawlerctl/internal/probe"
	"github.com/quietpath/crawlerctl/pkg/crawler"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a fresh crawl session from a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCrawlerConfiguration()
		if err != nil {
			return err
		}
		return runSession(cmd.Context(), cfg, nil)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a crawl session from a snapshot file",
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshotPath := viper.GetString("snapshot")
		f, err := os.Open(snapshotPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return runSession(cmd.Context(), crawler.CrawlerConfiguration{}, f)
	},
}

func init() {
	resumeCmd.Flags().String("snapshot", "", "path to a snapshot file written by a prior run")
	_ = viper.BindPFlag("snapshot", resumeCmd.Flags().Lookup("snapshot"))
	startCmd.Flags().String("snapshot-out", "", "path to write a snapshot to on exit")
	_ = viper.BindPFlag("snapshot_out", startCmd.Flags().Lookup("snapshot-out"))
	resumeCmd.Flags().String("snapshot-out", "", "path to write a snapshot to on exit")
	_ = viper.BindPFlag("snapshot_out", resumeCmd.Flags().Lookup("snapshot-out"))

	rootCmd.AddCommand(startCmd, resumeCmd)
}

// runSession wires the browser and probe factories and drives a session to
// completion (or until SIGINT/SIGTERM requests cooperative shutdown),
// optionally resuming from a snapshot.
func runSession(ctx context.Context, cfg crawler.CrawlerConfiguration, resumeFrom *os.File) error {
	browserFactory := browser.NewFactory(browser.DefaultConfig())
	probeFactory := func() (crawler.HttpProbe, error) { return probe.New(probe.DefaultConfig()) }

	var controller *crawler.SessionController
	if resumeFrom != nil {
		controller = crawler.NewSessionController(cfg, browserFactory, probeFactory)
		if err := controller.LoadSnapshot(resumeFrom); err != nil {
			return err
		}
	} else {
		controller = crawler.NewSessionController(cfg, browserFactory, probeFactory,
			crawler.OnResponseSuccess(func(ev crawler.Event) error {
				logInfo("ok   %s", ev.Candidate.Request.RawURL())
				return nil
			}),
			crawler.OnNetworkError(func(ev crawler.Event) error {
				logInfo("err  %s: %v", ev.Candidate.Request.RawURL(), ev.Err)
				return nil
			}),
		)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		controller.Stop()
	}()

	go reportStats(sigCtx, controller)

	var runErr error
	if resumeFrom != nil {
		runErr = controller.Resume(sigCtx)
	} else {
		runErr = controller.Start(sigCtx)
	}

	if out := viper.GetString("snapshot_out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := controller.Snapshot(f); err != nil {
			return err
		}
	}

	return runErr
}

// reportStats prints a periodic status line, rendering counts and the
// running duration in the same operator-friendly style the teacher's CLI
// uses for its own progress output.
func reportStats(ctx context.Context, controller *crawler.SessionController) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	started := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := controller.CrawlStats()
			logInfo("processed=%s remaining=%s success=%s errors=%s elapsed=%s",
				humanize.Comma(snap.Processed),
				humanize.Comma(snap.Remaining),
				humanize.Comma(snap.ResponseSuccess),
				humanize.Comma(snap.NetworkError+snap.ResponseError),
				humanize.RelTime(started, time.Now(), "", ""),
			)
		}
	}
}
