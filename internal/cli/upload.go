package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/plantmetrics/internal/client"
	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/types"
	"github.com/okian/plantmetrics/pkg/logger"
)

// ErrUploadsFailed is returned when at least one sheet was not ingested.
var ErrUploadsFailed = errors.New("one or more uploads failed")

const defaultServerURL = "http://localhost:9080"

type uploadOptions struct {
	url         string
	wait        bool
	concurrency int
	poll        time.Duration
	timeout     time.Duration
}

type uploadResult struct {
	file string
	job  types.JobView
	err  error
}

// NewUploadCmd sends sheets to a running server.
func NewUploadCmd() *cobra.Command {
	var o uploadOptions

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload sheets to a plantmetrics server",
		Long:  "upload posts each file to the server. With --wait every job is followed until it finishes. Uploads run concurrently; the last one to finish wins the active dataset only if it was submitted last.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args, o)
		},
	}
	cmd.Flags().StringVar(&o.url, "url", defaultServerURL, "server base URL")
	cmd.Flags().BoolVarP(&o.wait, "wait", "w", false, "wait for each job to finish")
	cmd.Flags().IntVarP(&o.concurrency, "concurrency", "c", runtime.NumCPU(), "maximum uploads in flight")
	cmd.Flags().DurationVar(&o.poll, "poll", 250*time.Millisecond, "job polling interval with --wait")
	cmd.Flags().DurationVar(&o.timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	return cmd
}

func runUpload(cmd *cobra.Command, files []string, o uploadOptions) error {
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	log := logger.Named("upload")
	c := client.New(o.url, client.WithTimeout(o.timeout))

	// Each goroutine owns one slot, so no lock is needed.
	results := make([]uploadResult, len(files))

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(o.concurrency)
	for i, path := range files {
		g.Go(func() error {
			res := uploadResult{file: path}
			defer func() { results[i] = res }()

			data, err := os.ReadFile(path)
			if err != nil {
				res.err = fmt.Errorf("read %s: %w", path, err)
				return nil
			}
			job, err := c.Upload(gctx, filepath.Base(path), data, false)
			if err == nil && o.wait && !job.Status.Done() {
				job, err = c.Wait(gctx, job.ID, o.poll)
			}
			res.job, res.err = job, err
			log.Info(gctx, "uploaded",
				logger.String("file", path),
				logger.String("job", job.ID),
				logger.String("status", string(job.Status)),
			)
			// A failed file must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	return report(cmd, results)
}

func report(cmd *cobra.Command, results []uploadResult) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tJOB\tSTATUS\tRECORDS\tERROR")
	failed := false
	for _, r := range results {
		status, records, msg := string(r.job.Status), "-", r.job.Error
		if r.err != nil {
			status, msg = "error", r.err.Error()
		}
		if r.job.Report != nil {
			records = fmt.Sprint(r.job.Report.Records)
		}
		if r.err != nil || r.job.Status == model.JobFailed {
			failed = true
		}
		if r.job.Duplicate {
			status += " (duplicate)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.file, orDash(r.job.ID), status, records, orDash(msg))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed {
		return ErrUploadsFailed
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
