package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/sampledata"
)

// ErrBadFormat is returned for an unknown sheet format.
var ErrBadFormat = errors.New("unknown sheet format")

const startLayout = "2006-01-02"

type generateOptions struct {
	plants int
	days   int
	start  string
	seed   uint64
	out    string
	format string
}

// NewGenerateCmd writes a synthetic plant sheet.
func NewGenerateCmd() *cobra.Command {
	var o generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic plant sheet",
		Long:  "generate writes a reproducible synthetic sheet. The format follows the --out extension unless --format is set; without --out a CSV is written to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, o)
		},
	}
	cmd.Flags().IntVar(&o.plants, "plants", sampledata.DefaultPlants, "number of plants")
	cmd.Flags().IntVar(&o.days, "days", sampledata.DefaultDays, "number of consecutive days")
	cmd.Flags().StringVar(&o.start, "start", "", "first date (YYYY-MM-DD); defaults to --days before today")
	cmd.Flags().Uint64Var(&o.seed, "seed", 1, "random seed")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (.csv or .xlsx)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "sheet format (csv, xlsx)")
	return cmd
}

func runGenerate(cmd *cobra.Command, o generateOptions) error {
	cfg := sampledata.Config{Plants: o.plants, Days: o.days, Seed: o.seed}
	if o.start != "" {
		t, err := time.Parse(startLayout, o.start)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		cfg.Start = t
	}

	format, err := sheetFormat(o.format, o.out)
	if err != nil {
		return err
	}
	write := sampledata.WriteCSV
	if format == "xlsx" {
		write = sampledata.WriteXLSX
	}

	recs := sampledata.Generate(cfg)
	if o.out == "" || o.out == "-" {
		return writeSheet(cmd.OutOrStdout(), write, recs)
	}

	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("create %s: %w", o.out, err)
	}
	if err := writeSheet(f, write, recs); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", o.out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", len(recs), o.out)
	return nil
}

func writeSheet(w io.Writer, write func(io.Writer, []model.RawRecord) error, recs []model.RawRecord) error {
	if err := write(w, recs); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}

// sheetFormat resolves the explicit format or the one implied by path.
func sheetFormat(format, path string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch strings.ToLower(format) {
	case "", "csv":
		return "csv", nil
	case "xlsx":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrBadFormat, format)
	}
}
