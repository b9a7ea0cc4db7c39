package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "github.com/okian/plantmetrics/internal/app"
	"github.com/okian/plantmetrics/internal/config"
	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/types"
	"github.com/okian/plantmetrics/internal/domain/units"
	"github.com/okian/plantmetrics/pkg/logger"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// ErrIngestFailed is returned when a sheet is rejected.
var ErrIngestFailed = errors.New("ingestion failed")

// ErrBadOutput is returned for an unknown --output value.
var ErrBadOutput = errors.New("unknown output format")

type processOptions struct {
	unit   string
	date   string
	plant  string
	output string
}

// NewProcessCmd computes KPIs for a local sheet without a server. Factors
// come from the same configuration the server reads.
func NewProcessCmd() *cobra.Command {
	var o processOptions

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Compute KPIs for a CSV or XLSX sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0], o)
		},
	}
	cmd.Flags().StringVarP(&o.unit, "unit", "u", "", "energy unit (MMBTU, GJ); defaults to the configured unit")
	cmd.Flags().StringVarP(&o.date, "date", "d", "", "only records on this date (DD-Mon-YY)")
	cmd.Flags().StringVarP(&o.plant, "plant", "p", "", "only this plant; requires --date")
	cmd.Flags().StringVarP(&o.output, "output", "o", outputTable, "output format (table, json)")
	return cmd
}

func runProcess(cmd *cobra.Command, path string, o processOptions) error {
	ctx := cmd.Context()
	if o.output != outputTable && o.output != outputJSON {
		return fmt.Errorf("%w: %s", ErrBadOutput, o.output)
	}
	if o.plant != "" && o.date == "" {
		return errors.New("--plant requires --date")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	u := cfg.EnergyUnit()
	if o.unit != "" {
		if u, err = units.ParseEnergyUnit(o.unit); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	svc := app.New(
		app.WithLogger(logger.Named("process")),
		app.WithMaxUploadBytes(cfg.MaxUploadBytes),
		app.WithEnergyFactors(cfg.Factors.Energy()),
		app.WithEmissionFactors(cfg.Factors.Emission()),
		app.WithDefaultUnit(u),
	)
	job, _, err := svc.Ingest(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	if job.Status != model.JobSucceeded {
		return fmt.Errorf("%w: %s", ErrIngestFailed, job.Error)
	}
	if job.Report != nil {
		for _, w := range job.Report.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}
	}

	var view types.RecordsView
	if o.plant != "" {
		rec := svc.Lookup(o.date, o.plant, u)
		view = types.RecordsView{Date: o.date, Unit: u, Records: []model.ProcessedRecord{rec}}
	} else {
		view = svc.Records(o.date, u)
	}

	out := cmd.OutOrStdout()
	if o.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return writeTable(out, view)
}

func writeTable(w io.Writer, view types.RecordsView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	u := view.Unit.String()
	fmt.Fprintf(tw, "DATE\tPLANT\tEXPENDED (%s)\tPRODUCED (%s)\tGHG (tCO2e)\tSEC\tEII\tINTENSITY\t\n", u, u)
	for _, r := range view.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Date, r.Plant,
			num(r.TotalEnergyExpended), num(r.TotalEnergyProduced), num(r.GHGTotal),
			num(r.SEC), num(r.EII), num(r.EmissionIntensity),
		)
	}
	return tw.Flush()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
