package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/plantmetrics/internal/adapters/http/api"
	"github.com/okian/plantmetrics/internal/adapters/ingest"
	service "github.com/okian/plantmetrics/internal/app"
	"github.com/okian/plantmetrics/internal/cli"
	"github.com/okian/plantmetrics/internal/domain/types"
	"github.com/okian/plantmetrics/internal/domain/units"
)

const plantsCSV = `Plant,Date,Gas Boiler,Gas Produced,Expected Energy
Alpha,2024-02-01,100,500,40
Beta,2024-02-01,200,800,60
Alpha,2024-02-02,120,0,0
`

// execute runs plantctl with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcess(t *testing.T) {
	t.Setenv("PLANTMETRICS_CONFIG", "")

	Convey("Given a sheet on disk", t, func() {
		path := writeFile(t, "plants.csv", plantsCSV)

		Convey("When processing with table output", func() {
			out, _, err := execute(t, "process", path)

			Convey("Then every record is printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "EXPENDED (MMBTU)")
				So(out, ShouldContainSubstring, "01-Feb-24")
				So(out, ShouldContainSubstring, "02-Feb-24")
				So(strings.Count(out, "Alpha"), ShouldEqual, 2)
			})
		})

		Convey("When processing one date as JSON in GJ", func() {
			out, _, err := execute(t, "process", path, "--date", "01-Feb-24", "--unit", "gj", "-o", "json")
			So(err, ShouldBeNil)

			var view types.RecordsView
			So(json.Unmarshal([]byte(out), &view), ShouldBeNil)

			Convey("Then only that date is returned in the requested unit", func() {
				So(view.Unit, ShouldEqual, units.GJ)
				So(view.Records, ShouldHaveLength, 2)
				So(view.Records[0].EnergyUnit, ShouldEqual, units.GJ)
			})
		})

		Convey("When looking up a single plant", func() {
			out, _, err := execute(t, "process", path, "-d", "01-Feb-24", "-p", "Beta", "-o", "json")
			So(err, ShouldBeNil)

			var view types.RecordsView
			So(json.Unmarshal([]byte(out), &view), ShouldBeNil)

			Convey("Then that record is returned", func() {
				So(view.Records, ShouldHaveLength, 1)
				So(view.Records[0].Plant, ShouldEqual, "Beta")
				So(view.Records[0].Placeholder, ShouldBeFalse)
			})
		})

		Convey("When a plant is given without a date", func() {
			_, _, err := execute(t, "process", path, "--plant", "Beta")
			So(err, ShouldNotBeNil)
		})

		Convey("When the output format is unknown", func() {
			_, _, err := execute(t, "process", path, "-o", "yaml")
			So(errors.Is(err, cli.ErrBadOutput), ShouldBeTrue)
		})

		Convey("When the unit is unknown", func() {
			_, _, err := execute(t, "process", path, "--unit", "kwh")
			So(errors.Is(err, units.ErrUnknownUnit), ShouldBeTrue)
		})
	})

	Convey("Given a sheet with no recognised columns", t, func() {
		path := writeFile(t, "bad.csv", "foo,bar\n1,2\n")

		Convey("Then processing fails", func() {
			_, _, err := execute(t, "process", path)
			So(errors.Is(err, cli.ErrIngestFailed), ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, _, err := execute(t, "process", filepath.Join(t.TempDir(), "nope.csv"))
		So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given the generate command", t, func() {
		Convey("When writing CSV to stdout", func() {
			out, _, err := execute(t, "generate", "--plants", "2", "--days", "3", "--start", "2024-01-01", "--seed", "7")
			So(err, ShouldBeNil)

			Convey("Then a header and one row per plant-day are written", func() {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				So(lines, ShouldHaveLength, 7)
				So(out, ShouldContainSubstring, "01-Jan-24")
				So(out, ShouldContainSubstring, "03-Jan-24")
			})

			Convey("Then the same seed gives the same sheet", func() {
				again, _, err := execute(t, "generate", "--plants", "2", "--days", "3", "--start", "2024-01-01", "--seed", "7")
				So(err, ShouldBeNil)
				So(again, ShouldEqual, out)
			})
		})

		Convey("When writing an xlsx file", func() {
			path := filepath.Join(t.TempDir(), "sample.xlsx")
			_, stderr, err := execute(t, "generate", "--plants", "3", "--days", "2", "--out", path)
			So(err, ShouldBeNil)
			So(stderr, ShouldContainSubstring, "wrote 6 records")

			Convey("Then the file decodes as a workbook", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				table, err := ingest.NewDecoder().Decode(context.Background(), "sample.xlsx", data)
				So(err, ShouldBeNil)
				So(table.Format, ShouldEqual, ingest.FormatXLSX)
				So(table.Rows, ShouldHaveLength, 6)
			})
		})

		Convey("When the format is unknown", func() {
			_, _, err := execute(t, "generate", "--out", filepath.Join(t.TempDir(), "sample.json"))
			So(errors.Is(err, cli.ErrBadFormat), ShouldBeTrue)
		})

		Convey("When the start date is malformed", func() {
			_, _, err := execute(t, "generate", "--start", "01/01/2024")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestUpload(t *testing.T) {
	Convey("Given a live server", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		Reset(func() {
			srv.Close()
			_ = svc.Stop(ctx)
		})

		good := writeFile(t, "plants.csv", plantsCSV)

		Convey("When uploading a sheet and waiting", func() {
			out, _, err := execute(t, "upload", good, "--url", srv.URL, "--wait", "--poll", "10ms")

			Convey("Then the job succeeds and the dataset is active", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "plants.csv")
				So(out, ShouldContainSubstring, "succeeded")
				So(svc.Summary().Records, ShouldEqual, 3)
			})
		})

		Convey("When one of several sheets is invalid", func() {
			bad := writeFile(t, "bad.csv", "foo,bar\n1,2\n")
			out, _, err := execute(t, "upload", good, bad, "--url", srv.URL, "-w", "-c", "2", "--poll", "10ms")

			Convey("Then the others still succeed and the command fails", func() {
				So(errors.Is(err, cli.ErrUploadsFailed), ShouldBeTrue)
				So(out, ShouldContainSubstring, "succeeded")
				So(out, ShouldContainSubstring, "failed")
			})
		})

		Convey("When a file cannot be read", func() {
			out, _, err := execute(t, "upload", filepath.Join(t.TempDir(), "nope.csv"), "--url", srv.URL)

			Convey("Then it is reported as an error", func() {
				So(errors.Is(err, cli.ErrUploadsFailed), ShouldBeTrue)
				So(out, ShouldContainSubstring, "error")
			})
		})
	})
}
