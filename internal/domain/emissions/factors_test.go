package emissions_test

import (
	"errors"
	"testing"

	"github.com/okian/plantmetrics/internal/domain/emissions"
	"github.com/smartystreets/goconvey/convey"
)

func TestFactorTable(t *testing.T) {
	convey.Convey("Given the default emission factors", t, func() {
		f := emissions.DefaultFactors()

		convey.Convey("Then each source maps to its constant", func() {
			convey.So(emissions.Factor(emissions.NaturalGas), convey.ShouldEqual, 1.88)
			convey.So(emissions.Factor(emissions.HSD), convey.ShouldEqual, 2650.0)
			convey.So(emissions.Factor(emissions.GridElectricity), convey.ShouldEqual, 0.82)
			convey.So(emissions.Factor("coal"), convey.ShouldEqual, 0)
		})

		convey.Convey("And the table separates direct from indirect sources", func() {
			table := f.Table()
			convey.So(table, convey.ShouldHaveLength, 3)
			convey.So(table[0].Scope, convey.ShouldEqual, 1)
			convey.So(table[1].Scope, convey.ShouldEqual, 1)
			convey.So(table[2].Scope, convey.ShouldEqual, 2)
		})

		convey.Convey("And a non-positive override fails validation", func() {
			f.Grid = -1
			convey.So(errors.Is(f.Validate(), emissions.ErrInvalidFactor), convey.ShouldBeTrue)
		})

		convey.Convey("And kilograms convert to tonnes", func() {
			convey.So(emissions.Tonnes(410), convey.ShouldAlmostEqual, 0.41, 1e-12)
		})
	})
}
