package units_test

import (
	"errors"
	"testing"

	"github.com/okian/plantmetrics/internal/domain/units"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseEnergyUnit(t *testing.T) {
	Convey("Given unit strings from a query parameter", t, func() {
		Convey("Then known units parse case-insensitively", func() {
			u, err := units.ParseEnergyUnit("gj")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, units.GJ)

			u, err = units.ParseEnergyUnit(" MMBtu ")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, units.MMBTU)
		})

		Convey("And an empty string selects the canonical unit", func() {
			u, err := units.ParseEnergyUnit("")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, units.MMBTU)
		})

		Convey("And anything else is rejected", func() {
			_, err := units.ParseEnergyUnit("kcal")
			So(errors.Is(err, units.ErrUnknownUnit), ShouldBeTrue)
		})
	})
}

func TestConvert(t *testing.T) {
	Convey("Given a stored MMBTU value", t, func() {
		stored := 100.0

		Convey("When rendered in GJ", func() {
			gj := units.Convert(stored, units.GJ)

			Convey("Then the multiplier is applied to a copy", func() {
				So(gj, ShouldAlmostEqual, 105.5056, 1e-9)
				So(stored, ShouldEqual, 100.0)
			})
		})

		Convey("When rendered in MMBTU", func() {
			So(units.Convert(stored, units.MMBTU), ShouldEqual, stored)
		})
	})
}

func TestFactors(t *testing.T) {
	Convey("Given the default factor table", t, func() {
		f := units.DefaultFactors()

		Convey("Then it matches the constants and validates", func() {
			So(f.Gas, ShouldEqual, units.GasEnergyFactor)
			So(f.HSD, ShouldEqual, units.HSDEnergyFactor)
			So(f.Oil, ShouldEqual, units.OilEnergyFactor)
			So(f.Validate(), ShouldBeNil)
		})

		Convey("And a zero factor is rejected", func() {
			f.Oil = 0
			So(errors.Is(f.Validate(), units.ErrInvalidFactor), ShouldBeTrue)
		})
	})
}
