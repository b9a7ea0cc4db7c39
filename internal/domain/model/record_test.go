package model_test

import (
	"testing"

	"github.com/okian/plantmetrics/internal/domain/model"
	"github.com/okian/plantmetrics/internal/domain/units"
	"github.com/smartystreets/goconvey/convey"
)

func TestPlaceholder(t *testing.T) {
	convey.Convey("Given a lookup that matched nothing", t, func() {
		p := model.Placeholder("01-Oct-25", "Plant-X")

		convey.Convey("Then the placeholder keeps the requested identity", func() {
			convey.So(p.Placeholder, convey.ShouldBeTrue)
			convey.So(p.Date, convey.ShouldEqual, "01-Oct-25")
			convey.So(p.Plant, convey.ShouldEqual, "Plant-X")
		})

		convey.Convey("And every value is zero", func() {
			convey.So(p.GasTotalInternal, convey.ShouldEqual, 0)
			convey.So(p.TotalEnergyExpended, convey.ShouldEqual, 0)
			convey.So(p.GHGTotal, convey.ShouldEqual, 0)
			convey.So(p.SEC, convey.ShouldEqual, 0)
		})

		convey.Convey("And blank identity uses the unknown labels", func() {
			blank := model.Placeholder("", "")
			convey.So(blank.Date, convey.ShouldEqual, model.UnknownDate)
			convey.So(blank.Plant, convey.ShouldEqual, model.UnknownPlant)
		})
	})
}

func TestInUnit(t *testing.T) {
	convey.Convey("Given a record stored in MMBTU", t, func() {
		rec := model.ProcessedRecord{
			RawRecord:           model.RawRecord{Plant: "A", Date: "01-Oct-25", ExpectedEnergy: 50},
			EnergyFromGas:       10,
			TotalEnergyExpended: 20,
			TotalEnergyProduced: 40,
			SEC:                 0.25,
			EII:                 40,
			EnergyUnit:          units.MMBTU,
		}

		convey.Convey("When viewed in GJ", func() {
			gj := rec.InUnit(units.GJ)

			convey.Convey("Then energy fields are scaled", func() {
				convey.So(gj.EnergyUnit, convey.ShouldEqual, units.GJ)
				convey.So(gj.EnergyFromGas, convey.ShouldAlmostEqual, 10*units.GJPerMMBTU, 1e-12)
				convey.So(gj.ExpectedEnergy, convey.ShouldAlmostEqual, 50*units.GJPerMMBTU, 1e-12)
			})

			convey.Convey("And ratios are untouched", func() {
				convey.So(gj.SEC, convey.ShouldEqual, 0.25)
				convey.So(gj.EII, convey.ShouldEqual, 40)
			})

			convey.Convey("And the stored record is unchanged", func() {
				convey.So(rec.EnergyFromGas, convey.ShouldEqual, 10)
				convey.So(rec.EnergyUnit, convey.ShouldEqual, units.MMBTU)
			})

			convey.Convey("And converting back restores the canonical values", func() {
				back := gj.InUnit(units.MMBTU)
				convey.So(back.EnergyFromGas, convey.ShouldAlmostEqual, 10, 1e-12)
			})
		})
	})
}
