package visual

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/okian/sitescope/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func channelDiff(a, b color.RGBA) int {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return max(d(a.R, b.R), d(a.G, b.G), d(a.B, b.B))
}

func TestColorFor(t *testing.T) {
	Convey("Given the score gradient", t, func() {
		Convey("When sampling the band stops", func() {
			Convey("Then they match the configured colors", func() {
				So(ColorFor(0), ShouldResemble, color.RGBA{R: 255, G: 100, B: 50, A: 220})
				So(ColorFor(0.3), ShouldResemble, color.RGBA{R: 255, G: 255, B: 50, A: 220})
				So(ColorFor(0.7), ShouldResemble, color.RGBA{R: 255, G: 255, B: 255, A: 220})
				So(ColorFor(1), ShouldResemble, color.RGBA{R: 155, G: 255, B: 100, A: 220})
			})
		})

		Convey("When sampling inside the bands", func() {
			Convey("Then channels are interpolated linearly", func() {
				So(ColorFor(0.1).G, ShouldEqual, 152)
				So(ColorFor(0.4).B, ShouldEqual, 101)
				c := ColorFor(0.85)
				So(c.R, ShouldEqual, 205)
				So(c.G, ShouldEqual, 255)
			})
		})

		Convey("When approaching band boundaries from both sides", func() {
			const eps = 1e-9

			Convey("Then the gradient is continuous", func() {
				So(channelDiff(ColorFor(0.3-eps), ColorFor(0.3+eps)), ShouldBeLessThanOrEqualTo, 1)
				So(channelDiff(ColorFor(0.7-eps), ColorFor(0.7+eps)), ShouldBeLessThanOrEqualTo, 1)
			})
		})

		Convey("When the value is out of range", func() {
			Convey("Then it is clamped", func() {
				So(ColorFor(-2), ShouldResemble, ColorFor(0))
				So(ColorFor(7), ShouldResemble, ColorFor(1))
				So(ColorFor(math.NaN()), ShouldResemble, ColorFor(0))
			})
		})
	})
}

func TestOutlineFor(t *testing.T) {
	Convey("Given outline colors", t, func() {
		Convey("Then high values get a stronger white outline", func() {
			So(OutlineFor(0.81), ShouldResemble, color.RGBA{R: 255, G: 255, B: 255, A: 120})
			So(OutlineFor(0.8), ShouldResemble, color.RGBA{R: 255, G: 255, B: 255, A: 60})
			So(OutlineFor(0.1).A, ShouldEqual, 60)
		})
	})
}

func TestElevationFor(t *testing.T) {
	Convey("Given the elevation mapping", t, func() {
		Convey("Then the ends are fixed", func() {
			So(ElevationFor(0), ShouldEqual, 0)
			So(ElevationFor(1), ShouldEqual, 5000)
			So(ElevationFor(3), ShouldEqual, 5000)
		})

		Convey("Then it never decreases", func() {
			prev := ElevationFor(0)
			for i := 1; i <= 1000; i++ {
				cur := ElevationFor(float64(i) / 1000)
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				prev = cur
			}
		})

		Convey("Then transitions use fixed durations", func() {
			So(Transitions.Elevation, ShouldEqual, 600*time.Millisecond)
			So(Transitions.Color, ShouldEqual, 300*time.Millisecond)
		})
	})
}

func TestLayers(t *testing.T) {
	Convey("Given layer names", t, func() {
		Convey("When parsing known and blank names", func() {
			l, err := ParseLayer("gridDistanceNorm")
			So(err, ShouldBeNil)
			So(l, ShouldEqual, LayerGridDistanceNorm)

			l, err = ParseLayer("  ")
			So(err, ShouldBeNil)
			So(l, ShouldEqual, LayerScore)
		})

		Convey("When parsing an unknown name", func() {
			_, err := ParseLayer("avgTemp")

			Convey("Then ErrInvalidLayer is returned", func() {
				So(errors.Is(err, ErrInvalidLayer), ShouldBeTrue)
			})
		})

		Convey("Then the default layer comes first", func() {
			So(Layers()[0], ShouldEqual, DefaultLayer)
			So(len(Layers()), ShouldEqual, 5)
		})
	})
}

func TestStyle(t *testing.T) {
	Convey("Given a normalized cell", t, func() {
		cell := model.Cell{
			ID:    "fr-idf-paris",
			Score: 0.9,
			Aux: map[string]float64{
				"avgTemp":          12.3,
				"gridDistanceNorm": 0.2,
				"internetSpeed":    950,
				"solar":            4.5,
			},
			Opposition: model.OppositionLow,
		}

		Convey("When styling the score layer", func() {
			st, ok := Style(cell, LayerScore)

			Convey("Then the score drives the mapping", func() {
				So(ok, ShouldBeTrue)
				So(st.Value, ShouldEqual, 0.9)
				So(st.Fill, ShouldResemble, ColorFor(0.9))
				So(st.Outline.A, ShouldEqual, 120)
				So(st.Elevation, ShouldEqual, 4500)
			})
		})

		Convey("When styling a sub-score layer", func() {
			st, ok := Style(cell, LayerGridDistanceNorm)

			Convey("Then the same mapping is fed that field", func() {
				So(ok, ShouldBeTrue)
				So(st.Value, ShouldEqual, 0.2)
				So(st.Fill, ShouldResemble, ColorFor(0.2))
				So(st.Elevation, ShouldEqual, 1000)
			})
		})

		Convey("When the layer field is missing", func() {
			_, ok := Style(cell, LayerInternetSpeedNorm)

			Convey("Then the cell is left out", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When building the tooltip", func() {
			lines := Tooltip(cell, "Paris")

			Convey("Then it lists identity, score, fields with units and opposition", func() {
				So(lines, ShouldResemble, []string{
					"Cell: fr-idf-paris",
					"Region: Paris",
					"Score: 0.90",
					"Avg temperature: 12.3 °C",
					"Internet speed: 950 Mbps",
					"Grid distance score: 0.2",
					"solar: 4.5",
					"Opposition: low",
				})
			})
		})
	})
}
