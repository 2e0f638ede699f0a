package mock

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseScenario(t *testing.T) {
	Convey("Given scenario names", t, func() {
		Convey("Then known names parse case-insensitively", func() {
			s, err := ParseScenario(" Good ")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, ScenarioGood)
		})

		Convey("Then unknown names are rejected", func() {
			_, err := ParseScenario("great")
			So(errors.Is(err, ErrInvalidScenario), ShouldBeTrue)
		})

		Convey("Then styles default to analyze", func() {
			s, err := ParseStyle("")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, StyleAnalyze)
			_, err = ParseStyle("essay")
			So(errors.Is(err, ErrInvalidStyle), ShouldBeTrue)
		})
	})
}

func TestCatalog(t *testing.T) {
	Convey("Given the embedded catalog", t, func() {
		c := DefaultCatalog()

		Convey("Then it holds enough regions for any analyze answer", func() {
			So(len(c.Regions()), ShouldBeGreaterThanOrEqualTo, maxAnalyzeRegions)
			So(len(c.Research()), ShouldBeGreaterThan, 0)
		})

		Convey("Then regions can be looked up by id", func() {
			name, ok := c.Name("fr-idf-paris")
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "Paris")
			_, ok = c.Lookup("nowhere")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given broken catalogs", t, func() {
		Convey("Then duplicates and unknown research ids are rejected", func() {
			_, err := ParseCatalog([]byte("regions:\n  - id: a\n  - id: a\n"))
			So(errors.Is(err, ErrInvalidCatalog), ShouldBeTrue)

			_, err = ParseCatalog([]byte("regions:\n  - id: a\nresearch: [b]\n"))
			So(errors.Is(err, ErrInvalidCatalog), ShouldBeTrue)

			_, err = ParseCatalog([]byte("regions: []\n"))
			So(errors.Is(err, ErrInvalidCatalog), ShouldBeTrue)
		})
	})
}

func TestGenerateScoreBounds(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := NewGenerator(WithSeed(7))

		Convey("When generating good scenarios repeatedly", func() {
			Convey("Then every score is at least 0.6", func() {
				for i := 0; i < 200; i++ {
					for _, c := range g.Generate(ScenarioGood).Batch {
						So(c.Score, ShouldBeGreaterThanOrEqualTo, 0.6)
						So(c.Score, ShouldBeLessThanOrEqualTo, 1.0)
					}
				}
			})
		})

		Convey("When generating bad scenarios repeatedly", func() {
			Convey("Then every score is at most 0.4 and nothing is highlighted", func() {
				for i := 0; i < 200; i++ {
					res := g.Generate(ScenarioBad)
					So(res.Highlighted, ShouldBeEmpty)
					for _, c := range res.Batch {
						So(c.Score, ShouldBeLessThanOrEqualTo, 0.4)
						So(c.Opposition, ShouldNotEqual, model.OppositionLow)
					}
				}
			})
		})
	})
}

func TestGenerateAuxRanges(t *testing.T) {
	type bounds struct{ lo, hi float64 }
	cases := []struct {
		scenario          Scenario
		avgTemp           bounds
		gridDistance      bounds
		internetSpeed     bounds
		nbGridConnections bounds
		oppositions       []model.Opposition
		lowShare          bounds
	}{
		{ScenarioGood, bounds{8, 13}, bounds{0.5, 2.5}, bounds{800, 1000}, bounds{3, 5},
			[]model.Opposition{model.OppositionLow, model.OppositionMedium}, bounds{0.6, 0.8}},
		{ScenarioBad, bounds{20, 30}, bounds{5, 13}, bounds{100, 300}, bounds{1, 2},
			[]model.Opposition{model.OppositionMedium, model.OppositionHigh}, bounds{0, 0}},
		{ScenarioMixed, bounds{8, 23}, bounds{0, 10}, bounds{200, 900}, bounds{1, 4},
			[]model.Opposition{model.OppositionLow, model.OppositionMedium, model.OppositionHigh}, bounds{0.23, 0.43}},
	}

	Convey("Given a seeded generator", t, func() {
		g := NewGenerator(WithSeed(11))

		for _, tc := range cases {
			Convey("When drawing "+string(tc.scenario)+" cells repeatedly", func() {
				seen := map[model.Opposition]int{}
				total := 0
				for i := 0; i < 200; i++ {
					for _, res := range []Result{g.Generate(tc.scenario), g.Research(tc.scenario)} {
						for _, c := range res.Batch {
							So(c.Aux["avgTemp"], ShouldBeBetweenOrEqual, tc.avgTemp.lo, tc.avgTemp.hi)
							So(c.Aux["gridDistance"], ShouldBeBetweenOrEqual, tc.gridDistance.lo, tc.gridDistance.hi)
							So(c.Aux["internetSpeed"], ShouldBeBetweenOrEqual, tc.internetSpeed.lo, tc.internetSpeed.hi)
							So(c.Aux["nbGridConnections"], ShouldBeBetweenOrEqual, tc.nbGridConnections.lo, tc.nbGridConnections.hi)
							So(c.Aux["nbGridConnections"], ShouldEqual, math.Trunc(c.Aux["nbGridConnections"]))
							So(c.Aux["internetSpeed"], ShouldEqual, math.Trunc(c.Aux["internetSpeed"]))
							seen[c.Opposition]++
							total++
						}
					}
				}

				Convey("Then every field stays in its range and opposition follows the scenario split", func() {
					So(len(seen), ShouldEqual, len(tc.oppositions))
					for _, o := range tc.oppositions {
						So(seen[o], ShouldBeGreaterThan, 0)
					}
					share := float64(seen[model.OppositionLow]) / float64(total)
					So(share, ShouldBeBetweenOrEqual, tc.lowShare.lo, tc.lowShare.hi)
				})
			})
		}
	})
}

func TestScoreRange(t *testing.T) {
	Convey("Given the scenarios", t, func() {
		Convey("Then their score ranges match the generated bounds", func() {
			lo, hi := ScoreRange(ScenarioGood)
			So(lo, ShouldEqual, 0.6)
			So(hi, ShouldEqual, 1.0)

			lo, hi = ScoreRange(ScenarioBad)
			So(lo, ShouldEqual, 0.0)
			So(hi, ShouldEqual, 0.4)

			lo, hi = ScoreRange(Scenario("unknown"))
			So(lo, ShouldEqual, 0.0)
			So(hi, ShouldEqual, 1.0)
		})
	})
}

func TestGenerateShape(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := NewGenerator(WithSeed(42))

		Convey("When generating analyze answers", func() {
			for i := 0; i < 100; i++ {
				res := g.Generate(ScenarioMixed)

				So(res.Style, ShouldEqual, StyleAnalyze)
				So(res.Batch.Len(), ShouldBeBetweenOrEqual, 6, 12)
				So(len(res.Order), ShouldEqual, res.Batch.Len())
				So(len(res.Highlighted), ShouldBeLessThanOrEqualTo, 3)

				for _, c := range res.Batch {
					_, known := g.Catalog().Lookup(c.ID)
					So(known, ShouldBeTrue)
					So(c.Opposition.Valid(), ShouldBeTrue)
					So(c.Aux["avgTemp"], ShouldBeBetweenOrEqual, 8, 23)
					So(c.Aux["gridDistance"], ShouldBeBetweenOrEqual, 0, 10)
					So(c.Aux["internetSpeed"], ShouldBeBetweenOrEqual, 200, 900)
					So(c.Aux["nbGridConnections"], ShouldBeBetweenOrEqual, 1, 4)
				}
			}
		})

		Convey("When generating research answers", func() {
			res := g.Research(ScenarioGood)

			Convey("Then the curated set is used in order", func() {
				ids := make([]string, 0)
				for _, r := range g.Catalog().Research() {
					ids = append(ids, r.ID)
				}
				So(res.Style, ShouldEqual, StyleResearch)
				So(res.Order, ShouldResemble, ids)
			})
		})
	})
}

func TestGenerateSubScores(t *testing.T) {
	Convey("Given a generated good batch", t, func() {
		res := NewGenerator(WithSeed(3)).Generate(ScenarioGood)

		Convey("Then sub-scores follow their formulas", func() {
			for _, c := range res.Batch {
				a := c.Aux
				So(a["internetSpeedNorm"], ShouldAlmostEqual, normalize.Round(min(a["internetSpeed"]/1000, 1), 2))
				So(a["gridDistanceNorm"], ShouldAlmostEqual, normalize.Round(max(0, 1-a["gridDistance"]/15), 2))
				So(a["nbGridConnectionsNorm"], ShouldAlmostEqual, normalize.Round(min(a["nbGridConnections"]/5, 1), 2))
				So(a["avgTempNorm"], ShouldAlmostEqual, normalize.Round(max(0, 1-(a["avgTemp"]-5)/25), 2))
			}
		})

		Convey("Then highlights are the first high scorers in generation order", func() {
			var want model.Highlight
			for _, id := range res.Order {
				if res.Batch[id].Score > 0.8 && len(want) < 3 {
					want = append(want, id)
				}
			}
			if want == nil {
				want = model.Highlight{}
			}
			So(res.Highlighted, ShouldResemble, want)
		})

		Convey("Then the raw form normalizes back to the same batch", func() {
			back := normalize.New().Normalize(context.Background(), map[string]any(res.Raw))
			So(back, ShouldResemble, res.Batch)
		})
	})
}

func TestGenerateDeterminism(t *testing.T) {
	Convey("Given two generators with the same source seed", t, func() {
		a := NewGenerator(WithRand(rand.New(rand.NewSource(99))))
		b := NewGenerator(WithSeed(99))

		Convey("Then they produce identical answers", func() {
			for _, s := range Scenarios() {
				ra, rb := a.Generate(s), b.Generate(s)
				So(ra.Order, ShouldResemble, rb.Order)
				So(ra.Batch, ShouldResemble, rb.Batch)
				So(ra.Highlighted, ShouldResemble, rb.Highlighted)
			}
		})
	})
}
