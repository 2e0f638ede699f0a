package normalize

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/sitescope/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestNormalizeEmptyInputs(t *testing.T) {
	Convey("Given a normalizer", t, func() {
		n := New()
		ctx := context.Background()

		Convey("When the input is absent or not an object", func() {
			inputs := []any{nil, map[string]any{}, "hello", 42.0, []any{1.0, 2.0}, true}

			Convey("Then every input yields an empty batch", func() {
				for _, in := range inputs {
					batch := n.Normalize(ctx, in)
					So(batch, ShouldNotBeNil)
					So(batch.Len(), ShouldEqual, 0)
				}
			})
		})

		Convey("When the JSON cannot be decoded", func() {
			batch := n.NormalizeJSON(ctx, []byte("{not json"))

			Convey("Then the batch is empty", func() {
				So(batch.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestNormalizeCells(t *testing.T) {
	Convey("Given a normalizer", t, func() {
		n := New()
		ctx := context.Background()

		Convey("When a score is out of range", func() {
			batch := n.Normalize(ctx, decode(t, `{"A":{"score":1.5,"avgTemp":10},"Z":{"score":-0.2}}`))

			Convey("Then it is clamped into [0, 1]", func() {
				So(batch.Len(), ShouldEqual, 2)
				So(batch["A"].Score, ShouldEqual, 1.0)
				So(batch["A"].Aux["avgTemp"], ShouldEqual, 10.0)
				So(batch["Z"].Score, ShouldEqual, 0.0)
			})
		})

		Convey("When a score is not a number", func() {
			batch := n.Normalize(ctx, decode(t, `{"B":{"score":"x"},"C":{"score":0.5}}`))

			Convey("Then only that entry is dropped", func() {
				_, ok := batch.Get("B")
				So(ok, ShouldBeFalse)
				So(batch.Len(), ShouldEqual, 1)
				So(batch["C"].Score, ShouldEqual, 0.5)
			})
		})

		Convey("When entries are malformed in various ways", func() {
			batch := n.Normalize(ctx, map[string]any{
				"":        map[string]any{"score": 0.4},
				"scalar":  0.4,
				"noScore": map[string]any{"avgTemp": 11.0},
				"null":    map[string]any{"score": nil},
				"nan":     map[string]any{"score": math.NaN()},
				"inf":     map[string]any{"score": math.Inf(1)},
				"numeric": map[string]any{"score": "0.5"},
				"ok":      map[string]any{"score": 0.4},
			})

			Convey("Then only the valid entry survives", func() {
				So(batch.IDs(), ShouldResemble, []string{"ok"})
			})
		})

		Convey("When scores carry more than two decimals", func() {
			batch := n.Normalize(ctx, decode(t, `{"a":{"score":0.123},"b":{"score":0.876}}`))

			Convey("Then they are rounded to two decimals", func() {
				So(batch["a"].Score, ShouldEqual, 0.12)
				So(batch["b"].Score, ShouldEqual, 0.88)
			})
		})

		Convey("When auxiliary fields are present", func() {
			batch := n.Normalize(ctx, decode(t, `{"fr":{
				"score":0.7,
				"avgTemp":12.345,
				"gridDistance":3.21,
				"internetSpeed":874.6,
				"nbGridConnections":4,
				"avgTempNorm":0.6789,
				"connection_points":12.4,
				"latency_ms":18.7,
				"avg_temperature":11.06,
				"unknown":5,
				"gridDistanceNorm":"high",
				"opposition":"medium"
			}}`))
			cell := batch["fr"]

			Convey("Then each field is rounded to its class", func() {
				So(cell.Aux["avgTemp"], ShouldEqual, 12.3)
				So(cell.Aux["gridDistance"], ShouldEqual, 3.2)
				So(cell.Aux["internetSpeed"], ShouldEqual, 875.0)
				So(cell.Aux["nbGridConnections"], ShouldEqual, 4.0)
				So(cell.Aux["avgTempNorm"], ShouldEqual, 0.68)
				So(cell.Aux["connection_points"], ShouldEqual, 12.0)
				So(cell.Aux["latency_ms"], ShouldEqual, 19.0)
				So(cell.Aux["avg_temperature"], ShouldEqual, 11.1)
			})

			Convey("Then unknown and non-numeric fields are ignored", func() {
				_, unknown := cell.Aux["unknown"]
				_, bad := cell.Aux["gridDistanceNorm"]
				So(unknown, ShouldBeFalse)
				So(bad, ShouldBeFalse)
			})

			Convey("Then the opposition level is kept", func() {
				So(cell.Opposition, ShouldEqual, model.Opposition("medium"))
			})
		})

		Convey("When Go integer kinds and json.Number are used", func() {
			batch := n.Normalize(ctx, map[string]any{
				"i": map[string]any{"score": 1, "nbGridConnections": int64(3)},
				"j": map[string]any{"score": json.Number("0.25")},
			})

			Convey("Then they are accepted as numbers", func() {
				So(batch["i"].Score, ShouldEqual, 1.0)
				So(batch["i"].Aux["nbGridConnections"], ShouldEqual, 3.0)
				So(batch["j"].Score, ShouldEqual, 0.25)
			})
		})
	})
}

func TestNormalizePrecisionOverride(t *testing.T) {
	Convey("Given a normalizer with precision overrides", t, func() {
		n := New(WithPrecision(map[string]int{"avgTemp": 0, "solar_hours": 1, "score": 4}))

		Convey("When a batch is normalized", func() {
			batch := n.Normalize(context.Background(), decode(t, `{"x":{"score":0.5561,"avgTemp":12.7,"solar_hours":2.34}}`))

			Convey("Then the overrides apply to auxiliary fields only", func() {
				So(batch["x"].Score, ShouldEqual, 0.56)
				So(batch["x"].Aux["avgTemp"], ShouldEqual, 13.0)
				So(batch["x"].Aux["solar_hours"], ShouldEqual, 2.3)
				_, ok := n.Fields()["score"]
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestHighlighted(t *testing.T) {
	Convey("Given highlighted payloads", t, func() {
		Convey("When it is an array", func() {
			h := Highlighted(decode(t, `["b","a",1,"","b",null,"c"]`))

			Convey("Then order is kept and junk is dropped", func() {
				So(h, ShouldResemble, model.Highlight{"b", "a", "c"})
			})
		})

		Convey("When it is a weight map", func() {
			h := Highlighted(decode(t, `{"low":0.2,"top":0.9,"b":0.5,"a":0.5,"bad":"x"}`))

			Convey("Then ids are ordered by weight then id", func() {
				So(h, ShouldResemble, model.Highlight{"top", "a", "b", "low"})
			})
		})

		Convey("When it has any other shape", func() {
			Convey("Then it is empty", func() {
				So(Highlighted(nil), ShouldBeEmpty)
				So(Highlighted("a"), ShouldBeEmpty)
				So(Highlighted(3.0), ShouldBeEmpty)
			})
		})

		Convey("When it is a typed string slice", func() {
			Convey("Then it is treated as an array", func() {
				So(Highlighted([]string{"x", "x", "y"}), ShouldResemble, model.Highlight{"x", "y"})
			})
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Given rounding helpers", t, func() {
		So(Round(0.126, 2), ShouldEqual, 0.13)
		So(Round(12.34, 1), ShouldEqual, 12.3)
		So(Round(99.6, 0), ShouldEqual, 100.0)
		So(Round(1e308, 1), ShouldEqual, 1e308)
		So(Round(-1e308, 2), ShouldEqual, -1e308)
		So(Round(math.MaxFloat64, 0), ShouldEqual, math.MaxFloat64)
		So(Clamp(2, 0, 1), ShouldEqual, 1.0)
		So(Clamp(-1, 0, 1), ShouldEqual, 0.0)
	})
}

func TestNormalizeHugeAuxValues(t *testing.T) {
	Convey("Given a normalizer", t, func() {
		n := New()
		ctx := context.Background()

		Convey("When aux values are finite but near the float64 limit", func() {
			batch := n.Normalize(ctx, decode(t, `{"A":{"score":0.5,"avgTemp":1e308,"avgTempNorm":5e306}}`))

			Convey("Then they stay finite and the batch still encodes", func() {
				So(batch.Len(), ShouldEqual, 1)
				for _, v := range batch["A"].Aux {
					So(math.IsInf(v, 0) || math.IsNaN(v), ShouldBeFalse)
				}
				So(batch["A"].Aux["avgTemp"], ShouldEqual, 1e308)
				So(batch["A"].Aux["avgTempNorm"], ShouldEqual, 5e306)

				_, err := json.Marshal(batch)
				So(err, ShouldBeNil)
			})
		})
	})
}
