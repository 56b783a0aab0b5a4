package scoring_test

import (
	"errors"
	"math"
	"testing"

	scoring "github.com/okian/podium/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRange(t *testing.T) {
	Convey("Given the default range", t, func() {
		r := scoring.DefaultRange()

		Convey("Then it is well formed and symmetric", func() {
			So(r.Check(), ShouldBeNil)
			So(r.Min, ShouldEqual, -r.Max)
		})

		Convey("Then its bounds are inclusive", func() {
			So(r.Validate(r.Max), ShouldBeNil)
			So(r.Validate(r.Min), ShouldBeNil)
			So(r.Validate(0), ShouldBeNil)
		})

		Convey("Then values past the bounds are rejected", func() {
			err := r.Validate(math.MaxInt64)
			So(errors.Is(err, scoring.ErrOutOfRange), ShouldBeTrue)
			So(r.Contains(r.Min-1), ShouldBeFalse)
		})
	})

	Convey("Given a custom range", t, func() {
		r := scoring.Range{Min: 0, Max: 100}

		Convey("When validating scores", func() {
			So(r.Validate(100), ShouldBeNil)
			So(errors.Is(r.Validate(-1), scoring.ErrOutOfRange), ShouldBeTrue)
			So(r.Validate(101).Error(), ShouldContainSubstring, "101 not in [0, 100]")
		})

		Convey("When the bounds are inverted", func() {
			So(errors.Is(scoring.Range{Min: 5, Max: 1}.Check(), scoring.ErrInvalidRange), ShouldBeTrue)
		})
	})
}
