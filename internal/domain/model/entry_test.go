package model_test

import (
	"testing"
	"time"

	model "github.com/okian/podium/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	convey.Convey("Given an Entry", t, func() {
		ts := time.Now()
		e := model.NewEntry("p1", "Alice", 42, ts)

		convey.Convey("Then accessors return the constructed values", func() {
			convey.So(e.ID(), convey.ShouldEqual, "p1")
			convey.So(e.Name(), convey.ShouldEqual, "Alice")
			convey.So(e.Score(), convey.ShouldEqual, 42)
			convey.So(e.UpdatedAt().Equal(ts), convey.ShouldBeTrue)
			convey.So(e.IsZero(), convey.ShouldBeFalse)
		})

		convey.Convey("Then a copy is equal and the zero entry is not", func() {
			c := e
			convey.So(c.Equal(e), convey.ShouldBeTrue)
			convey.So(model.Entry{}.IsZero(), convey.ShouldBeTrue)
			convey.So(e.Equal(model.Entry{}), convey.ShouldBeFalse)
		})
	})
}

func TestCompare(t *testing.T) {
	convey.Convey("Given entries with different scores and ids", t, func() {
		ts := time.Now()
		high := model.NewEntry("z", "", 100, ts)
		low := model.NewEntry("a", "", 10, ts)
		tieA := model.NewEntry("a", "", 50, ts)
		tieB := model.NewEntry("b", "", 50, ts)

		convey.Convey("Then higher scores rank ahead regardless of id", func() {
			convey.So(model.Compare(high, low), convey.ShouldEqual, -1)
			convey.So(model.Compare(low, high), convey.ShouldEqual, 1)
			convey.So(model.Less(high, low), convey.ShouldBeTrue)
		})

		convey.Convey("Then equal scores break ties by id ascending", func() {
			convey.So(model.Less(tieA, tieB), convey.ShouldBeTrue)
			convey.So(model.Less(tieB, tieA), convey.ShouldBeFalse)
		})

		convey.Convey("Then only the same id and score compare equal", func() {
			convey.So(model.Compare(tieA, model.NewEntry("a", "other", 50, ts.Add(time.Hour))), convey.ShouldEqual, 0)
			convey.So(model.Compare(tieA, low), convey.ShouldNotEqual, 0)
		})
	})
}

func TestRequestBefore(t *testing.T) {
	convey.Convey("Given two requests", t, func() {
		urgent := model.Request{PlayerID: "a", Priority: 1, Seq: 9}
		normal := model.Request{PlayerID: "b", Priority: 5, Seq: 1}

		convey.Convey("Then lower priority values go first", func() {
			convey.So(urgent.Before(&normal), convey.ShouldBeTrue)
			convey.So(normal.Before(&urgent), convey.ShouldBeFalse)
		})

		convey.Convey("Then equal priorities fall back to arrival order", func() {
			first := model.Request{Priority: 3, Seq: 1}
			second := model.Request{Priority: 3, Seq: 2}
			convey.So(first.Before(&second), convey.ShouldBeTrue)
			convey.So(second.Before(&first), convey.ShouldBeFalse)
		})
	})
}
