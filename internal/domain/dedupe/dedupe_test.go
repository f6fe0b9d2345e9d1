package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/skillmatch/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When created with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it is empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording a key", func() {
			d := dedupe.NewInMemoryDeduper()
			key := dedupe.Key("req", "cand")

			Convey("Then the first sighting is new and the second is a repeat", func() {
				So(key, ShouldEqual, "req|cand")
				So(d.SeenAndRecord(ctx, key), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, key), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "k")
			d.Unrecord(ctx, "k")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "k"), ShouldBeFalse)
			})
		})

		Convey("When the bound is reached", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			// touching a makes b the least recently seen
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "c")

			Convey("Then the least recently seen key is evicted", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			})
		})

		Convey("When unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := range 100 {
				d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i))
			}
			So(d.Size(), ShouldEqual, 100)
		})

		Convey("When many goroutines record the same key", func() {
			d := dedupe.NewInMemoryDeduper()
			var (
				wg    sync.WaitGroup
				fresh atomic.Int32
			)
			for range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "shared") {
						fresh.Add(1)
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one records it first", func() {
				So(fresh.Load(), ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
