package distance_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConstant(t *testing.T) {
	Convey("Given a constant provider", t, func() {
		ctx := context.Background()

		Convey("Then every pair is the same distance apart", func() {
			km, err := distance.Constant(5).Distance(ctx, "1011AB", "9999ZZ")
			So(err, ShouldBeNil)
			So(km, ShouldEqual, 5.0)
		})

		Convey("And a negative constant is invalid input", func() {
			_, err := distance.Constant(-1).Distance(ctx, "a", "b")
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestTable(t *testing.T) {
	Convey("Given a distance table", t, func() {
		ctx := context.Background()
		table, err := distance.NewTable(map[string]float64{"A|B": 12.5})
		So(err, ShouldBeNil)

		Convey("Then lookups are symmetric", func() {
			ab, err := table.Distance(ctx, "A", "B")
			So(err, ShouldBeNil)
			ba, err := table.Distance(ctx, "B", "A")
			So(err, ShouldBeNil)
			So(ab, ShouldEqual, 12.5)
			So(ba, ShouldEqual, ab)
		})

		Convey("And identical codes are zero apart", func() {
			km, err := table.Distance(ctx, "C", "C")
			So(err, ShouldBeNil)
			So(km, ShouldEqual, 0)
		})

		Convey("And unknown pairs report ErrUnknownPair", func() {
			_, err := table.Distance(ctx, "A", "Z")
			So(errors.Is(err, distance.ErrUnknownPair), ShouldBeTrue)
		})

		Convey("And malformed or negative entries are rejected", func() {
			_, err := distance.NewTable(map[string]float64{"AB": 1})
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			_, err = distance.NewTable(map[string]float64{"A|B": -3})
			So(errors.Is(err, model.ErrNegativeDistance), ShouldBeTrue)
		})
	})
}

func TestGuarded(t *testing.T) {
	Convey("Given a guarded provider", t, func() {
		ctx := context.Background()

		Convey("When the wrapped provider is slower than the timeout", func() {
			slow := distance.ProviderFunc(func(ctx context.Context, _, _ string) (float64, error) {
				select {
				case <-ctx.Done():
					return 0, ctx.Err()
				case <-time.After(time.Second):
					return 1, nil
				}
			})
			g := distance.NewGuarded(slow, distance.WithTimeout(10*time.Millisecond))

			start := time.Now()
			_, err := g.Distance(ctx, "A", "B")

			Convey("Then it returns a deadline error promptly", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 500*time.Millisecond)
			})
		})

		Convey("When the wrapped provider keeps failing", func() {
			var calls atomic.Int32
			failing := distance.ProviderFunc(func(context.Context, string, string) (float64, error) {
				calls.Add(1)
				return 0, errors.New("geocoder down")
			})
			g := distance.NewGuarded(failing, distance.WithBreaker(2, time.Minute))

			_, _ = g.Distance(ctx, "A", "B")
			_, _ = g.Distance(ctx, "A", "B")
			_, err := g.Distance(ctx, "A", "B")

			Convey("Then the breaker opens and stops calling through", func() {
				So(g.State(), ShouldEqual, "open")
				So(errors.Is(err, distance.ErrUnavailable), ShouldBeTrue)
				So(calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When callers go away while lookups are in flight", func() {
			var calls atomic.Int32
			blocking := distance.ProviderFunc(func(ctx context.Context, _, _ string) (float64, error) {
				calls.Add(1)
				<-ctx.Done()
				return 0, ctx.Err()
			})
			g := distance.NewGuarded(blocking,
				distance.WithTimeout(time.Second),
				distance.WithBreaker(1, time.Minute),
			)

			for i := 0; i < 3; i++ {
				cctx, cancel := context.WithCancel(ctx)
				time.AfterFunc(5*time.Millisecond, cancel)
				_, err := g.Distance(cctx, "A", "B")
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			}

			done, cancel := context.WithCancel(ctx)
			cancel()
			_, err := g.Distance(done, "A", "B")

			Convey("Then the breaker stays closed", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(g.State(), ShouldEqual, "closed")
				So(calls.Load(), ShouldEqual, 3)
			})
		})

		Convey("When the wrapped provider only reports unknown pairs", func() {
			table, _ := distance.NewTable(nil)
			g := distance.NewGuarded(table, distance.WithBreaker(1, time.Minute))
			_, _ = g.Distance(ctx, "A", "B")
			_, _ = g.Distance(ctx, "A", "B")

			Convey("Then the breaker stays closed", func() {
				So(g.State(), ShouldEqual, "closed")
			})
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given Resolve", t, func() {
		ctx := context.Background()

		Convey("Then a successful lookup is known", func() {
			So(distance.Resolve(ctx, distance.Constant(7), "A", "B"), ShouldResemble, distance.Known(7))
		})

		Convey("And a missing location code is unknown", func() {
			So(distance.Resolve(ctx, distance.Constant(7), "", "B").Known, ShouldBeFalse)
		})

		Convey("And provider failures degrade to unknown", func() {
			failing := distance.ProviderFunc(func(context.Context, string, string) (float64, error) {
				return 0, errors.New("boom")
			})
			So(distance.Resolve(ctx, failing, "A", "B"), ShouldResemble, distance.Unknown)
		})

		Convey("And a nil provider is unknown", func() {
			So(distance.Resolve(ctx, nil, "A", "B").Known, ShouldBeFalse)
		})
	})
}
