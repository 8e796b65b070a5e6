package fixtures_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/fixtures"
)

const doc = `
owners:
  - user_id: o1
    display_name: Olga
    location_code: A
    required_tasks: [grooming]
    max_rider_age: 40
riders:
  - user_id: r1
    level: Intermediate
    experience_years: 3
    materials: {bitless_ok: true}
    time_blocks:
      mon: [morning]
    date_of_birth: "1990-05-17"
horses:
  - id: h1
    owner_id: o1
    name: Star
    energy: low
listings:
  - id: l1
    horse_id: h1
    contribution_min_cents: 9000
    availability:
      mon: [morning, evening]
    created_at: "2026-01-02T03:04:05Z"
  - id: l2
    horse_id: h1
    contribution_type: per_session
    active: false
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a fixture file", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("It parses every section", func() {
			c, err := fixtures.Load(writeFile(t, doc))
			So(err, ShouldBeNil)
			So(c.Owners, ShouldHaveLength, 1)
			So(c.Riders, ShouldHaveLength, 1)
			So(c.Horses, ShouldHaveLength, 1)
			So(c.Listings, ShouldHaveLength, 2)
			So(c.Riders[0].Materials["bitless_ok"], ShouldBeTrue)
		})

		Convey("Apply writes records into the catalog", func() {
			c, err := fixtures.Load(writeFile(t, doc))
			So(err, ShouldBeNil)

			store := repository.NewMemoryStore()
			So(c.Apply(ctx, store, now), ShouldBeNil)

			r, err := store.RiderProfile(ctx, "r1")
			So(err, ShouldBeNil)
			So(r.Level, ShouldEqual, model.LevelIntermediate)
			So(r.AgeAt(now), ShouldEqual, 36)
			So(r.TimeBlocks["mon"].Contains("morning"), ShouldBeTrue)

			o, err := store.OwnerProfile(ctx, "o1")
			So(err, ShouldBeNil)
			So(o.MaxRiderAge, ShouldEqual, 40)

			l1, err := store.Listing(ctx, "l1")
			So(err, ShouldBeNil)
			So(l1.Active, ShouldBeTrue)
			So(l1.ContributionType, ShouldEqual, model.ContributionMonthly)
			So(l1.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)), ShouldBeTrue)

			l2, err := store.Listing(ctx, "l2")
			So(err, ShouldBeNil)
			So(l2.Active, ShouldBeFalse)
			So(l2.CreatedAt.Equal(now), ShouldBeTrue)

			active, err := store.ActiveListings(ctx)
			So(err, ShouldBeNil)
			So(active, ShouldHaveLength, 1)
		})

		Convey("The bundled demo catalog is valid", func() {
			c, err := fixtures.Load(filepath.Join("..", "..", "configs", "fixtures.yaml"))
			So(err, ShouldBeNil)
			So(c.Listings, ShouldNotBeEmpty)
		})
	})
}

func TestLoadErrors(t *testing.T) {
	Convey("Invalid fixtures are rejected", t, func() {
		Convey("A missing file", func() {
			_, err := fixtures.Load(filepath.Join(t.TempDir(), "nope.yaml"))
			So(errors.Is(err, fixtures.ErrLoadFixtures), ShouldBeTrue)
		})

		cases := []struct {
			name string
			body string
		}{
			{"rider without id", "riders:\n  - level: beginner\n"},
			{"horse with unknown owner", "horses:\n  - id: h1\n    owner_id: ghost\n"},
			{"listing with unknown horse", "listings:\n  - id: l1\n    horse_id: ghost\n"},
			{"bad date of birth", "riders:\n  - user_id: r1\n    date_of_birth: \"yesterday\"\n"},
			{"bad contribution type", "owners:\n  - user_id: o1\nhorses:\n  - id: h1\n    owner_id: o1\nlistings:\n  - id: l1\n    horse_id: h1\n    contribution_type: weekly\n"},
		}
		for _, tc := range cases {
			Convey(tc.name, func() {
				_, err := fixtures.Load(writeFile(t, tc.body))
				So(errors.Is(err, fixtures.ErrInvalidFixture), ShouldBeTrue)
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		}
	})
}
