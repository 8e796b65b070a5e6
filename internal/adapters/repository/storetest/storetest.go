// Package storetest holds the behaviour every repository.Store must share.
// Implementations call Run from their own tests.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/domain/model"
)

// Factory returns an empty store. Run closes it.
type Factory func(t *testing.T) repository.Store

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Seed writes a small catalog: owner "o1" with horse "h1" and listings
// "l1" (active) and "l2" (inactive), rider "r1".
func Seed(ctx context.Context, s repository.Store) error {
	steps := []func() error{
		func() error {
			return s.PutRiderProfile(ctx, model.RiderProfile{
				UserID:                "r1",
				DisplayName:           "Rita",
				LocationCode:          "8001",
				MaxTravelDistanceKm:   25,
				BudgetMaxCents:        20000,
				Level:                 model.LevelIntermediate,
				ExperienceYears:       4,
				DisciplinePreferences: model.Tags{"dressage"},
				MaterialPreferences:   map[string]bool{model.MaterialBitless: true},
				AvailableDays:         model.Tags{"mon", "wed"},
				TimeBlocks:            model.Schedule{"mon": {"am"}},
				DateOfBirth:           time.Date(1998, 4, 2, 0, 0, 0, 0, time.UTC),
			})
		},
		func() error {
			return s.PutOwnerProfile(ctx, model.OwnerProfile{
				UserID:            "o1",
				DisplayName:       "Otto",
				LocationCode:      "8002",
				RequiredTasks:     model.Tags{"grooming"},
				InsuranceRequired: true,
				BitPolicy:         model.BitPolicyBitless,
				MaxRiderAge:       60,
			})
		},
		func() error {
			return s.PutHorse(ctx, model.Horse{
				ID: "h1", OwnerID: "o1", Name: "Blitz", Energy: model.EnergyCalm,
				Disciplines: model.Tags{"dressage", "trail"}, BitlessCapable: true,
			})
		},
		func() error {
			return s.PutListing(ctx, model.Listing{
				ID: "l1", HorseID: "h1", ContributionMinCents: 12000,
				ContributionType: model.ContributionMonthly,
				ExpectedTasks:    model.Tags{"grooming"},
				Availability:     model.Schedule{"mon": {"am", "pm"}},
				Active:           true, CreatedAt: t0,
			})
		},
		func() error {
			return s.PutListing(ctx, model.Listing{ID: "l2", HorseID: "h1", Active: false, CreatedAt: t0})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Run exercises a Store implementation.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	Convey("Given a seeded store", t, func() {
		s := newStore(t)
		Reset(func() { _ = s.Close() })
		So(Seed(ctx, s), ShouldBeNil)

		Convey("Then catalog records round-trip", func() {
			r, err := s.RiderProfile(ctx, "r1")
			So(err, ShouldBeNil)
			So(r.DisplayName, ShouldEqual, "Rita")
			So(r.DisciplinePreferences, ShouldResemble, model.Tags{"dressage"})
			So(r.Wants(model.MaterialBitless), ShouldBeTrue)
			So(r.TimeBlocks["mon"], ShouldResemble, model.Tags{"am"})
			So(r.DateOfBirth.Equal(time.Date(1998, 4, 2, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)

			o, err := s.OwnerProfile(ctx, "o1")
			So(err, ShouldBeNil)
			So(o.InsuranceRequired, ShouldBeTrue)
			So(o.MaxRiderAge, ShouldEqual, 60)

			h, err := s.Horse(ctx, "h1")
			So(err, ShouldBeNil)
			So(h.BitlessCapable, ShouldBeTrue)
			So(h.Disciplines, ShouldResemble, model.Tags{"dressage", "trail"})

			l, err := s.Listing(ctx, "l1")
			So(err, ShouldBeNil)
			So(l.ContributionMinCents, ShouldEqual, 12000)
			So(l.Availability["mon"], ShouldResemble, model.Tags{"am", "pm"})
			So(l.CreatedAt.Equal(t0), ShouldBeTrue)
		})

		Convey("Then missing records report typed not-found errors", func() {
			_, err := s.RiderProfile(ctx, "nobody")
			So(err, ShouldWrap, model.ErrNotFound)
			So(err, ShouldEqual, model.ErrRiderProfileNotFound)
			_, err = s.OwnerProfile(ctx, "nobody")
			So(err, ShouldEqual, model.ErrOwnerProfileNotFound)
			_, err = s.Horse(ctx, "nope")
			So(err, ShouldEqual, model.ErrHorseNotFound)
			_, err = s.Listing(ctx, "nope")
			So(err, ShouldEqual, model.ErrListingNotFound)
		})

		Convey("Then only active listings are enumerated", func() {
			ls, err := s.ActiveListings(ctx)
			So(err, ShouldBeNil)
			So(len(ls), ShouldEqual, 1)
			So(ls[0].ID, ShouldEqual, "l1")

			owned, err := s.ListingsByOwner(ctx, "o1")
			So(err, ShouldBeNil)
			So(len(owned), ShouldEqual, 2)
		})

		Convey("When a rider profile is patched", func() {
			name := "Rita B."
			days := []string{"sat"}
			p, err := s.PatchRiderProfile(ctx, "r1", model.RiderProfilePatch{
				DisplayName:         &name,
				AvailableDays:       &days,
				MaterialPreferences: map[string]bool{model.MaterialCanTrailer: true},
			})
			So(err, ShouldBeNil)
			So(p.DisplayName, ShouldEqual, "Rita B.")

			stored, err := s.RiderProfile(ctx, "r1")
			So(err, ShouldBeNil)
			So(stored.AvailableDays, ShouldResemble, model.Tags{"sat"})
			So(stored.Wants(model.MaterialBitless), ShouldBeTrue)
			So(stored.Wants(model.MaterialCanTrailer), ShouldBeTrue)
			So(stored.ExperienceYears, ShouldEqual, 4)
		})

		Convey("When an absent owner profile is patched", func() {
			radius := 12.5
			p, err := s.PatchOwnerProfile(ctx, "o2", model.OwnerProfilePatch{VisibleRadiusKm: &radius})
			So(err, ShouldBeNil)
			So(p.UserID, ShouldEqual, "o2")

			stored, err := s.OwnerProfile(ctx, "o2")
			So(err, ShouldBeNil)
			So(stored.VisibleRadiusKm, ShouldEqual, 12.5)
		})

		Convey("When a like is inserted twice", func() {
			like := model.Like{ID: "lk1", FromUserID: "r1", ListingID: "l1", CreatedAt: t0}
			So(s.InsertLike(ctx, like), ShouldBeNil)
			like.ID = "lk2"
			err := s.InsertLike(ctx, like)

			Convey("Then the second insert conflicts", func() {
				So(err, ShouldWrap, model.ErrConflict)
				has, err := s.HasLike(ctx, "r1", "l1")
				So(err, ShouldBeNil)
				So(has, ShouldBeTrue)
				likes, err := s.LikesByUser(ctx, "r1")
				So(err, ShouldBeNil)
				So(len(likes), ShouldEqual, 1)
				So(likes[0].ID, ShouldEqual, "lk1")
			})
		})

		Convey("When likes for one pair are inserted concurrently", func() {
			const n = 12
			errs := make([]error, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs[i] = s.InsertLike(ctx, model.Like{
						ID: "lk" + string(rune('a'+i)), FromUserID: "r1", ListingID: "l1", CreatedAt: t0,
					})
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one is stored and the rest conflict", func() {
				stored := 0
				for _, err := range errs {
					if err == nil {
						stored++
						continue
					}
					So(err, ShouldWrap, model.ErrConflict)
				}
				So(stored, ShouldEqual, 1)

				c, err := s.Counts(ctx)
				So(err, ShouldBeNil)
				So(c.Likes, ShouldEqual, 1)
			})
		})

		Convey("When an owner interest is inserted twice", func() {
			oi := model.OwnerInterest{ID: "oi1", OwnerID: "o1", RiderID: "r1", ListingID: "l1", CreatedAt: t0}
			So(s.InsertOwnerInterest(ctx, oi), ShouldBeNil)
			oi.ID = "oi2"
			So(s.InsertOwnerInterest(ctx, oi), ShouldWrap, model.ErrConflict)

			has, err := s.HasOwnerInterest(ctx, "o1", "r1", "l1")
			So(err, ShouldBeNil)
			So(has, ShouldBeTrue)
			has, err = s.HasOwnerInterest(ctx, "o1", "r2", "l1")
			So(err, ShouldBeNil)
			So(has, ShouldBeFalse)
		})

		Convey("When matches are inserted concurrently for one pair", func() {
			var created atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ok, err := s.InsertMatch(ctx, model.MutualMatch{
						ID: "m" + string(rune('a'+i)), RiderID: "r1", ListingID: "l1",
						Score: 42, Strategy: "additive", CreatedAt: t0,
					})
					if err == nil && ok {
						created.Add(1)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one is stored", func() {
				So(created.Load(), ShouldEqual, 1)
				ms, err := s.MatchesByRider(ctx, "r1")
				So(err, ShouldBeNil)
				So(len(ms), ShouldEqual, 1)
				So(ms[0].Score, ShouldEqual, 42)
				So(ms[0].PaidChat, ShouldBeFalse)

				byListing, err := s.MatchesByListings(ctx, []string{"l1", "l9"})
				So(err, ShouldBeNil)
				So(len(byListing), ShouldEqual, 1)

				none, err := s.MatchesByListings(ctx, nil)
				So(err, ShouldBeNil)
				So(len(none), ShouldEqual, 0)
			})
		})

		Convey("Then counts reflect the contents", func() {
			So(s.InsertLike(ctx, model.Like{ID: "lk", FromUserID: "r1", ListingID: "l1", CreatedAt: t0}), ShouldBeNil)
			c, err := s.Counts(ctx)
			So(err, ShouldBeNil)
			So(c, ShouldResemble, repository.Counts{
				RiderProfiles: 1, OwnerProfiles: 1, Horses: 1,
				Listings: 2, ActiveListings: 1, Likes: 1,
			})
		})
	})
}
