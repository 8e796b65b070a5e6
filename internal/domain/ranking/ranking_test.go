package ranking_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/eligibility"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/ranking"
	"github.com/okian/paddock/internal/domain/scoring"
)

type fakeCatalog struct {
	riders   map[string]*model.RiderProfile
	owners   map[string]*model.OwnerProfile
	horses   map[string]*model.Horse
	listings []model.Listing
	likes    []model.Like
}

func (f *fakeCatalog) RiderProfile(_ context.Context, id string) (*model.RiderProfile, error) {
	if r, ok := f.riders[id]; ok {
		return r, nil
	}
	return nil, model.ErrRiderProfileNotFound
}

func (f *fakeCatalog) OwnerProfile(_ context.Context, id string) (*model.OwnerProfile, error) {
	if o, ok := f.owners[id]; ok {
		return o, nil
	}
	return nil, model.ErrOwnerProfileNotFound
}

func (f *fakeCatalog) Horse(_ context.Context, id string) (*model.Horse, error) {
	if h, ok := f.horses[id]; ok {
		return h, nil
	}
	return nil, model.ErrHorseNotFound
}

func (f *fakeCatalog) Listing(_ context.Context, id string) (*model.Listing, error) {
	for i := range f.listings {
		if f.listings[i].ID == id {
			l := f.listings[i]
			return &l, nil
		}
	}
	return nil, model.ErrListingNotFound
}

func (f *fakeCatalog) ActiveListings(_ context.Context) ([]model.Listing, error) {
	out := make([]model.Listing, 0, len(f.listings))
	for _, l := range f.listings {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCatalog) LikesByUser(_ context.Context, userID string) ([]model.Like, error) {
	var out []model.Like
	for _, l := range f.likes {
		if l.FromUserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func listing(id, horse string, age time.Duration) model.Listing {
	return model.Listing{ID: id, HorseID: horse, Active: true, CreatedAt: t0.Add(-age)}
}

// fixture scores under the additive strategy: o-full 25, o-half 12.5,
// o-none 0.
func fixture() *fakeCatalog {
	return &fakeCatalog{
		riders: map[string]*model.RiderProfile{
			"rider": {UserID: "rider", AvailableDays: model.Tags{"mon", "tue"}, BudgetMaxCents: 20000},
		},
		owners: map[string]*model.OwnerProfile{
			"o-full": {UserID: "o-full", AvailableDays: model.Tags{"mon", "tue"}},
			"o-half": {UserID: "o-half", AvailableDays: model.Tags{"mon"}},
			"o-none": {UserID: "o-none"},
			"rider":  {UserID: "rider", AvailableDays: model.Tags{"mon", "tue"}},
		},
		horses: map[string]*model.Horse{
			"h-full":   {ID: "h-full", OwnerID: "o-full"},
			"h-half":   {ID: "h-half", OwnerID: "o-half"},
			"h-none":   {ID: "h-none", OwnerID: "o-none"},
			"h-own":    {ID: "h-own", OwnerID: "rider"},
			"h-orphan": {ID: "h-orphan", OwnerID: "ghost"},
		},
		listings: []model.Listing{
			listing("l-half", "h-half", time.Hour),
			listing("l-none", "h-none", time.Hour),
			listing("l-full", "h-full", time.Hour),
			listing("l-own", "h-own", time.Hour),
			listing("l-orphan", "h-orphan", time.Hour),
			listing("l-missing-horse", "h-gone", time.Hour),
			{ID: "l-inactive", HorseID: "h-full", Active: false, CreatedAt: t0},
		},
	}
}

func ids(rs []ranking.Ranked) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Listing.ID
	}
	return out
}

func TestRank(t *testing.T) {
	ctx := context.Background()

	Convey("Given a catalog with mixed listings", t, func() {
		cat := fixture()
		r := ranking.New(cat, cat)

		Convey("When ranking for the rider", func() {
			got, err := r.Rank(ctx, "rider", 10)
			So(err, ShouldBeNil)

			Convey("Then listings are ordered by score and unusable ones dropped", func() {
				So(ids(got), ShouldResemble, []string{"l-full", "l-half", "l-none"})
				So(got[0].Score.Total, ShouldEqual, 25)
				So(got[1].Score.Total, ShouldEqual, 12.5)
				So(got[0].Owner.UserID, ShouldEqual, "o-full")
				So(got[0].Horse.ID, ShouldEqual, "h-full")
			})
		})

		Convey("When the limit is smaller than the result", func() {
			got, err := r.Rank(ctx, "rider", 2)
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"l-full", "l-half"})
		})

		Convey("When the rider already liked a listing", func() {
			cat.likes = []model.Like{{ID: "lk", FromUserID: "rider", ListingID: "l-full"}}
			got, err := r.Rank(ctx, "rider", 10)
			So(err, ShouldBeNil)
			So(ids(got), ShouldNotContain, "l-full")
			So(len(got), ShouldEqual, 2)
		})

		Convey("When a listing fails the budget rule", func() {
			cat.listings[2].ContributionMinCents = 50000
			got, err := r.Rank(ctx, "rider", 10)
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"l-half", "l-none"})
		})

		Convey("When a minimum score is configured", func() {
			r = ranking.New(cat, cat, ranking.WithMinScore(10))
			got, err := r.Rank(ctx, "rider", 10)
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"l-full", "l-half"})
		})

		Convey("When scores tie", func() {
			cat.listings = []model.Listing{
				listing("l-b", "h-half", time.Hour),
				listing("l-c", "h-half", 48*time.Hour),
				listing("l-a", "h-half", time.Hour),
			}
			got, err := r.Rank(ctx, "rider", 10)
			So(err, ShouldBeNil)

			Convey("Then older listings come first, then by id", func() {
				So(ids(got), ShouldResemble, []string{"l-c", "l-a", "l-b"})
			})
		})

		Convey("When the rider has no profile", func() {
			_, err := r.Rank(ctx, "stranger", 10)
			So(err, ShouldWrap, ranking.ErrProfileRequired)
			So(err, ShouldWrap, model.ErrNotFound)
		})
	})
}

func TestRankWithDistance(t *testing.T) {
	ctx := context.Background()

	Convey("Given located profiles and a distance table", t, func() {
		cat := fixture()
		cat.riders["rider"].LocationCode = "A"
		cat.riders["rider"].MaxTravelDistanceKm = 20
		cat.owners["o-full"].LocationCode = "B"
		cat.owners["o-half"].LocationCode = "C"
		table, err := distance.NewTable(map[string]float64{"A|B": 50, "A|C": 10})
		So(err, ShouldBeNil)

		r := ranking.New(cat, cat,
			ranking.WithDistance(table),
			ranking.WithFilter(eligibility.NewFilter()),
			ranking.WithStrategy(scoring.NewAdditive()),
		)

		Convey("Then listings beyond the travel limit are excluded", func() {
			got, err := r.Rank(ctx, "rider", 0)
			So(err, ShouldBeNil)
			So(ids(got), ShouldResemble, []string{"l-half", "l-none"})
			So(got[0].Distance.Known, ShouldBeTrue)
			So(got[0].Distance.Km, ShouldEqual, 10)
			So(got[1].Distance.Known, ShouldBeFalse)
		})

		Convey("When explaining the excluded listing", func() {
			exp, err := r.Explain(ctx, "rider", "l-full")
			So(err, ShouldBeNil)
			So(exp.Verdict.Passed, ShouldBeFalse)
			So(exp.Verdict.Rule, ShouldEqual, eligibility.RuleLocation)
			So(exp.Score.Total, ShouldEqual, 0)
		})

		Convey("When explaining a passing listing", func() {
			exp, err := r.Explain(ctx, "rider", "l-half")
			So(err, ShouldBeNil)
			So(exp.Verdict.Passed, ShouldBeTrue)
			So(exp.Score.Components, ShouldContainKey, scoring.ComponentDistance)
		})

		Convey("When explaining an unknown listing", func() {
			_, err := r.Explain(ctx, "rider", "nope")
			So(err, ShouldWrap, model.ErrNotFound)
		})
	})
}
