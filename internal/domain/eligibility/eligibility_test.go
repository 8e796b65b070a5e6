package eligibility_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/eligibility"
	"github.com/okian/paddock/internal/domain/model"
)

func baseCandidate() eligibility.Candidate {
	return eligibility.Candidate{
		Rider: &model.RiderProfile{
			UserID:              "rider-1",
			LocationCode:        "8001",
			MaxTravelDistanceKm: 20,
			BudgetMaxCents:      15000,
			ExperienceYears:     3,
			InsuranceCoverage:   true,
		},
		Owner: &model.OwnerProfile{
			UserID:             "owner-1",
			LocationCode:       "8002",
			VisibleRadiusKm:    25,
			MinExperienceYears: 2,
			InsuranceRequired:  true,
		},
		Listing:  &model.Listing{ID: "listing-1", ContributionMinCents: 10000, Active: true},
		Horse:    &model.Horse{ID: "horse-1", OwnerID: "owner-1"},
		Distance: distance.Known(10),
	}
}

func TestFilterCheck(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f := eligibility.NewFilter(eligibility.WithClock(func() time.Time { return now }))

	Convey("Given a candidate satisfying every rule", t, func() {
		c := baseCandidate()

		Convey("Then it passes", func() {
			v := f.Check(c)
			So(v.Passed, ShouldBeTrue)
			So(v.Rule, ShouldBeEmpty)
			So(f.Passes(c), ShouldBeTrue)
		})

		Convey("When the distance exceeds the rider travel limit", func() {
			c.Distance = distance.Known(22)
			v := f.Check(c)
			So(v.Passed, ShouldBeFalse)
			So(v.Rule, ShouldEqual, eligibility.RuleLocation)
		})

		Convey("When the distance exceeds the owner radius only", func() {
			c.Rider.MaxTravelDistanceKm = 0
			c.Distance = distance.Known(30)
			So(f.Check(c).Rule, ShouldEqual, eligibility.RuleLocation)
		})

		Convey("When the distance is unknown", func() {
			c.Distance = distance.Unknown
			Convey("Then the location rule is skipped", func() {
				So(f.Passes(c), ShouldBeTrue)
			})
		})

		Convey("When a location code is missing", func() {
			c.Owner.LocationCode = ""
			c.Distance = distance.Known(500)
			So(f.Passes(c), ShouldBeTrue)
		})

		Convey("When the rider budget is below the minimum contribution", func() {
			c.Rider.BudgetMaxCents = 5000
			v := f.Check(c)
			So(v.Passed, ShouldBeFalse)
			So(v.Rule, ShouldEqual, eligibility.RuleBudget)
			So(v.Reason, ShouldContainSubstring, "5000")
		})

		Convey("When the rider budget is unset", func() {
			c.Rider.BudgetMaxCents = 0
			c.Listing.ContributionMinCents = 1_000_000
			So(f.Passes(c), ShouldBeTrue)
		})

		Convey("When the rider lacks experience", func() {
			c.Rider.ExperienceYears = 1
			So(f.Check(c).Rule, ShouldEqual, eligibility.RuleExperience)
		})

		Convey("When insurance is required but missing", func() {
			c.Rider.InsuranceCoverage = false
			So(f.Check(c).Rule, ShouldEqual, eligibility.RuleInsurance)
		})

		Convey("When several rules fail", func() {
			c.Distance = distance.Known(100)
			c.Rider.BudgetMaxCents = 1
			c.Rider.InsuranceCoverage = false
			Convey("Then the first rule in order is reported", func() {
				So(f.Check(c).Rule, ShouldEqual, eligibility.RuleLocation)
			})
		})
	})
}

func TestFilterAgeRule(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f := eligibility.NewFilter(eligibility.WithClock(func() time.Time { return now }))

	Convey("Given an owner accepting riders aged 16 to 40", t, func() {
		c := baseCandidate()
		c.Owner.MinRiderAge = 16
		c.Owner.MaxRiderAge = 40

		Convey("When the rider is 15", func() {
			c.Rider.DateOfBirth = time.Date(2010, 6, 2, 0, 0, 0, 0, time.UTC)
			So(f.Check(c).Rule, ShouldEqual, eligibility.RuleAge)
		})

		Convey("When the rider turned 16 today", func() {
			c.Rider.DateOfBirth = time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC)
			So(f.Passes(c), ShouldBeTrue)
		})

		Convey("When the rider is 41", func() {
			c.Rider.DateOfBirth = time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)
			So(f.Check(c).Rule, ShouldEqual, eligibility.RuleAge)
		})

		Convey("When the date of birth is unknown", func() {
			So(f.Passes(c), ShouldBeTrue)
		})
	})
}
