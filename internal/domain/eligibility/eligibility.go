// Package eligibility applies the hard rules that exclude a listing from a
// rider's candidate set before any scoring happens.
package eligibility

import (
	"fmt"
	"time"

	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/model"
)

// Rule names, in evaluation order.
const (
	RuleLocation   = "location"
	RuleBudget     = "budget"
	RuleExperience = "experience"
	RuleInsurance  = "insurance"
	RuleAge        = "age"
)

// Candidate is one (rider, listing) pairing with everything needed to judge
// and score it.
type Candidate struct {
	Rider    *model.RiderProfile
	Owner    *model.OwnerProfile
	Listing  *model.Listing
	Horse    *model.Horse
	Distance distance.Result
}

// Verdict is the outcome of a filter check. Rule and Reason are empty when
// the candidate passed.
type Verdict struct {
	Passed bool   `json:"passed"`
	Rule   string `json:"rule,omitempty"`
	Reason string `json:"reason,omitempty"`
}

var pass = Verdict{Passed: true}

func reject(rule, format string, args ...any) Verdict {
	return Verdict{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// Option configures a Filter.
type Option func(*Filter)

// WithClock sets the time source used by the age rule.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		if now != nil {
			f.now = now
		}
	}
}

// Filter evaluates the hard eligibility rules. It holds no mutable state and
// is safe for concurrent use.
type Filter struct {
	now func() time.Time
}

// NewFilter creates a filter.
func NewFilter(opts ...Option) *Filter {
	f := &Filter{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Passes reports whether c survives every rule.
func (f *Filter) Passes(c Candidate) bool {
	return f.Check(c).Passed
}

// Check runs the rules in order and stops at the first failure.
func (f *Filter) Check(c Candidate) Verdict {
	if c.Rider == nil || c.Listing == nil {
		return pass
	}
	for _, rule := range []func(Candidate) Verdict{
		checkLocation,
		checkBudget,
		checkExperience,
		checkInsurance,
		f.checkAge,
	} {
		if v := rule(c); !v.Passed {
			return v
		}
	}
	return pass
}

func checkLocation(c Candidate) Verdict {
	if c.Owner == nil || c.Rider.LocationCode == "" || c.Owner.LocationCode == "" {
		return pass
	}
	if !c.Distance.Known {
		return pass
	}
	d := c.Distance.Km
	if limit := c.Rider.MaxTravelDistanceKm; limit > 0 && d > limit {
		return reject(RuleLocation, "distance %.1fkm exceeds rider travel limit %.1fkm", d, limit)
	}
	if radius := c.Owner.VisibleRadiusKm; radius > 0 && d > radius {
		return reject(RuleLocation, "distance %.1fkm exceeds owner radius %.1fkm", d, radius)
	}
	return pass
}

func checkBudget(c Candidate) Verdict {
	budget := c.Rider.BudgetMaxCents
	if budget > 0 && budget < c.Listing.ContributionMinCents {
		return reject(RuleBudget, "budget %d below minimum contribution %d", budget, c.Listing.ContributionMinCents)
	}
	return pass
}

func checkExperience(c Candidate) Verdict {
	if c.Owner == nil {
		return pass
	}
	minYears := c.Owner.MinExperienceYears
	if minYears > 0 && c.Rider.ExperienceYears < minYears {
		return reject(RuleExperience, "%d years of experience, owner requires %d", c.Rider.ExperienceYears, minYears)
	}
	return pass
}

func checkInsurance(c Candidate) Verdict {
	if c.Owner != nil && c.Owner.InsuranceRequired && !c.Rider.InsuranceCoverage {
		return reject(RuleInsurance, "owner requires insurance coverage")
	}
	return pass
}

func (f *Filter) checkAge(c Candidate) Verdict {
	if c.Owner == nil || (c.Owner.MinRiderAge <= 0 && c.Owner.MaxRiderAge <= 0) {
		return pass
	}
	age := c.Rider.AgeAt(f.now())
	if age < 0 {
		return pass
	}
	if c.Owner.MinRiderAge > 0 && age < c.Owner.MinRiderAge {
		return reject(RuleAge, "rider age %d below minimum %d", age, c.Owner.MinRiderAge)
	}
	if c.Owner.MaxRiderAge > 0 && age > c.Owner.MaxRiderAge {
		return reject(RuleAge, "rider age %d above maximum %d", age, c.Owner.MaxRiderAge)
	}
	return pass
}
