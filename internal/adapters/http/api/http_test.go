package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/paddock/internal/adapters/http/api"
	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/domain/distance"
	"github.com/okian/paddock/internal/domain/ledger"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/ranking"
)

// engine bundles the real domain services over a memory store.
type engine struct {
	*ranking.Ranker
	*ledger.Ledger
	*repository.MemoryStore
}

// brokenRanker fails every ranking call.
type brokenRanker struct {
	*engine
}

func (brokenRanker) Rank(context.Context, string, int) ([]ranking.Ranked, error) {
	return nil, errors.New("disk on fire")
}

func seed(ctx context.Context, store *repository.MemoryStore) {
	created := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	So(store.PutOwnerProfile(ctx, model.OwnerProfile{UserID: "o1", DisplayName: "Olga", LocationCode: "A"}), ShouldBeNil)
	So(store.PutRiderProfile(ctx, model.RiderProfile{UserID: "r1", DisplayName: "Rita", LocationCode: "B", BudgetMaxCents: 10000}), ShouldBeNil)
	So(store.PutHorse(ctx, model.Horse{ID: "h1", OwnerID: "o1", Name: "Star"}), ShouldBeNil)
	So(store.PutListing(ctx, model.Listing{
		ID: "l1", HorseID: "h1", ContributionMinCents: 5000, ContributionType: model.ContributionMonthly,
		Active: true, CreatedAt: created,
	}), ShouldBeNil)
	So(store.PutListing(ctx, model.Listing{
		ID: "l2", HorseID: "h1", ContributionMinCents: 50000, ContributionType: model.ContributionMonthly,
		Active: true, CreatedAt: created,
	}), ShouldBeNil)
}

func newEngine(store *repository.MemoryStore) *engine {
	return &engine{
		Ranker:      ranking.New(store, store, ranking.WithDistance(distance.Constant(5))),
		Ledger:      ledger.New(store, store),
		MemoryStore: store,
	}
}

func do(mux http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(api.UserHeader, user)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

type candidate struct {
	ListingID    string   `json:"listing_id"`
	HorseName    string   `json:"horse_name"`
	OwnerName    string   `json:"owner_name"`
	Location     string   `json:"location"`
	MatchScore   float64  `json:"match_score"`
	DistanceKm   *float64 `json:"distance_km"`
	Contribution struct {
		MinCents int64  `json:"min_cents"`
		Type     string `json:"type"`
	} `json:"contribution"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeBody(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server over a seeded memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seed(ctx, store)

		mux := http.NewServeMux()
		api.NewServer(newEngine(store)).Register(ctx, mux)

		Convey("Health serves the Prometheus exposition", func() {
			w := do(mux, http.MethodGet, "/healthz", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Stats reports store counts", func() {
			w := do(mux, http.MethodGet, "/stats", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var counts repository.Counts
			decodeBody(w, &counts)
			So(counts.Listings, ShouldEqual, 2)
			So(counts.ActiveListings, ShouldEqual, 2)
			So(counts.RiderProfiles, ShouldEqual, 1)
		})

		Convey("Requests without identity are rejected", func() {
			w := do(mux, http.MethodGet, "/v1/candidates", "", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			var body errorBody
			decodeBody(w, &body)
			So(body.Code, ShouldEqual, "unauthorized")
		})

		Convey("Candidates exclude listings over budget", func() {
			w := do(mux, http.MethodGet, "/v1/candidates", "r1", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var got []candidate
			decodeBody(w, &got)
			So(got, ShouldHaveLength, 1)
			So(got[0].ListingID, ShouldEqual, "l1")
			So(got[0].HorseName, ShouldEqual, "Star")
			So(got[0].OwnerName, ShouldEqual, "Olga")
			So(got[0].Location, ShouldEqual, "A")
			So(got[0].Contribution.MinCents, ShouldEqual, 5000)
			So(got[0].DistanceKm, ShouldNotBeNil)
			So(*got[0].DistanceKm, ShouldEqual, 5)
			So(got[0].MatchScore, ShouldBeBetweenOrEqual, 0, 100)
		})

		Convey("Candidate limits outside 1..50 are bad requests", func() {
			for _, q := range []string{"0", "51", "-3", "ten"} {
				w := do(mux, http.MethodGet, "/v1/candidates?limit="+q, "r1", "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"bad_request"`)
				So(w.Body.String(), ShouldContainSubstring, "1..50")
			}
			So(do(mux, http.MethodGet, "/v1/candidates?limit=50", "r1", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("A rider without a profile gets 404", func() {
			w := do(mux, http.MethodGet, "/v1/candidates", "ghost", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Liking a listing", func() {
			w := do(mux, http.MethodPost, "/v1/likes", "r1", `{"listing_id":"l1"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)

			var resp struct {
				Like  model.Like         `json:"like"`
				Match *model.MutualMatch `json:"match"`
			}
			decodeBody(w, &resp)
			So(resp.Like.ID, ShouldNotBeEmpty)
			So(resp.Like.FromUserID, ShouldEqual, "r1")
			So(resp.Match, ShouldBeNil)

			Convey("a second like is a conflict", func() {
				w := do(mux, http.MethodPost, "/v1/likes", "r1", `{"listing_id":"l1"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
			})

			Convey("the liked listing leaves the candidate list", func() {
				w := do(mux, http.MethodGet, "/v1/candidates", "r1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})

			Convey("the like is listed", func() {
				w := do(mux, http.MethodGet, "/v1/likes", "r1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var likes []model.Like
				decodeBody(w, &likes)
				So(likes, ShouldHaveLength, 1)
			})

			Convey("the owner's interest completes a match visible to both", func() {
				w := do(mux, http.MethodPost, "/v1/owner-interests", "o1", `{"rider_id":"r1","listing_id":"l1"}`)
				So(w.Code, ShouldEqual, http.StatusCreated)

				var oi struct {
					Interest model.OwnerInterest `json:"interest"`
					Match    *model.MutualMatch  `json:"match"`
				}
				decodeBody(w, &oi)
				So(oi.Match, ShouldNotBeNil)
				So(oi.Match.RiderID, ShouldEqual, "r1")
				So(oi.Match.PaidChat, ShouldBeFalse)

				for _, user := range []string{"r1", "o1"} {
					w := do(mux, http.MethodGet, "/v1/matches", user, "")
					So(w.Code, ShouldEqual, http.StatusOK)
					var matches []model.MutualMatch
					decodeBody(w, &matches)
					So(matches, ShouldHaveLength, 1)
					So(matches[0].ListingID, ShouldEqual, "l1")
				}
			})
		})

		Convey("Liking rejects bad input", func() {
			So(do(mux, http.MethodPost, "/v1/likes", "r1", `{"listing_id":"nope"}`).Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/v1/likes", "r1", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/v1/likes", "r1", `{"listing_id":"l1","extra":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/v1/likes", "r1", `not json`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Owner interest from a non-owner is rejected", func() {
			w := do(mux, http.MethodPost, "/v1/owner-interests", "intruder", `{"rider_id":"r1","listing_id":"l1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Matches start empty", func() {
			w := do(mux, http.MethodGet, "/v1/matches", "r1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})

		Convey("Score explains a filtered listing", func() {
			w := do(mux, http.MethodGet, "/v1/candidates/l2/score", "r1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got struct {
				Eligible   bool               `json:"eligible"`
				Rule       string             `json:"rule"`
				Reason     string             `json:"reason"`
				Components map[string]float64 `json:"components"`
			}
			decodeBody(w, &got)
			So(got.Eligible, ShouldBeFalse)
			So(got.Rule, ShouldEqual, "budget")
			So(got.Reason, ShouldNotBeEmpty)
			So(got.Components, ShouldBeEmpty)
		})

		Convey("Score breaks down an eligible listing", func() {
			w := do(mux, http.MethodGet, "/v1/candidates/l1/score", "r1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got struct {
				Eligible   bool               `json:"eligible"`
				Strategy   string             `json:"strategy"`
				Components map[string]float64 `json:"components"`
			}
			decodeBody(w, &got)
			So(got.Eligible, ShouldBeTrue)
			So(got.Strategy, ShouldEqual, "additive")
			So(got.Components, ShouldNotBeEmpty)
		})

		Convey("Score of an unknown listing is 404", func() {
			So(do(mux, http.MethodGet, "/v1/candidates/nope/score", "r1", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Patching a rider profile creates it when absent", func() {
			w := do(mux, http.MethodPatch, "/v1/profiles/rider", "r9",
				`{"display_name":"Nina","level":"advanced","willing_tasks":["grooming"],"date_of_birth":"2000-01-02T00:00:00Z"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var got struct {
				UserID       string   `json:"user_id"`
				DisplayName  string   `json:"display_name"`
				Level        string   `json:"level"`
				WillingTasks []string `json:"willing_tasks"`
				DateOfBirth  string   `json:"date_of_birth"`
			}
			decodeBody(w, &got)
			So(got.UserID, ShouldEqual, "r9")
			So(got.DisplayName, ShouldEqual, "Nina")
			So(got.Level, ShouldEqual, model.LevelAdvanced)
			So(got.WillingTasks, ShouldResemble, []string{"grooming"})
			So(got.DateOfBirth, ShouldStartWith, "2000-01-02")

			stored, err := store.RiderProfile(ctx, "r9")
			So(err, ShouldBeNil)
			So(stored.Level, ShouldEqual, model.LevelAdvanced)
		})

		Convey("Patching validates fields", func() {
			So(do(mux, http.MethodPatch, "/v1/profiles/rider", "r1", `{"level":"expert"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPatch, "/v1/profiles/rider", "r1", `{"budget_max_cents":-1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPatch, "/v1/profiles/owner", "o1", `{"min_rider_age":500}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Patching an owner profile keeps untouched fields", func() {
			w := do(mux, http.MethodPatch, "/v1/profiles/owner", "o1", `{"insurance_required":true}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var got struct {
				DisplayName       string `json:"display_name"`
				InsuranceRequired bool   `json:"insurance_required"`
			}
			decodeBody(w, &got)
			So(got.DisplayName, ShouldEqual, "Olga")
			So(got.InsuranceRequired, ShouldBeTrue)
		})
	})
}

func TestServer_Options(t *testing.T) {
	Convey("Given server options", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seed(ctx, store)

		Convey("A like rate limiter returns 429 once the burst is spent", func() {
			mux := http.NewServeMux()
			api.NewServer(newEngine(store), api.WithRateLimiter(api.NewRateLimiter(1, 1))).Register(ctx, mux)

			So(do(mux, http.MethodPost, "/v1/likes", "r1", `{"listing_id":"l1"}`).Code, ShouldEqual, http.StatusCreated)
			w := do(mux, http.MethodPost, "/v1/likes", "r1", `{"listing_id":"l2"}`)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(do(mux, http.MethodPost, "/v1/likes", "r2", `{"listing_id":"l2"}`).Code, ShouldEqual, http.StatusCreated)
		})

		Convey("Candidate limits are configurable", func() {
			mux := http.NewServeMux()
			api.NewServer(newEngine(store), api.WithCandidateLimits(1, 2)).Register(ctx, mux)

			So(do(mux, http.MethodGet, "/v1/candidates?limit=3", "r1", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/v1/candidates?limit=2", "r1", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Internal failures hide their cause", func() {
			mux := http.NewServeMux()
			api.NewServer(brokenRanker{newEngine(store)}).Register(ctx, mux)

			w := do(mux, http.MethodGet, "/v1/candidates", "r1", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			var body errorBody
			decodeBody(w, &body)
			So(body.Code, ShouldEqual, "internal_error")
			So(body.Message, ShouldNotContainSubstring, "disk on fire")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		Convey("WrapKind matches both kind and cause", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, model.ErrListingNotFound)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: listing not found")
		})

		Convey("NewKind carries only the kind", func() {
			err := api.NewKind("api.op", api.ErrRateLimited)
			So(errors.Is(err, api.ErrRateLimited), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: rate limited")
		})

		Convey("Wrap keeps nil nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(errors.Is(api.Wrap("api.op", model.ErrDuplicateLike), model.ErrConflict), ShouldBeTrue)
		})
	})
}

func TestRateLimiter(t *testing.T) {
	Convey("Given a per-user rate limiter", t, func() {
		Convey("It spends the burst then refuses", func() {
			rl := api.NewRateLimiter(1, 2)
			So(rl.Allow("u1"), ShouldBeTrue)
			So(rl.Allow("u1"), ShouldBeTrue)
			So(rl.Allow("u1"), ShouldBeFalse)
			So(rl.Allow("u2"), ShouldBeTrue)
		})

		Convey("A non-positive rate disables limiting", func() {
			rl := api.NewRateLimiter(0, 0)
			for range 100 {
				So(rl.Allow("u1"), ShouldBeTrue)
			}
		})

		Convey("A nil limiter allows everything", func() {
			var rl *api.RateLimiter
			So(rl.Allow("u1"), ShouldBeTrue)
		})
	})
}
