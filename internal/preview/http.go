package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/paddock/internal/adapters/http/api"
)

// remote queries a running server over its public API.
type remote struct {
	baseURL string
	client  *http.Client
}

func newRemote(baseURL string, timeout time.Duration) *remote {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &remote{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type remoteCandidate struct {
	ListingID  string   `json:"listing_id"`
	HorseName  string   `json:"horse_name"`
	OwnerName  string   `json:"owner_name"`
	Location   string   `json:"location"`
	MatchScore float64  `json:"match_score"`
	DistanceKm *float64 `json:"distance_km"`
}

func (r *remote) Rank(ctx context.Context, rider string, limit int) ([]Row, error) {
	var got []remoteCandidate
	path := "/v1/candidates?limit=" + strconv.Itoa(limit)
	if err := r.get(ctx, rider, path, &got); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(got))
	for i, c := range got {
		rows = append(rows, Row{
			Rider:      rider,
			Rank:       i + 1,
			ListingID:  c.ListingID,
			HorseName:  c.HorseName,
			OwnerName:  c.OwnerName,
			Location:   c.Location,
			MatchScore: c.MatchScore,
			DistanceKm: c.DistanceKm,
		})
	}
	return rows, nil
}

func (r *remote) Explain(ctx context.Context, rider, listingID string) (Explanation, error) {
	var exp Explanation
	path := "/v1/candidates/" + url.PathEscape(listingID) + "/score"
	if err := r.get(ctx, rider, path, &exp); err != nil {
		return Explanation{}, err
	}
	exp.Rider = rider
	return exp, nil
}

func (r *remote) Close() {
	r.client.CloseIdleConnections()
}

// get performs a GET as rider and decodes the JSON body into dst.
func (r *remote) get(ctx context.Context, rider, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(api.UserHeader, rider)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d: %s", ErrHTTPStatus, path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
