// Package sqlstore implements repository.Store on SQLite or PostgreSQL
// through sqlx, with queries built by go-sqlbuilder.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"                    // postgres driver
	_ "github.com/ncruces/go-sqlite3/driver" // sqlite3 driver
	_ "github.com/ncruces/go-sqlite3/embed"  // bundled sqlite build

	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/pkg/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is a SQL-backed repository.Store.
type Store struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
	label  string
	logger logger.Logger
}

var _ repository.Store = (*Store)(nil)

// Open connects to the database named by driver and dsn and creates the
// schema when missing. For SQLite dsn may be a plain file path.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	s := &Store{label: driver, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		s.flavor = sqlbuilder.SQLite
		db, err = sqlx.Open("sqlite3", sqliteDSN(dsn))
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		s.flavor = sqlbuilder.PostgreSQL
		db, err = sqlx.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s.db = db

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info(ctx, "sql store ready", logger.String("driver", driver))
	return s, nil
}

func sqliteDSN(dsn string) string {
	if strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	return "file:" + dsn + "?" + sqlitePragmas
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close implements repository.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

// get runs a single-row select and maps sql.ErrNoRows to notFound.
func (s *Store) get(ctx context.Context, dest any, sb *sqlbuilder.SelectBuilder, notFound error) error {
	query, args := sb.BuildWithFlavor(s.flavor)
	err := s.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

func (s *Store) selectFrom(table string, cols []string, where func(sb *sqlbuilder.SelectBuilder) string) *sqlbuilder.SelectBuilder {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(cols...).From(table)
	if where != nil {
		sb.Where(where(sb))
	}
	return sb
}

// RiderProfile implements repository.Catalog.
func (s *Store) RiderProfile(ctx context.Context, userID string) (*model.RiderProfile, error) {
	return s.riderProfile(ctx, s.db, userID)
}

func (s *Store) riderProfile(ctx context.Context, q sqlx.QueryerContext, userID string) (*model.RiderProfile, error) {
	sb := s.selectFrom("rider_profiles", riderCols, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.Equal("user_id", userID)
	})
	query, args := sb.BuildWithFlavor(s.flavor)
	var row riderRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRiderProfileNotFound
		}
		return nil, fmt.Errorf("get rider profile: %w", err)
	}
	p := row.model()
	return &p, nil
}

// OwnerProfile implements repository.Catalog.
func (s *Store) OwnerProfile(ctx context.Context, userID string) (*model.OwnerProfile, error) {
	return s.ownerProfile(ctx, s.db, userID)
}

func (s *Store) ownerProfile(ctx context.Context, q sqlx.QueryerContext, userID string) (*model.OwnerProfile, error) {
	sb := s.selectFrom("owner_profiles", ownerCols, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.Equal("user_id", userID)
	})
	query, args := sb.BuildWithFlavor(s.flavor)
	var row ownerRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrOwnerProfileNotFound
		}
		return nil, fmt.Errorf("get owner profile: %w", err)
	}
	p := row.model()
	return &p, nil
}

// Horse implements repository.Catalog.
func (s *Store) Horse(ctx context.Context, id string) (*model.Horse, error) {
	var row horseRow
	sb := s.selectFrom("horses", horseCols, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.Equal("id", id)
	})
	if err := s.get(ctx, &row, sb, model.ErrHorseNotFound); err != nil {
		return nil, err
	}
	h := row.model()
	return &h, nil
}

// Listing implements repository.Catalog.
func (s *Store) Listing(ctx context.Context, id string) (*model.Listing, error) {
	var row listingRow
	sb := s.selectFrom("listings", listingCols, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.Equal("id", id)
	})
	if err := s.get(ctx, &row, sb, model.ErrListingNotFound); err != nil {
		return nil, err
	}
	l := row.model()
	return &l, nil
}

// ActiveListings implements repository.Catalog.
func (s *Store) ActiveListings(ctx context.Context) ([]model.Listing, error) {
	defer repository.Track(s.label, "active_listings")()
	sb := s.selectFrom("listings", listingCols, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.Equal("active", true)
	})
	sb.OrderBy("id")
	return s.listings(ctx, sb)
}

// ListingsByOwner implements repository.Catalog.
func (s *Store) ListingsByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	cols := make([]string, len(listingCols))
	for i, c := range listingCols {
		cols[i] = "l." + c
	}
	sb := s.flavor.NewSelectBuilder()
	sb.Select(cols...).
		From("listings l").
		Join("horses h", "h.id = l.horse_id").
		Where(sb.Equal("h.owner_id", ownerID)).
		OrderBy("l.id")
	return s.listings(ctx, sb)
}

func (s *Store) listings(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]model.Listing, error) {
	query, args := sb.BuildWithFlavor(s.flavor)
	var rows []listingRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}
	out := make([]model.Listing, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// upsert builds INSERT ... ON CONFLICT (key) DO UPDATE for every non-key column.
func (s *Store) upsert(table, key string, cols []string, values []any) (string, []any) {
	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(table).Cols(cols...).Values(values...)
	sets := make([]string, 0, len(cols)-1)
	for _, c := range cols {
		if c != key {
			sets = append(sets, c+" = excluded."+c)
		}
	}
	ib.SQL("ON CONFLICT (" + key + ") DO UPDATE SET " + strings.Join(sets, ", "))
	return ib.BuildWithFlavor(s.flavor)
}

func (s *Store) exec(ctx context.Context, e sqlx.ExecerContext, op, query string, args []any) error {
	defer repository.Track(s.label, op)()
	if _, err := e.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PutRiderProfile implements repository.Catalog.
func (s *Store) PutRiderProfile(ctx context.Context, p model.RiderProfile) error {
	if p.UserID == "" {
		return repository.ErrMissingID
	}
	q, args := s.upsert("rider_profiles", "user_id", riderCols, riderValues(p))
	return s.exec(ctx, s.db, "put_rider_profile", q, args)
}

// PutOwnerProfile implements repository.Catalog.
func (s *Store) PutOwnerProfile(ctx context.Context, p model.OwnerProfile) error {
	if p.UserID == "" {
		return repository.ErrMissingID
	}
	q, args := s.upsert("owner_profiles", "user_id", ownerCols, ownerValues(p))
	return s.exec(ctx, s.db, "put_owner_profile", q, args)
}

// PutHorse implements repository.Catalog.
func (s *Store) PutHorse(ctx context.Context, h model.Horse) error {
	if h.ID == "" {
		return repository.ErrMissingID
	}
	q, args := s.upsert("horses", "id", horseCols, horseValues(h))
	return s.exec(ctx, s.db, "put_horse", q, args)
}

// PutListing implements repository.Catalog.
func (s *Store) PutListing(ctx context.Context, l model.Listing) error {
	if l.ID == "" {
		return repository.ErrMissingID
	}
	q, args := s.upsert("listings", "id", listingCols, listingValues(l))
	return s.exec(ctx, s.db, "put_listing", q, args)
}

// PatchRiderProfile implements repository.Catalog.
func (s *Store) PatchRiderProfile(ctx context.Context, userID string, patch model.RiderProfilePatch) (*model.RiderProfile, error) {
	if userID == "" {
		return nil, repository.ErrMissingID
	}
	var out model.RiderProfile
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.riderProfile(ctx, tx, userID)
		if errors.Is(err, model.ErrNotFound) {
			p, err = &model.RiderProfile{UserID: userID}, nil
		}
		if err != nil {
			return err
		}
		patch.Apply(p)
		q, args := s.upsert("rider_profiles", "user_id", riderCols, riderValues(*p))
		if err := s.exec(ctx, tx, "patch_rider_profile", q, args); err != nil {
			return err
		}
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchOwnerProfile implements repository.Catalog.
func (s *Store) PatchOwnerProfile(ctx context.Context, userID string, patch model.OwnerProfilePatch) (*model.OwnerProfile, error) {
	if userID == "" {
		return nil, repository.ErrMissingID
	}
	var out model.OwnerProfile
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.ownerProfile(ctx, tx, userID)
		if errors.Is(err, model.ErrNotFound) {
			p, err = &model.OwnerProfile{UserID: userID}, nil
		}
		if err != nil {
			return err
		}
		patch.Apply(p)
		q, args := s.upsert("owner_profiles", "user_id", ownerCols, ownerValues(*p))
		if err := s.exec(ctx, tx, "patch_owner_profile", q, args); err != nil {
			return err
		}
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// insertIfAbsent runs INSERT ... ON CONFLICT DO NOTHING and reports whether
// a row was written.
func (s *Store) insertIfAbsent(ctx context.Context, op, table string, cols []string, values []any) (bool, error) {
	defer repository.Track(s.label, op)()
	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(table).Cols(cols...).Values(values...)
	ib.SQL("ON CONFLICT DO NOTHING")
	query, args := ib.BuildWithFlavor(s.flavor)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n > 0, nil
}

// InsertLike implements repository.LedgerStore.
func (s *Store) InsertLike(ctx context.Context, l model.Like) error {
	ok, err := s.insertIfAbsent(ctx, "insert_like", "likes",
		[]string{"id", "from_user_id", "listing_id", "created_at"},
		[]any{l.ID, l.FromUserID, l.ListingID, toNanos(l.CreatedAt)})
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrDuplicateLike
	}
	return nil
}

// InsertOwnerInterest implements repository.LedgerStore.
func (s *Store) InsertOwnerInterest(ctx context.Context, oi model.OwnerInterest) error {
	ok, err := s.insertIfAbsent(ctx, "insert_owner_interest", "owner_interests",
		[]string{"id", "owner_id", "rider_id", "listing_id", "created_at"},
		[]any{oi.ID, oi.OwnerID, oi.RiderID, oi.ListingID, toNanos(oi.CreatedAt)})
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrDuplicateInterest
	}
	return nil
}

// InsertMatch implements repository.LedgerStore.
func (s *Store) InsertMatch(ctx context.Context, m model.MutualMatch) (bool, error) {
	return s.insertIfAbsent(ctx, "insert_match", "mutual_matches", matchCols,
		[]any{m.ID, m.RiderID, m.ListingID, m.Score, m.Strategy, m.PaidChat, toNanos(m.CreatedAt)})
}

func (s *Store) exists(ctx context.Context, table string, conds func(sb *sqlbuilder.SelectBuilder) []string) (bool, error) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select("COUNT(*)").From(table).Where(conds(sb)...)
	query, args := sb.BuildWithFlavor(s.flavor)
	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return n > 0, nil
}

// HasLike implements repository.LedgerStore.
func (s *Store) HasLike(ctx context.Context, userID, listingID string) (bool, error) {
	return s.exists(ctx, "likes", func(sb *sqlbuilder.SelectBuilder) []string {
		return []string{sb.Equal("from_user_id", userID), sb.Equal("listing_id", listingID)}
	})
}

// HasOwnerInterest implements repository.LedgerStore.
func (s *Store) HasOwnerInterest(ctx context.Context, ownerID, riderID, listingID string) (bool, error) {
	return s.exists(ctx, "owner_interests", func(sb *sqlbuilder.SelectBuilder) []string {
		return []string{
			sb.Equal("owner_id", ownerID),
			sb.Equal("rider_id", riderID),
			sb.Equal("listing_id", listingID),
		}
	})
}

// LikesByUser implements repository.LedgerStore.
func (s *Store) LikesByUser(ctx context.Context, userID string) ([]model.Like, error) {
	sb := s.selectFrom("likes", []string{"id", "from_user_id", "listing_id", "created_at"}, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.Equal("from_user_id", userID)
	})
	sb.OrderBy("created_at", "id")
	query, args := sb.BuildWithFlavor(s.flavor)
	var rows []likeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select likes: %w", err)
	}
	out := make([]model.Like, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// MatchesByRider implements repository.LedgerStore.
func (s *Store) MatchesByRider(ctx context.Context, riderID string) ([]model.MutualMatch, error) {
	sb := s.selectFrom("mutual_matches", matchCols, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.Equal("rider_id", riderID)
	})
	return s.matches(ctx, sb)
}

// MatchesByListings implements repository.LedgerStore.
func (s *Store) MatchesByListings(ctx context.Context, listingIDs []string) ([]model.MutualMatch, error) {
	if len(listingIDs) == 0 {
		return nil, nil
	}
	ids := make([]any, len(listingIDs))
	for i, id := range listingIDs {
		ids[i] = id
	}
	sb := s.selectFrom("mutual_matches", matchCols, func(sb *sqlbuilder.SelectBuilder) string {
		return sb.In("listing_id", ids...)
	})
	return s.matches(ctx, sb)
}

func (s *Store) matches(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]model.MutualMatch, error) {
	sb.OrderBy("created_at", "id")
	query, args := sb.BuildWithFlavor(s.flavor)
	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	out := make([]model.MutualMatch, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// Counts implements repository.Store.
func (s *Store) Counts(ctx context.Context) (repository.Counts, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM rider_profiles) AS rider_profiles,
		(SELECT COUNT(*) FROM owner_profiles) AS owner_profiles,
		(SELECT COUNT(*) FROM horses) AS horses,
		(SELECT COUNT(*) FROM listings) AS listings,
		(SELECT COUNT(*) FROM listings WHERE active) AS active_listings,
		(SELECT COUNT(*) FROM likes) AS likes,
		(SELECT COUNT(*) FROM owner_interests) AS owner_interests,
		(SELECT COUNT(*) FROM mutual_matches) AS matches`
	var c repository.Counts
	if err := s.db.GetContext(ctx, &c, query); err != nil {
		return repository.Counts{}, fmt.Errorf("count records: %w", err)
	}
	return c, nil
}
