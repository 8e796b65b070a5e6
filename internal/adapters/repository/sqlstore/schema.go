package sqlstore

// schema is portable between SQLite and PostgreSQL. Timestamps are unix
// nanoseconds, 0 meaning unset. Set and map fields are JSON text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rider_profiles (
		user_id          TEXT PRIMARY KEY,
		display_name     TEXT NOT NULL DEFAULT '',
		location_code    TEXT NOT NULL DEFAULT '',
		max_travel_km    DOUBLE PRECISION NOT NULL DEFAULT 0,
		budget_min_cents BIGINT NOT NULL DEFAULT 0,
		budget_max_cents BIGINT NOT NULL DEFAULT 0,
		level            TEXT NOT NULL DEFAULT '',
		experience_years INTEGER NOT NULL DEFAULT 0,
		disciplines      TEXT NOT NULL DEFAULT 'null',
		personality      TEXT NOT NULL DEFAULT 'null',
		willing_tasks    TEXT NOT NULL DEFAULT 'null',
		materials        TEXT NOT NULL DEFAULT 'null',
		insurance        BOOLEAN NOT NULL DEFAULT FALSE,
		available_days   TEXT NOT NULL DEFAULT 'null',
		time_blocks      TEXT NOT NULL DEFAULT 'null',
		date_of_birth    BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS owner_profiles (
		user_id              TEXT PRIMARY KEY,
		display_name         TEXT NOT NULL DEFAULT '',
		location_code        TEXT NOT NULL DEFAULT '',
		visible_radius_km    DOUBLE PRECISION NOT NULL DEFAULT 0,
		min_experience_years INTEGER NOT NULL DEFAULT 0,
		required_tasks       TEXT NOT NULL DEFAULT 'null',
		insurance_required   BOOLEAN NOT NULL DEFAULT FALSE,
		bit_policy           TEXT NOT NULL DEFAULT '',
		available_days       TEXT NOT NULL DEFAULT 'null',
		min_rider_age        INTEGER NOT NULL DEFAULT 0,
		max_rider_age        INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS horses (
		id              TEXT PRIMARY KEY,
		owner_id        TEXT NOT NULL,
		name            TEXT NOT NULL DEFAULT '',
		energy          TEXT NOT NULL DEFAULT '',
		disciplines     TEXT NOT NULL DEFAULT 'null',
		temperament     TEXT NOT NULL DEFAULT 'null',
		bitless_capable BOOLEAN NOT NULL DEFAULT FALSE,
		needs_transport BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS horses_owner_idx ON horses (owner_id)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                     TEXT PRIMARY KEY,
		horse_id               TEXT NOT NULL,
		contribution_min_cents BIGINT NOT NULL DEFAULT 0,
		contribution_type      TEXT NOT NULL DEFAULT '',
		expected_tasks         TEXT NOT NULL DEFAULT 'null',
		availability           TEXT NOT NULL DEFAULT 'null',
		active                 BOOLEAN NOT NULL DEFAULT FALSE,
		created_at             BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS listings_horse_idx ON listings (horse_id)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id           TEXT PRIMARY KEY,
		from_user_id TEXT NOT NULL,
		listing_id   TEXT NOT NULL,
		created_at   BIGINT NOT NULL,
		UNIQUE (from_user_id, listing_id)
	)`,
	`CREATE TABLE IF NOT EXISTS owner_interests (
		id         TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		rider_id   TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		UNIQUE (owner_id, rider_id, listing_id)
	)`,
	`CREATE TABLE IF NOT EXISTS mutual_matches (
		id         TEXT PRIMARY KEY,
		rider_id   TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		score      DOUBLE PRECISION NOT NULL,
		strategy   TEXT NOT NULL DEFAULT '',
		paid_chat  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		UNIQUE (rider_id, listing_id)
	)`,
	`CREATE INDEX IF NOT EXISTS mutual_matches_listing_idx ON mutual_matches (listing_id)`,
}
