package activities

// manual_activity_id_seq hands out negative ids to spreadsheet-only
// activities, so they never collide with Strava ids.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS activity (
		id                   BIGINT PRIMARY KEY,
		source               VARCHAR(16) NOT NULL DEFAULT 'strava',
		name                 TEXT NOT NULL,
		type                 VARCHAR(64) NOT NULL,
		sport_type           VARCHAR(64),
		workout_type         INTEGER,
		start_date           TIMESTAMP WITHOUT TIME ZONE NOT NULL,
		moving_time          INTEGER NOT NULL DEFAULT 0,
		elapsed_time         INTEGER NOT NULL DEFAULT 0,
		distance             DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_elevation_gain DOUBLE PRECISION NOT NULL DEFAULT 0,
		average_speed        DOUBLE PRECISION,
		max_speed            DOUBLE PRECISION,
		average_heartrate    DOUBLE PRECISION,
		max_heartrate        DOUBLE PRECISION,
		elev_high            DOUBLE PRECISION,
		elev_low             DOUBLE PRECISION,
		description          TEXT,
		calories             DOUBLE PRECISION,
		location_country     TEXT,
		location_state       TEXT,
		location_city        TEXT,
		featured             BOOLEAN NOT NULL DEFAULT FALSE,
		last_synced_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS activity_type_start_date_idx ON activity (type, start_date);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS activity_sheet_identity_idx
		ON activity (name, (start_date::date)) WHERE source = 'sheet';`,
	`CREATE SEQUENCE IF NOT EXISTS manual_activity_id_seq
		INCREMENT BY -1 MINVALUE -9223372036854775808 MAXVALUE -1 START WITH -1;`,
	`CREATE TABLE IF NOT EXISTS race (
		id          SERIAL PRIMARY KEY,
		activity_id BIGINT NOT NULL UNIQUE REFERENCES activity (id) ON DELETE CASCADE,
		placement   INTEGER,
		category    TEXT,
		race_type   TEXT,
		photo_url   TEXT
	);`,
}
