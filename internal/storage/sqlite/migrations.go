package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist. Monetary columns are TEXT
// holding decimal strings so no precision is lost in storage.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    store_name TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    subtotal TEXT NOT NULL,
    tax TEXT NOT NULL,
    total TEXT NOT NULL,
    subtotal_mismatch INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS receipt_items (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    name TEXT NOT NULL,
    unit_price TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    position INTEGER NOT NULL,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS split_sessions (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    tax_rate TEXT NOT NULL,
    tip_kind TEXT NOT NULL,
    tip_rate TEXT NOT NULL,
    tip_amount TEXT NOT NULL,
    finalized INTEGER NOT NULL DEFAULT 0,
    result_json TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS split_people (
    session_id TEXT NOT NULL,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (session_id, id),
    FOREIGN KEY (session_id) REFERENCES split_sessions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS split_assignments (
    session_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    PRIMARY KEY (session_id, item_id),
    FOREIGN KEY (session_id) REFERENCES split_sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_receipts_user_id ON receipts(user_id);
CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt_id ON receipt_items(receipt_id);
CREATE INDEX IF NOT EXISTS idx_split_sessions_receipt_id ON split_sessions(receipt_id);
CREATE INDEX IF NOT EXISTS idx_split_people_session_id ON split_people(session_id);
CREATE INDEX IF NOT EXISTS idx_split_assignments_session_id ON split_assignments(session_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
