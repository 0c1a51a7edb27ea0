package sqlite

// meta holds the stored database version and a sealed check value that
// tells a wrong key apart from an empty database. Each accounts row is one
// partition sealed with the database key.
const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key         TEXT PRIMARY KEY,
    value       BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    type        TEXT NOT NULL,
    login       TEXT NOT NULL,
    position    INTEGER NOT NULL,
    data        BLOB NOT NULL,
    updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (type, login)
);

CREATE INDEX IF NOT EXISTS idx_accounts_position ON accounts(position);
`
