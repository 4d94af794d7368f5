package store

const schema = `
CREATE TABLE IF NOT EXISTS items (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL DEFAULT '',
    genres       TEXT NOT NULL DEFAULT '[]',
    released_at  DATETIME NOT NULL,
    added_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_released_at ON items(released_at);

CREATE TABLE IF NOT EXISTS preferences (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id  TEXT NOT NULL,
    genre    TEXT NOT NULL,
    score    REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_preferences_user ON preferences(user_id);

CREATE TABLE IF NOT EXISTS related_users (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     TEXT NOT NULL,
    related_id  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_related_users_user ON related_users(user_id);
`
