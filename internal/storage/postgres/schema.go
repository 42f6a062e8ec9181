package postgres

// schema mirrors the SQLite schema with PostgreSQL types.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    name TEXT NOT NULL,
    total DOUBLE PRECISION NOT NULL DEFAULT 0,
    service_enabled BOOLEAN NOT NULL,
    tax_enabled BOOLEAN NOT NULL,
    service_override DOUBLE PRECISION,
    tax_override DOUBLE PRECISION,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    UNIQUE (owner, kind, title)
);

CREATE TABLE IF NOT EXISTS participants (
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, id)
);

CREATE TABLE IF NOT EXISTS items (
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    price DOUBLE PRECISION NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, id)
);

CREATE TABLE IF NOT EXISTS item_assignments (
    bill_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (bill_id, item_id, participant_id),
    FOREIGN KEY (bill_id, item_id) REFERENCES items(bill_id, id) ON DELETE CASCADE,
    FOREIGN KEY (bill_id, participant_id) REFERENCES participants(bill_id, id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    owner TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    sort_order INTEGER NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
    id BIGSERIAL PRIMARY KEY,
    owner TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_owner_updated ON bills(owner, updated_at);
CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner, sort_order);
CREATE INDEX IF NOT EXISTS idx_chat_messages_owner ON chat_messages(owner, id);
`
