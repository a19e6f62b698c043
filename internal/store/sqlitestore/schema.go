package sqlitestore

import "fmt"

// schemaSQL mirrors pgstore's DDL for the same spec.md §3 data model,
// SQLite-dialect: INTEGER PRIMARY KEY rowids instead of BIGSERIAL, a
// vec0 virtual table for the embedding vector column instead of
// pgvector, grounded in bbiangul-go-reason's store/schema.go (separate
// content table + vec0 virtual table, joined by a shared id).
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS case_type (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS stage_type (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS document_type (
    id                  INTEGER PRIMARY KEY,
    name                TEXT NOT NULL UNIQUE,
    role                TEXT NOT NULL,
    has_decision        INTEGER NOT NULL DEFAULT 0,
    is_adversarial      INTEGER NOT NULL DEFAULT 0,
    processing_strategy TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS court (
    id       INTEGER PRIMARY KEY,
    name     TEXT NOT NULL,
    level    TEXT NOT NULL,
    district TEXT,
    county   TEXT,
    UNIQUE (name, district)
);

CREATE TABLE IF NOT EXISTS legal_taxonomy (
    id        INTEGER PRIMARY KEY,
    parent_id INTEGER REFERENCES legal_taxonomy(id),
    name      TEXT NOT NULL,
    level     TEXT NOT NULL
);
-- SQLite treats every NULL as distinct under a plain UNIQUE constraint,
-- so the natural key uses an expression index over coalesce(parent_id,-1)
-- to match the Postgres schema's (coalesce(parent_id,-1), name, level).
CREATE UNIQUE INDEX IF NOT EXISTS idx_legal_taxonomy_natural_key
    ON legal_taxonomy (coalesce(parent_id, -1), name, level);

CREATE TABLE IF NOT EXISTS statute (
    id           INTEGER PRIMARY KEY,
    jurisdiction TEXT NOT NULL,
    code         TEXT NOT NULL,
    title        TEXT,
    section      TEXT,
    UNIQUE (jurisdiction, code)
);

CREATE TABLE IF NOT EXISTS judge (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS "case" (
    case_id                 INTEGER PRIMARY KEY,
    case_file_id            TEXT NOT NULL,
    case_file_id_normalized TEXT NOT NULL,
    court_id                INTEGER REFERENCES court(id),
    case_type_id            INTEGER REFERENCES case_type(id),
    stage_type_id           INTEGER REFERENCES stage_type(id),
    document_type_id        INTEGER REFERENCES document_type(id),
    title                   TEXT NOT NULL,
    docket_number           TEXT,
    court_level             TEXT NOT NULL,
    district                TEXT,
    county                  TEXT,
    decision_year           INTEGER,
    decision_month          INTEGER,
    appeal_published_date   TEXT,
    publication_status      TEXT NOT NULL,
    opinion_type            TEXT,
    full_text               TEXT NOT NULL DEFAULT '',
    processing_status       TEXT NOT NULL DEFAULT 'pending',
    appeal_outcome          TEXT,
    winner_legal_role       TEXT,
    winner_personal_role    TEXT,
    source_file             TEXT NOT NULL,
    extraction_timestamp    TEXT NOT NULL,
    parent_case_id          INTEGER REFERENCES "case"(case_id),
    UNIQUE (case_file_id_normalized, court_level)
);

CREATE TABLE IF NOT EXISTS party (
    id            INTEGER PRIMARY KEY,
    case_id       INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    name          TEXT NOT NULL,
    legal_role    TEXT NOT NULL,
    personal_role TEXT
);

CREATE TABLE IF NOT EXISTS attorney (
    id                INTEGER PRIMARY KEY,
    case_id           INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    name              TEXT NOT NULL,
    firm              TEXT,
    representing_role TEXT
);

CREATE TABLE IF NOT EXISTS case_judge (
    case_id  INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    judge_id INTEGER NOT NULL REFERENCES judge(id),
    role     TEXT NOT NULL,
    PRIMARY KEY (case_id, judge_id, role)
);

CREATE TABLE IF NOT EXISTS issue_decision (
    id                INTEGER PRIMARY KEY,
    case_id           INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    issue_summary     TEXT NOT NULL,
    decision_summary  TEXT,
    issue_outcome     TEXT,
    winner_legal_role TEXT,
    taxonomy_id       INTEGER NOT NULL REFERENCES legal_taxonomy(id)
);

CREATE TABLE IF NOT EXISTS argument (
    id       INTEGER PRIMARY KEY,
    issue_id INTEGER NOT NULL REFERENCES issue_decision(id) ON DELETE CASCADE,
    side     TEXT NOT NULL,
    text     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS citation_edge (
    id                   INTEGER PRIMARY KEY,
    source_case_id       INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    target_case_id       INTEGER REFERENCES "case"(case_id),
    target_case_citation TEXT NOT NULL,
    relationship         TEXT NOT NULL,
    importance           TEXT
);

CREATE TABLE IF NOT EXISTS statute_citation (
    id         INTEGER PRIMARY KEY,
    case_id    INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    statute_id INTEGER NOT NULL REFERENCES statute(id),
    context    TEXT
);

CREATE TABLE IF NOT EXISTS issue_rcw (
    issue_id   INTEGER NOT NULL REFERENCES issue_decision(id) ON DELETE CASCADE,
    statute_id INTEGER NOT NULL REFERENCES statute(id),
    PRIMARY KEY (issue_id, statute_id)
);

CREATE TABLE IF NOT EXISTS case_chunk (
    chunk_id       INTEGER PRIMARY KEY,
    case_id        INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_order    INTEGER NOT NULL,
    section        TEXT NOT NULL,
    text           TEXT NOT NULL,
    sentence_count INTEGER NOT NULL DEFAULT 0,
    UNIQUE (case_id, chunk_order)
);

CREATE TABLE IF NOT EXISTS case_sentence (
    sentence_id           INTEGER PRIMARY KEY,
    case_id               INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_id              INTEGER NOT NULL REFERENCES case_chunk(chunk_id) ON DELETE CASCADE,
    sentence_order        INTEGER NOT NULL,
    global_sentence_order INTEGER NOT NULL,
    text                  TEXT NOT NULL,
    word_count            INTEGER NOT NULL DEFAULT 0,
    UNIQUE (case_id, chunk_id, sentence_order),
    UNIQUE (case_id, global_sentence_order)
);

CREATE TABLE IF NOT EXISTS word_dictionary (
    word_id INTEGER PRIMARY KEY,
    word    TEXT NOT NULL UNIQUE,
    df      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS word_occurrence (
    word_id     INTEGER NOT NULL REFERENCES word_dictionary(word_id),
    case_id     INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_id    INTEGER NOT NULL REFERENCES case_chunk(chunk_id) ON DELETE CASCADE,
    sentence_id INTEGER NOT NULL REFERENCES case_sentence(sentence_id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    PRIMARY KEY (word_id, sentence_id, position)
);

CREATE TABLE IF NOT EXISTS case_phrase (
    phrase_id        INTEGER PRIMARY KEY,
    case_id          INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    phrase           TEXT NOT NULL,
    n                INTEGER NOT NULL,
    frequency        INTEGER NOT NULL,
    example_sentence INTEGER REFERENCES case_sentence(sentence_id),
    example_chunk    INTEGER REFERENCES case_chunk(chunk_id),
    UNIQUE (case_id, phrase)
);

-- Embedding metadata lives in a normal table; the vector itself lives in
-- the paired vec0 virtual table below, joined by embedding_id.
CREATE TABLE IF NOT EXISTS embedding (
    embedding_id INTEGER PRIMARY KEY,
    case_id      INTEGER NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_id     INTEGER REFERENCES case_chunk(chunk_id) ON DELETE CASCADE,
    document_id  TEXT,
    text         TEXT NOT NULL,
    chunk_order  INTEGER NOT NULL DEFAULT 0,
    section      TEXT
);

CREATE VIRTUAL TABLE IF NOT EXISTS embedding_vec USING vec0(
    embedding_id INTEGER PRIMARY KEY,
    vector       float[%d]
);
`, embeddingDim)
}
