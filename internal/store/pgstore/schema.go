package pgstore

// schemaSQL is the DDL for spec.md §3, verbatim: dimension tables, core
// entities, and the RAG entities, with pgvector for the embedding column
// and native tsvector columns on chunk/sentence text. Grounded in
// SuperOuss-meritDraft-backend's cmd/create-schema/main.go (CREATE TABLE
// + CREATE EXTENSION vector pattern) and bbiangul-go-reason's
// store/schema.go (single embedded-DDL-string approach).
const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS case_type (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS stage_type (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS document_type (
    id                  BIGSERIAL PRIMARY KEY,
    name                TEXT NOT NULL,
    role                TEXT NOT NULL CHECK (role IN ('court','party','evidence','administrative')),
    has_decision        BOOLEAN NOT NULL DEFAULT false,
    is_adversarial      BOOLEAN NOT NULL DEFAULT false,
    processing_strategy TEXT NOT NULL CHECK (processing_strategy IN ('case_outcome','brief_extraction','evidence_indexing','text_only')),
    UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS court (
    id       BIGSERIAL PRIMARY KEY,
    name     TEXT NOT NULL,
    level    TEXT NOT NULL CHECK (level IN ('Supreme Court','Court of Appeals','Superior Court','District Court','Municipal Court')),
    district TEXT,
    county   TEXT,
    UNIQUE (name, district)
);

CREATE TABLE IF NOT EXISTS legal_taxonomy (
    id        BIGSERIAL PRIMARY KEY,
    parent_id BIGINT REFERENCES legal_taxonomy(id),
    name      TEXT NOT NULL,
    level     TEXT NOT NULL CHECK (level IN ('case_type','category','subcategory'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_legal_taxonomy_natural_key
    ON legal_taxonomy (COALESCE(parent_id, -1), name, level);

CREATE TABLE IF NOT EXISTS statute (
    id           BIGSERIAL PRIMARY KEY,
    jurisdiction TEXT NOT NULL,
    code         TEXT NOT NULL,
    title        TEXT,
    section      TEXT,
    UNIQUE (jurisdiction, code)
);

CREATE TABLE IF NOT EXISTS judge (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS "case" (
    case_id                 BIGSERIAL PRIMARY KEY,
    case_file_id            TEXT NOT NULL,
    case_file_id_normalized TEXT NOT NULL,
    court_id                BIGINT REFERENCES court(id),
    case_type_id            BIGINT REFERENCES case_type(id),
    stage_type_id           BIGINT REFERENCES stage_type(id),
    document_type_id        BIGINT REFERENCES document_type(id),
    title                   TEXT NOT NULL,
    docket_number           TEXT,
    court_level             TEXT NOT NULL,
    district                TEXT,
    county                  TEXT,
    decision_year           INT,
    decision_month          INT,
    appeal_published_date   DATE,
    publication_status      TEXT NOT NULL CHECK (publication_status IN ('published','unpublished','unknown')),
    opinion_type            TEXT,
    full_text               TEXT NOT NULL DEFAULT '',
    processing_status       TEXT NOT NULL DEFAULT 'pending' CHECK (processing_status IN ('pending','text_extracted','ai_processed','embedded','fully_processed','failed')),
    appeal_outcome          TEXT,
    winner_legal_role       TEXT,
    winner_personal_role    TEXT,
    source_file             TEXT NOT NULL,
    extraction_timestamp    TIMESTAMPTZ NOT NULL DEFAULT now(),
    parent_case_id          BIGINT REFERENCES "case"(case_id),
    UNIQUE (case_file_id_normalized, court_level)
);

CREATE TABLE IF NOT EXISTS party (
    id            BIGSERIAL PRIMARY KEY,
    case_id       BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    name          TEXT NOT NULL,
    legal_role    TEXT NOT NULL,
    personal_role TEXT
);

CREATE TABLE IF NOT EXISTS attorney (
    id                 BIGSERIAL PRIMARY KEY,
    case_id            BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    name               TEXT NOT NULL,
    firm               TEXT,
    representing_role  TEXT
);

CREATE TABLE IF NOT EXISTS case_judge (
    case_id  BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    judge_id BIGINT NOT NULL REFERENCES judge(id),
    role     TEXT NOT NULL CHECK (role IN ('author','concurring','dissenting','per_curiam')),
    PRIMARY KEY (case_id, judge_id, role)
);

CREATE TABLE IF NOT EXISTS issue_decision (
    id                BIGSERIAL PRIMARY KEY,
    case_id           BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    issue_summary     TEXT NOT NULL,
    decision_summary  TEXT,
    issue_outcome     TEXT CHECK (issue_outcome IN ('Affirmed','Dismissed','Reversed','Remanded','Mixed')),
    winner_legal_role TEXT,
    taxonomy_id       BIGINT NOT NULL REFERENCES legal_taxonomy(id)
);

CREATE TABLE IF NOT EXISTS argument (
    id       BIGSERIAL PRIMARY KEY,
    issue_id BIGINT NOT NULL REFERENCES issue_decision(id) ON DELETE CASCADE,
    side     TEXT NOT NULL CHECK (side IN ('appellant','respondent','amicus')),
    text     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS citation_edge (
    id                   BIGSERIAL PRIMARY KEY,
    source_case_id       BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    target_case_id       BIGINT REFERENCES "case"(case_id),
    target_case_citation TEXT NOT NULL,
    relationship         TEXT NOT NULL CHECK (relationship IN ('cites','distinguishes','overrules','follows','affirms','reverses','discusses')),
    importance           TEXT CHECK (importance IN ('primary','secondary','passing'))
);

CREATE TABLE IF NOT EXISTS statute_citation (
    id         BIGSERIAL PRIMARY KEY,
    case_id    BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    statute_id BIGINT NOT NULL REFERENCES statute(id),
    context    TEXT
);

CREATE TABLE IF NOT EXISTS issue_rcw (
    issue_id   BIGINT NOT NULL REFERENCES issue_decision(id) ON DELETE CASCADE,
    statute_id BIGINT NOT NULL REFERENCES statute(id),
    PRIMARY KEY (issue_id, statute_id)
);

CREATE TABLE IF NOT EXISTS case_chunk (
    chunk_id       BIGSERIAL PRIMARY KEY,
    case_id        BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_order    INT NOT NULL CHECK (chunk_order >= 1),
    section        TEXT NOT NULL,
    text           TEXT NOT NULL,
    sentence_count INT NOT NULL DEFAULT 0,
    tsv            TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', text)) STORED,
    UNIQUE (case_id, chunk_order)
);
CREATE INDEX IF NOT EXISTS idx_case_chunk_tsv ON case_chunk USING GIN (tsv);

CREATE TABLE IF NOT EXISTS case_sentence (
    sentence_id          BIGSERIAL PRIMARY KEY,
    case_id              BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_id             BIGINT NOT NULL REFERENCES case_chunk(chunk_id) ON DELETE CASCADE,
    sentence_order       INT NOT NULL CHECK (sentence_order >= 1),
    global_sentence_order INT NOT NULL CHECK (global_sentence_order >= 1),
    text                 TEXT NOT NULL,
    word_count           INT NOT NULL DEFAULT 0,
    tsv                  TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', text)) STORED,
    UNIQUE (case_id, chunk_id, sentence_order),
    UNIQUE (case_id, global_sentence_order)
);
CREATE INDEX IF NOT EXISTS idx_case_sentence_tsv ON case_sentence USING GIN (tsv);

CREATE TABLE IF NOT EXISTS word_dictionary (
    word_id BIGSERIAL PRIMARY KEY,
    word    TEXT NOT NULL UNIQUE,
    df      BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS word_occurrence (
    word_id     BIGINT NOT NULL REFERENCES word_dictionary(word_id),
    case_id     BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_id    BIGINT NOT NULL REFERENCES case_chunk(chunk_id) ON DELETE CASCADE,
    sentence_id BIGINT NOT NULL REFERENCES case_sentence(sentence_id) ON DELETE CASCADE,
    position    INT NOT NULL CHECK (position >= 0),
    PRIMARY KEY (word_id, sentence_id, position)
);

CREATE TABLE IF NOT EXISTS case_phrase (
    phrase_id       BIGSERIAL PRIMARY KEY,
    case_id         BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    phrase          TEXT NOT NULL,
    n               INT NOT NULL CHECK (n IN (2,3,4)),
    frequency       INT NOT NULL CHECK (frequency >= 1),
    example_sentence BIGINT REFERENCES case_sentence(sentence_id),
    example_chunk    BIGINT REFERENCES case_chunk(chunk_id),
    UNIQUE (case_id, phrase)
);

CREATE TABLE IF NOT EXISTS embedding (
    embedding_id BIGSERIAL PRIMARY KEY,
    case_id      BIGINT NOT NULL REFERENCES "case"(case_id) ON DELETE CASCADE,
    chunk_id     BIGINT REFERENCES case_chunk(chunk_id) ON DELETE CASCADE,
    document_id  TEXT,
    text         TEXT NOT NULL,
    vector       VECTOR(1024) NOT NULL,
    chunk_order  INT NOT NULL DEFAULT 0,
    section      TEXT
);
CREATE INDEX IF NOT EXISTS idx_embedding_vector ON embedding USING ivfflat (vector vector_cosine_ops) WITH (lists = 100);
`
