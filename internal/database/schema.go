package database

// Schema creates the chart store. Stored analyses keep the full result as a
// JSON blob next to the queryable birth columns; annual evaluations are
// cached per chart and year.
const Schema = `
CREATE TABLE IF NOT EXISTS charts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    gender TEXT NOT NULL,
    birth_year INTEGER NOT NULL,
    birth_month INTEGER NOT NULL,
    birth_day INTEGER NOT NULL,
    birth_hour INTEGER NOT NULL,
    birth_minute INTEGER NOT NULL DEFAULT 0,
    pattern TEXT,
    analysis_json TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_charts_created ON charts(created_at);

CREATE TABLE IF NOT EXISTS annual_evaluations (
    id INTEGER PRIMARY KEY,
    chart_id TEXT NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
    year INTEGER NOT NULL,
    verdict TEXT NOT NULL,
    score REAL NOT NULL,
    detail_json TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE(chart_id, year)
);

CREATE INDEX IF NOT EXISTS idx_annual_chart ON annual_evaluations(chart_id);
`
