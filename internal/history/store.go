// Package history persists analysis runs in a SQLite database under
// .bpkit/bpkit.db. Besides the run archive it tracks the last seen version
// of every document, which lets it flag version regressions the stateless
// engine cannot see.
package history

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"bpkit/internal/report"
	"bpkit/internal/semver"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	generated_at   TEXT NOT NULL,
	document_count INTEGER NOT NULL,
	link_count     INTEGER NOT NULL,
	error_count    INTEGER NOT NULL,
	warning_count  INTEGER NOT NULL,
	info_count     INTEGER NOT NULL,
	passing        INTEGER NOT NULL,
	payload        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);

CREATE TABLE IF NOT EXISTS doc_versions (
	path       TEXT PRIMARY KEY,
	version    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store is the run archive for one corpus.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the history database at <corpusRoot>/.bpkit/bpkit.db.
func Open(corpusRoot string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dir := filepath.Join(corpusRoot, ".bpkit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	dbPath := filepath.Join(dir, "bpkit.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{conn: conn, logger: logger, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// SaveRun archives one report. The full report JSON is gzip-compressed into
// the payload column; the summary columns stay queryable without inflating it.
func (s *Store) SaveRun(r *report.Report) error {
	payload, err := compressReport(r)
	if err != nil {
		return err
	}

	passing := 0
	if r.IsPassing() {
		passing = 1
	}

	_, err = s.conn.Exec(`
		INSERT INTO runs (id, generated_at, document_count, link_count,
			error_count, warning_count, info_count, passing, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GeneratedAt.UTC().Format(time.RFC3339Nano),
		r.DocumentCount, r.LinkCount,
		r.ErrorCount, r.WarningCount, r.InfoCount, passing, payload)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}

	s.logger.Debug("run archived", "id", r.ID, "payload_bytes", len(payload))
	return nil
}

// CheckVersions compares each document's current version against the last
// recorded one and updates the record. A version moving backwards is a
// warning: versions are expected to only ever increase.
func (s *Store) CheckVersions(r *report.Report) ([]report.Finding, error) {
	var findings []report.Finding
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range r.Documents {
		current, err := semver.Parse(doc.Version)
		if err != nil {
			continue
		}

		var recorded string
		err = tx.QueryRow(`SELECT version FROM doc_versions WHERE path = ?`, doc.Path).Scan(&recorded)
		switch {
		case err == sql.ErrNoRows:
			// first sighting
		case err != nil:
			return nil, fmt.Errorf("read version for %s: %w", doc.Path, err)
		default:
			if last, perr := semver.Parse(recorded); perr == nil && current.Less(last) {
				findings = append(findings, report.Finding{
					Severity:   report.SeverityWarning,
					Kind:       report.KindVersionMismatch,
					File:       doc.Path,
					Message:    fmt.Sprintf("version went backwards: v%s after v%s", doc.Version, recorded),
					Suggestion: "document versions should only increase; restore or bump the version",
				})
			}
		}

		if _, err := tx.Exec(`
			INSERT INTO doc_versions (path, version, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET version = excluded.version, updated_at = excluded.updated_at`,
			doc.Path, doc.Version, now); err != nil {
			return nil, fmt.Errorf("record version for %s: %w", doc.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit versions: %w", err)
	}
	return findings, nil
}

// RunSummary is one archived run without its payload.
type RunSummary struct {
	ID            string    `json:"id"`
	GeneratedAt   time.Time `json:"generated_at"`
	DocumentCount int       `json:"document_count"`
	LinkCount     int       `json:"link_count"`
	ErrorCount    int       `json:"error_count"`
	WarningCount  int       `json:"warning_count"`
	InfoCount     int       `json:"info_count"`
	Passing       bool      `json:"passing"`
}

// ListRuns returns archived runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	query := `
		SELECT id, generated_at, document_count, link_count,
			error_count, warning_count, info_count, passing
		FROM runs ORDER BY generated_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var generatedAt string
		var passing int
		if err := rows.Scan(&r.ID, &generatedAt, &r.DocumentCount, &r.LinkCount,
			&r.ErrorCount, &r.WarningCount, &r.InfoCount, &passing); err != nil {
			return nil, err
		}
		r.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)
		r.Passing = passing == 1
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun inflates and returns one archived report by ID.
func (s *Store) GetRun(id string) (*report.Report, error) {
	var payload []byte
	err := s.conn.QueryRow(`SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	return decompressReport(payload)
}

// Prune deletes all but the newest keep runs. keep <= 0 keeps everything.
func (s *Store) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	result, err := s.conn.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY generated_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		s.logger.Debug("pruned runs", "deleted", n, "kept", keep)
	}
	return nil
}

func compressReport(r *report.Report) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressReport(payload []byte) (*report.Report, error) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("inflate report: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate report: %w", err)
	}

	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
