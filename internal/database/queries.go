package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"time"
)

// ErrNotFound is returned by point lookups when no record exists.
var ErrNotFound = errors.New("record not found")

// mtimeEpsilon is the tolerance when comparing stored and on-disk
// modification timestamps (seconds). Filesystems round mtimes
// differently, so exact float equality would force needless re-hashing.
const mtimeEpsilon = 0.001

// Upsert inserts or replaces the record for rec.Path. The write is
// committed before Upsert returns. recorded_at keeps its first-insert
// value when an existing row is replaced.
func (s *Store) Upsert(ctx context.Context, rec *MediaRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	INSERT INTO media_records (path, fingerprint, size, mod_time, kind, width, height, duration)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		fingerprint = excluded.fingerprint,
		size = excluded.size,
		mod_time = excluded.mod_time,
		kind = excluded.kind,
		width = excluded.width,
		height = excluded.height,
		duration = excluded.duration
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.Path,
		rec.Fingerprint,
		rec.Size,
		rec.ModTime,
		string(rec.Kind),
		nullableInt(rec.Width),
		nullableInt(rec.Height),
		nullableFloat(rec.Duration),
	)
	if err != nil {
		err = fmt.Errorf("failed to upsert %s: %w", rec.Path, err)
	}
	return err
}

// Exists reports whether a record for path exists with a modification
// time matching modTime within epsilon. The scan planner uses this as
// its sole incremental-skip rule.
func (s *Store) Exists(ctx context.Context, path string, modTime float64) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("exists", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stored float64
	err = s.db.QueryRowContext(ctx,
		"SELECT mod_time FROM media_records WHERE path = ?", path,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", path, err)
	}

	return math.Abs(stored-modTime) < mtimeEpsilon, nil
}

// Get returns the record for path, or ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (*MediaRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
	SELECT path, fingerprint, size, mod_time, kind, width, height, duration, recorded_at
	FROM media_records WHERE path = ?`, path)

	rec, scanErr := scanRecord(row)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if scanErr != nil {
		err = fmt.Errorf("failed to get %s: %w", path, scanErr)
		return nil, err
	}
	return rec, nil
}

// Stats returns aggregate statistics over the store. DuplicateFiles is
// derived as TotalFiles - DistinctFingerprints.
func (s *Store) Stats(ctx context.Context) (LibraryStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var st LibraryStats
	err = s.db.QueryRowContext(ctx, `
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN kind = 'image' THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN kind = 'video' THEN 1 ELSE 0 END), 0),
	       COUNT(DISTINCT fingerprint)
	FROM media_records`,
	).Scan(&st.TotalFiles, &st.Images, &st.Videos, &st.DistinctFingerprints)
	if err != nil {
		return LibraryStats{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	st.DuplicateFiles = st.TotalFiles - st.DistinctFingerprints
	return st, nil
}

// DuplicateGroups returns every fingerprint shared by two or more
// records. Groups are ordered by member count descending, members by
// size descending.
func (s *Store) DuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("duplicate_groups", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
	SELECT fingerprint, COUNT(*) AS members
	FROM media_records
	GROUP BY fingerprint
	HAVING members > 1
	ORDER BY members DESC, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate duplicate fingerprints: %w", err)
	}
	defer rows.Close()

	var fingerprints []string
	for rows.Next() {
		var fp string
		var count int
		if err = rows.Scan(&fp, &count); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate fingerprint: %w", err)
		}
		fingerprints = append(fingerprints, fp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("duplicate fingerprint iteration failed: %w", err)
	}

	groups := make([]DuplicateGroup, 0, len(fingerprints))
	for _, fp := range fingerprints {
		members, memberErr := s.groupMembers(ctx, fp)
		if memberErr != nil {
			err = memberErr
			return nil, err
		}
		groups = append(groups, DuplicateGroup{Fingerprint: fp, Members: members})
	}

	return groups, nil
}

func (s *Store) groupMembers(ctx context.Context, fingerprint string) ([]MediaRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT path, fingerprint, size, mod_time, kind, width, height, duration, recorded_at
	FROM media_records
	WHERE fingerprint = ?
	ORDER BY size DESC, path`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", fingerprint, err)
	}
	defer rows.Close()

	var members []MediaRecord
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", scanErr)
		}
		members = append(members, *rec)
	}
	return members, rows.Err()
}

// Prune removes records whose path no longer resolves to a file on
// disk. Deletions happen in a single transaction; the row count removed
// is returned. This walks every stored path, it is not indexed.
func (s *Store) Prune(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("prune", start, err) }()

	rows, err := s.db.QueryContext(ctx, "SELECT path FROM media_records")
	if err != nil {
		return 0, fmt.Errorf("failed to list stored paths: %w", err)
	}

	var stale []string
	for rows.Next() {
		var path string
		if err = rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan stored path: %w", err)
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			stale = append(stale, path)
		}
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("path iteration failed: %w", err)
	}
	rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin prune transaction: %w", err)
	}

	for _, path := range stale {
		if _, err = tx.ExecContext(ctx, "DELETE FROM media_records WHERE path = ?", path); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Errorf("rollback after prune failure also failed: %v", rbErr)
			}
			return 0, fmt.Errorf("failed to delete stale record %s: %w", path, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	s.log.Infof("pruned %d stale records", len(stale))
	return len(stale), nil
}

// Reset deletes all records, preserving the schema. Used for a full
// rebuild of the library fingerprints.
func (s *Store) Reset(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("reset", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err = s.db.ExecContext(ctx, "DELETE FROM media_records")
	if err != nil {
		err = fmt.Errorf("failed to reset store: %w", err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*MediaRecord, error) {
	var rec MediaRecord
	var kind string
	var width, height sql.NullInt64
	var duration sql.NullFloat64
	var recordedAt int64

	err := row.Scan(&rec.Path, &rec.Fingerprint, &rec.Size, &rec.ModTime,
		&kind, &width, &height, &duration, &recordedAt)
	if err != nil {
		return nil, err
	}

	rec.Kind = kindFromString(kind)
	if width.Valid {
		w := int(width.Int64)
		rec.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		rec.Height = &h
	}
	if duration.Valid {
		d := duration.Float64
		rec.Duration = &d
	}
	rec.RecordedAt = time.Unix(recordedAt, 0)
	return &rec, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
