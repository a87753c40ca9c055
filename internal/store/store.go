// Package store keeps a history of analysed shot groups in SQLite.
//
// Only the numbers a record-keeping layer needs are stored: metrics, the
// configuration that produced them and where the photograph came from.
// Images themselves are never persisted.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ironsheep/shot-group-mcp/internal/shots"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("result not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store is a SQLite-backed result history.
type Store struct {
	*sql.DB
}

// Result is one saved analysis.
type Result struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Label     string    `json:"label,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	ShotCount         int          `json:"shot_count"`
	MeanPointOfImpact *shots.Point `json:"mean_point_of_impact"`
	MeanRadiusMm      float64      `json:"mean_radius_mm"`
	ExtremeSpreadMm   float64      `json:"extreme_spread_mm"`

	Sensitivity      int     `json:"sensitivity"`
	MinAreaPx        float64 `json:"min_area_px"`
	ReferenceWidthMm float64 `json:"reference_width_mm"`
}

// NewResult builds a record from a session's current state.
func NewResult(sessionID, label, imagePath string, cfg shots.Config, m shots.Metrics) Result {
	r := Result{
		SessionID:        sessionID,
		Label:            label,
		ImagePath:        imagePath,
		ShotCount:        m.ShotCount,
		MeanRadiusMm:     m.MeanRadiusMm,
		ExtremeSpreadMm:  m.ExtremeSpreadMm,
		Sensitivity:      cfg.Sensitivity,
		MinAreaPx:        cfg.MinAreaPx,
		ReferenceWidthMm: cfg.ReferenceWidthMm,
	}
	if m.MeanPointOfImpact != nil {
		mpi := *m.MeanPointOfImpact
		r.MeanPointOfImpact = &mpi
	}
	return r
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers anyway; one connection also keeps an
	// in-memory database alive and shared.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			result_id          INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id         TEXT NOT NULL,
			label              TEXT NOT NULL DEFAULT '',
			image_path         TEXT NOT NULL DEFAULT '',
			created_at         BIGINT NOT NULL,
			shot_count         INTEGER NOT NULL,
			mpi_x              DOUBLE,
			mpi_y              DOUBLE,
			mean_radius_mm     DOUBLE NOT NULL,
			extreme_spread_mm  DOUBLE NOT NULL,
			sensitivity        INTEGER NOT NULL,
			min_area_px        DOUBLE NOT NULL,
			reference_width_mm DOUBLE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_results_session ON results(session_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db}, nil
}

// Save inserts r and sets its ID. A zero CreatedAt is set to now.
func (s *Store) Save(ctx context.Context, r *Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	var mpiX, mpiY sql.NullFloat64
	if r.MeanPointOfImpact != nil {
		mpiX = sql.NullFloat64{Float64: r.MeanPointOfImpact.X, Valid: true}
		mpiY = sql.NullFloat64{Float64: r.MeanPointOfImpact.Y, Valid: true}
	}

	res, err := s.ExecContext(ctx,
		`INSERT INTO results (
			session_id, label, image_path, created_at, shot_count, mpi_x, mpi_y,
			mean_radius_mm, extreme_spread_mm, sensitivity, min_area_px,
			reference_width_mm
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Label, r.ImagePath, r.CreatedAt.UnixNano(), r.ShotCount, mpiX, mpiY,
		r.MeanRadiusMm, r.ExtremeSpreadMm, r.Sensitivity, r.MinAreaPx,
		r.ReferenceWidthMm,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	r.ID = id
	return nil
}

const selectResult = `
	SELECT result_id, session_id, label, image_path, created_at, shot_count,
		mpi_x, mpi_y, mean_radius_mm, extreme_spread_mm, sensitivity,
		min_area_px, reference_width_mm
	FROM results`

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (Result, error) {
	var (
		r          Result
		createdAt  int64
		mpiX, mpiY sql.NullFloat64
	)
	err := row.Scan(
		&r.ID, &r.SessionID, &r.Label, &r.ImagePath, &createdAt, &r.ShotCount,
		&mpiX, &mpiY, &r.MeanRadiusMm, &r.ExtremeSpreadMm, &r.Sensitivity,
		&r.MinAreaPx, &r.ReferenceWidthMm,
	)
	if err != nil {
		return Result{}, err
	}
	r.CreatedAt = time.Unix(0, createdAt)
	if mpiX.Valid && mpiY.Valid {
		r.MeanPointOfImpact = &shots.Point{X: mpiX.Float64, Y: mpiY.Float64}
	}
	return r, nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*Result, error) {
	r, err := scanResult(s.QueryRowContext(ctx, selectResult+` WHERE result_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return &r, nil
}

// List returns up to limit records, newest first. A non-empty sessionID
// restricts the list to that session. A non-positive limit means
// DefaultListLimit.
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := selectResult
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC, result_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}
