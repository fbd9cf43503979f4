package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/report"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("battle report not found")

// ErrReportExists is returned when a report for the same battle is saved twice.
var ErrReportExists = errors.New("battle report already exists")

// Summary is the listing view of an archived report, without its event log.
type Summary struct {
	ID       int64
	BattleID string
	Result   string
	Winner   string
	Rounds   int
	EndedAt  time.Time
}

// ReportRepository provides battle report persistence operations.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts rep and returns its row ID.
//
// Precondition: rep.BattleID must be non-empty.
// Postcondition: Returns ErrReportExists if the battle was already archived.
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) (int64, error) {
	if rep.BattleID == "" {
		return 0, errors.New("saving report: battle id must not be empty")
	}
	damage := rep.DamageDealt
	if damage == nil {
		damage = map[string]int{}
	}
	deaths := rep.Deaths
	if deaths == nil {
		deaths = []string{}
	}
	events := rep.Events
	if events == nil {
		events = []report.EventRecord{}
	}

	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO battle_reports
		   (battle_id, result, winner, rounds, started_at, ended_at, damage, deaths, events)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		rep.BattleID, rep.Result, rep.Winner, rep.Rounds, rep.StartedAt, rep.EndedAt,
		damage, deaths, events,
	).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, ErrReportExists
		}
		return 0, fmt.Errorf("inserting battle report: %w", err)
	}
	return id, nil
}

// Get retrieves the full report for battleID.
//
// Postcondition: Returns ErrReportNotFound if no report exists.
func (r *ReportRepository) Get(ctx context.Context, battleID string) (*report.Report, error) {
	rep := &report.Report{}
	err := r.db.QueryRow(ctx,
		`SELECT battle_id, result, winner, rounds, started_at, ended_at, damage, deaths, events
		 FROM battle_reports WHERE battle_id = $1`,
		battleID,
	).Scan(&rep.BattleID, &rep.Result, &rep.Winner, &rep.Rounds, &rep.StartedAt, &rep.EndedAt,
		&rep.DamageDealt, &rep.Deaths, &rep.Events)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("querying battle report: %w", err)
	}
	return rep, nil
}

// ListRecent returns up to limit summaries, newest first.
//
// Precondition: limit > 0.
func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, battle_id, result, winner, rounds, ended_at
		 FROM battle_reports ORDER BY ended_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.BattleID, &s.Result, &s.Winner, &s.Rounds, &s.EndedAt); err != nil {
			return nil, fmt.Errorf("scanning battle report: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle reports: %w", err)
	}
	return out, nil
}

// Delete removes the report for battleID.
//
// Postcondition: Returns ErrReportNotFound if nothing was deleted.
func (r *ReportRepository) Delete(ctx context.Context, battleID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM battle_reports WHERE battle_id = $1`, battleID)
	if err != nil {
		return fmt.Errorf("deleting battle report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
