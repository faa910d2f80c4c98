package tracing

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// TransferQuery selects the transfers to list. Empty fields are ignored.
type TransferQuery struct {
	// Where selects the transfers of one device.
	Where string

	// What selects a direction, "read" or "write".
	What string

	// Result selects the transfers that ended with a status, e.g. "Cancelled".
	Result string

	// Limit caps the number of transfers returned. Zero means no cap.
	Limit int
}

// TransferRecord is one finished transfer read back from a recording.
type TransferRecord struct {
	ID        string
	Kind      string
	What      string
	Where     string
	Result    string
	StartTime time.Time
	EndTime   time.Time
	Stalls    int
}

// Duration returns how long the transfer ran.
func (r TransferRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// StepSummary tells how often a step was recorded, and by how many tasks.
type StepSummary struct {
	What  string
	Count int
	Tasks int
}

// TraceReader reads the tables that a DBTracer writes.
type TraceReader struct {
	*sql.DB
}

// NewTraceReader opens a recording file read-only.
func NewTraceReader(filename string) (*TraceReader, error) {
	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening recording %s: %w", filename, err)
	}

	return NewTraceReaderWithDB(db), nil
}

// NewTraceReaderWithDB reads the recording behind db.
func NewTraceReaderWithDB(db *sql.DB) *TraceReader {
	return &TraceReader{DB: db}
}

// ListTransfers returns the transfers that match the query in start order,
// each with its number of stalls, and the number of matching transfers
// before the limit is applied.
func (r *TraceReader) ListTransfers(
	ctx context.Context,
	query TransferQuery,
) ([]TransferRecord, int, error) {
	cond, args := query.conditions()

	var total int
	err := r.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trace t"+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting transfers: %w", err)
	}

	sqlStr := `
		SELECT t.ID, t.Kind, t.What, t.Location, t.Result,
			t.StartTime, t.EndTime, COUNT(s.TaskID)
		FROM trace t
		LEFT JOIN trace_steps s ON s.TaskID = t.ID AND s.What = ?` +
		cond + `
		GROUP BY t.ID
		ORDER BY t.StartTime`

	args = append([]any{"stall"}, args...)
	if query.Limit > 0 {
		sqlStr += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := r.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	records := []TransferRecord{}
	for rows.Next() {
		var (
			rec        TransferRecord
			start, end float64
		)

		err := rows.Scan(&rec.ID, &rec.Kind, &rec.What, &rec.Where,
			&rec.Result, &start, &end, &rec.Stalls)
		if err != nil {
			return nil, 0, err
		}

		rec.StartTime = fromSeconds(start)
		rec.EndTime = fromSeconds(end)
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

func (q TransferQuery) conditions() (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(column, value string) {
		if value != "" {
			conds = append(conds, "t."+column+" = ?")
			args = append(args, value)
		}
	}

	add("Location", q.Where)
	add("What", q.What)
	add("Result", q.Result)

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// SummarizeSteps counts the recorded steps by name.
func (r *TraceReader) SummarizeSteps(ctx context.Context) ([]StepSummary, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT What, COUNT(*), COUNT(DISTINCT TaskID)
		FROM trace_steps
		GROUP BY What
		ORDER BY What`)
	if err != nil {
		return nil, fmt.Errorf("summarizing steps: %w", err)
	}
	defer rows.Close()

	summaries := []StepSummary{}
	for rows.Next() {
		var s StepSummary
		if err := rows.Scan(&s.What, &s.Count, &s.Tasks); err != nil {
			return nil, err
		}

		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func fromSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second)))
}
