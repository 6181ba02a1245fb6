package data

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/target/residence-console/internal/data/pgxutil"
	apperrors "github.com/target/residence-console/internal/errors"
	"github.com/target/residence-console/internal/ports"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ActivityRepo stores console activity in the console_activity table.
type ActivityRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.ActivityRecorder = (*ActivityRepo)(nil)

// NewActivityRepo creates a new ActivityRepo with real time provider.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewActivityRepoWithTimeProvider creates a new ActivityRepo with a custom time provider.
func NewActivityRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ActivityRepo {
	return &ActivityRepo{DB: db, timeProvider: tp}
}

type activityRow struct {
	ID        uuid.UUID `db:"id"`
	Actor     string    `db:"actor"`
	Role      string    `db:"role"`
	Resource  string    `db:"resource"`
	Action    string    `db:"action"`
	RecordID  string    `db:"record_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r activityRow) entry() ports.ActivityEntry {
	return ports.ActivityEntry{
		ID:        r.ID.String(),
		Actor:     r.Actor,
		Role:      r.Role,
		Resource:  r.Resource,
		Action:    ports.ActivityAction(r.Action),
		RecordID:  r.RecordID,
		CreatedAt: r.CreatedAt,
	}
}

// Record inserts one entry. A missing ID or timestamp is filled in.
func (r *ActivityRepo) Record(ctx context.Context, entry ports.ActivityEntry) error {
	if err := validateActivity(entry); err != nil {
		return err
	}

	id := uuid.New()
	if entry.ID != "" {
		parsed, err := uuid.Parse(entry.ID)
		if err != nil {
			return apperrors.ValidationField("id", "Activity id must be a UUID.")
		}
		id = parsed
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.timeProvider.Now()
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO console_activity (id, actor, role, resource, action, record_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			id,
			strings.TrimSpace(entry.Actor),
			entry.Role,
			entry.Resource,
			string(entry.Action),
			entry.RecordID,
			createdAt.UTC(),
		)
		return err
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// List returns entries newest first, optionally filtered by resource.
func (r *ActivityRepo) List(ctx context.Context, opts ports.ActivityListOptions) ([]ports.ActivityEntry, error) {
	limit := opts.Limit
	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}
	offset := max(opts.Offset, 0)

	var rows []activityRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, `
			SELECT id, actor, role, resource, action, record_id, created_at
			FROM console_activity
			WHERE ($1 = '' OR resource = $1)
			ORDER BY created_at DESC, id
			LIMIT $2 OFFSET $3
		`, opts.Resource, limit, offset)
		if err != nil {
			return err
		}
		defer res.Close()
		rows, err = pgx.CollectRows(res, pgx.RowToStructByName[activityRow])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out := make([]ports.ActivityEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].entry()
	}
	return out, nil
}

func validateActivity(e ports.ActivityEntry) error {
	switch {
	case strings.TrimSpace(e.Actor) == "":
		return apperrors.ValidationField("actor", "Actor is required.")
	case strings.TrimSpace(e.Resource) == "":
		return apperrors.ValidationField("resource", "Resource is required.")
	}
	switch e.Action {
	case ports.ActivityCreate, ports.ActivityUpdate, ports.ActivityDelete:
		return nil
	default:
		return apperrors.ValidationField("action", "Action must be create, update or delete.")
	}
}

// DiscardActivity is the recorder used when no database is configured.
type DiscardActivity struct{}

var _ ports.ActivityRecorder = DiscardActivity{}

func (DiscardActivity) Record(context.Context, ports.ActivityEntry) error { return nil }

func (DiscardActivity) List(context.Context, ports.ActivityListOptions) ([]ports.ActivityEntry, error) {
	return nil, nil
}
