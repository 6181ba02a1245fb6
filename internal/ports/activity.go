package ports

import (
	"context"
	"time"
)

// ActivityAction names a console mutation.
type ActivityAction string

const (
	ActivityCreate ActivityAction = "create"
	ActivityUpdate ActivityAction = "update"
	ActivityDelete ActivityAction = "delete"
)

// ActivityEntry records one successful mutation made through the console.
type ActivityEntry struct {
	ID        string
	Actor     string
	Role      string
	Resource  string
	Action    ActivityAction
	RecordID  string
	CreatedAt time.Time
}

// ActivityListOptions bounds an activity query.
type ActivityListOptions struct {
	Resource string
	Limit    int
	Offset   int
}

// ActivityRecorder persists console activity.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
	List(ctx context.Context, opts ActivityListOptions) ([]ActivityEntry, error)
}
