package service

import (
	"context"
	"fmt"

	"github.com/target/residence-console/internal/ports"
)

const activityPageSize = 50

// ActivityServiceOptions groups dependencies for ActivityService.
type ActivityServiceOptions struct {
	Recorder ports.ActivityRecorder
	// Enabled is false when no database backs the recorder.
	Enabled bool
}

// ActivityService reads the console audit trail.
type ActivityService struct {
	recorder ports.ActivityRecorder
	enabled  bool
}

// NewActivityService constructs a new ActivityService.
func NewActivityService(opts ActivityServiceOptions) *ActivityService {
	return &ActivityService{recorder: opts.Recorder, enabled: opts.Enabled && opts.Recorder != nil}
}

// Enabled reports whether activity is persisted.
func (s *ActivityService) Enabled() bool { return s.enabled }

// ActivityPage is one page of entries.
type ActivityPage struct {
	Entries  []ports.ActivityEntry
	Resource string
	Page     int
	HasNext  bool
}

// List returns a page of entries, newest first. Pages start at 1.
func (s *ActivityService) List(ctx context.Context, resourceKey string, page int) (*ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	out := &ActivityPage{Resource: resourceKey, Page: page}
	if !s.enabled {
		return out, nil
	}

	// One extra row tells whether a next page exists.
	entries, err := s.recorder.List(ctx, ports.ActivityListOptions{
		Resource: resourceKey,
		Limit:    activityPageSize + 1,
		Offset:   (page - 1) * activityPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	if len(entries) > activityPageSize {
		out.HasNext = true
		entries = entries[:activityPageSize]
	}
	out.Entries = entries
	return out, nil
}
