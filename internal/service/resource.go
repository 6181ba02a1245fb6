package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/domain/resource"
	apperrors "github.com/target/residence-console/internal/errors"
	"github.com/target/residence-console/internal/observability/metrics"
	"github.com/target/residence-console/internal/observability/statsd"
	"github.com/target/residence-console/internal/ports"
)

// ErrDeleteNotConfirmed is returned by Delete when the user did not confirm; no API call is made.
var ErrDeleteNotConfirmed = errors.New("delete not confirmed")

// ResourceServiceOptions groups dependencies for ResourceService.
type ResourceServiceOptions struct {
	Clients  ports.ResourceClientFactory
	Activity ports.ActivityRecorder // Optional: audit trail
	Metrics  statsd.Sink            // Optional
	Logger   *slog.Logger           // Optional
}

// ResourceService is the list screen data flow: fetch, filter in memory, submit, delete.
// It holds no state between calls; every List is a fresh fetch.
type ResourceService struct {
	clients  ports.ResourceClientFactory
	activity ports.ActivityRecorder
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewResourceService constructs a new ResourceService.
func NewResourceService(opts ResourceServiceOptions) *ResourceService {
	if opts.Clients == nil {
		panic("resource client factory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceService{
		clients:  opts.Clients,
		activity: opts.Activity,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "resource_service"),
	}
}

// ListResult is one fetch of a collection plus the filtered view.
type ListResult struct {
	All     []resource.Record
	Visible []resource.Record
	Query   string
}

// List fetches every record and applies the search query locally.
func (s *ResourceService) List(ctx context.Context, def resource.Definition, query string) (*ListResult, error) {
	all, err := s.clients.For(def).ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		All:     all,
		Visible: resource.Filter(all, query, resource.SearchKeysFor(def)),
		Query:   query,
	}, nil
}

// Find fetches the collection and returns the record with id.
func (s *ResourceService) Find(ctx context.Context, def resource.Definition, id string) (resource.Record, error) {
	all, err := s.clients.For(def).ListAll(ctx)
	if err != nil {
		return resource.Record{}, err
	}
	rec, ok := resource.ByID(all, id)
	if !ok {
		return resource.Record{}, apperrors.NotFoundf("%s %s not found", def.Singular, id)
	}
	return rec, nil
}

// Save creates the buffer when its id is empty and updates the record otherwise.
func (s *ResourceService) Save(ctx context.Context, actor *domainauth.Session, def resource.Definition, buf resource.EditBuffer) (ports.ActivityAction, error) {
	client := s.clients.For(def)
	body := buf.Payload(def)

	if buf.IsUpdate() {
		id := strings.TrimSpace(buf.ID)
		if err := client.Update(ctx, id, body); err != nil {
			return "", err
		}
		s.recordMutation(ctx, actor, def, ports.ActivityUpdate, id)
		return ports.ActivityUpdate, nil
	}

	if err := client.Create(ctx, body); err != nil {
		return "", err
	}
	s.recordMutation(ctx, actor, def, ports.ActivityCreate, "")
	return ports.ActivityCreate, nil
}

// Delete removes a record once the user has confirmed.
func (s *ResourceService) Delete(ctx context.Context, actor *domainauth.Session, def resource.Definition, id string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "A record id is required.")
	}
	if err := s.clients.For(def).Delete(ctx, id); err != nil {
		return err
	}
	s.recordMutation(ctx, actor, def, ports.ActivityDelete, id)
	return nil
}

// recordMutation emits the mutation metric and appends to the activity log.
// A failing activity write is logged and never fails the mutation.
func (s *ResourceService) recordMutation(ctx context.Context, actor *domainauth.Session, def resource.Definition, action ports.ActivityAction, recordID string) {
	metrics.EmitMutation(s.metrics, def.Key, string(action))
	if s.activity == nil {
		return
	}

	entry := ports.ActivityEntry{
		Resource: def.Key,
		Action:   action,
		RecordID: recordID,
	}
	if actor != nil {
		entry.Actor = actorName(actor)
		entry.Role = string(actor.Role)
	} else {
		entry.Actor = "signup"
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record activity",
			"resource", def.Key,
			"action", action,
			"error", err,
		)
	}
}

func actorName(sess *domainauth.Session) string {
	if sess.Email != "" {
		return sess.Email
	}
	return sess.UserID
}

