package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/residence-console/internal/data"
	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/ports"
)

type activityListOptions struct {
	Resource string
	Limit    int
	Offset   int
	JSON     bool
}

func runListActivity(cmdCtx *commandContext, args []string) error {
	opts, err := parseActivityListFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, defaultQueryTimeout, func(ctx context.Context, db *sql.DB) error {
		entries, listErr := data.NewActivityRepo(db).List(ctx, ports.ActivityListOptions{
			Resource: opts.Resource,
			Limit:    opts.Limit,
			Offset:   opts.Offset,
		})
		if listErr != nil {
			return fmt.Errorf("list activity: %w", listErr)
		}
		if opts.JSON {
			return printActivityJSON(cmdCtx.Stdout, entries)
		}
		return renderActivityTable(cmdCtx.Stdout, entries)
	})
}

func parseActivityListFlags(args []string) (activityListOptions, error) {
	fs := flag.NewFlagSet("list-activity", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts activityListOptions
	fs.StringVar(&opts.Resource, "resource", "", "Only show entries for this resource key (e.g. leases)")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum entries to print (1-200)")
	fs.IntVar(&opts.Offset, "offset", 0, "Entries to skip")
	fs.BoolVar(&opts.JSON, "json", false, "Print entries as JSON")

	if err := fs.Parse(args); err != nil {
		return activityListOptions{}, err
	}

	opts.Resource = strings.ToLower(strings.TrimSpace(opts.Resource))
	if opts.Resource != "" {
		if _, ok := resource.DefaultCatalog().Get(opts.Resource); !ok {
			return activityListOptions{}, fmt.Errorf("unknown resource %q", opts.Resource)
		}
	}
	if opts.Limit < 1 || opts.Limit > 200 {
		return activityListOptions{}, errors.New("--limit must be between 1 and 200")
	}
	if opts.Offset < 0 {
		return activityListOptions{}, errors.New("--offset cannot be negative")
	}
	return opts, nil
}

type activityJSON struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Role      string    `json:"role"`
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	RecordID  string    `json:"record_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func printActivityJSON(w io.Writer, entries []ports.ActivityEntry) error {
	out := make([]activityJSON, len(entries))
	for i, e := range entries {
		out[i] = activityJSON{
			ID:        e.ID,
			Actor:     e.Actor,
			Role:      e.Role,
			Resource:  e.Resource,
			Action:    string(e.Action),
			RecordID:  e.RecordID,
			CreatedAt: e.CreatedAt.UTC(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderActivityTable(w io.Writer, entries []ports.ActivityEntry) error {
	if len(entries) == 0 {
		return writeln(w, "No activity recorded.")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "WHEN\tACTOR\tROLE\tACTION\tRESOURCE\tRECORD"); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			formatTimestamp(e.CreatedAt),
			e.Actor,
			dashIfEmpty(e.Role),
			e.Action,
			e.Resource,
			dashIfEmpty(e.RecordID),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
