package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	redisadapter "github.com/target/residence-console/internal/adapters/redis"
	domainauth "github.com/target/residence-console/internal/domain/auth"
)

type sessionListOptions struct {
	Email string
	Role  string
}

type sessionRevokeOptions struct {
	Email  string
	All    bool
	DryRun bool
	Yes    bool
}

func sessionStore(cmdCtx *commandContext, client redis.UniversalClient) *redisadapter.SessionStore {
	return redisadapter.NewSessionStoreWithOptions(client, redisadapter.SessionStoreOptions{
		Prefix: cmdCtx.Config.Redis.KeyPrefix,
	})
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionListFlags(args)
	if err != nil {
		return err
	}

	return withRedis(cmdCtx, defaultQueryTimeout, func(ctx context.Context, client redis.UniversalClient) error {
		sessions, collectErr := collectSessions(ctx, sessionStore(cmdCtx, client), func(s domainauth.Session) bool {
			return sessionMatches(s, opts)
		})
		if collectErr != nil {
			return collectErr
		}
		return renderSessionTable(cmdCtx.Stdout, sessions, time.Now())
	})
}

func runRevokeSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionRevokeFlags(args)
	if err != nil {
		return err
	}

	return withRedis(cmdCtx, defaultQueryTimeout, func(ctx context.Context, client redis.UniversalClient) error {
		store := sessionStore(cmdCtx, client)
		sessions, collectErr := collectSessions(ctx, store, func(s domainauth.Session) bool {
			return opts.All || strings.EqualFold(s.Email, opts.Email)
		})
		if collectErr != nil {
			return collectErr
		}
		if len(sessions) == 0 {
			return writeln(cmdCtx.Stdout, "No matching sessions.")
		}

		target := fmt.Sprintf("%d session(s) of %s", len(sessions), opts.Email)
		if opts.All {
			target = fmt.Sprintf("all %d session(s)", len(sessions))
		}
		if confirmErr := confirmAction(cmdCtx, confirmPrompt{
			Yes:    opts.Yes,
			DryRun: opts.DryRun,
			Action: "sign out",
			Target: target,
		}); confirmErr != nil {
			return confirmErr
		}

		if opts.DryRun {
			if werr := writef(cmdCtx.Stdout, "Dry run: would sign out %s.\n", target); werr != nil {
				return werr
			}
			return renderSessionTable(cmdCtx.Stdout, sessions, time.Now())
		}

		revoked := 0
		for _, s := range sessions {
			if delErr := store.Delete(ctx, s.ID); delErr != nil {
				cmdCtx.Logger.WarnContext(ctx, "revoke session failed", "email", s.Email, "error", delErr)
				continue
			}
			revoked++
		}
		return writef(cmdCtx.Stdout, "Signed out %d of %d session(s).\n", revoked, len(sessions))
	})
}

type sessionWalker interface {
	Each(ctx context.Context, fn func(domainauth.Session) error) error
}

func collectSessions(
	ctx context.Context,
	store sessionWalker,
	keep func(domainauth.Session) bool,
) ([]domainauth.Session, error) {
	var out []domainauth.Session
	err := store.Each(ctx, func(s domainauth.Session) error {
		if keep(s) {
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Email != out[j].Email {
			return out[i].Email < out[j].Email
		}
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out, nil
}

func sessionMatches(s domainauth.Session, opts sessionListOptions) bool {
	if opts.Email != "" && !strings.EqualFold(s.Email, opts.Email) {
		return false
	}
	if opts.Role != "" && string(s.Role) != opts.Role {
		return false
	}
	return true
}

func parseSessionListFlags(args []string) (sessionListOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sessionListOptions
	fs.StringVar(&opts.Email, "email", "", "Only show sessions for this email")
	fs.StringVar(&opts.Role, "role", "", "Only show sessions with this role (admin, manager, submanager or any stored role)")
	if err := fs.Parse(args); err != nil {
		return sessionListOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Role = strings.TrimSpace(opts.Role); opts.Role != "" {
		opts.Role = string(domainauth.ParseRole(opts.Role))
	}
	return opts, nil
}

func parseSessionRevokeFlags(args []string) (sessionRevokeOptions, error) {
	fs := flag.NewFlagSet("revoke-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sessionRevokeOptions
	fs.StringVar(&opts.Email, "email", "", "Sign out every session of this email")
	fs.BoolVar(&opts.All, "all", false, "Sign out every session")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Show matching sessions without deleting them")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return sessionRevokeOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	switch {
	case opts.All && opts.Email != "":
		return sessionRevokeOptions{}, errors.New("--email and --all are mutually exclusive")
	case !opts.All && opts.Email == "":
		return sessionRevokeOptions{}, errors.New("either --email or --all is required")
	}
	return opts, nil
}

func renderSessionTable(w io.Writer, sessions []domainauth.Session, now time.Time) error {
	if len(sessions) == 0 {
		return writeln(w, "No matching sessions.")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "EMAIL\tNAME\tROLE\tEXPIRES\tREMAINING"); err != nil {
		return err
	}
	for _, s := range sessions {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
			dashIfEmpty(s.Email),
			dashIfEmpty(strings.TrimSpace(s.FirstName+" "+s.LastName)),
			s.Role,
			formatTimestamp(s.ExpiresAt),
			formatRemaining(s.ExpiresAt.Sub(now)),
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%d session(s)\n", len(sessions))
}

func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	if d < time.Minute {
		return "<1m"
	}
	return d.Truncate(time.Minute).String()
}
