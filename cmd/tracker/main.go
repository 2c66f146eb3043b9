// tracker — terminal client for the applications collection.
//
//	tracker list
//	tracker add -company Acme -role Eng [-status SCREEN] [-applied-date 2024-03-01] ...
//	tracker rm <id>
//	tracker watch
//
// Every command renders the list as the server returns it. Writes are
// followed by a refresh; nothing is inserted or removed locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"jobmate/tracker/internal/apiclient"
	"jobmate/tracker/internal/application"
	"jobmate/tracker/internal/config"
	"jobmate/tracker/internal/db"
	"jobmate/tracker/internal/events"
	"jobmate/tracker/internal/form"
	"jobmate/tracker/internal/logger"
	"jobmate/tracker/internal/scheduler"
	"jobmate/tracker/internal/tracker"
	"jobmate/tracker/internal/view"
)

const usage = `usage: tracker <command> [flags]

commands:
  list        show all applications
  add         create an application (-company and -role are required)
  rm <id>     delete an application
  watch       keep the list fresh and print follow-up reminders
`

func main() {
	if err := mainInner(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mainInner(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	api, err := apiclient.New(cfg.APIBaseURL,
		apiclient.WithLogger(log),
		apiclient.WithTimeout(cfg.HTTPTimeout),
	)
	if err != nil {
		return err
	}
	ctl := buildController(api, cfg, args[0], log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "list":
		return runList(ctx, ctl, out)
	case "add":
		return runAdd(ctx, ctl, args[1:], out)
	case "rm":
		return runRemove(ctx, ctl, args[1:], out)
	case "watch":
		return runWatch(ctx, ctl, cfg, log, out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func runList(ctx context.Context, ctl *tracker.Controller, out io.Writer) error {
	err := ctl.Refresh(ctx)
	if rerr := view.Render(out, ctl.State()); rerr != nil {
		return rerr
	}
	return err
}

func runAdd(ctx context.Context, ctl *tracker.Controller, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)

	values := make(map[form.Field]*string, len(form.Fields()))
	for _, f := range form.Fields() {
		values[f] = fs.String(flagName(f), "", strings.ReplaceAll(string(f), "_", " "))
	}
	*values[form.FieldStatus] = string(application.StatusApplied)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := form.New()
	for _, field := range form.Fields() {
		if err := f.SetField(field, *values[field]); err != nil {
			return err
		}
	}
	if missing := f.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = "-" + flagName(m)
		}
		return fmt.Errorf("required: %s", strings.Join(names, ", "))
	}

	err := ctl.Submit(ctx, f)
	if rerr := view.Render(out, ctl.State()); rerr != nil {
		return rerr
	}
	return err
}

func runRemove(ctx context.Context, ctl *tracker.Controller, args []string, out io.Writer) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("usage: tracker rm <id>")
	}
	err := ctl.Remove(ctx, application.ID(args[0]))
	if rerr := view.Render(out, ctl.State()); rerr != nil {
		return rerr
	}
	return err
}

func runWatch(ctx context.Context, ctl *tracker.Controller, cfg *config.Client, log *zap.Logger, out io.Writer) error {
	var mu sync.Mutex
	render := func() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, strings.Repeat("─", 40))
		if err := view.Render(out, ctl.State()); err != nil {
			log.Warn("render failed", zap.Error(err))
		}
	}

	sched := scheduler.New(cfg.RefreshSpec, renderAfter{ctl, render},
		scheduler.WithLogger(log),
		scheduler.WithReminders(ctl.Store(), func(r application.Record) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "follow up: %s — %s (due %s)\n", r.Company, r.Role, *r.NextFollowUp)
		}),
	)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("change events disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			sub := events.NewSubscriber(rdb, log)
			go func() {
				err := sub.Run(ctx, func(ev events.Event) {
					log.Debug("change event", zap.String("type", ev.Type), zap.String("applicationId", ev.ApplicationID))
					_ = ctl.Refresh(ctx)
					render()
				})
				if err != nil {
					log.Warn("change events stopped", zap.Error(err))
				}
			}()
		}
	}

	<-ctx.Done()
	return nil
}

// buildController turns on the latest-refresh-wins guard for watch, the only
// command that issues overlapping refreshes.
func buildController(api tracker.API, cfg *config.Client, cmd string, log *zap.Logger) *tracker.Controller {
	opts := []tracker.Option{tracker.WithLogger(log)}
	if cmd == "watch" && cfg.LatestRefreshWins {
		opts = append(opts, tracker.WithLatestRefreshWins())
	}
	return tracker.New(api, opts...)
}

// renderAfter refreshes and then redraws, whatever the outcome.
type renderAfter struct {
	ctl    *tracker.Controller
	render func()
}

func (r renderAfter) Refresh(ctx context.Context) error {
	err := r.ctl.Refresh(ctx)
	r.render()
	return err
}

// flagName turns next_follow_up into next-follow-up.
func flagName(f form.Field) string {
	return strings.ReplaceAll(string(f), "_", "-")
}
