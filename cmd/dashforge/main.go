package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/config"
	appLog "github.com/thanseerjelani/dashforge-dashboard-sub000/internal/log"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/remote"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/session"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("dashforge starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"upcoming_days", conf.UpcomingDays,
		"backend", conf.Backend.BaseURL,
	)

	loc := resolveLocation(conf.Timezone)

	client := remote.NewClient(conf.Backend.BaseURL, remote.Options{
		Timeout:  time.Duration(conf.Backend.TimeoutSeconds) * time.Second,
		Token:    conf.Backend.Token,
		Location: loc,
		CacheDir: conf.CacheDir,
	})

	sess := session.New(client, session.Options{
		Location:     loc,
		WeekStart:    conf.WeekStart,
		UpcomingDays: conf.UpcomingDays,
	})
	defer sess.Close()

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Initial refresh. A dead backend is not fatal: the session keeps
	// serving the snapshot (if any) and the scheduler retries.
	refreshCtx, refreshCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := sess.Refresh(refreshCtx); err != nil {
		appLog.Error("initial refresh failed", err)
	}
	refreshCancel()

	if flags.once {
		printSummary(sess)
		return
	}

	if err := sess.StartAutoRefresh(conf.RefreshCron); err != nil {
		appLog.Error("failed to schedule auto refresh", err, "cron", conf.RefreshCron)
		os.Exit(1)
	}

	// Hot-reload filter-independent settings on config file changes.
	watcher, err := config.Watch(flags.configPath, func(updated *config.Config) {
		sess.ApplyConfig(updated.WeekStart, updated.UpcomingDays)
	})
	if err != nil {
		appLog.Error("config watch unavailable; restart to apply changes", err)
	} else {
		defer watcher.Close()
	}

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, sess).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("dashforge exiting")
}

// printSummary logs one snapshot of the calendar state; used by -once
// for smoke-testing a deployment without leaving a server running.
func printSummary(sess *session.Session) {
	st := sess.Stats()
	appLog.Info("calendar summary",
		"events", len(sess.Events()),
		"today", st.Today,
		"upcoming", st.Upcoming,
		"overdue", st.Overdue,
	)
}

func resolveLocation(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./dashforge.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh cycle, log a summary, and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
