package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"workoutcal/internal/calendar"
	"workoutcal/internal/config"
	"workoutcal/internal/ics"
	appLog "workoutcal/internal/log"
	"workoutcal/internal/model"
	"workoutcal/internal/seed"
	"workoutcal/internal/store"
	"workoutcal/internal/view"
	"workoutcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	dumpMonth  string
	exportPath string
}

func main() {
	appLog.Info("workoutcal starting", "version", "0.1.0")

	// Parse CLI flags.
	flags := parseFlags()

	if err := config.LoadDotEnv(); err != nil {
		appLog.Error("failed to load .env", err)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()

	// CLI --listen overrides config file and environment.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"rollover_cron", conf.RolloverCron,
		"calendars", len(conf.Calendars),
		"dataset", conf.Dataset,
		"basic_auth", conf.BasicAuth != nil,
	)

	loc := conf.Location()
	now := time.Now().In(loc)

	workouts, err := loadWorkouts(conf, model.DateOf(now).YearMonth())
	if err != nil {
		appLog.Error("failed to load dataset", err, "dataset", conf.Dataset)
		os.Exit(1)
	}
	st := store.New(conf.Calendars, workouts)

	switch {
	case flags.dumpMonth != "":
		if err := dumpMonth(os.Stdout, conf, st, flags.dumpMonth, now); err != nil {
			appLog.Error("dump failed", err, "month", flags.dumpMonth)
			os.Exit(1)
		}
		return
	case flags.exportPath != "":
		if err := exportICS(flags.exportPath, conf, st, now); err != nil {
			appLog.Error("export failed", err, "path", flags.exportPath)
			os.Exit(1)
		}
		return
	}

	if err := serve(conf, st); err != nil {
		appLog.Error("server failed", err)
		os.Exit(1)
	}
	appLog.Info("workoutcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./workoutcal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.dumpMonth, "dump-month", "", "Print the agenda for YYYY-MM to stdout and exit")
	flag.StringVar(&cfg.exportPath, "export", "", "Write every workout as an .ics file and exit")

	flag.Parse()

	return cfg
}

// loadWorkouts reads the configured dataset, or generates a mock month when
// none is configured.
func loadWorkouts(conf *config.Config, month model.YearMonth) ([]model.Workout, error) {
	if conf.Dataset == "" {
		ws := seed.Mock(month, conf.Calendars)
		appLog.Info("using generated mock dataset", "month", month.String(), "workouts", len(ws))
		return ws, nil
	}

	// Records without a calendar land on the current user's.
	defaultID := conf.Calendars[0].ID
	for _, c := range conf.Calendars {
		if c.IsCurrentUser {
			defaultID = c.ID
			break
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return seed.Load(ctx, conf.Dataset, seed.Options{
		Location:          conf.Location(),
		DefaultCalendarID: defaultID,
		CacheDir:          conf.DatasetCacheDir,
	})
}

// serve runs the HTTP API until SIGINT/SIGTERM. The rollover cron job drops
// cached month views so the "today" marker moves at midnight.
func serve(conf *config.Config, st *store.Store) error {
	srv := web.NewServer(conf, st)

	c := cron.New(cron.WithLocation(conf.Location()))
	if _, err := c.AddFunc(conf.RolloverCron, func() {
		appLog.Info("day rollover; flushing month views")
		srv.InvalidateViews("rollover")
	}); err != nil {
		return fmt.Errorf("rollover_cron %q: %w", conf.RolloverCron, err)
	}
	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()

	httpSrv := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// dumpMonth prints the combined agenda of every roster calendar, one line
// per workout.
func dumpMonth(w io.Writer, conf *config.Config, st *store.Store, raw string, now time.Time) error {
	month, err := model.ParseYearMonth(raw)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(conf.Calendars))
	for _, c := range conf.Calendars {
		ids = append(ids, c.ID)
	}
	visible := view.Merge(st.Workouts(), view.Combined(view.NewCalendarSet(ids...)))

	days, err := calendar.Agenda(month, visible, calendar.Options{
		WeekStart: conf.FirstWeekday(),
		Today:     model.DateOf(now),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n", month, conf.Timezone)
	for _, d := range days {
		marker := ""
		if d.Today {
			marker = " *today*"
		}
		fmt.Fprintf(w, "\n%s %s%s\n", d.Date, d.Date.Weekday().String()[:3], marker)
		for _, wo := range d.Workouts {
			name := wo.CalendarID
			if c, ok := st.Calendar(wo.CalendarID); ok && c.Name != "" {
				name = c.Name
			}
			fmt.Fprintf(w, "  %s  %-10s %-20s %s\n", wo.TimeRange, wo.Type.Label(), wo.DisplayTitle(), name)
		}
	}
	return nil
}

func exportICS(path string, conf *config.Config, st *store.Store, now time.Time) error {
	cal := ics.Export(st.Workouts(), ics.ExportConfig{
		Name:     "workoutcal",
		Location: conf.Location(),
		Palette:  view.NewPalette(conf.Calendars, conf.FallbackColor),
		Now:      now,
	})
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o644); err != nil {
		return err
	}
	appLog.Info("ics exported", "path", path, "workouts", len(st.Workouts()))
	return nil
}
