// costbyte-ai — autonomous job application service.
//
// Scrapes South African job boards on a schedule, scores postings against
// each user's preferences, and applies to the best matches through a
// headless browser, bounded by a per-user daily quota.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/cgartco6/costbyte-ai/internal/batch"
	"github.com/cgartco6/costbyte-ai/internal/browser"
	"github.com/cgartco6/costbyte-ai/internal/engine"
	"github.com/cgartco6/costbyte-ai/internal/engine/apply"
	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
	"github.com/cgartco6/costbyte-ai/internal/notify"
	"github.com/cgartco6/costbyte-ai/internal/store"
)

var (
	version  = "dev"
	httpPort = env.Str("HTTP_PORT", "8892")
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("env file not loaded", slog.Any("error", err))
	}

	initEngine()
	registerAdapters()

	slog.Info("starting costbyte-ai",
		slog.String("version", version),
		slog.String("port", httpPort),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	runner := batch.NewRunner(st, buildNotifier(), chromeFactory())

	c := cron.New()
	runAll := func() {
		if err := runner.RunAll(ctx); err != nil {
			slog.Error("scheduled run failed", slog.Any("error", err))
		}
	}
	// Twice-daily full batch, plus a frequent pass so newly registered
	// users do not wait until the next full run.
	if _, err := c.AddFunc(env.Str("BATCH_SCHEDULE", "0 9,15 * * *"), runAll); err != nil {
		slog.Error("invalid batch schedule", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := c.AddFunc("@every 30m", runAll); err != nil {
		slog.Error("invalid refresh schedule", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if envBool("RUN_ON_START", false) {
		go runAll()
	}

	srv := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      healthMux(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.Any("error", err))
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 30*time.Second),
		MaxPagesPerSite:      env.Int("MAX_PAGES_PER_SITE", 3),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 6000),
		MinMatchScore:        env.Int("MIN_MATCH_SCORE", 70),
		CacheTTL:             env.Duration("CACHE_TTL", time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		SubmitWait:           env.Duration("SUBMIT_WAIT", 3*time.Second),
		PageReadyWait:        env.Duration("PAGE_READY_WAIT", 10*time.Second),
		DelayMin:             env.Duration("APPLY_DELAY_MIN", 5*time.Second),
		DelayMax:             env.Duration("APPLY_DELAY_MAX", 15*time.Second),
		MaxSessions:          env.Int("MAX_SESSIONS", 2),
		ConfirmPolicy:        env.Str("CONFIRM_POLICY", "assume"),
		ChromeExecPath:       env.Str("CHROME_EXEC_PATH", ""),
		ChromeHeadless:       envBool("CHROME_HEADLESS", true),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, linkedin adapter disabled", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)
	engine.InitCache(
		env.Str("REDIS_URL", ""),
		engine.Cfg.CacheTTL,
		engine.Cfg.CacheMaxEntries,
		engine.Cfg.CacheCleanupInterval,
	)
}

func registerAdapters() {
	jobs.RegisterSource(jobs.NewCareers24())
	jobs.RegisterSource(jobs.NewPNet())
	jobs.RegisterSource(jobs.NewCareerJunction())
	jobs.RegisterSource(jobs.NewIndeed())
	jobs.RegisterSource(jobs.NewLinkedIn())
	slog.Info("job board adapters registered", slog.Int("count", len(jobs.Sources())))
}

// openStore selects postgres when DATABASE_URL is set, otherwise the local
// single-user sqlite tracker with a profile read from the environment.
func openStore(ctx context.Context) (store.Store, error) {
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		return store.NewPostgres(ctx, dbURL)
	}

	profile := apply.UserData{
		UserID:            env.Str("USER_ID", "local"),
		FirstName:         env.Str("USER_FIRST_NAME", ""),
		LastName:          env.Str("USER_LAST_NAME", ""),
		Email:             env.Str("USER_EMAIL", ""),
		Phone:             env.Str("USER_PHONE", ""),
		StreetAddress:     env.Str("USER_STREET", ""),
		City:              env.Str("USER_CITY", ""),
		Province:          env.Str("USER_PROVINCE", ""),
		PostalCode:        env.Str("USER_POSTAL_CODE", ""),
		YearsExperience:   env.Int("USER_YEARS_EXPERIENCE", 0),
		SalaryExpectation: env.Int("USER_SALARY_EXPECTATION", 0),
		NoticePeriodDays:  env.Int("USER_NOTICE_DAYS", 30),
		Qualification:     env.Str("USER_QUALIFICATION", ""),
		Employed:          envBool("USER_EMPLOYED", false),
		CVPath:            env.Str("USER_CV_PATH", ""),
		PhotoPath:         env.Str("USER_PHOTO_PATH", ""),
		Gender:            env.Str("USER_GENDER", ""),
		Race:              env.Str("USER_RACE", ""),
		Disability:        env.Str("USER_DISABILITY", ""),
		ShareDemographics: envBool("USER_SHARE_DEMOGRAPHICS", false),
	}
	prefs := jobs.Preferences{
		UserID:        profile.UserID,
		Keywords:      env.List("USER_KEYWORDS", ""),
		Locations:     env.List("USER_LOCATIONS", ""),
		Industries:    env.List("USER_INDUSTRIES", ""),
		SalaryMin:     float64(env.Int("USER_SALARY_MIN", 0)),
		MinMatchScore: env.Int("MIN_MATCH_SCORE", 0),
		MaxJobsPerDay: env.Int("USER_MAX_JOBS_PER_DAY", 5),
	}
	return store.NewSQLite(env.Str("SQLITE_PATH", store.DefaultSQLitePath()), profile, prefs)
}

func buildNotifier() notify.Notifier {
	gateway := env.Str("WHATSAPP_GATEWAY_URL", "")
	if gateway == "" {
		slog.Info("no notification gateway configured")
		return notify.Noop{}
	}
	return notify.NewWhatsApp(gateway, env.Str("WHATSAPP_GATEWAY_TOKEN", ""))
}

func chromeFactory() browser.Factory {
	return func(ctx context.Context) (browser.Session, error) {
		return browser.NewChrome(ctx, browser.ChromeOptions{
			ExecPath:  engine.Cfg.ChromeExecPath,
			Headless:  engine.Cfg.ChromeHeadless,
			UserAgent: engine.RandomUserAgent(),
			ReadyWait: engine.Cfg.PageReadyWait,
		})
	}
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func healthMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"` + version + `"}`))
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(engine.FormatMetrics()))
	})
	return mux
}
