package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Blzofando/top-10-streamings/internal/config"
	"github.com/Blzofando/top-10-streamings/internal/deps"
	"github.com/Blzofando/top-10-streamings/internal/jobs"
	"github.com/Blzofando/top-10-streamings/internal/keys"
	"github.com/Blzofando/top-10-streamings/internal/match"
	"github.com/Blzofando/top-10-streamings/internal/migrate"
	"github.com/Blzofando/top-10-streamings/internal/pipeline"
	"github.com/Blzofando/top-10-streamings/internal/scrape"
	"github.com/Blzofando/top-10-streamings/internal/server"
	"github.com/Blzofando/top-10-streamings/internal/store"
	"github.com/Blzofando/top-10-streamings/pkg/apikey"
	"github.com/Blzofando/top-10-streamings/pkg/cache"
	pkgdb "github.com/Blzofando/top-10-streamings/pkg/db"
	"github.com/Blzofando/top-10-streamings/pkg/tmdb"
)

func main() {
	_ = godotenv.Load() // best-effort
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pkgdb.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	if err := migrate.Up(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	mongoClient, err := pkgdb.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	var c cache.Cache
	if addr := cfg.ValkeyAddr; addr != "" {
		vc, err := cache.NewValkey(addr, cfg.ValkeyPassword)
		if err != nil {
			log.Error().Err(err).Msg("valkey connect failed, using in-memory cache")
			c = cache.NewMemory()
		} else {
			c = vc
		}
	} else {
		c = cache.NewMemory()
	}

	if cfg.TMDBAPIKey == "" {
		log.Warn().Msg("TMDB_API_KEY not set; entries will go unenriched")
	}

	session := scrape.NewSession(cfg.FetchTimeout)
	defer session.Close()

	snapshots := store.NewSnapshots(mongoClient, cfg.MongoDB)
	keyRepo := keys.NewRepo(pool, apikey.NewHMAC(cfg.KeySecret))
	matcher := match.New(tmdb.New(cfg.TMDBAPIKey, cfg.TMDBLanguage))
	clock := pipeline.SystemClock()

	flixpatrol := scrape.NewFlixPatrol(session)
	runner := pipeline.NewRunner(
		snapshots,
		flixpatrol,
		scrape.NewIMDB(session),
		flixpatrol,
		matcher,
		clock,
		pipeline.RunnerOptions{
			RankingTTL:    cfg.RankingTTL,
			CalendarTTL:   cfg.CalendarTTL,
			MatchDelay:    cfg.MatchDelay,
			MatchJitter:   cfg.MatchJitter,
			FetchRetries:  cfg.FetchRetries,
			DayCutoffHour: cfg.DayCutoffHour,
		},
	)

	jobs.StartRefresh(ctx, runner, cfg.RankingTTL/2)
	jobs.StartCalendarRefresh(ctx, runner, cfg.CalendarTTL/2)

	api := server.New(deps.ServerDeps{
		Store:      snapshots,
		Keys:       keyRepo,
		Cache:      c,
		Runner:     runner,
		Clock:      clock,
		AdminToken: cfg.AdminToken,
		CutoffHour: cfg.DayCutoffHour,
		Name:       "top-10-streamings",
		StartedAt:  time.Now(),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := server.StartHTTP(ctx, addr, api.Router(cfg.CORSAllowedOrigins)); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	_, _ = fmt.Fprintln(os.Stderr, "shutting down...")
	time.Sleep(200 * time.Millisecond)
}
