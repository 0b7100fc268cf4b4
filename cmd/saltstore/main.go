// Command saltstore is an operator tool for the job-result store: it looks
// up stored loads, returns and minions, provisions indexes, generates jids
// and runs retention sweeps.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/oliveagle/jsonpath"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dandantas/saltstore/internal/config"
	"github.com/dandantas/saltstore/internal/database"
	"github.com/dandantas/saltstore/internal/retention"
	"github.com/dandantas/saltstore/internal/returner"
)

func main() {
	var (
		loadJid       = flag.String("load", "", "print the stored load for a job id")
		returnsJid    = flag.String("jid", "", "print all returns for a job id, keyed by minion")
		fun           = flag.String("fun", "", "print a stored return for the named function")
		minions       = flag.Bool("minions", false, "list distinct minion ids")
		jobs          = flag.Bool("jobs", false, "list all job ids with formatted job info")
		ensureIndexes = flag.Bool("ensure-indexes", false, "idempotently create the secondary indexes")
		sweep         = flag.Bool("sweep", false, "run a single retention sweep")
		serve         = flag.Bool("serve", false, "run the retention sweeper until interrupted")
		genJid        = flag.Bool("gen-jid", false, "print a freshly generated jid")
		profile       = flag.String("profile", "", "use the named alternative configuration profile")
		extract       = flag.String("extract", "", "JSONPath expression applied to the fetched document")
	)
	flag.Parse()

	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)

	opts := cfg.StoreOptions()
	if *profile != "" {
		p, ok := cfg.Profiles()[*profile]
		if !ok {
			slog.Error("Unknown configuration profile", "profile", *profile)
			os.Exit(1)
		}
		opts = database.MergeOptions(opts, p, nil)
	}

	resolver := database.NewResolver(cfg.DriverTier(), cfg.ConnectTimeout)
	store := returner.New(returner.Config{
		Options:   opts,
		Profiles:  cfg.Profiles(),
		UniqueJid: cfg.UniqueJid,
	}, resolver)

	if err := store.Metrics().Register(prometheus.DefaultRegisterer); err != nil {
		slog.Warn("Failed to register metrics", "error", err)
	}

	ctx := context.Background()

	var result any
	switch {
	case *genJid:
		fmt.Println(store.PrepJid(""))
		return

	case *ensureIndexes:
		db, err := resolver.Resolve(ctx, database.MergeOptions(opts, database.Options{}, map[string]any{"indexes": true}))
		if err != nil {
			slog.Error("Failed to ensure indexes", "error", err)
			os.Exit(1)
		}
		defer db.Close(ctx)
		slog.Info("Secondary indexes ensured")
		return

	case *serve:
		if !cfg.RetentionEnabled {
			slog.Info("Retention sweeper disabled by configuration")
			return
		}
		sweeper, err := retention.New(resolver, opts, cfg.RetentionKeep, cfg.RetentionSchedule)
		if err != nil {
			slog.Error("Invalid retention schedule", "error", err)
			os.Exit(1)
		}
		sweeper.Start(ctx)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		slog.Info("Shutting down")
		sweeper.Stop()
		return

	case *sweep:
		sweeper, err := retention.New(resolver, opts, cfg.RetentionKeep, cfg.RetentionSchedule)
		if err != nil {
			slog.Error("Invalid retention schedule", "error", err)
			os.Exit(1)
		}
		deleted, err := sweeper.SweepOnce(ctx)
		if err != nil {
			slog.Error("Retention sweep failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Retention sweep completed", "deleted", deleted)
		return

	case *loadJid != "":
		result, err = store.GetLoad(ctx, *loadJid)

	case *returnsJid != "":
		result, err = store.GetJid(ctx, *returnsJid)

	case *fun != "":
		result, err = store.GetFun(ctx, *fun)

	case *minions:
		result, err = store.ListMinions(ctx)

	case *jobs:
		result, err = store.GetJids(ctx)

	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("Lookup failed", "error", err)
		os.Exit(1)
	}

	if *extract != "" {
		result, err = jsonpath.JsonPathLookup(result, *extract)
		if err != nil {
			slog.Error("JSONPath extraction failed", "path", *extract, "error", err)
			os.Exit(1)
		}
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slog.Error("Failed to encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
