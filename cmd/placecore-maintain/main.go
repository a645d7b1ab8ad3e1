// Command placecore-maintain is the small background process that
// owns the two peripheral scheduled tasks of spec.md §5: the update
// reminder scan and the crash-recovery reindex pass. It is not the
// excluded HTTP/CLI façade (spec.md §1 Non-goals) — just the daemon
// loop that keeps those two ambient concerns running, mirroring the
// teacher's cmd/bd daemon's signal-aware root context
// (cmd/bd/main.go) at a much smaller scale, with stdlib flag instead
// of cobra since this binary takes no subcommands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commonplaces/placecore/internal/clearance"
	"github.com/commonplaces/placecore/internal/config"
	"github.com/commonplaces/placecore/internal/logging"
	"github.com/commonplaces/placecore/internal/review"
	"github.com/commonplaces/placecore/internal/search"
	_ "github.com/commonplaces/placecore/internal/storage/dolt"
	"github.com/commonplaces/placecore/internal/storage/factory"
	_ "github.com/commonplaces/placecore/internal/storage/memory"
	_ "github.com/commonplaces/placecore/internal/storage/sqlite"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/commonplaces/placecore/internal/workflow"
)

func main() {
	tomlPath := flag.String("config", "", "path to a TOML config file")
	yamlPath := flag.String("config-override", "", "path to a YAML override file")
	flag.Parse()

	cfg, err := config.Load(config.Options{TOMLPath: *tomlPath, YAMLPath: *yamlPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "placecore-maintain: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := factory.NewWithOptions(ctx, cfg.Backend, cfg.Path, factory.Options{
		OpenTimeout: cfg.OpenTimeout,
		ServerMode:  cfg.ServerMode,
		ServerHost:  cfg.ServerHost,
		ServerPort:  cfg.ServerPort,
		ServerUser:  cfg.ServerUser,
		Database:    cfg.Database,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "placecore-maintain: open storage backend %q: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	defer store.Close()

	for _, seed := range cfg.ModeratedTagSeeds {
		tag := types.ModeratedTag{
			Label:            seed.Label,
			AllowAdd:         seed.AllowAdd,
			AllowRemove:      seed.AllowRemove,
			RequireClearance: seed.RequireClearance,
		}
		if err := store.RegisterModeratedTag(ctx, types.ID(seed.OrgID), tag); err != nil {
			logging.Warnf(ctx, "seed moderated tag failed", "org_id", seed.OrgID, "label", seed.Label, "error", err)
		}
	}

	index := search.New(store)
	reviewEngine := review.New(store, index)
	clearanceEngine := clearance.New(store)
	engine := workflow.New(store, clearanceEngine, reviewEngine, index, nil, nil, nil)
	ledger := workflow.NewMemoryReminderLedger()

	policy := workflow.ReminderPolicy{
		NotUpdatedFor: cfg.ReminderNotUpdatedFor.Milliseconds(),
		ResendPeriod:  cfg.ReminderResendPeriod.Milliseconds(),
		PageSize:      cfg.ReminderPageSize,
	}

	reminderTicker := &workflow.Ticker{Interval: cfg.ReminderInterval}
	reindexTicker := &workflow.Ticker{Interval: cfg.ReindexInterval}

	go reminderTicker.Run(ctx, "update_reminders", func(ctx context.Context) error {
		n, err := engine.SendUpdateReminders(ctx, ledger, policy, time.Now().UnixMilli())
		if err == nil {
			logging.Infof(ctx, "sent update reminders", "count", n)
		}
		return err
	})

	reindexTicker.Run(ctx, "reindex_stale_places", func(ctx context.Context) error {
		n, err := engine.ReindexStalePlaces(ctx)
		if err == nil {
			logging.Infof(ctx, "reindexed places", "count", n)
		}
		return err
	})
}
