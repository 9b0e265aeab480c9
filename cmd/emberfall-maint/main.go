package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/crystal-mush/emberfall/pkg/boltstore"
	"github.com/crystal-mush/emberfall/pkg/events"
	"github.com/crystal-mush/emberfall/pkg/game"
	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func main() {
	confFile := flag.String("conf", envDefault("EMBERFALL_CONF", ""), "Path to game config file (env: EMBERFALL_CONF)")
	boltPath := flag.String("bolt", envDefault("EMBERFALL_BOLT", ""), "Path to bbolt database (env: EMBERFALL_BOLT)")
	cleanup := flag.Bool("cleanup", false, "Delete archived requests past the retention window")
	days := flag.Int("days", 0, "Retention window in days for -cleanup (default from config)")
	migrate := flag.Bool("migrate-categories", false, "Rewrite requests holding retired categories to General")
	list := flag.Bool("list", false, "List all requests")
	backup := flag.String("backup", "", "Write a hot snapshot of the bbolt database to the given path")
	flag.Parse()

	// Load game config if specified, otherwise use defaults.
	gc := game.DefaultGameConf()
	if *confFile != "" {
		var err error
		gc, err = game.LoadGameConf(*confFile)
		if err != nil {
			log.Fatalf("Error loading game config: %v", err)
		}
		log.Printf("Loaded game config from %s", *confFile)
	}
	if *boltPath == "" {
		*boltPath = gc.BoltPath
	}

	if !*cleanup && !*migrate && !*list && *backup == "" {
		fmt.Fprintln(os.Stderr, "Usage: emberfall-maint [-conf <config>] [-bolt <boltfile>] <action>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Actions:")
		fmt.Fprintln(os.Stderr, "  -cleanup [-days N]    Delete archived requests older than the retention window")
		fmt.Fprintln(os.Stderr, "  -migrate-categories   Rewrite retired request categories to General")
		fmt.Fprintln(os.Stderr, "  -list                 List all requests")
		fmt.Fprintln(os.Stderr, "  -backup <path>        Write a hot snapshot of the bbolt database")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Environment variables (used as defaults when flags are not set):")
		fmt.Fprintln(os.Stderr, "  EMBERFALL_CONF  Path to game config file (.yaml)")
		fmt.Fprintln(os.Stderr, "  EMBERFALL_BOLT  Path to bbolt database")
		os.Exit(1)
	}

	store, err := boltstore.Open(*boltPath)
	if err != nil {
		log.Fatalf("Error opening bolt database: %v", err)
	}
	defer store.Close()

	if err := store.LoadAll(); err != nil {
		log.Fatalf("Error loading from bolt: %v", err)
	}

	dir := world.NewDirectory(store)
	if err := dir.Load(); err != nil {
		log.Fatalf("Error loading actors: %v", err)
	}

	// Offline wiring: no live sessions exist, so every notification goes to
	// the durable mailbox and is replayed on next login.
	notifier := request.NewNotifier(dir, events.NewBus(), world.NewMailbox(store))
	mgr := request.NewManager(store, notifier)

	if *backup != "" {
		if err := store.Backup(*backup); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		fmt.Printf("Backup written to %s\n", *backup)
	}

	if *migrate {
		count, err := mgr.MigrateAllCategories()
		if err != nil {
			log.Fatalf("Category migration failed: %v", err)
		}
		fmt.Printf("Migrated %d request(s) to General.\n", count)
	}

	if *cleanup {
		window := *days
		if window <= 0 {
			window = gc.RetentionDays
		}
		count, err := mgr.CleanupOldRequests(window)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Deleted %d old archived request(s) (retention %d days).\n", count, window)
	}

	if *list {
		all := store.All()
		if len(all) == 0 {
			fmt.Println("No requests found.")
			return
		}
		for _, r := range all {
			state := "active"
			if r.InArchive() {
				state = "archived"
			}
			assigned := "Unassigned"
			if r.AssignedTo != world.Nobody {
				assigned = dir.Name(r.AssignedTo)
			}
			fmt.Printf("#%-4d [%-11s|%-9s|%-8s] %-40s submitter=%s assigned=%s comments=%d\n",
				r.ID, r.Status, r.Category, state, truncateTitle(r.Title, 40),
				dir.Name(r.Submitter), assigned, len(r.Comments))
		}
		fmt.Printf("%d request(s) total.\n", len(all))
	}
}

// truncateTitle shortens a title for one-line listing output.
func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
