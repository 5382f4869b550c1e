package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"teamgraph/backend/internal/analysis"
	"teamgraph/backend/internal/discord"
	"teamgraph/backend/internal/graph"
	"teamgraph/backend/pkg/config"
	"teamgraph/backend/pkg/logger"

	"go.uber.org/zap"
)

// seed writes a synthetic team of loosely connected groups, optionally
// replacing an existing one and running an analysis pass on it.
func main() {
	teamID := flag.String("team-id", "demo-team", "Team ID to seed")
	groups := flag.Int("groups", 3, "Number of groups")
	groupSize := flag.Int("group-size", 6, "Members per group")
	seed := flag.Uint64("seed", 1, "Random seed")
	reset := flag.Bool("reset", false, "Delete the team before seeding")
	analyze := flag.Bool("analyze", false, "Run an analysis pass after seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...", zap.String("team_id", *teamID))

	ctx := context.Background()
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer driver.Close(context.Background())

	repo := graph.NewRepository(driver)
	if err := repo.EnsureConstraints(ctx); err != nil {
		log.Warn("Failed to ensure graph constraints", zap.Error(err))
	}

	if *reset {
		if err := repo.DeleteTeam(ctx, *teamID); err != nil {
			log.Fatal("Failed to delete team", zap.Error(err))
		}
	}

	snap := syntheticTeam(*teamID, *groups, *groupSize, rand.New(rand.NewPCG(*seed, 0)))
	recorder := discord.NewCollector(nil, repo, 0, log)
	if err := recorder.Record(ctx, *teamID, snap); err != nil {
		log.Fatal("Failed to record team", zap.Error(err))
	}
	log.Info("Team seeded",
		zap.Int("users", len(snap.Users)),
		zap.Int("threads", len(snap.Threads)),
	)

	if !*analyze {
		return
	}

	svc := analysis.NewService(repo, analysis.NewAnalyzer(analysis.Options{
		LabelIterations:  cfg.LabelIterations,
		TSNESteps:        cfg.TSNESteps,
		Perplexity:       cfg.TSNEPerplexity,
		AdjustmentFactor: cfg.LayoutAdjustmentFactor,
		Seed:             *seed,
	}, log))
	result, err := svc.AnalyzeTeam(ctx, *teamID)
	if err != nil {
		log.Fatal("Failed to analyze team", zap.Error(err))
	}
	log.Info("Analysis stored",
		zap.String("run_id", result.RunID),
		zap.Int("communities", len(result.Communities)),
	)
}

// syntheticTeam builds dense mentions and threads inside each group and a
// single bridge mention between consecutive groups
func syntheticTeam(teamID string, groups, size int, rng *rand.Rand) discord.Snapshot {
	var snap discord.Snapshot
	start := time.Now().UTC().Add(-24 * time.Hour)

	id := func(g, m int) string { return fmt.Sprintf("%s-g%d-m%d", teamID, g, m) }

	for g := 0; g < groups; g++ {
		for m := 0; m < size; m++ {
			u := graph.User{
				ID:       id(g, m),
				Name:     fmt.Sprintf("member %d.%d", g, m),
				TeamID:   teamID,
				Mentions: map[string]int{},
			}
			for other := 0; other < size; other++ {
				if other != m && rng.IntN(3) > 0 {
					u.Mentions[id(g, other)] = 1 + rng.IntN(4)
				}
			}
			if m == 0 && g+1 < groups {
				u.Mentions[id(g+1, 0)] = 1
			}
			snap.Users = append(snap.Users, u)
		}

		for t := 0; t < size/2; t++ {
			thread := graph.Thread{
				ID:           fmt.Sprintf("%s-g%d-t%d", teamID, g, t),
				RootAuthorID: id(g, rng.IntN(size)),
			}
			for r := 0; r < 1+rng.IntN(size); r++ {
				thread.Replies = append(thread.Replies, graph.Reply{
					MessageID: fmt.Sprintf("%s-r%d", thread.ID, r),
					UserID:    id(g, rng.IntN(size)),
					Timestamp: start.Add(time.Duration(t*60+r) * time.Minute),
				})
			}
			snap.Threads = append(snap.Threads, thread)
		}
	}
	return snap
}
