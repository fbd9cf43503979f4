// Package main runs one turn-based battle in the terminal, driven by the
// configured encounter and content directories.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/console"
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/report"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/status"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	encounterPath := flag.String("encounter", "", "encounter YAML file; overrides content.encounter_file")
	seed := flag.Uint64("seed", 0, "random seed; overrides battle.seed when non-zero")
	auto := flag.Bool("auto", false, "let AI behaviors drive the heroes")
	history := flag.Int("history", 0, "list this many archived battles and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *encounterPath != "" {
		cfg.Content.EncounterFile = *encounterPath
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}
	if *auto {
		cfg.Battle.Auto = true
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *history > 0 {
		if err := listHistory(ctx, cfg, *history); err != nil {
			logger.Fatal("listing archived battles", zap.Error(err))
		}
		return
	}

	out, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("battle failed", zap.Error(err))
	}
	logger.Info("battle finished",
		zap.String("battle_id", out.BattleID),
		zap.Stringer("result", out.Result),
		zap.Int("rounds", out.Rounds),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// content is everything loaded from disk before a battle starts.
type content struct {
	heroes  []*actor.Actor
	enemies []*actor.Actor
	domains []*ai.Domain
}

func loadContent(cfg config.ContentConfig, logger *zap.Logger) (*content, error) {
	loadStart := time.Now()

	statuses, err := status.LoadDirectory(cfg.StatusDir)
	if err != nil {
		return nil, fmt.Errorf("loading statuses: %w", err)
	}
	skills, err := skill.LoadDirectory(cfg.SkillDir, statuses, logger)
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	items, err := inventory.LoadDirectory(cfg.ItemDir, skills, logger)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	templates, err := actor.LoadTemplates(cfg.ActorDir)
	if err != nil {
		return nil, fmt.Errorf("loading actor templates: %w", err)
	}
	enc, err := encounter.Load(cfg.EncounterFile)
	if err != nil {
		return nil, err
	}
	heroes, enemies, err := enc.Build(templates, actor.Catalog{Skills: skills, Items: items})
	if err != nil {
		return nil, err
	}

	var domains []*ai.Domain
	if cfg.DomainDir != "" {
		if domains, err = ai.LoadDomains(cfg.DomainDir); err != nil {
			return nil, fmt.Errorf("loading ai domains: %w", err)
		}
	}

	logger.Info("content loaded",
		zap.String("encounter", enc.Name),
		zap.Int("skills", len(skills.IDs())),
		zap.Int("items", len(items.IDs())),
		zap.Int("templates", len(templates)),
		zap.Int("domains", len(domains)),
		zap.Duration("elapsed", time.Since(loadStart)),
	)
	return &content{heroes: heroes, enemies: enemies, domains: domains}, nil
}

func newSource(cfg config.BattleConfig, logger *zap.Logger) dice.Source {
	var src dice.Source
	if cfg.Seed != 0 {
		src = dice.NewSeededSource(cfg.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	if cfg.LogDraws {
		return dice.NewLoggedSource(src, logger)
	}
	return src
}

// newScripts loads the shared Lua scripts and, for each domain with a
// subdirectory of the same name, a dedicated scope.
func newScripts(cfg config.ContentConfig, domains []*ai.Domain, src dice.Source, logger *zap.Logger) (*scripting.Manager, error) {
	mgr := scripting.NewManager(src, logger)
	if cfg.ScriptDir == "" {
		return mgr, nil
	}
	if err := mgr.LoadGlobal(cfg.ScriptDir, cfg.InstructionLimit); err != nil {
		mgr.Close()
		return nil, err
	}
	for _, d := range domains {
		dir := filepath.Join(cfg.ScriptDir, d.ID)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := mgr.LoadScope(d.ID, dir, cfg.InstructionLimit); err != nil {
			mgr.Close()
			return nil, err
		}
	}
	return mgr, nil
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) (combat.Outcome, error) {
	tieBreak, ok := combat.ParseTieBreak(cfg.Battle.TieBreak)
	if !ok {
		return combat.Outcome{}, fmt.Errorf("unknown tie break %q", cfg.Battle.TieBreak)
	}

	c, err := loadContent(cfg.Content, logger)
	if err != nil {
		return combat.Outcome{}, err
	}

	src := newSource(cfg.Battle, logger)
	scripts, err := newScripts(cfg.Content, c.domains, src, logger)
	if err != nil {
		return combat.Outcome{}, err
	}
	defer scripts.Close()

	planners := ai.NewRegistry()
	for _, d := range c.domains {
		if err := planners.Register(d, scripts, d.ID); err != nil {
			return combat.Outcome{}, err
		}
	}

	reader := console.NewReader(os.Stdin, os.Stdout, cfg.Battle.MaxInputAttempts)
	recorder := report.NewRecorder(time.Now)
	opts := []combat.Option{
		combat.WithID(uuid.NewString()),
		combat.WithSource(src),
		combat.WithTurnOrder(combat.SpeedOrder{TieBreak: tieBreak}),
		combat.WithLogger(logger),
		combat.WithMaxRounds(cfg.Battle.MaxRounds),
		combat.WithAuto(cfg.Battle.Auto),
		combat.WithListener(console.NewRenderer(os.Stdout, cfg.Battle.Color)),
		combat.WithListener(event.LogListener(logger)),
		combat.WithListener(recorder),
		combat.WithPlayerController(command.NewMenu(reader, os.Stdout, logger)),
	}
	opts = append(opts, ai.Options(planners)...)

	b, err := combat.NewBattle(c.heroes, c.enemies, opts...)
	if err != nil {
		return combat.Outcome{}, err
	}
	logger.Info("battle starting",
		zap.String("battle_id", b.ID()),
		zap.Int("heroes", len(c.heroes)),
		zap.Int("enemies", len(c.enemies)),
		zap.Bool("auto", cfg.Battle.Auto),
	)

	out, err := b.Run(ctx)
	if err != nil {
		return out, err
	}

	if cfg.Archive.Enabled {
		// The battle already happened; a failed archive is reported, not fatal.
		if err := archive(context.Background(), cfg, recorder.Report(out), logger); err != nil {
			logger.Error("archiving battle report", zap.String("battle_id", out.BattleID), zap.Error(err))
		}
	}
	return out, nil
}

func archive(ctx context.Context, cfg config.Config, rep *report.Report, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Archive.Timeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.Reports().Save(ctx, rep)
	if err != nil {
		return err
	}
	logger.Info("battle report archived",
		zap.Int64("id", id),
		zap.String("battle_id", rep.BattleID),
		zap.Int("events", len(rep.Events)),
	)
	return nil
}

func listHistory(ctx context.Context, cfg config.Config, limit int) error {
	if !cfg.Archive.Enabled {
		return errors.New("archive is disabled")
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Archive.Timeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	summaries, err := db.Reports().ListRecent(ctx, limit)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		winner := s.Winner
		if winner == "" {
			winner = "-"
		}
		fmt.Fprintf(os.Stdout, "%s  %-8s %-6s %3d rounds  %s\n",
			s.EndedAt.Format(time.RFC3339), s.Result, winner, s.Rounds, s.BattleID)
	}
	return nil
}
