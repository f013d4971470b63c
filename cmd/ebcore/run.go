package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ebcore/internal/agent"
	"ebcore/internal/config"
	"ebcore/internal/ebc"
	"ebcore/internal/ltm"
	"ebcore/internal/symbols"
	"ebcore/internal/trace"
)

var (
	agentCount int
	cycleCount int
	watch      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run agents through a fixed number of decision cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runAgents(ctx)
	},
}

func init() {
	runCmd.Flags().IntVar(&agentCount, "agents", 1, "number of agents to run")
	runCmd.Flags().IntVar(&cycleCount, "cycles", 25, "decision cycles per agent")
	runCmd.Flags().BoolVar(&watch, "watch", false, "reload settings when the config file changes")
}

func runAgents(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	reg, err := ltm.Open(ltmPath)
	if err != nil {
		return err
	}
	defer reg.Close()

	cfgCh := make(chan config.Config, 1)
	if watch {
		w, err := config.NewWatcher(configPath, func(updated config.Config) {
			select {
			case cfgCh <- updated:
			default:
			}
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < agentCount; i++ {
		agentCfg := cfg
		agentCfg.Agent.Name = fmt.Sprintf("%s-%d", cfg.Agent.Name, i+1)
		g.Go(func() error {
			return runOne(ctx, agentCfg, reg, cfgCh)
		})
	}
	return g.Wait()
}

// runOne drives a single agent through its cycles. Each agent owns a
// disjoint interner; only the identifier registry is shared.
func runOne(ctx context.Context, cfg config.Config, reg *ltm.Registry, cfgCh <-chan config.Config) error {
	a, err := agent.New(cfg, agent.Options{
		Tracer:   trace.New(os.Stdout, logger),
		Logger:   logger,
		Registry: reg,
	})
	if err != nil {
		return err
	}
	defer a.Teardown()

	a.CreateTopGoal()
	impasses := []symbols.ImpasseType{
		symbols.ImpasseTie,
		symbols.ImpasseOpNoChange,
		symbols.ImpasseStateNoChange,
		symbols.ImpasseConflict,
	}

	for i := 0; i < cycleCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case updated := <-cfgCh:
			if err := a.ApplySettings(updated); err != nil {
				logger.Warn("rejected config update", zap.Error(err))
			}
		default:
		}

		a.StepDecisionCycle()
		sub := a.PushSubgoal(impasses[i%len(impasses)])
		inst := &ebc.Instantiation{
			ID:             a.Chunker.NextInstantiationID(),
			ProdName:       fmt.Sprintf("propose*op%d", i+1),
			MatchGoal:      sub,
			MatchGoalLevel: sub.Level,
		}
		prod, err := a.Learn(inst)
		if err != nil {
			logger.Warn("learning attempt failed", zap.Error(err))
		}
		if prod != nil {
			a.Syms.Release(prod.Name)
		}
		a.PopSubgoal()
	}

	return a.WriteStatus(os.Stdout)
}
