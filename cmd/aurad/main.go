// Package main is the entry point for aurad, the wiring shell around
// AURA's orchestrator. Everything it does is plumbing: construct the
// macOS collaborators, read commands from stdin, hand each one to
// Orchestrator.ExecuteCommand. The CLI surface itself is intentionally
// thin — it exists so this module has a main package exercising the
// wiring, not as a product in its own right.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aura-agent/aura/internal/accessibility"
	"github.com/aura-agent/aura/internal/automation"
	"github.com/aura-agent/aura/internal/bus"
	"github.com/aura-agent/aura/internal/config"
	"github.com/aura-agent/aura/internal/deferred"
	"github.com/aura-agent/aura/internal/handlers"
	"github.com/aura-agent/aura/internal/intent"
	"github.com/aura-agent/aura/internal/logging"
	"github.com/aura-agent/aura/internal/metrics"
	"github.com/aura-agent/aura/internal/orchestrator"
	"github.com/aura-agent/aura/internal/planner"
	"github.com/aura-agent/aura/pkg/contracts"
	"github.com/aura-agent/aura/pkg/types"
)

var (
	cfgPath string
	verbose bool
	log     *logging.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "aurad",
		Short:             "aurad wires AURA's orchestrator to the local desktop session",
		PersistentPreRunE: initLogging,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.aura/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogging(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	logDir := filepath.Join(home, ".aura", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to create log directory: %v\n", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFile := filepath.Join(logDir, fmt.Sprintf("aurad_%s.log", timestamp))

	var cfg *logging.Config
	if verbose {
		cfg = logging.VerboseConfig()
	} else {
		cfg = logging.DefaultConfig()
	}
	cfg.FilePath = logFile

	log = logging.New(cfg)
	logging.SetGlobal(log)
	log.Info("aurad session started, logging to %s", logFile)
	return nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "read commands from stdin and execute them against the local desktop",
		RunE:  runOrchestrator,
	}
}

func runOrchestrator(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	events := bus.NewBus()
	defer events.Close()

	connector := accessibility.NewOSAConnector()
	engine := accessibility.NewEngine(connector, cfg.Accessibility.ClickableRoles, cfg.Accessibility.FuzzyThreshold, cfg.Accessibility.FuzzyTimeoutMS)
	probe := accessibility.NewPermissionProbe()

	osa := automation.NewOSAAutomation()

	// No concrete Vision/ScreenCapture model ships with AURA (same
	// Non-goal as Reasoning below); capture/vision stay nil and the
	// planner falls back to a fast-path-only failure when the
	// accessibility tree can't resolve a target.
	p := planner.New(cfg.Planner, engine, nil, nil, connector.FrontmostApp)

	reasoning := &unconfiguredReasoning{}
	feedback := osa

	guiHandler := handlers.NewGUIHandler(p, osa)
	convHandler := handlers.NewConversationHandler(reasoning, feedback)
	questionHandler := handlers.NewQuestionHandler(reasoning, feedback)

	mouseListener := automation.NewMouseListener(func(pt types.Point) {
		_ = events.Publish(bus.MouseClickObserved(pt.X, pt.Y))
	})
	deferredMgr := deferred.New(cfg, reasoning, osa, feedback, mouseListener, events)
	deferredHandler := handlers.NewDeferredHandler(deferredMgr)

	recognizer := intent.New(cfg.Intent, reasoning)

	o := orchestrator.New(cfg.ExecutionLockTimeout(), log, feedback, recognizer, events, orchestrator.Handlers{
		GUI:          guiHandler,
		Conversation: convHandler,
		Question:     questionHandler,
		Deferred:     deferredHandler,
	})

	o.RegisterRecoverable("accessibility", func(ctx context.Context) error {
		level, _ := probe.Probe(ctx)
		if level == accessibility.LevelNone {
			return fmt.Errorf("accessibility still unavailable")
		}
		return nil
	})

	mon := metrics.New(cfg.Performance, log, events)
	mon.Start()
	defer mon.Stop()
	o.AttachMonitor(mon)

	ctx := cmd.Context()
	if level, guidance := probe.Probe(ctx); level != accessibility.LevelFull {
		log.Warn("accessibility degraded (%s)", level)
		for _, step := range guidance.Steps {
			log.Warn("  - %s", step)
		}
	}

	return readAndExecute(ctx, o)
}

func readAndExecute(ctx context.Context, o *orchestrator.Orchestrator) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		result := o.ExecuteCommand(ctx, line)
		fmt.Printf("%s: %s\n", result.Status, result.Reason)
	}
	return scanner.Err()
}

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

// unconfiguredReasoning is the caller-supplied Reasoning stub aurad
// wires in place of a real language model. No LLM client ships with
// AURA (the model is an external collaborator by design); this stub
// exists so internal/deferred and internal/intent's LLM-assisted path
// fail cleanly with a typed error instead of dereferencing a nil
// interface.
type unconfiguredReasoning struct{}

func (r *unconfiguredReasoning) Complete(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("no reasoning model configured")
}

var _ contracts.Feedback = (*automation.OSAAutomation)(nil)
var _ contracts.Reasoning = (*unconfiguredReasoning)(nil)
