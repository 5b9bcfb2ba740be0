package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/classify"
	"github.com/cometalabs/devflow/internal/compact"
	"github.com/cometalabs/devflow/internal/config"
	"github.com/cometalabs/devflow/internal/configfile"
	"github.com/cometalabs/devflow/internal/debug"
	"github.com/cometalabs/devflow/internal/embedding"
	"github.com/cometalabs/devflow/internal/eventbus"
	"github.com/cometalabs/devflow/internal/hook"
	"github.com/cometalabs/devflow/internal/locks"
	"github.com/cometalabs/devflow/internal/orchestrator"
	"github.com/cometalabs/devflow/internal/telemetry"
)

var hookCmd = &cobra.Command{
	Use:    "hook",
	Short:  "Claude Code lifecycle hook entry points",
	Hidden: true,
	Long: `Subcommands invoked by Claude Code hooks configured in settings.json.
Each reads one event payload from stdin and writes an optional decision
to stdout. Errors never fail the hook: a wedged session costs more than
a lost observation.`,
}

// hookEventNames maps subcommand names to wire event types.
var hookEventNames = []struct {
	use   string
	event hook.EventType
}{
	{"session-start", hook.EventSessionStart},
	{"user-prompt-submit", hook.EventUserPromptSubmit},
	{"pre-tool-use", hook.EventPreToolUse},
	{"post-tool-use", hook.EventPostToolUse},
	{"stop", hook.EventStop},
	{"pre-compact", hook.EventPreCompact},
	{"session-end", hook.EventSessionEnd},
}

func init() {
	for _, he := range hookEventNames {
		eventType := he.event
		hookCmd.AddCommand(&cobra.Command{
			Use:   he.use,
			Short: fmt.Sprintf("Handle a %s event", eventType),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runHook(eventType)
			},
		})
	}
	rootCmd.AddCommand(hookCmd)
}

// runHook is the hook pipeline: parse stdin, dispatch through the bus,
// write the aggregated decision to stdout. Every failure path logs to
// stderr and returns nil so Claude Code sees exit 0.
func runHook(eventType hook.EventType) error {
	start := time.Now()
	ctx := rootCtx

	event, err := hook.ParseEvent(os.Stdin, eventType)
	if err != nil {
		debug.Logf("hook %s: parse: %v", eventType, err)
		return nil
	}

	deps, closeStore, err := buildHookDeps(ctx, event)
	if err != nil {
		debug.Logf("hook %s: setup: %v", eventType, err)
		return nil
	}
	defer closeStore()

	bus := eventbus.New()
	for _, h := range eventbus.DefaultHandlers(deps) {
		bus.Register(h)
	}

	// Serialize dispatch per session: concurrent hook processes for the
	// same session would interleave their session and memory writes.
	var result *eventbus.Result
	var dispatchErr error
	dispatch := func() error {
		result, dispatchErr = bus.Dispatch(ctx, event)
		return nil
	}
	if event.SessionID != "" {
		coord := locks.NewCoordinator(deps.Store, config.GetDuration("lock.ttl"))
		if err := coord.WithLock(ctx, "session:"+event.SessionID, dispatch); err != nil {
			debug.Logf("hook %s: lock: %v", eventType, err)
			_ = dispatch()
		}
	} else {
		_ = dispatch()
	}
	decision := hook.DecisionApprove
	if result != nil {
		decision = result.Decision()
	}
	telemetry.RecordHookDispatch(ctx, string(eventType), string(decision), time.Since(start), dispatchErr)
	if dispatchErr != nil {
		debug.Logf("hook %s: dispatch: %v", eventType, dispatchErr)
	}
	if result == nil {
		return nil
	}

	debug.LogEvent(strings.ToUpper(string(decision)), event.SessionID, string(eventType))

	if err := result.Response().Write(os.Stdout, eventType); err != nil {
		debug.Logf("hook %s: write: %v", eventType, err)
	}
	return nil
}

// buildHookDeps assembles the handler dependencies for one hook invocation.
// The returned func closes the store.
func buildHookDeps(ctx context.Context, event *hook.Event) (eventbus.Deps, func(), error) {
	devflowDir := hookProjectDir(event)

	// The viper singleton was initialized from the process CWD, which is
	// whatever Claude Code used when exec'ing the hook. Read the event
	// project's config.yaml directly for the keys that matter at startup.
	local := &config.LocalConfig{}
	if devflowDir != "" {
		local = config.LoadLocalConfig(devflowDir)
	}
	if local.Debug {
		debug.SetVerbose(true)
	}

	path, err := resolveHookDBPath(devflowDir, local)
	if err != nil {
		return eventbus.Deps{}, nil, err
	}
	s, err := brain.Open(ctx, path)
	if err != nil {
		return eventbus.Deps{}, nil, err
	}

	meta := loadProjectMetaAt(devflowDir)

	deps := eventbus.Deps{
		Store:         s,
		Classifier:    buildClassifier(devflowDir, meta),
		Embedder:      buildEmbedder(meta, local.EmbedProvider),
		Orchestrator:  buildOrchestrator(devflowDir, meta),
		Summarizer:    buildSummarizer(meta),
		WorkspaceRoot: workspaceRoot(devflowDir, event),
	}
	return deps, func() { _ = s.Close() }, nil
}

// hookProjectDir locates the .devflow directory for an event. The cwd in
// the payload wins over the process CWD so hooks land in the project the
// session is actually editing.
func hookProjectDir(event *hook.Event) string {
	if event.CWD != "" {
		if dir := config.FindDevflowDir(event.CWD); dir != "" {
			return dir
		}
	}
	return config.FindDevflowDir("")
}

// resolveHookDBPath mirrors resolveDBPath with one extra layer: the db key
// from the event project's config.yaml, ahead of its metadata.json.
func resolveHookDBPath(devflowDir string, local *config.LocalConfig) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if p := config.GetString("db"); p != "" {
		return p, nil
	}
	if local.Database != "" {
		return local.Database, nil
	}
	if devflowDir == "" {
		return "", fmt.Errorf("no .devflow directory found (run 'devflow init' first)")
	}
	return loadProjectMetaAt(devflowDir).DatabasePath(devflowDir), nil
}

func buildClassifier(devflowDir string, meta *configfile.Config) *classify.Classifier {
	if devflowDir != "" {
		rulesPath := meta.RulesPath(devflowDir)
		if rulesPath == "" {
			rulesPath = filepath.Join(devflowDir, "rules.yaml")
		}
		rules, err := classify.LoadRules(rulesPath)
		if err != nil {
			debug.Logf("hook: rules: %v", err)
		} else if len(rules) > 0 {
			return classify.NewClassifierWithRules(rules)
		}
	}
	return classify.NewClassifier()
}

func buildEmbedder(meta *configfile.Config, providerOverride string) embedding.Engine {
	cfg := embedding.DefaultConfig()
	if p := config.GetString("embeddings.provider"); p != "" {
		cfg.Provider = p
	} else if providerOverride != "" {
		cfg.Provider = providerOverride
	} else if meta.EmbeddingProvider != "" {
		cfg.Provider = meta.EmbeddingProvider
	}
	if e := meta.OllamaEndpoint; e != "" {
		cfg.OllamaEndpoint = e
	}
	if config.IsSet("embeddings.endpoint") {
		cfg.OllamaEndpoint = config.GetString("embeddings.endpoint")
	}
	if m := meta.OllamaModel; m != "" {
		cfg.OllamaModel = m
	}
	if config.IsSet("embeddings.model") {
		cfg.OllamaModel = config.GetString("embeddings.model")
	}

	engine, err := embedding.NewEngine(cfg)
	if err != nil {
		debug.Logf("hook: embeddings: %v, falling back to simulated", err)
		engine, _ = embedding.NewEngine(embedding.Config{Provider: "simulated"})
	}
	return engine
}

func buildOrchestrator(devflowDir string, meta *configfile.Config) *orchestrator.Engine {
	policy := orchestrator.DefaultPolicy()
	if devflowDir != "" {
		policyPath := meta.PolicyPath(devflowDir)
		if policyPath == "" {
			policyPath = filepath.Join(devflowDir, "orchestrator.toml")
		}
		p, err := orchestrator.LoadPolicy(policyPath)
		if err != nil {
			debug.Logf("hook: policy: %v", err)
		} else {
			policy = p
		}
	}
	if t := config.GetFloat64("orchestrator.threshold"); t > 0 {
		policy.Threshold = t
	}

	engine, err := orchestrator.New(policy)
	if err != nil {
		debug.Logf("hook: policy compile: %v", err)
		engine, _ = orchestrator.New(orchestrator.DefaultPolicy())
	}
	return engine
}

func buildSummarizer(meta *configfile.Config) eventbus.Summarizer {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return nil
	}
	if meta.SummaryModel != "" && os.Getenv("DEVFLOW_SUMMARY_MODEL") == "" {
		os.Setenv("DEVFLOW_SUMMARY_MODEL", meta.SummaryModel)
	}
	s, err := compact.NewHaikuSummarizer(os.Getenv("ANTHROPIC_API_KEY"))
	if err != nil {
		debug.Logf("hook: summarizer: %v", err)
		return nil
	}
	return s
}

// workspaceRoot bounds the risk gate's path checks. The project root is
// the directory holding .devflow; the event CWD is the fallback.
func workspaceRoot(devflowDir string, event *hook.Event) string {
	if devflowDir != "" {
		return filepath.Dir(devflowDir)
	}
	return event.CWD
}
