package facade

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/agent"
	agentcontext "github.com/cogniscale/cortex/agent/context"
	"github.com/cogniscale/cortex/agent/evolution"
	"github.com/cogniscale/cortex/agent/memory"
	"github.com/cogniscale/cortex/config"
	"github.com/cogniscale/cortex/graph"
	"github.com/cogniscale/cortex/internal/metrics"
	"github.com/cogniscale/cortex/metamemory"
	"github.com/cogniscale/cortex/query"
	"github.com/cogniscale/cortex/simulation"
	"github.com/cogniscale/cortex/types"
)

// Initialize constructs the Facade's collaborators from cfg, optionally
// seeds the registry's declared-agent table from agentConfigurationsJSON,
// wires an evolution orchestrator if optimizer is non-nil (evolution is
// optional per §4.11), and runs an initial health pass bounded by
// cfg.Facade.ComponentInitTimeout. A nil logger defaults to zap.NewNop().
func Initialize(cfg *config.Config, optimizer evolution.Optimizer, agentConfigurationsJSON []byte, logger *zap.Logger) (*Facade, error) {
	if cfg == nil {
		return nil, types.NewError(types.ErrConfig, "facade: config must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &Facade{
		cfg:             cfg.Facade,
		componentStatus: make(map[string]ComponentStatus),
		componentErr:    make(map[string]string),
		counters:        make(map[string]*componentCounter),
		logger:          logger.With(zap.String("component", "facade")),
		prom:            metrics.NewCollector("cortex", logger),
	}
	for _, name := range []string{componentMemory, componentMetaMemory, componentGraph, componentRegistry, componentQuery, componentSimulation, componentEvolution} {
		f.componentStatus[name] = StatusInitializing
		f.counters[name] = &componentCounter{}
	}
	f.counters["dispatch"] = &componentCounter{}

	initTimeout := cfg.Facade.ComponentInitTimeout
	if initTimeout <= 0 {
		initTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	working := memory.NewInMemoryWorkingStore(logger)
	episodic := memory.NewInMemoryEpisodicStore(logger)
	semantic := memory.NewInMemorySemanticStore(logger)
	f.memorySvc = memory.NewService(working, episodic, semantic, memory.TagClusterExtractor{}, logger)
	f.memorySvc.ConfigureConsolidation(consolidationConfigFrom(cfg.Memory))
	f.setComponentStatus(componentMemory, StatusReady, "")

	f.metaStore = metamemory.NewStore(logger)
	f.metaStore.SetConfidenceThresholds(cfg.MetaMemory.HighConfidenceThreshold, cfg.MetaMemory.LowConfidenceThreshold)
	f.setComponentStatus(componentMetaMemory, StatusReady, "")

	f.graphMgr = graph.NewManager(graphConfigFrom(cfg.Hebbian), logger)
	f.setComponentStatus(componentGraph, StatusReady, "")

	f.registry = agent.NewRegistry(logger)
	if len(agentConfigurationsJSON) > 0 {
		if err := f.registry.LoadConfigurations(agentConfigurationsJSON); err != nil {
			f.setComponentStatus(componentRegistry, StatusError, err.Error())
			return nil, types.Errorf(types.ErrConfig, "facade: load_configurations: %v", err).WithCause(err)
		}
	}
	f.setComponentStatus(componentRegistry, StatusReady, "")

	sources := map[query.TargetKind]query.Source{
		query.TargetConcepts: conceptSource{graph: f.graphMgr},
		query.TargetMemories: memorySource{memory: f.memorySvc},
		query.TargetRules:    ruleSource{store: f.metaStore},
	}
	f.queryExec = query.NewExecutor(sources, graphTraverser{graph: f.graphMgr})
	f.setComponentStatus(componentQuery, StatusReady, "")

	f.simEngine = simulation.NewEngine(branchingConfigFrom(cfg.Branching), confidenceConfigFrom(cfg.Confidence), nil, logger)
	f.setComponentStatus(componentSimulation, StatusReady, "")

	if optimizer != nil {
		f.evoOrch = evolution.NewOrchestrator(evolutionConfigFrom(cfg.Evolution), nil, nil, optimizer, logger)
		f.setComponentStatus(componentEvolution, StatusReady, "")
	} else {
		f.setComponentStatus(componentEvolution, StatusUninitialized, "")
	}

	conversation := NewInMemoryConversation(0)
	cognitive, err := agentcontext.NewBuilder().
		WithMemory(f.memorySvc).
		WithConversation(conversation).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, types.Errorf(types.ErrConfig, "facade: build cognitive context: %v", err).WithCause(err)
	}
	f.cognitive = cognitive

	maxConcurrent := cfg.Facade.MaxConcurrentOperations
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	f.sem = make(chan struct{}, maxConcurrent)

	f.startedAt = time.Now()

	if cfg.Facade.EnableHealthChecks {
		f.Health(ctx)
		if err := ctx.Err(); err != nil {
			f.logger.Warn("initial health pass did not complete before component_init_timeout", zap.Error(err))
		}
	}

	f.logger.Info("facade initialized",
		zap.Int("max_concurrent_operations", maxConcurrent),
		zap.Bool("evolution_enabled", f.evoOrch != nil))
	return f, nil
}
