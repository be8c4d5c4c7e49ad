//
// Copyright (C) 2026 Weavegraph Authors. All rights reserved.
//
// weavegraph is licensed under the Apache License Version 2.0.
//

package graph

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/weavegraph/weavegraph/model"
	"github.com/weavegraph/weavegraph/telemetry"
	"github.com/weavegraph/weavegraph/tool"
)

// buildOptions collects the runtime resources a build may need.
type buildOptions struct {
	modelFactory       model.Factory
	tools              []tool.Tool
	resolver           ComponentResolver
	capabilityRegistry *tool.CapabilityRegistry
	componentOverrides map[string]map[string]any
}

// BuildOption configures a GraphBuilder.
type BuildOption func(*buildOptions)

// WithModelFactory supplies the factory used to construct models for LLM
// nodes and components.
func WithModelFactory(factory model.Factory) BuildOption {
	return func(o *buildOptions) {
		o.modelFactory = factory
	}
}

// WithTools supplies the tools available to the graph's nodes.
func WithTools(tools []tool.Tool) BuildOption {
	return func(o *buildOptions) {
		o.tools = tools
	}
}

// WithComponentResolver supplies the resolver used to expand COMPONENT
// nodes.
func WithComponentResolver(resolver ComponentResolver) BuildOption {
	return func(o *buildOptions) {
		o.resolver = resolver
	}
}

// WithCapabilityRegistry overrides the registry used to filter tools for
// components. Defaults to tool.DefaultCapabilityRegistry.
func WithCapabilityRegistry(registry *tool.CapabilityRegistry) BuildOption {
	return func(o *buildOptions) {
		o.capabilityRegistry = registry
	}
}

// WithComponentOverrides supplies caller-side config overrides for one
// COMPONENT node, merged over the overrides declared in the config.
func WithComponentOverrides(nodeID string, overrides map[string]any) BuildOption {
	return func(o *buildOptions) {
		if o.componentOverrides == nil {
			o.componentOverrides = make(map[string]map[string]any)
		}
		o.componentOverrides[nodeID] = overrides
	}
}

// GraphBuilder validates a GraphConfig and compiles it into an executable
// Graph. Construction validates; Build compiles. A builder holds no
// mutable state after construction and may be reused.
type GraphBuilder struct {
	config *GraphConfig
	opts   buildOptions

	// entryPoint is the resolved entry node: config.EntryPoint when set,
	// otherwise the target of the sole unconditional edge out of Start.
	entryPoint string
}

// NewGraphBuilder validates the config and returns a builder for it. All
// structural problems in the config surface here as configuration errors;
// Build only fails on resource problems such as a missing model factory.
func NewGraphBuilder(config *GraphConfig, opts ...BuildOption) (*GraphBuilder, error) {
	if config == nil {
		return nil, newConfigError(ErrInvalidEntryPoint, "", "config is nil")
	}
	b := &GraphBuilder{config: config}
	for _, opt := range opts {
		opt(&b.opts)
	}
	if b.opts.capabilityRegistry == nil {
		b.opts.capabilityRegistry = tool.DefaultCapabilityRegistry
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *GraphBuilder) validate() error {
	cfg := b.config
	if cfg.Version != SupportedVersion {
		return newConfigError(ErrIncompatibleVersion, cfg.Version,
			fmt.Sprintf("supported version is %s", SupportedVersion))
	}

	declared := make(map[string]NodeType, len(cfg.Nodes))
	for _, node := range cfg.Nodes {
		if node.ID == "" {
			return newConfigError(ErrDuplicateNodeID, node.ID, "node id is empty")
		}
		if _, exists := declared[node.ID]; exists {
			return newConfigError(ErrDuplicateNodeID, node.ID, "declared more than once")
		}
		declared[node.ID] = node.Type
		if err := validateNodeConfig(node); err != nil {
			return err
		}
	}

	entryPoint, err := resolveEntryPoint(cfg)
	if err != nil {
		return err
	}
	if _, ok := declared[entryPoint]; !ok {
		return newConfigError(ErrInvalidEntryPoint, entryPoint, "not a declared node")
	}
	b.entryPoint = entryPoint

	for _, edge := range cfg.Edges {
		if err := validateEdgeEndpoint(edge.FromNode, declared, "from_node"); err != nil {
			return err
		}
		if err := validateEdgeEndpoint(edge.ToNode, declared, "to_node"); err != nil {
			return err
		}
		if edge.FromNode == End {
			return newConfigError(ErrUnknownNodeReference, edgeSubject(edge), "edge departs from END")
		}
		if edge.ToNode == Start {
			return newConfigError(ErrUnknownNodeReference, edgeSubject(edge), "edge arrives at START")
		}
		if err := validateEdgeCondition(edge); err != nil {
			return err
		}
	}

	for name := range cfg.CustomStateFields {
		if name == StateKeyMessages || name == StateKeyExecutionContext {
			return newConfigError(ErrReservedStateField, name, "redefines a reserved field")
		}
	}
	return nil
}

// resolveEntryPoint returns the declared entry point, or derives it from
// the single unconditional edge out of Start when the config omits one.
func resolveEntryPoint(cfg *GraphConfig) (string, error) {
	if cfg.EntryPoint != "" {
		return cfg.EntryPoint, nil
	}
	var target string
	for _, edge := range cfg.Edges {
		if edge.FromNode != Start || edge.Condition != nil {
			continue
		}
		if target != "" && target != edge.ToNode {
			return "", newConfigError(ErrInvalidEntryPoint, "",
				"entry point omitted and START has more than one unconditional edge")
		}
		target = edge.ToNode
	}
	if target == "" {
		return "", newConfigError(ErrInvalidEntryPoint, "",
			"entry point omitted and no unconditional edge departs from START")
	}
	return target, nil
}

func validateNodeConfig(node *GraphNodeConfig) error {
	var wantLLM, wantTool, wantComponent bool
	switch node.Type {
	case NodeTypeLLM:
		wantLLM = true
	case NodeTypeTool:
		wantTool = true
	case NodeTypeComponent:
		wantComponent = true
	case NodeTypeRouter:
		// No payload.
	default:
		return newConfigError(ErrNodeTypeConfigMismatch, node.ID,
			fmt.Sprintf("unknown node type %q", node.Type))
	}
	if (node.LLMConfig != nil) != wantLLM ||
		(node.ToolConfig != nil) != wantTool ||
		(node.ComponentConfig != nil) != wantComponent {
		return newConfigError(ErrNodeTypeConfigMismatch, node.ID,
			fmt.Sprintf("config payload does not match node type %s", node.Type))
	}
	if wantComponent && node.ComponentConfig.Component.Key == "" {
		return newConfigError(ErrNodeTypeConfigMismatch, node.ID, "component reference has no key")
	}
	return nil
}

func validateEdgeEndpoint(nodeID string, declared map[string]NodeType, field string) error {
	if nodeID == Start || nodeID == End {
		return nil
	}
	if _, ok := declared[nodeID]; !ok {
		return newConfigError(ErrUnknownNodeReference, nodeID,
			fmt.Sprintf("%s references an undeclared node", field))
	}
	return nil
}

func validateEdgeCondition(edge *GraphEdgeConfig) error {
	cond := edge.Condition
	if cond == nil {
		return nil
	}
	switch cond.Type {
	case ConditionHasToolCalls, ConditionNoToolCalls:
		return nil
	case ConditionCustom:
		if cond.Custom == nil {
			return newConfigError(ErrInvalidCondition, edgeSubject(edge), "CUSTOM condition has no payload")
		}
		if cond.Custom.StateKey == "" {
			return newConfigError(ErrInvalidCondition, edgeSubject(edge), "custom condition has no state_key")
		}
		switch cond.Custom.Operator {
		case OperatorTruthy, OperatorFalsy, OperatorEquals, OperatorNotEquals,
			OperatorContains, OperatorGreater, OperatorLess:
			return nil
		default:
			return newConfigError(ErrInvalidCondition, edgeSubject(edge),
				fmt.Sprintf("unknown operator %q", cond.Custom.Operator))
		}
	default:
		return newConfigError(ErrInvalidCondition, edgeSubject(edge),
			fmt.Sprintf("unknown condition type %q", cond.Type))
	}
}

func edgeSubject(edge *GraphEdgeConfig) string {
	return edge.FromNode + "->" + edge.ToNode
}

// LintReachability reports declared nodes unreachable from the entry
// point. Unreachable nodes are permitted at build time so configs can be
// authored incrementally; callers may treat the result as a warning.
func (b *GraphBuilder) LintReachability() []string {
	adjacent := make(map[string][]string)
	for _, edge := range b.config.Edges {
		adjacent[edge.FromNode] = append(adjacent[edge.FromNode], edge.ToNode)
	}
	visited := map[string]bool{b.entryPoint: true}
	queue := []string{b.entryPoint}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	var unreachable []string
	for _, node := range b.config.Nodes {
		if !visited[node.ID] {
			unreachable = append(unreachable, node.ID)
		}
	}
	return unreachable
}

// Build compiles the validated config into an executable graph. The config
// is not mutated and the builder may compile it again.
func (b *GraphBuilder) Build(ctx context.Context) (*Graph, error) {
	schema, err := BuildStateSchema(b.config)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(b.config.Nodes))
	for _, nodeConfig := range b.config.Nodes {
		fn, err := b.compileNode(ctx, nodeConfig)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &Node{
			ID:          nodeConfig.ID,
			Name:        nodeConfig.Name,
			Description: nodeConfig.Description,
			Type:        nodeConfig.Type,
			Function:    fn,
		})
	}

	edges := make([]*Edge, 0, len(b.config.Edges))
	for _, edgeConfig := range b.config.Edges {
		if edgeConfig.FromNode == Start {
			// START edges are implied by entry_point.
			continue
		}
		edges = append(edges, &Edge{
			From:      edgeConfig.FromNode,
			To:        edgeConfig.ToNode,
			Condition: edgeConfig.Condition,
			Priority:  edgeConfig.Priority,
		})
	}

	return newGraph(b.graphName(), schema, nodes, edges, b.entryPoint), nil
}

func (b *GraphBuilder) graphName() string {
	if name, ok := b.config.Metadata["name"].(string); ok && name != "" {
		return name
	}
	return "graph"
}

func (b *GraphBuilder) compileNode(ctx context.Context, nodeConfig *GraphNodeConfig) (NodeFunc, error) {
	switch nodeConfig.Type {
	case NodeTypeLLM:
		return b.compileLLMNode(ctx, nodeConfig)
	case NodeTypeTool:
		return NewToolsNodeFunc(b.opts.tools, ToolNodeOptions{
			NodeID:     nodeConfig.ID,
			ExecuteAll: nodeConfig.ToolConfig.ExecuteAll,
			OutputKey:  nodeConfig.ToolConfig.OutputKey,
		}), nil
	case NodeTypeComponent:
		return b.compileComponentNode(ctx, nodeConfig)
	case NodeTypeRouter:
		return NewRouterNodeFunc(nodeConfig.ID), nil
	default:
		return nil, newConfigError(ErrNodeTypeConfigMismatch, nodeConfig.ID,
			fmt.Sprintf("unknown node type %q", nodeConfig.Type))
	}
}

func (b *GraphBuilder) compileLLMNode(ctx context.Context, nodeConfig *GraphNodeConfig) (NodeFunc, error) {
	if b.opts.modelFactory == nil {
		return nil, fmt.Errorf("llm node %s: no model factory configured", nodeConfig.ID)
	}
	m, err := b.opts.modelFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("llm node %s: %w", nodeConfig.ID, err)
	}
	var tools []tool.Tool
	if nodeConfig.LLMConfig.ToolsEnabled {
		tools = b.opts.tools
	}
	return NewLLMNodeFunc(m, LLMNodeOptions{
		NodeID:         nodeConfig.ID,
		PromptTemplate: nodeConfig.LLMConfig.PromptTemplate,
		OutputKey:      nodeConfig.LLMConfig.OutputKey,
		Tools:          tools,
	}), nil
}

func (b *GraphBuilder) compileComponentNode(ctx context.Context, nodeConfig *GraphNodeConfig) (NodeFunc, error) {
	if b.opts.resolver == nil {
		return nil, fmt.Errorf("component node %s: no component resolver configured", nodeConfig.ID)
	}
	ref := nodeConfig.ComponentConfig.Component
	component, err := b.opts.resolver.Resolve(ref.Key, ref.Version)
	if err != nil {
		return nil, fmt.Errorf("component node %s: %w", nodeConfig.ID, err)
	}

	metadata := component.Metadata()
	filtered := b.opts.capabilityRegistry.FilterByCapabilities(b.opts.tools, metadata.RequiredCapabilities)

	config := mergeConfig(nodeConfig.ComponentConfig.ConfigOverrides, b.opts.componentOverrides[nodeConfig.ID])
	subGraph, err := component.BuildGraph(ctx, Dependencies{
		ModelFactory: b.opts.modelFactory,
		Tools:        filtered,
		Capabilities: b.opts.capabilityRegistry,
	}, config)
	if err != nil {
		return nil, fmt.Errorf("component node %s (%s): %w", nodeConfig.ID, ref.Key, err)
	}
	return newComponentNodeFunc(nodeConfig.ID, metadata.Key, subGraph), nil
}

// mergeConfig layers runtime overrides over config-declared overrides.
func mergeConfig(declared, runtime map[string]any) map[string]any {
	merged := make(map[string]any, len(declared)+len(runtime))
	for k, v := range declared {
		merged[k] = v
	}
	for k, v := range runtime {
		merged[k] = v
	}
	return merged
}

// newComponentNodeFunc wraps a component's compiled graph as a node of the
// outer graph. The subgraph runs against a clone of the outer state; its
// final state is folded back as an update, with only the messages the
// subgraph appended reported so the outer append reducer does not
// duplicate history.
func newComponentNodeFunc(nodeID, componentKey string, sub *Graph) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		ctx, span := telemetry.Tracer.Start(ctx, "graph.node.component",
			trace.WithAttributes(
				telemetry.StringAttr(telemetry.KeyNodeID, nodeID),
				telemetry.StringAttr(telemetry.KeyComponentKey, componentKey),
			))
		defer span.End()

		baseMessageCount := len(state.Messages())
		final, err := NewExecutor(sub).Invoke(ctx, state.Clone())
		if err != nil {
			return nil, fmt.Errorf("component node %s: %w", nodeID, err)
		}

		update := State{}
		for key, value := range final {
			if key == StateKeyMessages {
				continue
			}
			update[key] = value
		}
		messages := final.Messages()
		if len(messages) > baseMessageCount {
			update[StateKeyMessages] = messages[baseMessageCount:]
		}
		return update, nil
	}
}
