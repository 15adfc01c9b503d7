// Package scheduler implements the flow context: a supervisor that
// deploys a flow graph for periodic ticking, materialises it fresh each
// period, wires per-tick channels, and dispatches every node's command
// exactly once per tick (spec §4.3).
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/emit"
	"github.com/dshills/fluxgraph/flow"
	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/telemetry"
)

// Options configures a FlowContext. JoinPreviousTick resolves Open
// Question 3: when true, a new tick waits for the prior tick's tasks to
// finish before starting; when false (the default), ticks overlap and
// commands are expected to tolerate it, matching the source's observed
// behaviour (spec §5, §9 item 3).
type Options struct {
	JoinPreviousTick bool
}

// deployment tracks one flow's periodic ticking goroutine.
type deployment struct {
	cancel context.CancelFunc
	done   chan struct{}
	ticks  *int // started tick count, for the double-deploy report
}

// FlowContext is the in-memory supervisor holding the table of deployed
// flows (spec §2). It observes the store through *store.Store but does
// not own it.
type FlowContext struct {
	mu       sync.Mutex
	store    *store.Store
	registry *command.Registry
	opts     Options
	emitter  emit.Emitter

	deployed map[store.GraphID]*deployment
}

// New builds a FlowContext over s, dispatching commands built from reg
// and raising Events on emitter. A nil emitter installs emit.NullEmitter
// so callers never need a nil check.
func New(s *store.Store, reg *command.Registry, opts Options, emitter emit.Emitter) *FlowContext {
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	return &FlowContext{
		store:    s,
		registry: reg,
		opts:     opts,
		emitter:  emitter,
		deployed: make(map[store.GraphID]*deployment),
	}
}

// Deploy registers flowID for periodic execution every period. A second
// Deploy of an already-deployed flow id cancels the prior deployment's
// ticking goroutine and installs the new one (spec §9 item 4's
// "replace" policy), returning the number of ticks the prior deployment
// started. With overlapping ticks a tick is counted when it is launched,
// whether or not it has finished.
func (fc *FlowContext) Deploy(ctx context.Context, flowID store.GraphID, period time.Duration) (priorTicks int, err error) {
	fc.mu.Lock()
	prior, existed := fc.deployed[flowID]
	fc.mu.Unlock()

	if existed {
		prior.cancel()
		<-prior.done
		priorTicks = *prior.ticks
	}

	tickCtx, cancel := context.WithCancel(ctx)
	d := &deployment{cancel: cancel, done: make(chan struct{}), ticks: new(int)}

	fc.mu.Lock()
	fc.deployed[flowID] = d
	fc.mu.Unlock()

	go fc.run(tickCtx, flowID, period, d)

	return priorTicks, nil
}

// Undeploy stops future ticks for flowID and signals current-tick tasks
// to terminate at their next suspension point (spec §4.3). It fails
// with store.ErrFlowDoesntExist if flowID is not deployed.
func (fc *FlowContext) Undeploy(flowID store.GraphID) error {
	fc.mu.Lock()
	d, ok := fc.deployed[flowID]
	if ok {
		delete(fc.deployed, flowID)
	}
	fc.mu.Unlock()

	if !ok {
		return store.ErrFlowDoesntExist
	}
	d.cancel()
	<-d.done
	return nil
}

// run is the per-flow ticking goroutine: a loop over period with a
// select against tickCtx's cancellation, per spec §4.3's "select over
// the interval and cancel."
func (fc *FlowContext) run(ctx context.Context, flowID store.GraphID, period time.Duration, d *deployment) {
	defer close(d.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			if fc.opts.JoinPreviousTick {
				wg.Wait()
			}
			return
		case <-ticker.C:
			if fc.opts.JoinPreviousTick {
				wg.Wait()
				fc.tick(ctx, flowID)
				*d.ticks++
			} else {
				wg.Add(1)
				go func() {
					defer wg.Done()
					fc.tick(ctx, flowID)
				}()
				*d.ticks++
			}
		}
	}
}

// tick implements the tick algorithm of spec §4.3 steps 1-7. It
// re-reads the flow, builds a fresh channel-connected task network, and
// awaits completion or cancellation.
func (fc *FlowContext) tick(ctx context.Context, flowID store.GraphID) {
	f, err := flow.Load(ctx, fc.store, flowID)
	if err != nil {
		telemetry.Log.Error().Err(err).Str("flow", flowID.String()).Msg("tick: load flow failed")
		fc.emitter.Emit(emit.Event{FlowID: flowID.String(), Msg: "tick_error", Meta: map[string]interface{}{"error": err.Error()}})
		return
	}

	net := buildNetwork(f)

	g, gctx := errgroup.WithContext(ctx)
	for _, node := range f.Nodes {
		node := node
		task := net.tasks[node.ID]
		g.Go(func() error {
			return fc.runNode(gctx, flowID, node, task)
		})
	}

	for _, sender := range net.starterSenders {
		sender <- store.Empty()
		close(sender)
	}

	if err := g.Wait(); err != nil {
		telemetry.Log.Error().Err(err).Str("flow", flowID.String()).Msg("tick: node failed")
		fc.emitter.Emit(emit.Event{FlowID: flowID.String(), Msg: "tick_error", Meta: map[string]interface{}{"error": err.Error()}})
		return
	}
	fc.emitter.Emit(emit.Event{FlowID: flowID.String(), Msg: "tick_complete"})
}

// runNode implements tick-algorithm step 5: collect one value from each
// input receiver, invoke the command, assert every declared output is
// present, and fan each output out to its registered senders.
func (fc *FlowContext) runNode(ctx context.Context, flowID store.GraphID, node flow.FlowNode, task *nodeTask) error {
	inputs := make(map[string]store.Value, len(task.inputs))
	for name, recv := range task.inputs {
		select {
		case v, ok := <-recv:
			if !ok {
				return nil
			}
			inputs[name] = v
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	cmd, err := fc.registry.Build(node.Descriptor)
	if err != nil {
		telemetry.Log.Error().Err(err).Str("node", node.ID.String()).Msg("tick: build command failed")
		fc.emitter.Emit(emit.Event{FlowID: flowID.String(), NodeID: node.ID.String(), Msg: "node_error", Meta: map[string]interface{}{"error": err.Error()}})
		closeAllOutputs(task)
		return nil
	}

	fc.emitter.Emit(emit.Event{FlowID: flowID.String(), NodeID: node.ID.String(), Msg: "node_start"})
	start := time.Now()
	cmdCtx := &command.Context{Store: fc.store, Graph: flowID}
	outputs, err := cmd.Run(ctx, cmdCtx, inputs)
	durationMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		telemetry.Log.Error().Err(err).Str("node", node.ID.String()).Msg("tick: command failed")
		fc.emitter.Emit(emit.Event{FlowID: flowID.String(), NodeID: node.ID.String(), Msg: "node_error", Meta: map[string]interface{}{"error": err.Error(), "duration_ms": durationMs}})
		closeAllOutputs(task)
		return nil
	}
	fc.emitter.Emit(emit.Event{FlowID: flowID.String(), NodeID: node.ID.String(), Msg: "node_end", Meta: map[string]interface{}{"duration_ms": durationMs, "status": "success"}})

	for name, senders := range task.outputs {
		v, ok := outputs[name]
		if !ok {
			continue
		}
		for _, sender := range senders {
			sender <- v.Clone()
		}
	}
	closeAllOutputs(task)
	return nil
}

func closeAllOutputs(task *nodeTask) {
	for _, senders := range task.outputs {
		for _, sender := range senders {
			close(sender)
		}
	}
}
