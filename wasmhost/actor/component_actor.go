// Package actor implements ComponentActor, the rt/actor.Actor[ComponentMessage]
// that fronts one WASM component, per spec.md §4.5. It is also an
// rt/supervisor.Child: Start lazily loads the component via a
// wasmhost/engine.Loader, Stop tears the loaded handle down, and
// HealthCheck reports degraded/unhealthy once recent invocation errors
// cross a threshold within a sliding window — grounded on rt/supervisor's
// own sliding-window restart-limit pruning, reused here for health rather
// than restart accounting.
package actor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/audit"
	"github.com/airsstack/airssys/osl/executor"
	"github.com/airsstack/airssys/osl/framework"
	"github.com/airsstack/airssys/osl/operation"
	"github.com/airsstack/airssys/osl/policy"
	rtactor "github.com/airsstack/airssys/rt/actor"
	"github.com/airsstack/airssys/rt/supervisor"
	"github.com/airsstack/airssys/wasmhost"
	"github.com/airsstack/airssys/wasmhost/capability"
	"github.com/airsstack/airssys/wasmhost/engine"
	"github.com/airsstack/airssys/wasmhost/messaging"
)

// errShutdownRequested is returned by HandleMessage on a Shutdown message
// so OnError can map it to rtactor.Stop without special-casing the message
// loop itself.
var errShutdownRequested = errors.New("wasmhost: component shutdown requested")

// Config bundles a ComponentActor's fixed collaborators.
type Config struct {
	ID       wasmhost.ComponentId
	Metadata wasmhost.ComponentMetadata
	Source   []byte // raw component bytes, passed to the Loader on Start

	Loader    *engine.Loader
	Invoker   engine.FunctionInvoker
	Limiter   *engine.ResourceLimiter
	Checker   *capability.Checker
	Publisher *messaging.Publisher

	// AuditSink receives the security decisions the actor's own OSL
	// framework instance records for every invoke/inter-component call.
	// Nil falls back to framework.NewDefault's bounded audit.RingSink.
	AuditSink audit.Sink

	// ErrorThreshold/ErrorWindow gate HealthCheck: HealthDegraded once
	// errors within the window reach ErrorThreshold, HealthFailed at
	// 2x that. Zero ErrorThreshold disables degradation (always Healthy).
	ErrorThreshold int
	ErrorWindow    time.Duration
}

// ComponentActor is the per-component RT actor.
type ComponentActor struct {
	cfg       Config
	framework *framework.Framework

	mu           sync.Mutex
	handle       engine.ComponentHandle
	recentErrors []time.Time
}

// New builds a ComponentActor and its own osl/framework.Framework: a
// single-executor pipeline that routes every invoke/inter-component call
// through SecurityMiddleware and LoggingMiddleware before reaching the
// engine, satisfying spec.md §4.6's "every OSL-proxied operation" clause
// for component invocations specifically (wasmhost/capability.Checker
// gates entry before the Operation is even built; see handleInvoke).
func New(cfg Config) *ComponentActor {
	a := &ComponentActor{cfg: cfg}

	meta := engine.ComponentMetadata{
		MaxFuelPerExecution: cfg.Metadata.Limits.MaxFuelPerExecution,
		MaxExecutionMs:      cfg.Metadata.Limits.MaxExecutionMs,
		MaxMemoryBytes:      cfg.Metadata.Limits.MaxMemoryBytes,
	}
	execs := executor.NewRegistry(executor.NewComponentExecutor(cfg.Invoker, a.currentHandle, cfg.Limiter, meta))
	allowInvoke := policy.NewACLPolicy("component-invoke", policy.ACLEntry{
		Subject: "*", Resource: "*", Action: operation.PermComponentInvoke.String(), Allow: true,
	})
	a.framework = framework.NewDefault(execs, cfg.AuditSink, false, allowInvoke)
	return a
}

func (a *ComponentActor) currentHandle() (engine.ComponentHandle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handle, a.handle != nil
}

// Start implements rt/supervisor.Child: loads the component's bytes via
// the configured Loader.
func (a *ComponentActor) Start(ctx context.Context) error {
	meta := engine.ComponentMetadata{
		MaxMemoryBytes:      a.cfg.Metadata.Limits.MaxMemoryBytes,
		MaxFuelPerExecution: a.cfg.Metadata.Limits.MaxFuelPerExecution,
		MaxExecutionMs:      a.cfg.Metadata.Limits.MaxExecutionMs,
	}
	if err := a.cfg.Loader.Load(ctx, a.cfg.ID.String(), a.cfg.Source, meta); err != nil {
		return err
	}
	handle, _, ok := a.cfg.Loader.Lookup(a.cfg.ID.String())
	if !ok {
		return errors.New("wasmhost: component loaded but not found in loader")
	}
	a.mu.Lock()
	a.handle = handle
	a.mu.Unlock()
	return nil
}

// Stop implements rt/supervisor.Child: releases the loaded handle.
func (a *ComponentActor) Stop(ctx context.Context, timeout time.Duration) error {
	a.cfg.Loader.Unload(a.cfg.ID.String())
	a.mu.Lock()
	a.handle = nil
	a.mu.Unlock()
	return nil
}

// HealthCheck implements rt/supervisor.Child.
func (a *ComponentActor) HealthCheck(ctx context.Context) (supervisor.ChildHealth, error) {
	status := a.healthStatus()
	switch status.Status {
	case wasmhost.Unhealthy:
		return supervisor.HealthFailed, errors.New(status.Reason)
	case wasmhost.Degraded:
		return supervisor.HealthDegraded, nil
	default:
		return supervisor.HealthHealthy, nil
	}
}

func (a *ComponentActor) healthStatus() wasmhost.HealthReport {
	if a.cfg.ErrorThreshold <= 0 {
		return wasmhost.HealthReport{Status: wasmhost.Healthy}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruneErrorsLocked(time.Now().UTC())
	n := len(a.recentErrors)
	switch {
	case n >= a.cfg.ErrorThreshold*2:
		return wasmhost.HealthReport{Status: wasmhost.Unhealthy, Reason: "error rate exceeds 2x threshold"}
	case n >= a.cfg.ErrorThreshold:
		return wasmhost.HealthReport{Status: wasmhost.Degraded, Reason: "error rate exceeds threshold"}
	default:
		return wasmhost.HealthReport{Status: wasmhost.Healthy}
	}
}

func (a *ComponentActor) pruneErrorsLocked(now time.Time) {
	if a.cfg.ErrorWindow <= 0 {
		return
	}
	cutoff := now.Add(-a.cfg.ErrorWindow)
	kept := a.recentErrors[:0]
	for _, t := range a.recentErrors {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	a.recentErrors = kept
}

func (a *ComponentActor) recordError() {
	a.mu.Lock()
	a.recentErrors = append(a.recentErrors, time.Now().UTC())
	a.mu.Unlock()
}

// HandleMessage implements rt/actor.Actor[wasmhost.ComponentMessage].
func (a *ComponentActor) HandleMessage(ctx context.Context, msg wasmhost.ComponentMessage, actx *rtactor.Context[wasmhost.ComponentMessage]) error {
	switch msg.Kind {
	case wasmhost.Invoke:
		return a.handleInvoke(ctx, msg, actx)
	case wasmhost.InterComponent:
		return a.handleInterComponent(ctx, msg, "")
	case wasmhost.InterComponentWithCorrelation:
		return a.handleInterComponent(ctx, msg, msg.CorrelationID)
	case wasmhost.HealthCheck:
		return a.handleHealthCheck(ctx, msg, actx)
	case wasmhost.Shutdown:
		return errShutdownRequested
	default:
		return nil
	}
}

func (a *ComponentActor) handleInvoke(ctx context.Context, msg wasmhost.ComponentMessage, actx *rtactor.Context[wasmhost.ComponentMessage]) error {
	if _, ok := a.currentHandle(); !ok {
		return a.replyInvokeResult(ctx, msg, nil, "component not started", actx)
	}
	if !a.cfg.Checker.CanInvokeFunction(a.cfg.ID, msg.Function) {
		return a.replyInvokeResult(ctx, msg, nil, "permission denied: invoke "+msg.Function, actx)
	}

	res, err := a.framework.Execute(ctx, a.invokeOperation(msg.Function, msg.Args), a.securityContext(msg.Function))
	if err != nil {
		a.recordError()
		return a.replyInvokeResult(ctx, msg, nil, err.Error(), actx)
	}
	return a.replyInvokeResult(ctx, msg, res.Stdout, "", actx)
}

// invokeOperation builds the Operation a.framework.Execute routes through
// SecurityMiddleware to the component executor, declaring exactly the
// permission wasmhost/capability.Checker already cleared for function.
func (a *ComponentActor) invokeOperation(function string, payload []byte) operation.Operation {
	perms := operation.PermissionSet{operation.ComponentInvoke(function)}
	return operation.NewComponentOperation(operation.ComponentFields{Function: function, Payload: payload}, perms)
}

func (a *ComponentActor) securityContext(function string) operation.SecurityContext {
	perms := operation.PermissionSet{operation.ComponentInvoke(function)}
	return operation.NewSecurityContext(a.cfg.ID.String(), perms)
}

func (a *ComponentActor) replyInvokeResult(ctx context.Context, msg wasmhost.ComponentMessage, result []byte, errMsg string, actx *rtactor.Context[wasmhost.ComponentMessage]) error {
	reply := wasmhost.ComponentMessage{
		Kind:          wasmhost.InvokeResult,
		Sender:        a.cfg.ID,
		Result:        result,
		Err:           errMsg,
		CorrelationID: msg.CorrelationID,
	}
	env := rtactor.NewEnvelope(reply).WithCorrelationID(msg.CorrelationID)
	return actx.Broker.Publish(ctx, env)
}

const interComponentFunction = "handle-message"

func (a *ComponentActor) handleInterComponent(ctx context.Context, msg wasmhost.ComponentMessage, correlationID string) error {
	if _, ok := a.currentHandle(); !ok {
		return errors.New("wasmhost: component not started")
	}
	if !a.cfg.Checker.CanInvokeFunction(a.cfg.ID, interComponentFunction) {
		return osl.NewSecurityViolation("component " + a.cfg.ID.String() + " may not invoke " + interComponentFunction)
	}

	res, err := a.framework.Execute(ctx, a.invokeOperation(interComponentFunction, msg.Payload), a.securityContext(interComponentFunction))
	if err != nil {
		a.recordError()
		return err
	}
	if correlationID == "" {
		return nil
	}
	return a.cfg.Publisher.PublishWithCorrelation(ctx, msg.Sender, res.Stdout, correlationID)
}

func (a *ComponentActor) handleHealthCheck(ctx context.Context, msg wasmhost.ComponentMessage, actx *rtactor.Context[wasmhost.ComponentMessage]) error {
	status := a.healthStatus()
	reply := wasmhost.ComponentMessage{
		Kind:          wasmhost.HealthStatusMsg,
		Sender:        a.cfg.ID,
		Health:        status,
		CorrelationID: msg.CorrelationID,
	}
	env := rtactor.NewEnvelope(reply).WithCorrelationID(msg.CorrelationID)
	return actx.Broker.Publish(ctx, env)
}

// OnError implements rt/actor.Actor[wasmhost.ComponentMessage]: shutdown
// requests stop the actor cleanly, everything else resumes after
// recording the error for health accounting.
func (a *ComponentActor) OnError(err error) rtactor.ErrorAction {
	if errors.Is(err, errShutdownRequested) {
		return rtactor.Stop
	}
	a.recordError()
	return rtactor.Resume
}
