// File: internal/flow/dispatcher.go
package flow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/probeworks/extflow/internal/config"
	"github.com/probeworks/extflow/internal/webhook"
)

// LaunchFunc opens the browser against the resolved session and returns the
// capability surface the flow runs on. Injected so the dispatcher can be
// exercised without a real browser.
type LaunchFunc func(ctx context.Context) (Surface, error)

// Runtime is everything one flow execution needs. Exactly one flow owns it at
// a time; nothing here is shared across invocations.
type Runtime struct {
	ui      *walletUI
	sel     Selectors
	cfg     config.FlowConfig
	params  Params
	limiter *rate.Limiter
	hook    *webhook.Client
	log     *zap.Logger
}

// report pushes a finding to the collaborator endpoint when one is configured.
// Delivery failures are logged, never fatal: the finding already lives in the
// Result.
func (rt *Runtime) report(ctx context.Context, payload map[string]any) {
	if rt.hook == nil {
		return
	}
	payload["environment"] = rt.environment()
	if err := rt.hook.Send(ctx, payload); err != nil {
		rt.log.Warn("Failed to deliver finding to webhook", zap.Error(err))
	}
}

func (rt *Runtime) environment() string {
	if rt.cfg.Dev {
		return "development"
	}
	return "production"
}

// Dispatcher selects and runs one catalog flow per invocation, guaranteeing
// browser teardown whatever the flow body does. The profile directory is
// deliberately never deleted, preserving session reusability.
type Dispatcher struct {
	launch    LaunchFunc
	cfg       config.FlowConfig
	selectors Selectors
	hook      *webhook.Client
	logger    *zap.Logger
}

// NewDispatcher wires a dispatcher. hook may be nil when no collaborator
// endpoint is configured.
func NewDispatcher(logger *zap.Logger, cfg config.FlowConfig, launch LaunchFunc, hook *webhook.Client) *Dispatcher {
	return &Dispatcher{
		launch:    launch,
		cfg:       cfg,
		selectors: DefaultSelectors(),
		hook:      hook,
		logger:    logger.Named("dispatcher"),
	}
}

// Run executes the named flow with the given parameters. Every propagated
// error is converted into a terminal Result; the browser is always torn down,
// with a short inspection window left open on in-flow failures.
func (d *Dispatcher) Run(ctx context.Context, name Name, params Params) Result {
	run, err := lookup(name)
	if err != nil {
		// Input validation failure: nothing was launched.
		res := failed("flow name not in catalog", err)
		res.Flow = name
		return res
	}

	log := d.logger.With(zap.String("flow", string(name)))
	log.Info("Starting flow", zap.Bool("dev", d.cfg.Dev))

	surface, err := d.launch(ctx)
	if err != nil {
		res := failed("browser launch failed", err)
		if errors.Is(err, context.Canceled) {
			res.Outcome = OutcomeAborted
		}
		res.Flow = name
		return res
	}

	rt := &Runtime{
		ui:      newWalletUI(surface, d.selectors, log),
		sel:     d.selectors,
		cfg:     d.cfg,
		params:  params,
		limiter: rate.NewLimiter(rate.Every(d.cfg.AttemptInterval), 1),
		hook:    d.hook,
		log:     log,
	}

	res := d.execute(ctx, run, rt)
	res.Flow = name

	if res.Outcome == OutcomeFailed && errors.Is(res.Err, context.Canceled) {
		res.Outcome = OutcomeAborted
	}

	d.teardown(ctx, surface, log, res)

	switch res.Outcome {
	case OutcomeSucceeded:
		log.Info("Flow succeeded", zap.String("detail", res.Detail))
	case OutcomeAborted:
		log.Warn("Flow aborted", zap.String("detail", res.Detail))
	default:
		log.Error("Flow failed", zap.String("detail", res.Detail), zap.Error(res.Err))
	}
	return res
}

// execute runs the flow body, converting a panic into a failed result so
// teardown still happens through the normal path.
func (d *Dispatcher) execute(ctx context.Context, run runFunc, rt *Runtime) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			rt.log.Error("Flow panicked", zap.Any("panic", r))
			res = failed("flow panicked", &CompositeError{Step: "flow body", State: StateUnknown, Err: errors.New("panic during flow execution")})
		}
	}()
	return run(ctx, rt)
}

// teardown closes the browser. On in-flow failures the window stays open for
// a short inspection delay first, as a diagnostic aid.
func (d *Dispatcher) teardown(ctx context.Context, surface Surface, log *zap.Logger, res Result) {
	if res.Outcome == OutcomeFailed && d.cfg.InspectDelay > 0 && ctx.Err() == nil {
		log.Info("Leaving browser open for inspection", zap.Duration("delay", d.cfg.InspectDelay))
		_ = surface.Sleep(d.cfg.InspectDelay)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := surface.Close(closeCtx); err != nil {
		log.Warn("Browser teardown reported an error", zap.Error(err))
	}
}
