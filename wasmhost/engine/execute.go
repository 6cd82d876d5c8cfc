package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/airsstack/airssys/codec"
)

// ComponentOutput is the result of a successful Execute call, per spec.md
// §4.4 step 5.
type ComponentOutput struct {
	Data     []byte
	Codec    codec.Code
	Metadata ExecutionMetadata
}

// ExecutionMetadata reports the per-invocation store accounting recorded
// by StoreLifecycle, surfaced to the caller alongside the decoded result.
type ExecutionMetadata struct {
	FuelConsumed uint64
	Elapsed      time.Duration
}

// Execute runs function on handle with input decoded per codec.Code and
// reencoded on the way out, implementing spec.md §4.4's five-step
// Execution flow: resolve function, decode input, invoke under deadline
// and fuel budget, map failures to typed errors, reencode results. The
// store's Release is deferred immediately so fuel/memory accounting is
// torn down on every exit path, including a recovered panic — matching
// the spec's store-lifecycle RAII guarantee.
func Execute(
	ctx context.Context,
	invoker FunctionInvoker,
	handle ComponentHandle,
	function string,
	input []byte,
	inputCodec codec.Code,
	outputCodec codec.Code,
	meta ComponentMetadata,
	limiter *ResourceLimiter,
) (out ComponentOutput, execErr error) {
	store := NewStoreLifecycle(limiter, meta.MaxFuelPerExecution)
	defer store.Release()

	defer func() {
		if r := recover(); r != nil {
			store.Release()
			panic(r)
		}
	}()

	var params []byte
	if err := codec.Decode(input, &params); err != nil {
		return ComponentOutput{}, &ExecutionFailedError{Cause: fmt.Errorf("decode input: %w", err)}
	}

	args := []Val{params}

	deadline := time.Duration(meta.MaxExecutionMs) * time.Millisecond
	invokeCtx := ctx
	var cancel context.CancelFunc
	if deadline > 0 {
		invokeCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	type invokeResult struct {
		vals []Val
		err  error
	}
	resultCh := make(chan invokeResult, 1)
	go func() {
		vals, err := invoker.Invoke(invokeCtx, handle, function, args)
		resultCh <- invokeResult{vals, err}
	}()

	var results []Val
	select {
	case <-invokeCtx.Done():
		if deadline > 0 && invokeCtx.Err() == context.DeadlineExceeded {
			return ComponentOutput{}, &TimeoutError{AfterMs: meta.MaxExecutionMs}
		}
		return ComponentOutput{}, invokeCtx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return ComponentOutput{}, mapInvokeError(r.err)
		}
		results = r.vals
	}

	var resultBytes []byte
	if len(results) > 0 {
		if b, ok := results[0].([]byte); ok {
			resultBytes = b
		} else {
			return ComponentOutput{}, &ExecutionFailedError{Cause: fmt.Errorf("result is not []byte: %T", results[0])}
		}
	}

	encoded, err := codec.Encode(outputCodec, resultBytes)
	if err != nil {
		return ComponentOutput{}, &ExecutionFailedError{Cause: fmt.Errorf("encode output: %w", err)}
	}

	return ComponentOutput{
		Data:  encoded,
		Codec: outputCodec,
		Metadata: ExecutionMetadata{
			FuelConsumed: store.FuelConsumed(),
			Elapsed:      store.Elapsed(),
		},
	}, nil
}

// mapInvokeError passes through errors the invoker already typed
// (TrapError, FunctionNotFoundError, ...) and wraps anything else as
// ExecutionFailedError, per spec.md §4.4 step 4.
func mapInvokeError(err error) error {
	switch err.(type) {
	case *TrapError, *FunctionNotFoundError, *TimeoutError, *MemoryLimitExceededError, *TableLimitExceededError:
		return err
	default:
		return &ExecutionFailedError{Cause: err}
	}
}
