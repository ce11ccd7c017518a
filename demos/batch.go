package demos

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine"
	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/diagnostic"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer/backend/headless"
)

// DefaultBatchStep is the simulated time between batch frames.
const DefaultBatchStep = time.Second / 60

// BatchConfig configures RunBatch.
type BatchConfig struct {
	// Options are the build settings of every demo. Reporter is ignored; each demo gets its own.
	Options Options

	// Frames is the maximum number of frames run per demo.
	Frames int

	// Step is the simulated time between frames. Zero uses DefaultBatchStep.
	Step time.Duration

	// Workers bounds the number of demos run at once. Zero uses runtime.NumCPU.
	Workers int

	// Escalate lists the diagnostic kinds that stop a demo from starting.
	Escalate []diagnostic.Kind
}

// BatchResult is the outcome of one demo in a batch.
type BatchResult struct {
	Name string

	// Frames is the number of frames the engine drew.
	Frames int

	// Draws is the number of draw calls the backend recorded.
	Draws int

	// Diagnostics holds every diagnostic reported while building and running.
	Diagnostics []*diagnostic.Diagnostic

	// Err is the build, setup or start error, nil when the demo ran.
	Err error
}

// RunBatch runs each demo on its own headless backend and manual clock, several at once
// through a worker pool. No backend object is shared between demos.
//
// Parameters:
//   - list: the demos to run
//   - cfg: frame count, time step, pool size and diagnostics policy
//
// Returns:
//   - []BatchResult: one result per demo, in the order of list
func RunBatch(list []Demo, cfg BatchConfig) []BatchResult {
	step := common.Coalesce(cfg.Step, DefaultBatchStep)
	workers := common.Coalesce(cfg.Workers, runtime.NumCPU())
	pool := worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)

	results := make([]BatchResult, len(list))
	var wg sync.WaitGroup
	for i, d := range list {
		wg.Add(1)
		index, current := i, d
		pool.SubmitTask(worker.Task{
			ID: index,
			Do: func() (any, error) {
				defer wg.Done()
				results[index] = runOne(current, cfg, step)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return results
}

func runOne(d Demo, cfg BatchConfig, step time.Duration) BatchResult {
	log := common.Logger().With("demo", d.Name())
	reporter := diagnostic.NewReporter(
		diagnostic.WithEscalate(cfg.Escalate...),
		diagnostic.WithLogger(log),
	)
	opts := cfg.Options
	opts.Reporter = reporter

	res := BatchResult{Name: d.Name()}
	b := headless.NewBackend(headless.WithSurfaceSize(opts.size()))
	defer b.Release()

	e := engine.NewEngine(b, engine.WithClock(clock.NewManualClock()))
	a, err := Launch(d, e, opts)
	if err != nil {
		res.Err = err
		res.Diagnostics = reporter.Reports()
		log.Error("batch demo failed", "error", err)
		return res
	}
	defer release(a)

	res.Frames = e.RunFrames(cfg.Frames, step)
	res.Draws = len(b.Draws())
	res.Diagnostics = reporter.Reports()
	log.Info("batch demo finished", "frames", res.Frames, "draws", res.Draws, "diagnostics", len(res.Diagnostics))
	return res
}
