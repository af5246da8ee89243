// package telemetry aggregates per-frame presentation timing off the
// presentation thread and logs periodic summaries, so the frame loop never
// pays for bookkeeping beyond a queue submit.
package telemetry

import (
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Sample is one frame's presentation timing, captured after the timing query.
type Sample struct {
	// SubmitMicros is the wall-clock time of the frame's present submit.
	SubmitMicros int64
	// VsyncMicros is the estimated display refresh period, 0 when unknown.
	VsyncMicros int64
	// DisplayMicros is the predicted wall-clock display time of the most
	// recently queued frame, 0 when unknown.
	DisplayMicros int64
	// SkippedVsyncs is the number of display refreshes missed, negative when
	// unknown.
	SkippedVsyncs int
}

// Stats is an aggregate view over the samples recorded since the last reset.
type Stats struct {
	// Frames is the number of samples aggregated.
	Frames int
	// VsyncMicrosMin and VsyncMicrosMax bound the observed refresh period
	// estimates; both are 0 when no frame carried an estimate.
	VsyncMicrosMin int64
	VsyncMicrosMax int64
	// VsyncMicrosAvg is the mean observed refresh period estimate, 0 when no
	// frame carried one.
	VsyncMicrosAvg int64
	// PredictedFrames is the number of samples that carried a display-time
	// prediction.
	PredictedFrames int
}

// Recorder collects presentation timing samples and periodically logs frame
// pacing statistics alongside process memory pressure.
type Recorder interface {
	// Record submits one frame's sample for aggregation. Non-blocking; the
	// aggregation runs on the recorder's worker pool.
	//
	// Parameters:
	//   - s: the frame's timing sample
	Record(s Sample)

	// Snapshot blocks until all submitted samples are aggregated, then returns
	// the running statistics without resetting them.
	//
	// Returns:
	//   - Stats: the aggregate over samples recorded since the last reset
	Snapshot() Stats

	// Reset clears the running statistics after draining pending samples.
	Reset()
}

// recorder is the implementation of the Recorder interface.
type recorder struct {
	pool worker.DynamicWorkerPool
	wg   sync.WaitGroup

	mu          sync.Mutex
	stats       Stats
	vsyncSum    int64
	vsyncFrames int

	logInterval time.Duration
	lastLog     time.Time
	memStats    runtime.MemStats

	nextTaskID int
}

var _ Recorder = &recorder{}

// NewRecorder creates a Recorder with a single aggregation worker.
// Log interval defaults to 1 second; a non-positive interval disables logging.
//
// Parameters:
//   - options: optional BuilderOption functions to customize the recorder
//
// Returns:
//   - Recorder: the newly created recorder
func NewRecorder(options ...BuilderOption) Recorder {
	r := &recorder{
		logInterval: time.Second,
		lastLog:     time.Now(),
	}
	for _, option := range options {
		option(r)
	}
	// One worker keeps aggregation ordered; the queue absorbs bursts when the
	// frame loop outpaces logging.
	r.pool = worker.NewDynamicWorkerPool(1, 256, 1*time.Second)
	return r
}

func (r *recorder) Record(s Sample) {
	r.wg.Add(1)
	id := r.nextTaskID
	r.nextTaskID++
	r.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer r.wg.Done()
			r.aggregate(s)
			return nil, nil
		},
	})
}

func (r *recorder) Snapshot() Stats {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *recorder) Reset() {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = Stats{}
	r.vsyncSum = 0
	r.vsyncFrames = 0
}

func (r *recorder) aggregate(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Frames++
	if s.VsyncMicros > 0 {
		if r.vsyncFrames == 0 || s.VsyncMicros < r.stats.VsyncMicrosMin {
			r.stats.VsyncMicrosMin = s.VsyncMicros
		}
		if s.VsyncMicros > r.stats.VsyncMicrosMax {
			r.stats.VsyncMicrosMax = s.VsyncMicros
		}
		r.vsyncSum += s.VsyncMicros
		r.vsyncFrames++
		r.stats.VsyncMicrosAvg = r.vsyncSum / int64(r.vsyncFrames)
	}
	if s.DisplayMicros > 0 {
		r.stats.PredictedFrames++
	}

	if r.logInterval > 0 {
		now := time.Now()
		if elapsed := now.Sub(r.lastLog); elapsed >= r.logInterval {
			r.logSummary(elapsed)
			r.lastLog = now
		}
	}
}

// logSummary is called with the mutex held.
func (r *recorder) logSummary(elapsed time.Duration) {
	fps := float64(r.stats.Frames) / elapsed.Seconds()

	runtime.ReadMemStats(&r.memStats)
	allocMB := float64(r.memStats.Alloc) / 1024 / 1024

	if r.vsyncFrames > 0 {
		log.Printf("[Telemetry] FPS: %.2f | Vsync: %d µs (min %d, max %d) | Predicted: %d/%d | Heap: %.2f MB",
			fps, r.stats.VsyncMicrosAvg, r.stats.VsyncMicrosMin, r.stats.VsyncMicrosMax,
			r.stats.PredictedFrames, r.stats.Frames, allocMB)
	} else {
		log.Printf("[Telemetry] FPS: %.2f | Vsync: unavailable | Heap: %.2f MB", fps, allocMB)
	}

	r.stats = Stats{}
	r.vsyncSum = 0
	r.vsyncFrames = 0
}
