// package vsync estimates physical display timing from per-present frame
// statistics. It fuses the presentation engine's submission sequence counter
// with its hardware refresh counter to predict when the most recently
// submitted frame will actually reach the screen.
package vsync

import (
	"errors"

	"github.com/Carmen-Shannon/present-go/engine/clock"
)

// ErrStatsUnavailable is returned by a StatsProvider whose presentation engine
// does not expose frame statistics. The estimator treats it like any other
// statistics query failure: state is carried forward and an empty result is
// produced.
var ErrStatsUnavailable = errors.New("frame statistics unavailable")

// FrameStatistics is one sample from the presentation engine, relating the
// present-submission timeline to the physical refresh timeline. The engine
// sometimes reports a successful query with zeroed members; a zero value in
// any field means "not yet populated", not a real count.
type FrameStatistics struct {
	// PresentCount is a present-submission sequence number, on the same timeline
	// as StatsProvider.LastPresentCount.
	PresentCount uint32

	// PresentRefreshCount is the hardware refresh on which the frame identified
	// by PresentCount was displayed.
	PresentRefreshCount uint32

	// SyncRefreshCount is a hardware refresh sequence number paired with SyncQPCTime.
	SyncRefreshCount uint32

	// SyncQPCTime is the timestamp of SyncRefreshCount, in ticks of the same
	// counter the Clock reads.
	SyncQPCTime int64

	// Disjoint reports that the engine's statistics timeline has reset and prior
	// counter values are no longer comparable to this sample's.
	Disjoint bool
}

// StatsProvider is the presentation engine's statistics feed. Both queries are
// fallible; the estimator degrades to an empty result on any failure without
// surfacing an error.
type StatsProvider interface {
	// LastPresentCount returns the sequence number of the frame submitted by the
	// most recent present call.
	//
	// Returns:
	//   - uint32: the submission sequence number
	//   - error: an error if the query fails
	LastPresentCount() (uint32, error)

	// FrameStatistics returns the engine's current frame-statistics sample.
	//
	// Returns:
	//   - FrameStatistics: the sample
	//   - error: an error if the query fails (including ErrStatsUnavailable)
	FrameStatistics() (FrameStatistics, error)
}

// TimingInfo is the estimator's output for one query. Zero fields mean "unknown";
// the estimator never reports an error.
type TimingInfo struct {
	// VsyncDuration is the estimated physical vsync period in microseconds,
	// or 0 while no estimate is available.
	VsyncDuration int64

	// LastQueueDisplayTime is the predicted wall-clock time, in microseconds
	// since the Unix epoch, at which the most recently submitted frame will be
	// displayed. 0 when no prediction is available.
	LastQueueDisplayTime int64

	// SkippedVsyncs is the number of vsyncs the queue skipped since the last
	// query. Detection is not implemented; this is always 0 (unknown).
	SkippedVsyncs int
}

// Estimator maintains a rolling estimate of the physical vsync period and the
// display time of the last submitted frame. All state is mutated only by
// Update and RecordSubmit; the estimator carries no synchronization and must
// only be used from the presentation thread.
type Estimator struct {
	clk          clock.Clock
	syncInterval int

	lastSyncRefreshCount uint32
	lastSyncQPCTime      int64
	vsyncDurationTicks   int64
	lastSubmitTicks      int64
}

// NewEstimator creates an Estimator reading tick conversions from the given clock.
// Estimation only runs when syncInterval is 1, since the timing model assumes
// exactly one present per vsync; any other interval makes Update return an
// empty TimingInfo.
//
// Parameters:
//   - clk: the clock used for tick-to-microsecond conversion and wall-clock anchoring
//   - syncInterval: the configured present sync interval
//
// Returns:
//   - *Estimator: the estimator, with all state zeroed
func NewEstimator(clk clock.Clock, syncInterval int) *Estimator {
	return &Estimator{
		clk:          clk,
		syncInterval: syncInterval,
	}
}

// RecordSubmit records the counter value at the moment a frame was submitted
// for presentation. Update uses it to reject display-time predictions that
// would fall before the submission itself.
//
// Parameters:
//   - ticks: the clock tick count captured just before the present call
func (e *Estimator) RecordSubmit(ticks int64) {
	e.lastSubmitTicks = ticks
}

// Update consumes a fresh statistics sample and produces updated timing.
// Every failure path either carries state forward unchanged or skips an
// update; Update never blocks and never returns an error, so it is safe to
// call once per frame unconditionally.
//
// Parameters:
//   - src: the presentation engine's statistics feed
//
// Returns:
//   - TimingInfo: the updated timing estimate, zeroed where unknown
func (e *Estimator) Update(src StatsProvider) TimingInfo {
	var info TimingInfo

	// The calculations below are only valid when presenting on every vsync.
	if e.syncInterval != 1 || src == nil {
		return info
	}

	submitCount, err := src.LastPresentCount()
	if err != nil {
		return info
	}

	stats, err := src.FrameStatistics()
	if err != nil {
		return info
	}

	// A disjoint timeline means the previous counters are not comparable to
	// this sample's. Drop them and continue with the current sample.
	if stats.Disjoint {
		e.lastSyncRefreshCount = 0
		e.lastSyncQPCTime = 0
	}

	// Detecting skipped vsyncs is possible but not supported yet.
	info.SkippedVsyncs = 0

	// Number of physical vsyncs since the last query. A zero in either value
	// means the engine has not populated it yet, not that zero refreshes passed.
	var refreshesPassed uint32
	if stats.SyncRefreshCount != 0 && e.lastSyncRefreshCount != 0 {
		refreshesPassed = stats.SyncRefreshCount - e.lastSyncRefreshCount
	}
	e.lastSyncRefreshCount = stats.SyncRefreshCount

	// Elapsed ticks between those vsyncs, with the same zero-means-unpopulated rule.
	var ticksPassed int64
	if stats.SyncQPCTime != 0 && e.lastSyncQPCTime != 0 {
		ticksPassed = stats.SyncQPCTime - e.lastSyncQPCTime
	}
	e.lastSyncQPCTime = stats.SyncQPCTime

	// If any vsyncs passed, fold them into the rolling period estimate.
	// Consecutive queries typically span many refreshes, so the integer
	// division is coarse but stable.
	if refreshesPassed != 0 && ticksPassed != 0 {
		e.vsyncDurationTicks = ticksPassed / int64(refreshesPassed)
	}
	if e.vsyncDurationTicks != 0 {
		info.VsyncDuration = e.clk.TicksToMicros(e.vsyncDurationTicks)
	}

	// With a known period and a fully populated sample, extrapolate the display
	// time of the latest submitted frame.
	if e.vsyncDurationTicks != 0 && stats.PresentCount != 0 &&
		stats.PresentRefreshCount != 0 && stats.SyncRefreshCount != 0 &&
		stats.SyncQPCTime != 0 {

		// PresentRefreshCount and SyncRefreshCount can refer to different frames
		// (this definitely occurs outside flip-model presentation). Assuming one
		// present per frame, recover the present count that corresponds to
		// SyncRefreshCount.
		expectedSyncPC := stats.PresentCount + (stats.SyncRefreshCount - stats.PresentRefreshCount)

		// Frames still queued between that present and the last submission.
		queuedFrames := int32(submitCount - expectedSyncPC)
		displayTicks := stats.SyncQPCTime + int64(queuedFrames)*e.vsyncDurationTicks

		// Only publish if the prediction falls after the last submission; it can
		// land before it when a lot of frames were skipped.
		if displayTicks >= e.lastSubmitTicks {
			info.LastQueueDisplayTime = e.clk.WallMicros() +
				(e.clk.TicksToMicros(displayTicks) - e.clk.Micros())
		}
	}

	return info
}
