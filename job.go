package supercollider

// Job is the opaque callable a Node invokes each tick. It corresponds to
// the source's `runnable` concept: `operator()(uint threadindex)`.
//
// A Job must not block, allocate, or panic-and-recover its way around a
// failure: the real-time audio callback thread may be running the chain
// that contains it. A Job that is intrinsically fallible must record its
// failure out-of-band (e.g. into a field the caller inspects after the
// tick) and still return normally, so that successor activation-count
// accounting stays consistent.
type Job interface {
	Run(workerIndex int)
}

// JobFunc adapts a plain function to the Job interface.
type JobFunc func(workerIndex int)

// Run calls f(workerIndex).
func (f JobFunc) Run(workerIndex int) { f(workerIndex) }
