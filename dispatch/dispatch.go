package dispatch

import (
	"sync"

	"go.uber.org/zap"

	"github.com/signalhouse/wsjtx-bridge/audio"
	"github.com/signalhouse/wsjtx-bridge/bridge"
	"github.com/signalhouse/wsjtx-bridge/errors"
	"github.com/signalhouse/wsjtx-bridge/modes"
)

// DecodeRequest asks for one decode pass over a sample window.
type DecodeRequest struct {
	Mode        modes.Mode
	Samples     audio.Buffer
	FrequencyHz int
	Threads     int
}

// DecodeResult reports the outcome of an async decode. Err is set for
// dispatch-layer failures (closed dispatcher, contained panic); Status
// carries the engine outcome otherwise.
type DecodeResult struct {
	Status bridge.Status
	Err    error
}

// WSPRRequest asks for a deep WSPR decode over interleaved I/Q samples.
type WSPRRequest struct {
	IQ      []float32
	Options bridge.DecoderOptions
}

// EncodeRequest asks for waveform synthesis of a message text.
type EncodeRequest struct {
	Mode        modes.Mode
	Text        string
	FrequencyHz int
}

// EncodeResult carries the synthesized waveform, trimmed to the sample
// count the engine produced.
type EncodeResult struct {
	Samples []float32
	Status  bridge.Status
	Err     error
}

// ConvertRequest asks for a sample format conversion.
type ConvertRequest struct {
	Buffer audio.Buffer
	Target audio.Format
}

// ConvertResult carries the converted buffer.
type ConvertResult struct {
	Buffer audio.Buffer
	Err    error
}

// Options configures New.
type Options struct {
	// Logger receives dispatch events. Nil means a no-op logger.
	Logger *zap.Logger

	// ConvertWorkers sets the shared conversion pool size. Zero means 2.
	ConvertWorkers int
}

// Dispatcher runs engine operations off the caller's goroutine. Work on one
// handle executes strictly in submission order with at most one engine call
// in flight; different handles proceed independently. Format conversions
// never touch the engine and run on their own shared pool.
//
// Inputs are copied at submission, so callers may mutate or reuse request
// buffers the moment a submit method returns. Every submission completes
// exactly once on its result channel, including after panics and after
// Close.
type Dispatcher struct {
	log *zap.Logger
	br  *bridge.Bridge

	mu      sync.Mutex
	queues  map[bridge.Handle]*taskQueue
	closed  bool
	workers sync.WaitGroup

	convert *taskQueue
}

// New creates a dispatcher over a facade.
func New(br *bridge.Bridge, opts Options) *Dispatcher {
	d := &Dispatcher{
		log:     opts.Logger,
		br:      br,
		queues:  make(map[bridge.Handle]*taskQueue),
		convert: newTaskQueue(),
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}

	workers := opts.ConvertWorkers
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		d.workers.Add(1)
		go func() {
			defer d.workers.Done()
			d.convert.run()
		}()
	}
	return d
}

// submit enqueues a task on the handle's serial queue, creating the queue
// and its worker on first use.
func (d *Dispatcher) submit(h bridge.Handle, task func()) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errors.Closed("dispatcher")
	}
	q := d.queues[h]
	if q == nil {
		q = newTaskQueue()
		d.queues[h] = q
		d.workers.Add(1)
		go func() {
			defer d.workers.Done()
			q.run()
		}()
	}
	d.mu.Unlock()

	if !q.push(task) {
		return errors.Closed("dispatcher")
	}
	return nil
}

// guard wraps a task so a panic becomes an error delivered through fail
// instead of killing the worker.
func guard(log *zap.Logger, fail func(error), task func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("dispatched task panicked", zap.Any("panic", r))
				fail(errors.New(errors.PhaseDispatch, errors.KindInternal).
					Detail("task panicked: %v", r).
					Build())
			}
		}()
		task()
	}
}

// Decode submits an async decode. The sample buffer is deep-copied before
// Decode returns. Decoded transmissions land on the engine queue; drain
// them with the facade's PullMessage after the result arrives.
func (d *Dispatcher) Decode(h bridge.Handle, req DecodeRequest) <-chan DecodeResult {
	ch := make(chan DecodeResult, 1)
	samples := req.Samples.Clone()

	err := d.submit(h, guard(d.log,
		func(err error) { ch <- DecodeResult{Err: err} },
		func() {
			st := d.br.Decode(h, req.Mode, samples.AsFloat32(), req.FrequencyHz, req.Threads)
			ch <- DecodeResult{Status: st}
		}))
	if err != nil {
		ch <- DecodeResult{Err: err}
	}
	return ch
}

// DecodeWSPR submits an async deep WSPR decode. The I/Q buffer is copied
// before DecodeWSPR returns.
func (d *Dispatcher) DecodeWSPR(h bridge.Handle, req WSPRRequest) <-chan DecodeResult {
	ch := make(chan DecodeResult, 1)
	iq := make([]float32, len(req.IQ))
	copy(iq, req.IQ)

	err := d.submit(h, guard(d.log,
		func(err error) { ch <- DecodeResult{Err: err} },
		func() {
			st := d.br.DecodeWSPR(h, iq, req.Options)
			ch <- DecodeResult{Status: st}
		}))
	if err != nil {
		ch <- DecodeResult{Err: err}
	}
	return ch
}

// Encode submits an async encode. The result waveform is freshly allocated
// and owned by the receiver.
func (d *Dispatcher) Encode(h bridge.Handle, req EncodeRequest) <-chan EncodeResult {
	ch := make(chan EncodeResult, 1)

	err := d.submit(h, guard(d.log,
		func(err error) { ch <- EncodeResult{Err: err} },
		func() {
			out := make([]float32, d.br.MaxSamplesFor(h, req.Mode))
			written, st := d.br.Encode(h, req.Mode, req.Text, req.FrequencyHz, out)
			if st != bridge.StatusOK {
				ch <- EncodeResult{Status: st}
				return
			}
			ch <- EncodeResult{Samples: out[:written], Status: st}
		}))
	if err != nil {
		ch <- EncodeResult{Err: err}
	}
	return ch
}

// Convert submits a format conversion on the shared pool. The input buffer
// is copied before Convert returns; the result never aliases it.
func (d *Dispatcher) Convert(req ConvertRequest) <-chan ConvertResult {
	ch := make(chan ConvertResult, 1)
	src := req.Buffer.Clone()

	task := guard(d.log,
		func(err error) { ch <- ConvertResult{Err: err} },
		func() {
			ch <- ConvertResult{Buffer: audio.Convert(src, req.Target)}
		})

	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed || !d.convert.push(task) {
		ch <- ConvertResult{Err: errors.Closed("dispatcher")}
	}
	return ch
}

// Release retires a handle's queue once its already-accepted work drains.
// Submissions for the handle after Release start a fresh queue; callers
// stop submitting before destroying the handle.
func (d *Dispatcher) Release(h bridge.Handle) {
	d.mu.Lock()
	q := d.queues[h]
	delete(d.queues, h)
	d.mu.Unlock()

	if q != nil {
		q.close()
	}
}

// Close rejects new submissions, lets accepted work finish, and waits for
// every worker to exit.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	queues := make([]*taskQueue, 0, len(d.queues))
	for _, q := range d.queues {
		queues = append(queues, q)
	}
	d.queues = nil
	d.mu.Unlock()

	for _, q := range queues {
		q.close()
	}
	d.convert.close()
	d.workers.Wait()
	return nil
}
