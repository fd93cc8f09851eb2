// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/pac/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements ports.Telemetry using the progrock library.
// Updates go to the writer it was created with and to every watching Stream.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder

	mu       sync.Mutex
	watchers []*Stream
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	r := &Recorder{w: w}
	r.rec = progrock.NewRecorder(fanout{r})
	return r
}

// Record starts a vertex identified by the digest of name.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := &Vertex{vertex: r.rec.Vertex(digest.FromString(name), name)}
	return ports.ContextWithVertex(ctx, v), v
}

// Watch returns a Stream receiving every update recorded from now on.
// The stream stops receiving once it is closed.
func (r *Recorder) Watch() *Stream {
	s := NewStream()
	r.mu.Lock()
	r.watchers = append(r.watchers, s)
	r.mu.Unlock()
	return s
}

// Close flushes and closes the recording session, ending every watching Stream.
func (r *Recorder) Close() error {
	r.mu.Lock()
	watchers := r.watchers
	r.watchers = nil
	r.mu.Unlock()

	for _, s := range watchers {
		_ = s.Close()
	}
	return r.w.Close()
}

func (r *Recorder) active() []*Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers = slices.DeleteFunc(r.watchers, (*Stream).closed)
	return slices.Clone(r.watchers)
}

// fanout is the progrock.Writer handed to the progrock recorder.
type fanout struct {
	r *Recorder
}

func (f fanout) WriteStatus(update *progrock.StatusUpdate) error {
	err := f.r.w.WriteStatus(update)
	for _, s := range f.r.active() {
		err = errors.Join(err, s.WriteStatus(update))
	}
	return err
}

// Close is a no-op; Recorder.Close owns the underlying writer.
func (fanout) Close() error {
	return nil
}
