package progrock

import (
	"io"
	"sync"

	"github.com/vito/progrock"
)

// streamBuffer is the number of updates a Stream holds for a slow reader.
const streamBuffer = 64

// Stream is a progrock.Writer that hands updates to a single reader.
// Writes block while the buffer is full; closing the stream releases them.
type Stream struct {
	updates chan *progrock.StatusUpdate
	done    chan struct{}
	once    sync.Once
}

// NewStream creates an open Stream.
func NewStream() *Stream {
	return &Stream{
		updates: make(chan *progrock.StatusUpdate, streamBuffer),
		done:    make(chan struct{}),
	}
}

// WriteStatus queues update for the reader. Updates written after Close are dropped.
func (s *Stream) WriteStatus(update *progrock.StatusUpdate) error {
	if s.closed() {
		return nil
	}
	select {
	case s.updates <- update:
	case <-s.done:
	}
	return nil
}

// Read returns the next update. Once the stream is closed and drained it returns io.EOF.
func (s *Stream) Read() (*progrock.StatusUpdate, error) {
	select {
	case update := <-s.updates:
		return update, nil
	default:
	}

	select {
	case update := <-s.updates:
		return update, nil
	case <-s.done:
		select {
		case update := <-s.updates:
			return update, nil
		default:
			return nil, io.EOF
		}
	}
}

// Close ends the stream. It is safe to call more than once.
func (s *Stream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *Stream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
