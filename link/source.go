package link

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/DanWilson00/mavwire/errors"
)

const defaultChunkSize = 256

// SourceOption configures a replay source.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	chunkSize int
	interval  time.Duration
}

// WithChunkSize sets how many bytes each chunk carries. Small chunks
// exercise resumable parsing; the default is 256.
func WithChunkSize(n int) SourceOption {
	return func(o *sourceOptions) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithInterval paces replay by sleeping between chunks. Zero replays as
// fast as the consumer drains.
func WithInterval(d time.Duration) SourceOption {
	return func(o *sourceOptions) { o.interval = d }
}

// FileSource replays a recorded byte stream from disk, implementing
// mavwire.ByteSource. The chunks channel closes at end of file.
type FileSource struct {
	path string
	opts sourceOptions

	ch        chan []byte
	stop      chan struct{}
	done      chan struct{}
	once      sync.Once
	connected bool
}

// NewFileSource creates a replay source for the file at path. The file
// is not opened until Connect.
func NewFileSource(path string, opts ...SourceOption) *FileSource {
	o := sourceOptions{chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &FileSource{
		path: path,
		opts: o,
		ch:   make(chan []byte),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Connect opens the file and starts the read loop.
func (s *FileSource) Connect(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, s.path)
	}
	s.connected = true
	go s.pump(ctx, f)
	return nil
}

func (s *FileSource) pump(ctx context.Context, f *os.File) {
	defer close(s.done)
	defer close(s.ch)
	defer f.Close()

	for {
		buf := make([]byte, s.opts.chunkSize)
		n, err := f.Read(buf)
		if n > 0 {
			select {
			case s.ch <- buf[:n]:
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
		if err != nil {
			// io.EOF ends the replay; anything else also ends it, the
			// consumer sees a closed channel either way.
			if err != io.EOF {
				Logger().Warn("replay read failed")
			}
			return
		}
		if s.opts.interval > 0 {
			select {
			case <-time.After(s.opts.interval):
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}
}

// Chunks returns the replay channel.
func (s *FileSource) Chunks() <-chan []byte {
	return s.ch
}

// Close stops the read loop and waits for it to exit. Safe to call
// before Connect and more than once.
func (s *FileSource) Close() error {
	s.once.Do(func() { close(s.stop) })
	if s.connected {
		<-s.done
	}
	return nil
}

// BytesSource replays in-memory chunks in order, implementing
// mavwire.ByteSource. It exists for tests and synthetic streams.
type BytesSource struct {
	chunks [][]byte
	ch     chan []byte
}

// NewBytesSource creates a source that yields each chunk as given,
// without copying.
func NewBytesSource(chunks ...[]byte) *BytesSource {
	return &BytesSource{chunks: chunks, ch: make(chan []byte)}
}

// Connect starts delivering chunks; the channel closes after the last.
func (s *BytesSource) Connect(ctx context.Context) error {
	go func() {
		defer close(s.ch)
		for _, c := range s.chunks {
			select {
			case s.ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Chunks returns the delivery channel.
func (s *BytesSource) Chunks() <-chan []byte {
	return s.ch
}

// Close is a no-op; the delivery goroutine exits with the context or
// after the last chunk.
func (s *BytesSource) Close() error {
	return nil
}
