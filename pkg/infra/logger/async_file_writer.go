package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	writerQueueDepth = 1024
	flushInterval    = time.Second
)

// AsyncFileWriter decouples log emission from disk latency: Write enqueues
// and returns immediately, a single goroutine drains the queue into a
// buffered file. When the queue is full the entry is dropped rather than
// stalling the admission hot path.
type AsyncFileWriter struct {
	mu      sync.Mutex
	file    *os.File
	buf     *bufio.Writer
	entries chan []byte
	quit    chan struct{}
	done    chan struct{}
}

func NewAsyncFileWriter(path string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	w := &AsyncFileWriter{
		file:    file,
		buf:     bufio.NewWriterSize(file, bufferSize),
		entries: make(chan []byte, writerQueueDepth),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.drain()
	return w, nil
}

func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	entry := make([]byte, len(p))
	copy(entry, p)

	select {
	case w.entries <- entry:
		return len(p), nil
	default:
		// queue full, drop
		return len(p), nil
	}
}

func (w *AsyncFileWriter) drain() {
	defer close(w.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-w.entries:
			w.mu.Lock()
			_, _ = w.buf.Write(entry)
			w.mu.Unlock()
		case <-ticker.C:
			w.flush()
		case <-w.quit:
			for {
				select {
				case entry := <-w.entries:
					w.mu.Lock()
					_, _ = w.buf.Write(entry)
					w.mu.Unlock()
				default:
					w.flush()
					return
				}
			}
		}
	}
}

func (w *AsyncFileWriter) flush() {
	w.mu.Lock()
	_ = w.buf.Flush()
	w.mu.Unlock()
}

// Close drains pending entries, flushes the buffer and closes the file.
func (w *AsyncFileWriter) Close() error {
	close(w.quit)
	<-w.done
	return w.file.Close()
}
