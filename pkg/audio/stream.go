package audio

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// StreamType selects the transport a Stream opens, mirroring the
// prior pkg/gnssgo/stream STR_* constants (file/TCP/UDP; serial is
// handled separately by SerialSource since it needs go.bug.st/serial's
// richer Mode rather than a plain net.Conn/os.File).
type StreamType int

const (
	StreamFile StreamType = iota
	StreamTCPClient
	StreamUDP
)

// Stream is a byte-oriented transport abstraction unifying file/TCP/UDP
// sample sources behind one type, adapted from pkg/gnssgo/stream.Stream:
// same OpenStream-by-type dispatch and input-rate tracking, repurposed to
// carry raw sample bytes instead of RTCM bytes.
type Stream struct {
	mu       sync.Mutex
	conn     readCloser
	inBytes  int64
	openTick time.Time
}

type readCloser interface {
	Read(p []byte) (int, error)
	Close() error
}

// OpenStream opens path under the given transport type. path is a file
// path for StreamFile, "host:port" for StreamTCPClient and StreamUDP.
func OpenStream(ctype StreamType, path string) (*Stream, error) {
	var conn readCloser
	var err error

	switch ctype {
	case StreamFile:
		conn, err = os.Open(path)
	case StreamTCPClient:
		conn, err = net.Dial("tcp", path)
	case StreamUDP:
		conn, err = net.Dial("udp", path)
	default:
		return nil, fmt.Errorf("audio: unknown stream type %d", ctype)
	}
	if err != nil {
		return nil, fmt.Errorf("audio: opening stream %q: %w", path, err)
	}

	return &Stream{conn: conn, openTick: time.Now()}, nil
}

// Read implements io.Reader, tracking cumulative input bytes the way
// pkg/gnssgo/stream.Stream.StreamRead tracks InBytes/InRate.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.conn.Read(p)
	s.mu.Lock()
	s.inBytes += int64(n)
	s.mu.Unlock()
	return n, err
}

// Close releases the underlying transport.
func (s *Stream) Close() error { return s.conn.Close() }

// InputRate returns the average bytes/sec received since the stream was
// opened, matching the TickGet()-based rate tracking.
func (s *Stream) InputRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.openTick).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.inBytes) / elapsed
}

// NewStreamPCMSource wraps an opened Stream as a raw-PCM SampleSource, so
// file, serial, TCP, and UDP transports all present the same SampleSource
// interface to the decode core.
func NewStreamPCMSource(s *Stream, rate int, bits BitDepth, channels, useChannel int) *PCMSource {
	return NewPCMSource(s, rate, bits, channels, useChannel)
}
