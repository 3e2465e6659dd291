package audio

import (
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// SerialSource reads a serial-attached receiver's discriminator output as
// signed 16-bit PCM, the way many ground-station front ends stream
// demodulated audio over a USB-serial link instead of a sound card. The
// port path is specified as port[:baud[:bits]].
type SerialSource struct {
	port serial.Port
	pcm  *PCMSource
	rate int
}

// OpenSerial opens path (format "port[:baud[:bits]]", e.g.
// "/dev/ttyUSB0:115200:16") as a mono 16-bit-PCM sample source at the
// given logical audio sample rate (the rate the discriminator output was
// clocked at, independent of the UART baud rate).
func OpenSerial(path string, sampleRate int) (*SerialSource, error) {
	portName, baud, bits := parseSerialPath(path)

	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("audio: opening serial port %q: %w", portName, err)
	}

	depth := Bits16
	if bits == 8 {
		depth = Bits8
	}

	return &SerialSource{
		port: port,
		pcm:  NewPCMSource(port, sampleRate, depth, 1, 0),
		rate: sampleRate,
	}, nil
}

func parseSerialPath(path string) (portName string, baud, bits int) {
	baud, bits = 115200, 16
	parts := strings.Split(path, ":")
	portName = parts[0]
	if len(parts) > 1 && parts[1] != "" {
		if v, err := strconv.Atoi(parts[1]); err == nil {
			baud = v
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if v, err := strconv.Atoi(parts[2]); err == nil {
			bits = v
		}
	}
	return portName, baud, bits
}

func (s *SerialSource) SampleRate() int                { return s.rate }
func (s *SerialSource) NextSample() (float64, error)   { return s.pcm.NextSample() }
func (s *SerialSource) Close() error                   { return s.port.Close() }
