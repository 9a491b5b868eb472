package transport

import (
	"time"

	"github.com/fixwire/fixengine/tagvalue"
	"github.com/tarm/serial"
)

// SerialConfig mirrors the options a leased-line FIX session needs from
// its serial port, grounded directly on the teacher's own
// serial.OpenPort(&serial.Config{...}) call site in cmd/actisense.
type SerialConfig struct {
	Port string
	Baud int
	// ReadTimeout bounds how long a Read call blocks with no bytes
	// arriving; the serial driver rejects values under 100ms.
	ReadTimeout time.Duration
}

// OpenSerialStream opens a serial port and wraps it as a Stream, so a
// FIX session can run over a leased line the same way the teacher's NGT1
// reader runs over a USB-serial NMEA 2000 gateway.
func OpenSerialStream(cfg SerialConfig, scanCfg tagvalue.Config) (*Stream, *serial.Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        8,
	})
	if err != nil {
		return nil, nil, err
	}
	return NewStream(port, scanCfg), port, nil
}
