package port

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialConfig describes a local RS-485 line.
type SerialConfig struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   serial.Parity
	StopBits serial.StopBits
}

// serialConn adapts go.bug.st/serial's Port to the Conn interface.
type serialConn struct {
	p serial.Port
}

func (s *serialConn) Read(b []byte) (int, error)  { return s.p.Read(b) }
func (s *serialConn) Write(b []byte) (int, error) { return s.p.Write(b) }
func (s *serialConn) Close() error                { return s.p.Close() }

// SerialOpener returns an Opener that opens the named serial device with
// the given line parameters on each call, suitable for both the initial
// open and every reconnect attempt.
func SerialOpener(cfg SerialConfig) Opener {
	return func() (Conn, error) {
		mode := &serial.Mode{
			BaudRate: cfg.BaudRate,
			DataBits: cfg.DataBits,
			Parity:   cfg.Parity,
			StopBits: cfg.StopBits,
		}
		p, err := serial.Open(cfg.Device, mode)
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", cfg.Device, err)
		}
		return &serialConn{p: p}, nil
	}
}
