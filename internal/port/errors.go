package port

import "github.com/pentacore/bridge/internal/bridgeerr"

func (p *Port) errPortClosed() error {
	return &bridgeerr.PortClosedError{PortID: p.ID}
}

func (p *Port) errWriteRejected(cause error) error {
	return &bridgeerr.WriteRejectedError{PortID: p.ID}
}

func (p *Port) errPortUnavailable(cause error) error {
	return &bridgeerr.PortUnavailableError{PortID: p.ID, Cause: cause}
}
