package utils

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

// SocketCANWriter transmits outbound status frames on one bus.
type SocketCANWriter struct {
	bus   string
	iface string
	conn  net.Conn
	tx    *socketcan.Transmitter
	sent  atomic.Uint64
}

func NewSocketCANWriter(ctx context.Context, bus, iface string) (*SocketCANWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("bus %s: socketcan dial %s: %w", bus, iface, err)
	}
	return &SocketCANWriter{
		bus:   bus,
		iface: iface,
		conn:  conn,
		tx:    socketcan.NewTransmitter(conn),
	}, nil
}

func (w *SocketCANWriter) Bus() string { return w.bus }

// Sent counts frames the kernel accepted.
func (w *SocketCANWriter) Sent() uint64 { return w.sent.Load() }

func (w *SocketCANWriter) WriteFrame(ctx context.Context, frame can.Frame) error {
	if err := w.tx.TransmitFrame(ctx, frame); err != nil {
		return fmt.Errorf("bus %s: transmit 0x%X on %s: %w", w.bus, frame.ID, w.iface, err)
	}
	w.sent.Add(1)
	return nil
}

func (w *SocketCANWriter) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}
