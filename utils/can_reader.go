package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.einride.tech/can/pkg/socketcan"
)

// ErrNoFrame is returned by ReadFrame when nothing arrived within the poll timeout.
var ErrNoFrame = errors.New("no frame within poll timeout")

// FrameSource delivers frames to the ingestion loop. ReadFrame returns ErrNoFrame on an
// idle poll and io.EOF when the source is exhausted.
type FrameSource interface {
	Name() string
	ReadFrame(ctx context.Context) (Frame, error)
	Close() error
}

// SocketCANReader implements FrameSource using Einride's socketcan
type SocketCANReader struct {
	name    string
	conn    net.Conn
	recv    *socketcan.Receiver
	timeout time.Duration
	frames  chan Frame
	errs    chan error
	once    sync.Once
	now     func() time.Time
}

func NewSocketCANReader(ctx context.Context, name, ifname string, pollTimeout time.Duration) (*SocketCANReader, error) {
	conn, err := socketcan.DialContext(ctx, "can", ifname)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", ifname, err)
	}
	r := &SocketCANReader{
		name:    name,
		conn:    conn,
		recv:    socketcan.NewReceiver(conn),
		timeout: pollTimeout,
		frames:  make(chan Frame, 256),
		errs:    make(chan error, 1),
		now:     time.Now,
	}
	go r.receive()
	return r, nil
}

func (r *SocketCANReader) Name() string { return r.name }

func (r *SocketCANReader) receive() {
	for r.recv.Receive() {
		if r.recv.HasErrorFrame() {
			continue
		}
		r.frames <- FromCAN(r.recv.Frame(), r.name, r.now())
	}
	err := r.recv.Err()
	if err == nil {
		err = io.EOF
	}
	r.errs <- err
}

// ReadFrame waits at most the poll timeout for the next frame.
func (r *SocketCANReader) ReadFrame(ctx context.Context) (Frame, error) {
	t := time.NewTimer(r.timeout)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case f := <-r.frames:
		return f, nil
	case err := <-r.errs:
		return Frame{}, fmt.Errorf("%s receive: %w", r.name, err)
	case <-t.C:
		return Frame{}, ErrNoFrame
	}
}

// Close closes the CAN socket
func (r *SocketCANReader) Close() error {
	var err error
	r.once.Do(func() {
		if r.conn != nil {
			err = r.conn.Close()
		}
	})
	return err
}

// ReplayReader plays a loaded capture back in file order, pacing frames by their
// recorded timestamps divided by speed. Speed <= 0 replays without pacing.
type ReplayReader struct {
	name   string
	log    *ReplayLog
	speed  float64
	pos    int
	start  time.Time
	origin time.Time
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewReplayReader(name string, log *ReplayLog, speed float64) *ReplayReader {
	return &ReplayReader{
		name:  name,
		log:   log,
		speed: speed,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

func (r *ReplayReader) Name() string { return r.name }

// Remaining reports how many frames are left.
func (r *ReplayReader) Remaining() int { return len(r.log.Frames) - r.pos }

func (r *ReplayReader) ReadFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if r.pos >= len(r.log.Frames) {
		return Frame{}, io.EOF
	}
	f := r.log.Frames[r.pos]

	if r.speed > 0 {
		if r.pos == 0 {
			r.start = r.now()
			r.origin = f.Timestamp
		}
		due := time.Duration(float64(f.Timestamp.Sub(r.origin)) / r.speed)
		if wait := due - r.now().Sub(r.start); wait > 0 {
			if err := r.sleep(ctx, wait); err != nil {
				return Frame{}, err
			}
		}
	}

	r.pos++
	f.Bus = r.name
	return f, nil
}

func (r *ReplayReader) Close() error { return nil }

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
