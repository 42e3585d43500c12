package frame

import (
	"context"
	"io"
	"time"
)

type deadlineSetterW interface {
	SetWriteDeadline(t time.Time) error
}

// WriteTimeout is the default per-write bound from spec §4.1.3 / §5.
const WriteTimeout = 10 * time.Second

// Writer serializes frames onto an output byte stream.
type Writer struct {
	w  io.Writer
	ds deadlineSetterW
}

// NewWriter wraps w for frame writing.
func NewWriter(w io.Writer) *Writer {
	ds, _ := w.(deadlineSetterW)
	return &Writer{w: w, ds: ds}
}

// Write serializes f and hands it to the transport, waiting for the
// transport to drain. ctx bounds the operation; callers typically pass a
// context with a 10s timeout (WriteTimeout).
func (fw *Writer) Write(ctx context.Context, f *Frame) error {
	if fw.ds != nil {
		if dl, ok := ctx.Deadline(); ok {
			_ = fw.ds.SetWriteDeadline(dl)
		} else {
			_ = fw.ds.SetWriteDeadline(time.Time{})
		}
	}

	b, err := f.Bytes()
	if err != nil {
		return err
	}
	_, err = fw.w.Write(b)
	return err
}

// Close closes the underlying transport if it supports io.Closer.
func (fw *Writer) Close() error {
	if c, ok := fw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
