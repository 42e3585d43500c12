package frame

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"
)

// deadlineSetter is satisfied by transports that support bounding a read
// (net.Conn, go.bug.st/serial.Port). When the underlying reader does not
// implement it, Read falls back to an unbounded blocking read -- the
// transport package's concrete implementations both satisfy this.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// ReadTimeout is the default per-read bound from spec §4.1.2 / §5.
const ReadTimeout = 10 * time.Second

// Reader scans an input byte stream for ecoNET frames.
type Reader struct {
	r  *bufio.Reader
	ds deadlineSetter
}

// NewReader wraps r for frame scanning. If r implements SetReadDeadline,
// Read honors the context's deadline by setting it directly on the
// transport; otherwise the read is unbounded.
func NewReader(r io.Reader) *Reader {
	ds, _ := r.(deadlineSetter)
	return &Reader{r: bufio.NewReader(r), ds: ds}
}

// Read scans for the next frame. It returns (nil, nil) when a well-formed
// frame was addressed to neither the master nor the broadcast address (spec
// §4.1.2: "silently ignored; not an error"). ctx bounds the whole operation;
// callers typically pass a context with a 10s timeout (ReadTimeout).
func (fr *Reader) Read(ctx context.Context) (*Frame, error) {
	if fr.ds != nil {
		if dl, ok := ctx.Deadline(); ok {
			_ = fr.ds.SetReadDeadline(dl)
		} else {
			_ = fr.ds.SetReadDeadline(time.Time{})
		}
	}

	if err := fr.sync(); err != nil {
		return nil, err
	}

	header := make([]byte, HeaderSize)
	header[0] = Start
	if _, err := io.ReadFull(fr.r, header[1:]); err != nil {
		return nil, withRead(err)
	}

	length := int(header[1]) | int(header[2])<<8
	if length < MinLength || length > MaxLength {
		return nil, ErrRead
	}

	rest := make([]byte, length-HeaderSize)
	if _, err := io.ReadFull(fr.r, rest); err != nil {
		return nil, withRead(err)
	}

	full := append(header, rest...)
	if got := bcc(full[:length-2]); got != full[length-2] {
		return nil, ErrChecksum
	}
	if full[length-1] != End {
		return nil, ErrRead
	}

	recipient := full[3]
	if recipient != AddressMaster && recipient != AddressBroadcast {
		return nil, nil
	}

	typ := Type(full[7])
	if !typ.Known() {
		return nil, ErrUnknownFrame
	}

	return &Frame{
		Recipient:     recipient,
		Sender:        full[4],
		SenderType:    full[5],
		EconetVersion: full[6],
		Type:          typ,
		Message:       full[8 : length-2],
	}, nil
}

// sync discards bytes until Start is seen.
func (fr *Reader) sync() error {
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return withRead(err)
		}
		if b == Start {
			return nil
		}
	}
}

func withRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrRead
	}
	return err
}
