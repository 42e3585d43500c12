// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package frame_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plumio/econet/frame"
)

// Property 1: decode(encode(data)) is structurally equal to data, and
// encode(decode(bytes)) is byte-equal to bytes.
func TestFrameRoundTrip(t *testing.T) {
	// Addressed to the master so the reader's recipient filter lets it through.
	f := frame.New(frame.RequestEcomaxControl, frame.AddressMaster, frame.EcomaxControl{On: true})
	wire, err := f.Bytes()
	require.NoError(t, err)

	r := frame.NewReader(bytes.NewReader(wire))
	got, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, frame.RequestEcomaxControl, got.Type)

	payload, err := got.Decode()
	require.NoError(t, err)
	require.Equal(t, frame.EcomaxControl{On: true}, payload)

	rewire, err := got.Bytes()
	require.NoError(t, err)
	require.Equal(t, wire, rewire)
}

// Property 2: tampering with any single byte of a valid frame causes
// ErrChecksum from the reader.
func TestFrameChecksumTamper(t *testing.T) {
	f := frame.New(frame.RequestUID, frame.AddressEcoMAX, nil)
	wire, err := f.Bytes()
	require.NoError(t, err)

	tampered := append([]byte(nil), wire...)
	tampered[4] ^= 0xFF // flip a header byte, leave bcc untouched

	r := frame.NewReader(bytes.NewReader(tampered))
	_, err = r.Read(context.Background())
	require.ErrorIs(t, err, frame.ErrChecksum)
}

// Property 3: frames with length < 10 or length > 1000 cause ErrRead.
func TestFrameHeaderBounds(t *testing.T) {
	// A structurally plausible 10-byte frame, but with its length field
	// set to 9 -- below MinLength. The reader must reject it before ever
	// looking at the bcc or End byte.
	tooShort := []byte{
		frame.Start, 9, 0, // length = 9 < MinLength
		frame.AddressMaster, frame.AddressEcoMAX, 0x30, frame.EconetVersion,
		byte(frame.RequestUID), 0x00, frame.End,
	}
	r := frame.NewReader(bytes.NewReader(tooShort))
	_, err := r.Read(context.Background())
	require.ErrorIs(t, err, frame.ErrRead)

	tooLong := []byte{
		frame.Start, 0xD0, 0x07, // length = 2000 > MaxLength
		frame.AddressMaster, frame.AddressEcoMAX, 0x30, frame.EconetVersion,
	}
	r2 := frame.NewReader(bytes.NewReader(tooLong))
	_, err = r2.Read(context.Background())
	require.ErrorIs(t, err, frame.ErrRead)
}

// Property 4: frames whose recipient is not the master or broadcast yield
// (nil, nil) from the reader.
func TestFrameRecipientFiltering(t *testing.T) {
	f := frame.New(frame.RequestUID, frame.AddressEcoMAX, nil)
	f.Recipient = frame.AddressEcoSTER // addressed to a different device
	wire, err := f.Bytes()
	require.NoError(t, err)

	r := frame.NewReader(bytes.NewReader(wire))
	got, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestWriterWritesFrame(t *testing.T) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	f := frame.New(frame.RequestAlerts, frame.AddressEcoMAX, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Write(ctx, f))
	require.NotZero(t, buf.Len())
}
