// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plumio/econet/frame"
	"github.com/plumio/econet/structures"
)

func newTestAddressable() (*Addressable, chan *frame.Frame) {
	out := make(chan *frame.Frame, 8)
	return NewAddressable(frame.AddressEcoMAX, "ecomax", out, zap.NewNop()), out
}

// Property 8: Set enqueues a request and blocks until a matching
// confirmation fires, returning true; without a confirmation, it reports
// false after exhausting its retries.
func TestParameterSetConfirm(t *testing.T) {
	d, out := newTestAddressable()
	p := NewNumberParameter("test_param", Description{Name: "test_param"}, d, KindEcomax, 5, 0, 10, 0, 100)

	done := make(chan bool, 1)
	go func() {
		ok, err := p.Set(context.Background(), 20, 1, time.Second)
		require.NoError(t, err)
		done <- ok
	}()

	select {
	case f := <-out:
		require.Equal(t, frame.RequestSetEcomaxParameter, f.Type)
	case <-time.After(time.Second):
		t.Fatal("request was never enqueued")
	}

	d.confirmUpdate("test_param")

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Set never returned")
	}
}

func TestParameterSetTimesOutWithoutConfirmation(t *testing.T) {
	d, out := newTestAddressable()
	p := NewNumberParameter("test_param", Description{Name: "test_param"}, d, KindEcomax, 5, 0, 10, 0, 100)

	ok, err := p.Set(context.Background(), 20, 0, 20*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)

	select {
	case <-out:
	default:
		t.Fatal("request should still have been enqueued")
	}
}

// Property 9: a changed frame-version entry triggers exactly one re-fetch;
// an identical entry seen again triggers none.
func TestFrameVersionsRefetchOnce(t *testing.T) {
	d, out := newTestAddressable()

	fv := structures.FrameVersions{uint8(frame.ResponseEcomaxParameters): 1}
	_, err := d.onFrameVersions(context.Background(), fv)
	require.NoError(t, err)

	select {
	case f := <-out:
		require.Equal(t, frame.RequestEcomaxParameters, f.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a re-fetch request for the new version")
	}

	_, err = d.onFrameVersions(context.Background(), fv)
	require.NoError(t, err)

	select {
	case f := <-out:
		t.Fatalf("unexpected second re-fetch request: %v", f.Type)
	case <-time.After(100 * time.Millisecond):
	}
}
