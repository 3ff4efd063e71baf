package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukti-app/walletd/core"
)

func TestStoreTransitions(t *testing.T) {
	s := NewStore()
	assert.Equal(t, core.ConnectionState{}, s.Snapshot())

	s.SetConnecting()
	snapshot := s.Snapshot()
	assert.True(t, snapshot.Connecting)
	assert.False(t, snapshot.Connected)

	s.SetConnected("addr1")
	snapshot = s.Snapshot()
	assert.True(t, snapshot.Connected)
	assert.Equal(t, "addr1", snapshot.Address)
	assert.False(t, snapshot.Connecting)
	assert.Empty(t, snapshot.LastError)

	s.SetBalance(2.5)
	assert.Equal(t, 2.5, s.Snapshot().SolBalance)

	s.SetDisconnected()
	assert.Equal(t, core.ConnectionState{}, s.Snapshot())
}

func TestSetErrorClearsInFlightFlags(t *testing.T) {
	s := NewStore()
	s.SetConnecting()
	s.SetLoading(true)

	s.SetError("wallet authorization was rejected")

	snapshot := s.Snapshot()
	assert.Equal(t, "wallet authorization was rejected", snapshot.LastError)
	assert.False(t, snapshot.Connecting)
	assert.False(t, snapshot.Loading)

	// A new attempt clears the stale error.
	s.SetConnecting()
	assert.Empty(t, s.Snapshot().LastError)
}

func TestConnectedKeepsCachedBalance(t *testing.T) {
	s := NewStore()
	s.SetConnected("addr1")
	s.SetBalance(1.25)

	// Silent reauthorization must not blank the balance.
	s.SetConnecting()
	s.SetConnected("addr1")
	assert.Equal(t, 1.25, s.Snapshot().SolBalance)
}

func TestSubscribe(t *testing.T) {
	s := NewStore()

	var seen []core.ConnectionState
	cancel := s.Subscribe(func(cs core.ConnectionState) {
		seen = append(seen, cs)
	})

	s.SetConnecting()
	s.SetConnected("addr1")
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Connecting)
	assert.True(t, seen[1].Connected)

	cancel()
	s.SetDisconnected()
	assert.Len(t, seen, 2, "cancelled subscriber must not be notified")
}
