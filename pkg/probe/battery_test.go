package probe

import (
	"errors"
	"testing"

	"github.com/distatus/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		in   battery.State
		want powerinfo.PowerState
	}{
		{battery.Charging, powerinfo.Charging},
		{battery.Full, powerinfo.Charging},
		{battery.Discharging, powerinfo.Discharging},
		{battery.Empty, powerinfo.Discharging},
		{battery.Unknown, powerinfo.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeState(tt.in))
		})
	}
}

func withBattery(t *testing.T, fn func(int) (*battery.Battery, error)) {
	t.Helper()
	orig := getBattery
	getBattery = fn
	t.Cleanup(func() { getBattery = orig })
}

func TestBatteryRefresh(t *testing.T) {
	withBattery(t, func(int) (*battery.Battery, error) {
		return &battery.Battery{State: battery.Full, Current: 45000, Full: 50000}, nil
	})

	b := &Battery{}
	require.NoError(t, b.Refresh())
	assert.Equal(t, powerinfo.Charging, b.State())
	assert.InDelta(t, 0.9, b.Percentage(), 1e-9)
}

func TestBatteryRefreshFailureKeepsValues(t *testing.T) {
	b := &Battery{state: powerinfo.Discharging, percentage: 0.5}

	withBattery(t, func(int) (*battery.Battery, error) {
		return nil, errors.New("device busy")
	})
	require.Error(t, b.Refresh())
	assert.Equal(t, powerinfo.Discharging, b.State())
	assert.Equal(t, 0.5, b.Percentage())

	withBattery(t, func(int) (*battery.Battery, error) {
		return &battery.Battery{State: battery.Charging, Current: 10}, nil
	})
	require.Error(t, b.Refresh(), "zero full capacity must be rejected")
	assert.Equal(t, powerinfo.Discharging, b.State())
}

func TestBatteryRefreshPartial(t *testing.T) {
	withBattery(t, func(int) (*battery.Battery, error) {
		return &battery.Battery{State: battery.Discharging, Current: 2000, Full: 4000},
			battery.ErrPartial{ChargeRate: errors.New("not supported")}
	})

	b := &Battery{}
	require.NoError(t, b.Refresh())
	assert.Equal(t, powerinfo.Discharging, b.State())
	assert.InDelta(t, 0.5, b.Percentage(), 1e-9)

	withBattery(t, func(int) (*battery.Battery, error) {
		return &battery.Battery{}, battery.ErrPartial{Full: errors.New("not supported")}
	})
	assert.Error(t, b.Refresh())
}

func TestFakeReplaysSamples(t *testing.T) {
	boom := errors.New("boom")
	f := NewFake(
		Sample{State: powerinfo.Charging, Percentage: 0.5},
		Sample{Err: boom},
		Sample{State: powerinfo.Discharging, Percentage: 0.4},
	)

	require.NoError(t, f.Refresh())
	assert.Equal(t, powerinfo.Charging, f.State())

	assert.ErrorIs(t, f.Refresh(), boom)
	assert.Equal(t, powerinfo.Charging, f.State())

	require.NoError(t, f.Refresh())
	require.NoError(t, f.Refresh())
	assert.Equal(t, powerinfo.Discharging, f.State())
	assert.Equal(t, 4, f.Refreshes())
}
