package monitor

import (
	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/notify"
	"github.com/charlie0129/battnotify/pkg/sound"
	"github.com/charlie0129/battnotify/pkg/utils/ptr"
)

func newTestEmitter() (*notify.Emitter, *notify.Recorder, *sound.Recorder) {
	sink := &notify.Recorder{}
	player := &sound.Recorder{}
	return &notify.Emitter{Sink: sink, Player: player}, sink, player
}

func bothWays() *config.ChargerNotification {
	return &config.ChargerNotification{
		Charging:        ptr.To(true),
		ChargingIcon:    ptr.To("battery-charging"),
		PluggedSound:    ptr.To("battery_charging.ogg"),
		Discharging:     ptr.To(true),
		DischargingIcon: ptr.To("battery-discharging"),
		UnpluggedSound:  ptr.To("battery_discharging.mp3"),
		UrgentLevel:     ptr.To("Normal"),
	}
}

func lowTable() config.ThresholdTable {
	return config.ThresholdTable{
		10: {Message: "A"},
		20: {Message: "B"},
	}
}
