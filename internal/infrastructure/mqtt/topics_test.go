package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"door state", topics.DoorState(), "coopctl/door/state"},
		{"door mode", topics.DoorMode(), "coopctl/door/mode"},
		{"door command", topics.DoorCommand(), "coopctl/door/command"},
		{"door event", topics.DoorEvent(), "coopctl/door/event"},
		{"system status", topics.SystemStatus(), "coopctl/system/status"},
		{"all door topics", topics.AllDoorTopics(), "coopctl/door/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
