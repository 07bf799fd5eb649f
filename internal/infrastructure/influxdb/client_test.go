package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/coop-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestWritesWhenDisconnectedAreNoOps(t *testing.T) {
	// A disconnected client silently drops points rather than blocking the
	// control loop. These must not panic despite the nil write API.
	client := &Client{}

	client.WriteDoorEvent("open", "open", "auto", "schedule", 12*time.Second)
	client.WriteSolarWindow(time.Now(), time.Now(), time.Now())
	client.WritePoint("custom", nil, map[string]interface{}{"v": 1})
	client.Flush()
}

func TestIsConnected(t *testing.T) {
	client := &Client{}
	if client.IsConnected() {
		t.Error("IsConnected() = true on zero client, want false")
	}

	client.connected = true
	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}
