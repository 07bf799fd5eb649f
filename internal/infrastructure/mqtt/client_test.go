package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/coop-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "coopctl-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestPublishValidation(t *testing.T) {
	client := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "coopctl/door/state", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "coopctl/door/state", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"disconnected", "coopctl/door/state", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
	handler := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		wantErr error
	}{
		{"empty topic", "", 1, handler, ErrInvalidTopic},
		{"invalid qos", "coopctl/door/command", 3, handler, ErrInvalidQoS},
		{"nil handler", "coopctl/door/command", 1, nil, ErrSubscribeFailed},
		{"disconnected", "coopctl/door/command", 1, handler, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Subscribe(tt.topic, tt.qos, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPublishDoorStateDisconnected(t *testing.T) {
	client := &Client{cfg: testConfig()}

	if err := client.PublishDoorState("open"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishDoorState() error = %v, want ErrNotConnected", err)
	}
	if err := client.PublishDoorMode("auto"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishDoorMode() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := &Client{cfg: testConfig()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{cfg: testConfig()}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain connection", func(t *testing.T) {
		opts := buildClientOptions(testConfig())

		if len(opts.Servers) != 1 {
			t.Fatalf("Servers count = %d, want 1", len(opts.Servers))
		}
		if got := opts.Servers[0].String(); got != "tcp://127.0.0.1:1883" {
			t.Errorf("broker URL = %q, want %q", got, "tcp://127.0.0.1:1883")
		}
		if opts.ClientID != "coopctl-test" {
			t.Errorf("ClientID = %q, want %q", opts.ClientID, "coopctl-test")
		}
		if !opts.AutoReconnect {
			t.Error("AutoReconnect = false, want true")
		}
	})

	t.Run("tls connection", func(t *testing.T) {
		cfg := testConfig()
		cfg.Broker.TLS = true
		cfg.Broker.Port = 8883

		opts := buildClientOptions(cfg)
		if got := opts.Servers[0].String(); got != "ssl://127.0.0.1:8883" {
			t.Errorf("broker URL = %q, want %q", got, "ssl://127.0.0.1:8883")
		}
		if opts.TLSConfig == nil {
			t.Error("TLSConfig is nil, want configured")
		}
	})

	t.Run("credentials", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.Username = "coop"
		cfg.Auth.Password = "secret"

		opts := buildClientOptions(cfg)
		if opts.Username != "coop" {
			t.Errorf("Username = %q, want %q", opts.Username, "coop")
		}
	})
}

func TestStatusPayloads(t *testing.T) {
	for name, payload := range map[string]string{
		"online":  buildOnlinePayload("coopctl-test"),
		"offline": buildOfflinePayload("coopctl-test"),
	} {
		var decoded map[string]string
		if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
			t.Errorf("%s payload is not valid JSON: %v", name, err)
			continue
		}
		if decoded["status"] != name {
			t.Errorf("%s payload status = %q, want %q", name, decoded["status"], name)
		}
		if decoded["client_id"] != "coopctl-test" {
			t.Errorf("%s payload client_id = %q", name, decoded["client_id"])
		}
	}

	if !strings.Contains(buildOfflinePayload("x"), "graceful_shutdown") {
		t.Error("offline payload missing graceful_shutdown reason")
	}
}

func TestSubscriptionTracking(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}

	client.subscriptions["coopctl/door/command"] = subscription{topic: "coopctl/door/command"}
	if !client.HasSubscription("coopctl/door/command") {
		t.Error("HasSubscription() = false, want true")
	}

	client.dropSubscription("coopctl/door/command")
	if client.HasSubscription("coopctl/door/command") {
		t.Error("HasSubscription() = true after drop, want false")
	}
}
