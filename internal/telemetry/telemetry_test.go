// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"testing"
)

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("CMDENGINE_OTEL_ENDPOINT", "http://collector:4318")
	t.Setenv("CMDENGINE_OTEL_ENABLED", "false")

	s, err := SettingsFromEnv()
	if err != nil {
		t.Fatalf("SettingsFromEnv() error: %v", err)
	}
	want := Settings{Endpoint: "http://collector:4318", Enabled: false, ServiceName: "cmdengine"}
	if s != want {
		t.Errorf("SettingsFromEnv() = %+v, want %+v", s, want)
	}
}

func TestSettingsFromEnv_BadBool(t *testing.T) {
	t.Setenv("CMDENGINE_OTEL_ENABLED", "sometimes")

	if _, err := SettingsFromEnv(); err == nil {
		t.Error("SettingsFromEnv() should reject a malformed bool")
	}
}

func TestSetup_Noop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Settings
	}{
		{"no endpoint", Settings{Enabled: true}},
		{"disabled", Settings{Endpoint: "http://192.0.2.1:4318", Enabled: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			shutdown, err := Setup(t.Context(), tt.s)
			if err != nil {
				t.Fatalf("Setup() error: %v", err)
			}
			if err := shutdown(t.Context()); err != nil {
				t.Errorf("shutdown() error: %v", err)
			}
		})
	}
}

func TestSetup_Exporter(t *testing.T) {
	// A non-routable address: nothing is exported before shutdown.
	shutdown, err := Setup(t.Context(), Settings{Endpoint: "http://192.0.2.1:4318", Enabled: true, ServiceName: "test"})
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown() error: %v", err)
	}
}
