package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Exculiber/websocket-client/pkg/probe"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", `{"Authorization": "Bearer token"}`, map[string]string{"Authorization": "Bearer token"}, false},
		{"multiple", `{"A": "1", "B": "2"}`, map[string]string{"A": "1", "B": "2"}, false},
		{"malformed", `{"A": `, nil, true},
		{"not an object", `["A"]`, nil, true},
		{"non-string value", `{"A": 1}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHeaders(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWriteBanner(t *testing.T) {
	target := &probe.Target{
		URI:           "wss://example.com/ws",
		Headers:       map[string]string{"Authorization": "Bearer x"},
		SkipTLSVerify: true,
		Debug:         true,
	}
	require.NoError(t, target.Validate())

	var buf bytes.Buffer
	writeBanner(&buf, target, "stress", "ping")

	out := buf.String()
	assert.Contains(t, out, "wss://example.com/ws")
	assert.Contains(t, out, "stress")
	assert.Contains(t, out, "1 custom")
	assert.Contains(t, out, "DISABLED")
	assert.Contains(t, out, "Debug:   enabled")
	// Header values never echo into the banner.
	assert.NotContains(t, out, "Bearer x")
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad scheme", []string{"http://example.com/ws"}},
		{"bad headers", []string{"--headers", `{"broken`, "ws://example.com/ws"}},
		{"bad mode", []string{"--mode", "warp", "ws://example.com/ws"}},
		{"no target", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flag state shared through the package-level command.
			flagMode, flagHeaders = "basic", ""

			rootCmd.SetArgs(tt.args)
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			assert.Error(t, rootCmd.Execute())
		})
	}
}
