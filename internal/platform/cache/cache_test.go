package cache

import (
	"testing"
	"time"

	"github.com/handspeak/handspeak-api/internal/platform/config"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://cache.internal:6379/1", false},
		{"valid-with-auth", "redis://:quota-secret@localhost:6379", false},
		{"empty", "", true},
		{"not-redis", "postgres://localhost:5432/handspeak", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	opts, err := ClientOptions(config.CacheConfig{URL: "redis://cache.internal:6379/1"})
	if err != nil {
		t.Fatalf("ClientOptions() error = %v", err)
	}

	if opts.ClientName != "handspeak-api" {
		t.Errorf("ClientName = %q, want handspeak-api", opts.ClientName)
	}
	if opts.DB != 1 {
		t.Errorf("DB = %d, want 1", opts.DB)
	}
	if opts.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %v, want 3s", opts.ReadTimeout)
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, config.CacheConfig{URL: "redis://localhost:59999"})
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}
