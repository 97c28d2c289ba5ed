package app

import (
	"os"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		defValue string
		want     string
	}{
		{
			name:     "env set",
			envKey:   "TEST_ENV_VAR",
			envValue: "custom_value",
			defValue: "default",
			want:     "custom_value",
		},
		{
			name:     "env not set",
			envKey:   "TEST_ENV_VAR_NOTSET",
			envValue: "",
			defValue: "default",
			want:     "default",
		},
		{
			name:     "empty default",
			envKey:   "TEST_ENV_VAR_EMPTY",
			envValue: "",
			defValue: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenv(tt.envKey, tt.defValue)
			if got != tt.want {
				t.Errorf("getenv(%q, %q) = %q, want %q", tt.envKey, tt.defValue, got, tt.want)
			}
		})
	}
}

func TestGetenvIntClamped(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		def      int
		min      int
		max      int
		want     int
	}{
		{
			name:     "value within range",
			envKey:   "TEST_INT_NORMAL",
			envValue: "500",
			def:      100,
			min:      0,
			max:      1000,
			want:     500,
		},
		{
			name:     "value below min - clamp to min",
			envKey:   "TEST_INT_LOW",
			envValue: "-100",
			def:      100,
			min:      0,
			max:      1000,
			want:     0,
		},
		{
			name:     "value above max - clamp to max",
			envKey:   "TEST_INT_HIGH",
			envValue: "2000",
			def:      100,
			min:      0,
			max:      1000,
			want:     1000,
		},
		{
			name:     "env not set - use default",
			envKey:   "TEST_INT_NOTSET",
			envValue: "",
			def:      100,
			min:      0,
			max:      1000,
			want:     100,
		},
		{
			name:     "invalid value - use default",
			envKey:   "TEST_INT_INVALID",
			envValue: "not_a_number",
			def:      100,
			min:      0,
			max:      1000,
			want:     100,
		},
		{
			name:     "boundary: exactly min",
			envKey:   "TEST_INT_MIN",
			envValue: "200",
			def:      500,
			min:      200,
			max:      800,
			want:     200,
		},
		{
			name:     "boundary: exactly max",
			envKey:   "TEST_INT_MAX",
			envValue: "800",
			def:      500,
			min:      200,
			max:      800,
			want:     800,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenvIntClamped(tt.envKey, tt.def, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("getenvIntClamped(%q, %d, %d, %d) = %d, want %d",
					tt.envKey, tt.def, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestGetenvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		def      time.Duration
		want     time.Duration
	}{
		{
			name:     "valid duration",
			envKey:   "TEST_DUR_VALID",
			envValue: "30m",
			def:      time.Hour,
			want:     30 * time.Minute,
		},
		{
			name:     "env not set - use default",
			envKey:   "TEST_DUR_NOTSET",
			envValue: "",
			def:      time.Hour,
			want:     time.Hour,
		},
		{
			name:     "invalid duration - use default",
			envKey:   "TEST_DUR_INVALID",
			envValue: "banana",
			def:      time.Hour,
			want:     time.Hour,
		},
		{
			name:     "non-positive duration - use default",
			envKey:   "TEST_DUR_NEGATIVE",
			envValue: "-5m",
			def:      time.Hour,
			want:     time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenvDuration(tt.envKey, tt.def)
			if got != tt.want {
				t.Errorf("getenvDuration(%q, %v) = %v, want %v", tt.envKey, tt.def, got, tt.want)
			}
		})
	}
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	// Clear any existing env vars that might interfere
	keysToClean := []string{
		"HTTP_ADDR", "LOG_LEVEL", "API_KEY", "JWT_EXPIRY",
		"CALLBACK_URL", "CALLBACK_TIMEOUT",
		"MAX_MESSAGES_PER_SESSION", "MIN_MESSAGES_FOR_REPORT", "MAX_MESSAGE_BYTES",
		"SESSION_TTL", "SWEEP_INTERVAL", "MAX_SESSIONS",
	}
	for _, key := range keysToClean {
		os.Unsetenv(key)
	}

	cfg := LoadConfigFromEnv()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v, want %v", cfg.JWTExpiry, 24*time.Hour)
	}
	if cfg.CallbackTimeout != 10*time.Second {
		t.Errorf("CallbackTimeout = %v, want %v", cfg.CallbackTimeout, 10*time.Second)
	}
	if cfg.MaxMessagesPerSession != 20 {
		t.Errorf("MaxMessagesPerSession = %d, want 20", cfg.MaxMessagesPerSession)
	}
	if cfg.MinMessagesForReport != 3 {
		t.Errorf("MinMessagesForReport = %d, want 3", cfg.MinMessagesForReport)
	}
	if cfg.MaxMessageBytes != 8192 {
		t.Errorf("MaxMessageBytes = %d, want 8192", cfg.MaxMessageBytes)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, time.Hour)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval = %v, want %v", cfg.SweepInterval, 5*time.Minute)
	}
	if cfg.MaxSessions != 10000 {
		t.Errorf("MaxSessions = %d, want 10000", cfg.MaxSessions)
	}
}

func TestLoadConfigFromEnvCustomValues(t *testing.T) {
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("API_KEY", "secret-key")
	os.Setenv("CALLBACK_URL", "https://hooks.example.com/report")
	os.Setenv("MAX_MESSAGES_PER_SESSION", "50")
	os.Setenv("SESSION_TTL", "30m")
	os.Setenv("SWEEP_INTERVAL", "1m")

	defer func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("API_KEY")
		os.Unsetenv("CALLBACK_URL")
		os.Unsetenv("MAX_MESSAGES_PER_SESSION")
		os.Unsetenv("SESSION_TTL")
		os.Unsetenv("SWEEP_INTERVAL")
	}()

	cfg := LoadConfigFromEnv()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.APIKey != "secret-key" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "secret-key")
	}
	if cfg.CallbackURL != "https://hooks.example.com/report" {
		t.Errorf("CallbackURL = %q, want %q", cfg.CallbackURL, "https://hooks.example.com/report")
	}
	if cfg.MaxMessagesPerSession != 50 {
		t.Errorf("MaxMessagesPerSession = %d, want 50", cfg.MaxMessagesPerSession)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, 30*time.Minute)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("SweepInterval = %v, want %v", cfg.SweepInterval, time.Minute)
	}
}
