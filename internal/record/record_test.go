package record

import (
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
		token    string
	}{
		{KindGPS, "gps", "GPS"},
		{KindTelemetry, "telemetry", "TEL"},
		{KindSettings, "settings", "SET"},
		{Kind(0), "unknown", ""},
	}

	for _, tt := range tests {
		if tt.kind.String() != tt.expected {
			t.Errorf("kind %d: expected %s, got %s", tt.kind, tt.expected, tt.kind.String())
		}
		if tt.kind.Token() != tt.token {
			t.Errorf("kind %d: expected token %q, got %q", tt.kind, tt.token, tt.kind.Token())
		}
	}
}

func TestKindOf(t *testing.T) {
	for _, k := range Kinds {
		got, ok := KindOf(k.Token())
		if !ok || got != k {
			t.Errorf("KindOf(%q) = %v, %v", k.Token(), got, ok)
		}
	}
	if _, ok := KindOf("gps"); ok {
		t.Error("token match should be case-sensitive")
	}
}

func TestNewGPS(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		wantErr  bool
	}{
		{"origin", 0, 0, false},
		{"upper bounds", 180, 90, false},
		{"lower bounds", -180, -90, false},
		{"longitude above", 180.5, 0, true},
		{"longitude below", -181, 0, true},
		{"latitude above", 0, 90.0001, true},
		{"latitude below", 0, -91, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGPS(tt.lon, tt.lat)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGPS(%v, %v) error = %v, wantErr %v", tt.lon, tt.lat, err, tt.wantErr)
			}
		})
	}
}

func TestNewTelemetry(t *testing.T) {
	for _, p := range []int{0, 50, 100} {
		if _, err := NewTelemetry(p); err != nil {
			t.Errorf("battery %d should be valid: %v", p, err)
		}
	}
	for _, p := range []int{-1, 101} {
		if _, err := NewTelemetry(p); err == nil {
			t.Errorf("battery %d should be rejected", p)
		}
	}
}

func TestNewSettings(t *testing.T) {
	if _, err := NewSettings(true, 1); err != nil {
		t.Errorf("rate 1 should be valid: %v", err)
	}
	if _, err := NewSettings(false, 1000); err != nil {
		t.Errorf("rate 1000 should be valid: %v", err)
	}
	if _, err := NewSettings(true, 0); err == nil {
		t.Error("rate 0 should be rejected")
	}
	if _, err := NewSettings(true, 5000); err != nil {
		t.Errorf("rate 5000 should be valid, rates have no upper bound: %v", err)
	}
	if _, err := NewSettings(true, -1); err == nil {
		t.Error("negative rate should be rejected")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		rec      Record
		expected string
	}{
		{GPS{Longitude: -73.994454, Latitude: 40.750042}, "GPS,-73.994454,+40.750042"},
		{GPS{Longitude: 180, Latitude: 0}, "GPS,+180,+0"},
		{Telemetry{BatteryPercent: 85}, "TEL,85"},
		{Settings{On: true, Rate: 10}, "SET,on,10"},
		{Settings{On: false, Rate: 3}, "SET,off,3"},
	}

	for _, tt := range tests {
		if got := Format(tt.rec); got != tt.expected {
			t.Errorf("Format(%v) = %q, want %q", tt.rec, got, tt.expected)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		rec      Record
		expected string
	}{
		{GPS{Longitude: 1.5, Latitude: -2}, "GPS(lon=+1.5, lat=-2)"},
		{Telemetry{BatteryPercent: 7}, "TEL(battery=7%)"},
		{Settings{On: true, Rate: 5}, "SET(on=true, rate=5)"},
	}

	for _, tt := range tests {
		if got := tt.rec.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}
