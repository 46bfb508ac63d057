package envconfig

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHost(t *testing.T) {
	cases := map[string]struct {
		value  string
		expect string
	}{
		"empty":        {"", "127.0.0.1:11480"},
		"only address": {"1.2.3.4", "1.2.3.4:11480"},
		"only port":    {":1234", ":1234"},
		"address+port": {"1.2.3.4:1234", "1.2.3.4:1234"},
		"hostname":     {"example.com", "example.com:11480"},
		"http scheme":  {"http://example.com", "example.com:80"},
		"https scheme": {"https://example.com", "example.com:443"},
		"quoted":       {"\"1.2.3.4\"", "1.2.3.4:11480"},
		"bad port":     {"1.2.3.4:99999", "1.2.3.4:11480"},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("FORGE_HOST", tt.value)
			if host := Host(); host.Host != tt.expect {
				t.Errorf("Host() = %q, erwartet %q", host.Host, tt.expect)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"1":     slog.LevelDebug,
		"true":  slog.LevelDebug,
		"2":     slog.Level(-8),
	}

	for value, expect := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("FORGE_DEBUG", value)
			if got := LogLevel(); got != expect {
				t.Errorf("LogLevel() = %v, erwartet %v", got, expect)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	cases := map[string]float64{
		"":        0.01,
		"0.5":     0.5,
		"abc":     0.01,
		"-1":      0.01,
		"NaN":     0.01,
		"0.00001": 0.00001,
	}

	for value, expect := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("FORGE_CORRUPT_MAX_PERCENT", value)
			if got := CorruptMaxPercent(); got != expect {
				t.Errorf("CorruptMaxPercent() = %v, erwartet %v", got, expect)
			}
		})
	}
}

func TestUint(t *testing.T) {
	t.Setenv("FORGE_TILE_SIZE", "128")
	if got := TileSize(); got != 128 {
		t.Errorf("TileSize() = %d, erwartet 128", got)
	}

	t.Setenv("FORGE_TILE_SIZE", "zwei")
	if got := TileSize(); got != 0 {
		t.Errorf("TileSize() = %d, erwartet Default 0", got)
	}
}

func TestModelDefault(t *testing.T) {
	t.Setenv("FORGE_MODEL", "")
	if got := Model(); got != "RealESRGAN_x4plus" {
		t.Errorf("Model() = %q", got)
	}

	t.Setenv("FORGE_MODEL", "'custom'")
	if got := Model(); got != "custom" {
		t.Errorf("Model() = %q, erwartet custom", got)
	}
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("FORGE_ORIGINS", "http://a.example,http://b.example")
	origins := AllowedOrigins()
	if diff := cmp.Diff([]string{"http://a.example", "http://b.example"}, origins[:2]); diff != "" {
		t.Errorf("AllowedOrigins() mismatch (-want +got):\n%s", diff)
	}
}

func TestAllowedHosts(t *testing.T) {
	t.Setenv("FORGE_ALLOWED_HOSTS", "")
	if got := AllowedHosts(); got != nil {
		t.Errorf("AllowedHosts() = %v, erwartet nil", got)
	}

	t.Setenv("FORGE_ALLOWED_HOSTS", " upscale.example.org, ,*.lan.example ")
	if diff := cmp.Diff([]string{"upscale.example.org", "*.lan.example"}, AllowedHosts()); diff != "" {
		t.Errorf("AllowedHosts() mismatch (-want +got):\n%s", diff)
	}
}

func TestValuesContainsAllKeys(t *testing.T) {
	vals := Values()
	for k := range AsMap() {
		if _, ok := vals[k]; !ok {
			t.Errorf("Values() fehlt Schluessel %s", k)
		}
	}
}
