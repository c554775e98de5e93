package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

func envMap(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	s := LoadFrom(envMap(nil))

	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", s.LogLevel, "info")
	}
	if s.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultTimeout)
	}
	if s.ConfigPath != DefaultPath() {
		t.Errorf("ConfigPath = %q, want %q", s.ConfigPath, DefaultPath())
	}
}

func TestLoadFrom_Env(t *testing.T) {
	s := LoadFrom(envMap(map[string]string{
		EnvLogLevel:   "debug",
		EnvTimeout:    "45",
		EnvConfigPath: "/tmp/gw.yaml",
	}))

	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", s.LogLevel, "debug")
	}
	if s.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want %v", s.Timeout, 45*time.Second)
	}
	if s.ConfigPath != "/tmp/gw.yaml" {
		t.Errorf("ConfigPath = %q, want %q", s.ConfigPath, "/tmp/gw.yaml")
	}
}

func TestGetDurationEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "soon"},
		{"zero", "0"},
		{"negative", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getDurationEnv(envMap(map[string]string{EnvTimeout: tt.value}), EnvTimeout, DefaultTimeout)
			if got != DefaultTimeout {
				t.Errorf("getDurationEnv(%q) = %v, want %v", tt.value, got, DefaultTimeout)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	p := FromEnv(envMap(map[string]string{
		EnvGatewayURL: "https://env.example.com/prod/invoke",
		EnvAPIID:      "abc123",
		EnvRegion:     "ap-southeast-2",
		EnvProfile:    "work",
		EnvVerbose:    "true",
	}))

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"GatewayURL", p.GatewayURL, "https://env.example.com/prod/invoke"},
		{"APIID", p.APIID, "abc123"},
		{"Region", p.Region, "ap-southeast-2"},
		{"Profile", p.Profile, "work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}

	if !p.Verbose {
		t.Error("Verbose should be true when BEDROCK_GATEWAY_VERBOSE=true")
	}
}

func TestResolve_Precedence(t *testing.T) {
	explicit := Partial{Region: "a"}
	env := Partial{GatewayURL: "https://env.example.com", Region: "b", Profile: "env-profile"}
	file := &Partial{GatewayURL: "https://file.example.com", Region: "c", APIID: "file-api", Profile: "file-profile"}

	cfg, err := Resolve(explicit, env, file)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Region from explicit", cfg.Region, "a"},
		{"GatewayURL from env", cfg.GatewayURL, "https://env.example.com"},
		{"APIID from file", cfg.APIID, "file-api"},
		{"Profile from env", cfg.Profile, "env-profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestResolve_NilFile(t *testing.T) {
	cfg, err := Resolve(Partial{GatewayURL: "https://g/x", Region: "r1"}, Partial{}, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.GatewayURL != "https://g/x" {
		t.Errorf("GatewayURL = %q, want %q", cfg.GatewayURL, "https://g/x")
	}
}

func TestResolve_MissingRequired(t *testing.T) {
	tests := []struct {
		name     string
		explicit Partial
		env      Partial
		file     *Partial
	}{
		{
			name:     "no gateway url anywhere",
			explicit: Partial{Region: "r1", APIID: "api", Profile: "p"},
			env:      Partial{Region: "r2"},
			file:     &Partial{Region: "r3", ModelMap: map[string]string{"x": "y"}},
		},
		{
			name:     "no region anywhere",
			explicit: Partial{GatewayURL: "https://g/x"},
			file:     &Partial{},
		},
		{
			name:     "relative gateway url",
			explicit: Partial{GatewayURL: "/prod/invoke", Region: "r1"},
		},
		{
			name:     "unsupported scheme",
			explicit: Partial{GatewayURL: "ftp://g/x", Region: "r1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.explicit, tt.env, tt.file)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("Resolve() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestResolve_ModelMapMerge(t *testing.T) {
	explicit := Partial{
		GatewayURL: "https://g/x",
		Region:     "r1",
		ModelMap:   map[string]string{"haiku-4.5": "Y"},
	}
	file := &Partial{ModelMap: map[string]string{"sonnet-4.5": "X", "custom": "Z"}}

	cfg, err := Resolve(explicit, Partial{}, file)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		alias    string
		expected string
	}{
		{"sonnet-4.5", "X"},
		{"haiku-4.5", "Y"},
		{"custom", "Z"},
		{"sonnet", DefaultModelMap()["sonnet"]},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			got, ok := cfg.ModelID(tt.alias)
			if !ok {
				t.Fatalf("ModelID(%q) not found", tt.alias)
			}
			if got != tt.expected {
				t.Errorf("ModelID(%q) = %q, want %q", tt.alias, got, tt.expected)
			}
		})
	}
}

func TestResolve_ExplicitMapOverridesFile(t *testing.T) {
	explicit := Partial{
		GatewayURL: "https://g/x",
		Region:     "r1",
		ModelMap:   map[string]string{"sonnet-4.5": "explicit"},
	}
	file := &Partial{ModelMap: map[string]string{"sonnet-4.5": "file"}}

	cfg, err := Resolve(explicit, Partial{}, file)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got, _ := cfg.ModelID("sonnet-4.5"); got != "explicit" {
		t.Errorf("ModelID(sonnet-4.5) = %q, want %q", got, "explicit")
	}
}

func TestResolve_DoesNotAliasSourceMaps(t *testing.T) {
	explicitMap := map[string]string{"mine": "id"}
	cfg, err := Resolve(Partial{GatewayURL: "https://g/x", Region: "r1", ModelMap: explicitMap}, Partial{}, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	explicitMap["mine"] = "changed"
	if got, _ := cfg.ModelID("mine"); got != "id" {
		t.Errorf("ModelID(mine) = %q after source mutation, want %q", got, "id")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	p, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if p.GatewayURL != "" || p.Region != "" || len(p.ModelMap) != 0 {
		t.Errorf("LoadFile() = %+v, want empty", p)
	}
}

func TestLoadFile_LegacyProfileKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "gateway_url: https://g/x\nregion: r1\naws_profile: legacy\nmodel_map:\n  sonnet-4.5: vendor.model.v1\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if p.Profile != "legacy" {
		t.Errorf("Profile = %q, want %q", p.Profile, "legacy")
	}
	if p.ModelMap["sonnet-4.5"] != "vendor.model.v1" {
		t.Errorf("ModelMap[sonnet-4.5] = %q, want %q", p.ModelMap["sonnet-4.5"], "vendor.model.v1")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("gateway_url: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("LoadFile() error = %v, want ErrConfiguration", err)
	}
}

func TestLoadFile_Unreadable(t *testing.T) {
	// A directory where the file should be cannot be read as YAML.
	path := t.TempDir()

	_, err := LoadFile(path)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("LoadFile() error = %v, want ErrConfiguration", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &domain.GatewayConfig{
		GatewayURL: "https://g/x",
		Region:     "r1",
		APIID:      "api",
		Profile:    "work",
		ModelMap:   map[string]string{"sonnet-4.5": "vendor.model.v1"},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	got, err := Resolve(Partial{}, Partial{}, p)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.GatewayURL != cfg.GatewayURL || got.Region != cfg.Region || got.APIID != cfg.APIID || got.Profile != cfg.Profile {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
	if id, _ := got.ModelID("sonnet-4.5"); id != "vendor.model.v1" {
		t.Errorf("ModelID(sonnet-4.5) = %q, want %q", id, "vendor.model.v1")
	}
}
