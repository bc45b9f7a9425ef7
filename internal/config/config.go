package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the project-level configuration loaded from vex.yaml. Every
// field is optional; zero values fall back to built-in defaults.
type Config struct {
	Specialist SpecialistConfig `yaml:"specialist"`
	Modules    ModulesConfig    `yaml:"modules"`
}

// Duration is a time.Duration that unmarshals from the "30s" form.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// SpecialistConfig controls the library specialist bridge.
type SpecialistConfig struct {
	Command          string   `yaml:"command"`
	Args             []string `yaml:"args"`
	PoolSize         int      `yaml:"pool_size"`
	Timeout          Duration `yaml:"timeout"`
	Retries          int      `yaml:"retries"`
	BreakerThreshold int      `yaml:"breaker_threshold"`
	BreakerCooldown  Duration `yaml:"breaker_cooldown"`

	// GRPC, when set, selects the service transport instead of a child
	// process.
	GRPC *GRPCConfig `yaml:"grpc"`
}

type GRPCConfig struct {
	Target string `yaml:"target"`
	Proto  string `yaml:"proto"`
	Method string `yaml:"method"`
}

// ModulesConfig controls import resolution.
type ModulesConfig struct {
	Paths     []string `yaml:"paths"`
	CachePath string   `yaml:"cache_path"`
}

func Default() *Config {
	return &Config{
		Specialist: SpecialistConfig{
			PoolSize: 2,
			Timeout:  Duration(30 * time.Second),
			Retries:  1,
		},
	}
}

// Load reads vex.yaml from dir or the nearest ancestor that has one. A
// missing file is not an error; defaults apply.
func Load(dir string) (*Config, error) {
	path, ok := locate(dir)
	if !ok {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func locate(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
