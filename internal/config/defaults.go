package config

import (
	_ "embed"
	"fmt"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default returns the built-in policy configuration. The embedded defaults
// are validated at load, so a failure here means the binary itself is broken.
func Default() *Config {
	cfg, err := LoadBytes(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}
