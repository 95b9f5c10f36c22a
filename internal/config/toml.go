package config

import (
	"github.com/pelletier/go-toml/v2"
)

// TOML implements koanf.Parser on top of go-toml.
type TOML struct{}

// TOMLParser returns a koanf parser for TOML config files.
func TOMLParser() *TOML {
	return &TOML{}
}

// Unmarshal parses TOML bytes into a nested map.
func (p *TOML) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes a nested map as TOML.
func (p *TOML) Marshal(o map[string]any) ([]byte, error) {
	return toml.Marshal(o)
}
