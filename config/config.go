// Package config loads coreconfig.yml, the boolean feature-flag file that
// gates the emulator's verbose log categories and lists the images to start
// automatically.
//
// Full YAML is deliberately not pulled in here (see the project's design
// notes); coreconfig.yml only ever holds a flat map of booleans plus two
// string lists, so a tiny line-oriented decoder covers the whole format
// without a parser dependency.
package config

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Config is the decoded form of coreconfig.yml.
type Config struct {
	LogCode               bool
	LogPassed             bool
	LogWrite              bool
	LogRead               bool
	LogExports            bool
	LogSvcPassed          bool
	EnableBreakpointScript bool
	LogIPC                bool

	Startup   []string
	ForceLoad []string
}

// Default returns the documented fallback configuration, used whenever
// decoding fails or a key is absent.
func Default() Config {
	return Config{}
}

// Decoder turns a coreconfig.yml stream into a flat key/value + list view.
// It is the external collaborator's contract: a real YAML engine could sit
// behind this interface without any caller change.
type Decoder interface {
	Decode(r io.Reader) (RawConfig, error)
}

// RawConfig is the undecoded view: booleans plus the two known list keys.
type RawConfig struct {
	Bools     map[string]bool
	Startup   []string
	ForceLoad []string
}

// LineDecoder decodes the restricted subset of YAML coreconfig.yml actually
// uses: `key: true|false` scalars and `key:` followed by `  - item` list
// entries. Anything else is ignored rather than rejected.
type LineDecoder struct{}

func (LineDecoder) Decode(r io.Reader) (RawConfig, error) {
	raw := RawConfig{Bools: make(map[string]bool)}
	var currentList *[]string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(line, "  -") || strings.HasPrefix(line, "\t-") {
			if currentList != nil {
				*currentList = append(*currentList, strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
			}
			continue
		}

		key, val, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "startup":
			currentList = &raw.Startup
			continue
		case "force_load":
			currentList = &raw.ForceLoad
			continue
		}
		currentList = nil

		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			raw.Bools[key] = b
		}
	}
	if err := sc.Err(); err != nil {
		return raw, err
	}
	return raw, nil
}

// Load decodes r with dec and maps it onto Config, falling back to the
// documented defaults for any key that is absent or fails to decode. Load
// never returns an error: a malformed file behaves as if it were empty.
func Load(r io.Reader, dec Decoder) Config {
	cfg := Default()
	raw, err := dec.Decode(r)
	if err != nil {
		return cfg
	}

	get := func(key string) bool { return raw.Bools[key] }
	cfg.LogCode = get("log_code")
	cfg.LogPassed = get("log_passed")
	cfg.LogWrite = get("log_write")
	cfg.LogRead = get("log_read")
	cfg.LogExports = get("log_exports")
	cfg.LogSvcPassed = get("log_svc_passed")
	cfg.EnableBreakpointScript = get("enable_breakpoint_script")
	cfg.LogIPC = get("log_ipc")
	cfg.Startup = raw.Startup
	cfg.ForceLoad = raw.ForceLoad
	return cfg
}
