package config

import (
	"strings"
	"testing"
)

func TestLoadDefaultsOnEmpty(t *testing.T) {
	cfg := Load(strings.NewReader(""), LineDecoder{})
	if cfg.LogCode || cfg.LogIPC {
		t.Fatalf("expected all-false defaults, got %+v", cfg)
	}
}

func TestLoadBoolsAndLists(t *testing.T) {
	src := `
log_code: true
log_ipc: false
startup:
  - z:\sys\bin\eshell.exe
  - z:\sys\bin\textshell.exe
force_load:
  - z:\sys\bin\euser.dll
`
	cfg := Load(strings.NewReader(src), LineDecoder{})
	if !cfg.LogCode {
		t.Fatalf("expected log_code=true")
	}
	if cfg.LogIPC {
		t.Fatalf("expected log_ipc=false")
	}
	if len(cfg.Startup) != 2 || cfg.Startup[0] != `z:\sys\bin\eshell.exe` {
		t.Fatalf("unexpected startup list: %v", cfg.Startup)
	}
	if len(cfg.ForceLoad) != 1 {
		t.Fatalf("unexpected force_load list: %v", cfg.ForceLoad)
	}
}

func TestLoadMalformedIsSilent(t *testing.T) {
	cfg := Load(strings.NewReader("not: a: valid: line: at: all"), LineDecoder{})
	if cfg.LogCode {
		t.Fatalf("expected default on malformed input")
	}
}
