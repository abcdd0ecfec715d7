package runtimeinit

import (
	"fmt"
	"io"
	"log"
	"os"

	"copypolish/src/config"
	"copypolish/src/credentials"
	"copypolish/src/logutil"
)

type Options struct {
	LoadOptions config.LoadOptions
	// Verbose sends the log to stderr when file logging is off.
	Verbose bool
	// Stderr overrides os.Stderr for verbose output.
	Stderr io.Writer
}

// Bootstrap loads the configuration and routes the logger. A missing API key
// is only logged: the key is looked up again for every job.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var fallback io.Writer
	if opts.Verbose {
		fallback = opts.Stderr
		if fallback == nil {
			fallback = os.Stderr
		}
	}
	if path := logutil.Setup(cfg.EnableFileLogging, cfg.Dir(), fallback); path != "" {
		log.Printf("Logging to %s", path)
	}

	log.Printf("Settings file: %s", cfg.Path)
	log.Printf("Using model: %s", cfg.Model)
	log.Printf("Hotkeys: rewrite=%s translate=%s paste-path=%q (backend %s)",
		cfg.Hotkey, cfg.HotkeyTranslate, cfg.HotkeyPastePath, cfg.HotkeyBackend)
	log.Printf("Selection settle %v, grace %v; service timeout %v",
		cfg.SelectionSettle(), cfg.SelectionGrace(), cfg.ServiceTimeout())

	if key, ok := credentials.NewChain(cfg.APIKeyPath).APIKey(); ok {
		log.Printf("API key found: %s", logutil.RedactKey(key))
	} else {
		log.Printf("No API key yet. Checked keyring, key file %s and %s env var", cfg.APIKeyPath, credentials.EnvVar)
	}
	return cfg, nil
}
