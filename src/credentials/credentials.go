package credentials

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	Service       = "CopyPolish"
	LegacyService = "AutoCopyAI"
	User          = "OPENROUTER_API_KEY"
	EnvVar        = "OPENROUTER_API_KEY"
)

// Source looks up the API key. A missing key is reported as ok=false, not
// as an error.
type Source interface {
	APIKey() (string, bool)
}

// Chain tries the OS keyring, then the key file, then the environment.
// Every call re-reads all sources.
type Chain struct {
	Service       string
	LegacyService string
	KeyFile       string
}

func NewChain(keyFile string) *Chain {
	return &Chain{Service: Service, LegacyService: LegacyService, KeyFile: keyFile}
}

func (c *Chain) APIKey() (string, bool) {
	if k := c.fromKeyring(); k != "" {
		return k, true
	}
	if k := readKeyFile(c.KeyFile); k != "" {
		return k, true
	}
	if k := strings.TrimSpace(os.Getenv(EnvVar)); k != "" {
		return k, true
	}
	return "", false
}

func (c *Chain) fromKeyring() string {
	if c.Service == "" {
		return ""
	}
	k, err := keyring.Get(c.Service, User)
	if err == nil && k != "" {
		return k
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		log.Printf("credentials: keyring lookup failed: %v", err)
	}
	if c.LegacyService == "" {
		return ""
	}

	old, err := keyring.Get(c.LegacyService, User)
	if err != nil || old == "" {
		return ""
	}
	// carry the key over to the current service name
	if err := keyring.Set(c.Service, User, old); err != nil {
		log.Printf("credentials: failed to migrate legacy key: %v", err)
	} else {
		log.Printf("credentials: migrated API key from %s", c.LegacyService)
	}
	return old
}

// Set stores key in the keyring; an empty key deletes the entry.
func (c *Chain) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return c.Delete()
	}
	if err := keyring.Set(c.Service, User, key); err != nil {
		return fmt.Errorf("store API key: %w", err)
	}
	return nil
}

// Delete removes the keyring entry. A missing entry is not an error.
func (c *Chain) Delete() error {
	err := keyring.Delete(c.Service, User)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete API key: %w", err)
	}
	return nil
}

func readKeyFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Static is a fixed key, used by one-shot CLI runs and tests.
type Static string

func (s Static) APIKey() (string, bool) { return string(s), s != "" }
