package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"copypolish/src/job"
)

const (
	AppDirName = "CopyPolish"
	FileName   = "config.yaml"

	ConfigPathEnvVar  = "COPYPOLISH_CONFIG"
	EnvFileEnvVar     = "COPYPOLISH_ENV"
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"

	DefaultModel           = "qwen/qwen3-coder:free"
	DefaultHotkey          = "ctrl+shift+k"
	DefaultHotkeyTranslate = "ctrl+shift+j"
)

// Settings are the fields owned by the YAML settings file.
type Settings struct {
	Model                   string `yaml:"model"`
	Hotkey                  string `yaml:"hotkey"`
	HotkeyTranslate         string `yaml:"hotkey_translate"`
	HotkeyPastePath         string `yaml:"hotkey_paste_path"`
	AutoPasteScreenshotPath bool   `yaml:"auto_paste_screenshot_path"`
	ScreenshotDir           string `yaml:"screenshot_dir"`
	CaptureScreenshot       bool   `yaml:"capture_screenshot"`
	HotkeyBackend           string `yaml:"hotkey_backend"`
	ClipboardBackend        string `yaml:"clipboard_backend"`
	SelectionSettleMs       int    `yaml:"selection_settle_ms"`
	SelectionGraceMs        int    `yaml:"selection_grace_ms"`
	PasteSettleMs           int    `yaml:"paste_settle_ms"`
	ServiceTimeoutSec       int    `yaml:"service_timeout_sec"`
	EnableFileLogging       bool   `yaml:"enable_file_logging"`
}

// Defaults returns the settings used when neither file nor environment say
// otherwise.
func Defaults() Settings {
	return Settings{
		Model:             DefaultModel,
		Hotkey:            DefaultHotkey,
		HotkeyTranslate:   DefaultHotkeyTranslate,
		ScreenshotDir:     defaultScreenshotDir(),
		HotkeyBackend:     "native",
		ClipboardBackend:  "system",
		SelectionSettleMs: 200,
		PasteSettleMs:     100,
		ServiceTimeoutSec: 30,
	}
}

type LoadOptions struct {
	ConfigPath         string
	APIKeyPathOverride string
	ModelOverride      string
}

type Config struct {
	Settings
	// Path is the YAML settings file; it may not exist yet.
	Path       string
	APIKeyPath string
	SiteURL    string
	SiteName   string
}

// View is the read-only snapshot the hotkey pipeline works from.
type View struct {
	HotkeyBindings          map[job.Kind]string
	ModelID                 string
	AutoPasteScreenshotPath bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions merges, later wins: defaults, the YAML file, .env and the
// process environment, then opts.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	path := resolveConfigPath(opts)
	s := Defaults()
	if err := readFile(path, &s); err != nil {
		return nil, err
	}
	applyEnv(&s)
	if m := strings.TrimSpace(opts.ModelOverride); m != "" {
		s.Model = m
	}
	normalize(&s)

	return &Config{
		Settings:   s,
		Path:       path,
		APIKeyPath: resolveAPIKeyPath(opts, dotenvValues),
		SiteURL:    os.Getenv("OPENROUTER_SITE_URL"),
		SiteName:   os.Getenv("OPENROUTER_SITE_NAME"),
	}, nil
}

// View builds the snapshot. An empty PastePath binding is left out.
func (c *Config) View() View {
	b := map[job.Kind]string{
		job.Rewrite:   c.Hotkey,
		job.Translate: c.HotkeyTranslate,
	}
	if c.HotkeyPastePath != "" {
		b[job.PastePath] = c.HotkeyPastePath
	}
	return View{
		HotkeyBindings:          b,
		ModelID:                 c.Model,
		AutoPasteScreenshotPath: c.AutoPasteScreenshotPath,
	}
}

func (c *Config) SelectionSettle() time.Duration {
	return time.Duration(c.SelectionSettleMs) * time.Millisecond
}

func (c *Config) SelectionGrace() time.Duration {
	return time.Duration(c.SelectionGraceMs) * time.Millisecond
}

func (c *Config) PasteSettle() time.Duration {
	return time.Duration(c.PasteSettleMs) * time.Millisecond
}

func (c *Config) ServiceTimeout() time.Duration {
	return time.Duration(c.ServiceTimeoutSec) * time.Second
}

// Dir is the directory holding the settings file and the log.
func (c *Config) Dir() string { return filepath.Dir(c.Path) }

// Save writes the YAML-owned settings to Path.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// EnsureFile writes the current settings if Path does not exist yet.
func (c *Config) EnsureFile() error {
	if _, err := os.Stat(c.Path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return c.Save()
}

// DefaultPath is <UserConfigDir>/CopyPolish/config.yaml, falling back to the
// working directory when no config dir is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(dir, AppDirName, FileName)
}

func resolveConfigPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.ConfigPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}
	return DefaultPath()
}

func readFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse settings %s: %w", path, err)
	}
	return nil
}

func applyEnv(s *Settings) {
	setString(&s.Model, "MODEL")
	setString(&s.Hotkey, "HOTKEY")
	setString(&s.HotkeyTranslate, "HOTKEY_TRANSLATE")
	setString(&s.HotkeyPastePath, "HOTKEY_PASTE_PATH")
	setBool(&s.AutoPasteScreenshotPath, "AUTO_PASTE_SCREENSHOT_PATH")
	setString(&s.ScreenshotDir, "SCREENSHOT_DIR")
	setBool(&s.CaptureScreenshot, "CAPTURE_SCREENSHOT")
	setString(&s.HotkeyBackend, "HOTKEY_BACKEND")
	setString(&s.ClipboardBackend, "CLIPBOARD_BACKEND")
	setInt(&s.SelectionSettleMs, "SELECTION_SETTLE_MS")
	setInt(&s.SelectionGraceMs, "SELECTION_GRACE_MS")
	setInt(&s.PasteSettleMs, "PASTE_SETTLE_MS")
	setInt(&s.ServiceTimeoutSec, "SERVICE_TIMEOUT_SEC")
	setBool(&s.EnableFileLogging, "ENABLE_FILE_LOGGING")
}

// normalize restores defaults the original tool also fell back to.
func normalize(s *Settings) {
	d := Defaults()
	s.Hotkey = strings.TrimSpace(s.Hotkey)
	s.HotkeyTranslate = strings.TrimSpace(s.HotkeyTranslate)
	s.HotkeyPastePath = strings.TrimSpace(s.HotkeyPastePath)
	if s.Hotkey == "" {
		s.Hotkey = d.Hotkey
	}
	if s.HotkeyTranslate == "" {
		s.HotkeyTranslate = d.HotkeyTranslate
	}
	if strings.TrimSpace(s.Model) == "" {
		s.Model = d.Model
	}
	if s.ScreenshotDir == "" {
		s.ScreenshotDir = d.ScreenshotDir
	}
	if s.SelectionSettleMs < 0 {
		s.SelectionSettleMs = d.SelectionSettleMs
	}
	if s.SelectionGraceMs < 0 {
		s.SelectionGraceMs = 0
	}
	if s.PasteSettleMs < 0 {
		s.PasteSettleMs = d.PasteSettleMs
	}
	if s.ServiceTimeoutSec <= 0 {
		s.ServiceTimeoutSec = d.ServiceTimeoutSec
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func defaultScreenshotDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("Pictures", "Screenshots")
	}
	return filepath.Join(home, "Pictures", "Screenshots")
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}
	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}
	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}
	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}
