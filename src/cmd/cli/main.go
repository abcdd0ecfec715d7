package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"copypolish/src/config"
	"copypolish/src/credentials"
	"copypolish/src/job"
	"copypolish/src/llm"
	"copypolish/src/logutil"
	"copypolish/src/router"
)

const (
	maxFileSizeMB = 1
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	filePath   string
	mode       string
	jsonOutput bool
	verbose    bool
	apiKeyPath string
	model      string
}

type textRouter interface {
	Route(ctx context.Context, kind job.Kind, payload string) (string, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"polish-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "polish-tool",
		Short:         "Rewrite or translate a text file through OpenRouter",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to a UTF-8 text file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.mode, "mode", "rewrite", "Operation to run: rewrite or translate")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Override the configured model id")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, in io.Reader, out io.Writer) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	kind, err := parseMode(opts.mode)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		APIKeyPathOverride: opts.apiKeyPath,
		ModelOverride:      opts.model,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Config loaded: model=%s key path=%s", cfg.Model, cfg.APIKeyPath)

	text, err := readInput(opts.filePath, in)
	if err != nil {
		return err
	}

	svc := llm.New(llm.Config{SiteURL: cfg.SiteURL, SiteName: cfg.SiteName, Timeout: cfg.ServiceTimeout()})
	r := router.New(svc, credentials.NewChain(cfg.APIKeyPath), func() string { return cfg.Model })

	ctx, cancel := context.WithTimeout(ctx, cfg.ServiceTimeout())
	defer cancel()
	return process(ctx, r, kind, text, opts.filePath, opts.jsonOutput, out)
}

// parseMode accepts only the text operations; paste-path has no input text.
func parseMode(mode string) (job.Kind, error) {
	kind, err := job.ParseKind(mode)
	if err != nil {
		return 0, err
	}
	if kind == job.PastePath {
		return 0, fmt.Errorf("mode %q does not transform text", mode)
	}
	return kind, nil
}

func readInput(filePath string, in io.Reader) (string, error) {
	var data []byte
	var err error

	if filePath == "-" {
		log.Printf("Reading text from stdin")
		data, err = io.ReadAll(io.LimitReader(in, maxFileSize+1))
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		log.Printf("Reading text from file: %s", filePath)
		data, err = os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(data) > maxFileSize {
		return "", fmt.Errorf("input exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if !utf8.Valid(data) {
		return "", errors.New("input is not valid UTF-8 text")
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("input is empty")
	}
	log.Printf("Read %d bytes", len(data))
	return text, nil
}

type Result struct {
	Text      string  `json:"text"`
	Mode      string  `json:"mode"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func process(ctx context.Context, r textRouter, kind job.Kind, text, source string, jsonOutput bool, out io.Writer) error {
	start := time.Now()
	result, err := r.Route(ctx, kind, text)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("%s failed after %v: %s", kind, elapsed, logutil.Sanitize(err.Error()))
		return fmt.Errorf("%s failed: %w", kind, err)
	}
	result = strings.TrimRight(result, " \t\r\n")
	log.Printf("%s completed in %v, %d characters", kind, elapsed, utf8.RuneCountInString(result))

	if !jsonOutput {
		_, err := fmt.Fprintln(out, result)
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(Result{
		Text:      result,
		Mode:      kind.String(),
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: utf8.RuneCountInString(result),
	}); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		for _, name := range []string{"file", "mode", "json", "verbose", "api-key-path", "model"} {
			single := "-" + name
			if normalized[i] == single {
				normalized[i] = "-" + single
			} else if strings.HasPrefix(normalized[i], single+"=") {
				normalized[i] = "-" + normalized[i]
			}
		}
	}

	return normalized
}
