package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"copypolish/src/app"
	"copypolish/src/config"
	"copypolish/src/credentials"
	"copypolish/src/eventloop"
	"copypolish/src/job"
	"copypolish/src/llm"
	"copypolish/src/notification"
	"copypolish/src/router"
	"copypolish/src/runtimeinit"
	"copypolish/src/singleinstance"
	"copypolish/src/tray"
)

// ErrNoResident is returned by remote-control commands when nothing answers.
var ErrNoResident = errors.New("CopyPolish is not running")

type mainOptions struct {
	apiKeyPath string
	configPath string
	model      string
	verbose    bool
	noTray     bool
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigPath:         o.configPath,
		APIKeyPathOverride: o.apiKeyPath,
		ModelOverride:      o.model,
	}
}

func init() {
	// systray needs the main OS thread
	runtime.LockOSThread()
}

func main() {
	if err := runWithArgs(normalizeLegacyArgs(os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"copypolish"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "copypolish",
		Short:         "Rewrite or translate the selected text with a global hotkey",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResident(*opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	pf.StringVar(&opts.configPath, "config", "", "Path to the YAML settings file")
	pf.StringVar(&opts.model, "model", "", "OpenRouter model id")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "Run without the system tray icon")

	cmd.AddCommand(
		newRemoteCmd(opts, eventloop.Start, "Enable the hotkeys (starts CopyPolish if it is not running)"),
		newRemoteCmd(opts, eventloop.Stop, "Disable the hotkeys"),
		newRemoteCmd(opts, eventloop.Reload, "Reload the settings file"),
		newRemoteCmd(opts, eventloop.OpenSettings, "Open the settings file"),
		newRemoteCmd(opts, eventloop.Exit, "Quit the running instance"),
		newOneShotCmd(opts, job.Rewrite, "Rewrite text from the arguments or stdin"),
		newOneShotCmd(opts, job.Translate, "Translate Turkish text from the arguments or stdin to English"),
		newModelsCmd(opts),
		newKeyCmd(opts),
	)
	return cmd
}

// remoteClient is the part of singleinstance.Client the CLI uses.
type remoteClient interface {
	Send(ctx context.Context, command string) (bool, error)
}

func newRemoteCmd(opts *mainOptions, c eventloop.Command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   c.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupCLILogging(opts.verbose)
			// .env may move the port range
			_, _ = config.LoadWithOptions(opts.loadOptions())
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			return handleRemoteCommand(ctx, c, singleinstance.NewClient(), localFallback(*opts, c))
		},
	}
}

// handleRemoteCommand delivers c to the resident, running fallback when no
// resident answers. A nil fallback turns that case into ErrNoResident.
func handleRemoteCommand(ctx context.Context, c eventloop.Command, client remoteClient, fallback func() error) error {
	delegated, err := client.Send(ctx, c.String())
	if delegated {
		if err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
		log.Printf("Delegated %s to resident", c)
		return nil
	}
	if err != nil {
		log.Printf("Delegation error: %v", err)
	}
	if fallback == nil {
		return ErrNoResident
	}
	return fallback()
}

func localFallback(opts mainOptions, c eventloop.Command) func() error {
	switch c {
	case eventloop.Start:
		return func() error { return runResident(opts) }
	case eventloop.OpenSettings:
		return func() error {
			cfg, err := config.LoadWithOptions(opts.loadOptions())
			if err != nil {
				return err
			}
			a, err := app.New(context.Background(), cfg, opts.loadOptions(), headlessDeps())
			if err != nil {
				return err
			}
			return a.OpenSettings()
		}
	default:
		return nil
	}
}

func runResident(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.LoadWithOptions(opts.loadOptions())
	preflight, cancelPreflight := context.WithTimeout(context.Background(), 2*time.Second)
	port, running := singleinstance.DetectResidentPort(preflight)
	cancelPreflight()
	if running {
		return fmt.Errorf("already running on port %d", port)
	}

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{LoadOptions: opts.loadOptions(), Verbose: opts.verbose})
	if err != nil {
		return err
	}
	enableDPIAwareness()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, opts.loadOptions(), app.Deps{Server: singleinstance.NewServer()})
	if err != nil {
		notification.ShowBlockingError(app.AppName, fmt.Sprintf("Startup failed: %v", err))
		return err
	}
	log.Printf("CopyPolish initialized")

	if opts.noTray {
		return a.Run(ctx)
	}

	t := tray.New(a.Post)
	a.OnBusy = t.SetBusy
	a.OnListening = t.SetListening
	errCh := make(chan error, 1)
	t.Run(func() {
		go func() {
			err := a.Run(ctx)
			if err != nil {
				log.Printf("Resident stopped: %v", err)
			}
			errCh <- err
			t.Quit()
		}()
	})
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// headlessDeps satisfies app.New for commands that never touch the desktop.
func headlessDeps() app.Deps {
	return app.Deps{
		Clipboard: noClipboard{},
		Keys:      noKeys{},
		Notifier:  notification.Discard{},
		Registrar: noRegistrar{},
	}
}

func newOneShotCmd(opts *mainOptions, kind job.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind.String() + " [text]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupCLILogging(opts.verbose)
			cfg, err := config.LoadWithOptions(opts.loadOptions())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			svc := llm.New(llm.Config{SiteURL: cfg.SiteURL, SiteName: cfg.SiteName, Timeout: cfg.ServiceTimeout()})
			r := router.New(svc, credentials.NewChain(cfg.APIKeyPath), func() string { return cfg.Model })
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ServiceTimeout())
			defer cancel()
			return runOneShot(ctx, r, kind, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

type textRouter interface {
	Route(ctx context.Context, kind job.Kind, payload string) (string, error)
}

// runOneShot transforms the joined args, or stdin when there are none, and
// prints the result.
func runOneShot(ctx context.Context, r textRouter, kind job.Kind, args []string, in io.Reader, out io.Writer) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(bufio.NewReader(in))
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("no input text")
	}
	result, err := r.Route(ctx, kind, text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, strings.TrimRight(result, " \t\r\n"))
	return err
}

type modelLister interface {
	ListModels(ctx context.Context, apiKey string) ([]string, error)
}

func newModelsCmd(opts *mainOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model ids available on OpenRouter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupCLILogging(opts.verbose)
			cfg, err := config.LoadWithOptions(opts.loadOptions())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			svc := llm.New(llm.Config{SiteURL: cfg.SiteURL, SiteName: cfg.SiteName})
			return listModels(cmd.Context(), svc, credentials.NewChain(cfg.APIKeyPath), cmd.OutOrStdout())
		},
	}
}

func listModels(ctx context.Context, l modelLister, creds credentials.Source, out io.Writer) error {
	key, ok := creds.APIKey()
	if !ok {
		return router.ErrCredentialMissing
	}
	ids, err := l.ListModels(ctx, key)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func newKeyCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenRouter API key in the OS keyring",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <api-key>",
			Short: "Store the API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				setupCLILogging(opts.verbose)
				if err := credentials.NewChain("").Set(strings.TrimSpace(args[0])); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key stored")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the stored API key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				setupCLILogging(opts.verbose)
				if err := credentials.NewChain("").Delete(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
				return nil
			},
		},
	)
	return cmd
}

// setupCLILogging keeps stdout clean unless verbose output was requested.
func setupCLILogging(verbose bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if verbose {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"api-key-path", "config", "model", "verbose", "no-tray"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
