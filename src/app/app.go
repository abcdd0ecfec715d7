package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"copypolish/src/clipboard"
	"copypolish/src/config"
	"copypolish/src/credentials"
	"copypolish/src/dispatch"
	"copypolish/src/eventloop"
	"copypolish/src/hotkey"
	"copypolish/src/job"
	"copypolish/src/keys"
	"copypolish/src/listener"
	"copypolish/src/llm"
	"copypolish/src/notification"
	"copypolish/src/pastepath"
	"copypolish/src/router"
	"copypolish/src/screenshot"
	"copypolish/src/selection"
	"copypolish/src/singleinstance"
	"copypolish/src/worker"
	"copypolish/src/writer"
)

const AppName = "CopyPolish"

// Deps are the platform ports. Nil fields get the desktop implementation.
type Deps struct {
	Clipboard   clipboard.Clipboard
	Keys        keys.Synthesizer
	Notifier    notification.Notifier
	Registrar   hotkey.Registrar
	Service     llm.Completer
	Credentials credentials.Source
	// Server enables remote control; nil means no endpoint.
	Server singleinstance.Server
	// OpenFile opens the settings file; nil uses the OS handler.
	OpenFile func(path string) error
}

// App owns every long-lived component of the resident process.
type App struct {
	loadOpts config.LoadOptions
	cfg      atomic.Pointer[config.Config]

	clipboard clipboard.Clipboard
	keys      keys.Synthesizer
	notifier  notification.Notifier
	service   llm.Completer
	creds     credentials.Source
	srv       singleinstance.Server
	openFile  func(string) error

	queue      *job.Queue
	extractor  atomic.Pointer[selection.Extractor]
	writer     atomic.Pointer[writer.Writer]
	tracker    atomic.Pointer[screenshot.Tracker]
	dispatcher *dispatch.Dispatcher
	worker     *worker.Worker
	listener   *listener.Listener
	loop       *eventloop.Loop

	trackerMu     sync.Mutex
	trackerCancel context.CancelFunc
	runCtx        context.Context

	// OnBusy and OnListening feed the tray; both may be nil.
	OnBusy      func(bool)
	OnListening func(listener.State)
}

// New wires the pipeline for cfg. ctx bounds trigger handling.
func New(ctx context.Context, cfg *config.Config, loadOpts config.LoadOptions, deps Deps) (*App, error) {
	a := &App{loadOpts: loadOpts, srv: deps.Server, openFile: deps.OpenFile}
	a.cfg.Store(cfg)
	if err := a.initPorts(cfg, deps); err != nil {
		return nil, err
	}
	if a.openFile == nil {
		a.openFile = openWithOS
	}

	a.queue = job.NewQueue()
	a.applyConfig(cfg)

	a.dispatcher = dispatch.New(ctx, liveExtractor{a}, a.queue, a.pathHandler())
	rt := router.New(a.service, a.creds, func() string { return a.Config().Model })
	a.worker = worker.New(a.queue, rt, liveWriter{a}, a.notifier, cfg.ServiceTimeout())
	a.worker.OnState = func(s worker.State) {
		if a.OnBusy != nil {
			a.OnBusy(s != worker.Idle)
		}
	}

	a.listener = listener.New(deps.Registrar, func() config.View { return a.Config().View() }, a.dispatcher.Handler, a.notifier)
	a.loop = eventloop.New(a.listener, a.Reload, a.OpenSettings)
	a.loop.OnState = func(s listener.State) {
		if a.OnListening != nil {
			a.OnListening(s)
		}
	}
	if a.srv != nil {
		a.loop.Serve(a.srv)
	}
	return a, nil
}

func (a *App) initPorts(cfg *config.Config, deps Deps) error {
	var err error
	if a.clipboard = deps.Clipboard; a.clipboard == nil {
		if a.clipboard, err = clipboard.New(cfg.ClipboardBackend); err != nil {
			return fmt.Errorf("init clipboard: %w", err)
		}
	}
	if deps.Keys != nil {
		a.keys = deps.Keys
	} else {
		kb, err := keys.New()
		if err != nil {
			return fmt.Errorf("init keyboard: %w", err)
		}
		a.keys = kb
	}
	if a.notifier = deps.Notifier; a.notifier == nil {
		a.notifier = notification.NewDesktop(AppName)
	}
	if deps.Registrar == nil {
		if deps.Registrar, err = hotkey.New(cfg.HotkeyBackend); err != nil {
			return fmt.Errorf("init hotkeys: %w", err)
		}
	}
	if a.service = deps.Service; a.service == nil {
		a.service = llm.New(llm.Config{SiteURL: cfg.SiteURL, SiteName: cfg.SiteName, Timeout: cfg.ServiceTimeout()})
	}
	if a.creds = deps.Credentials; a.creds == nil {
		a.creds = liveCredentials{a}
	}
	return nil
}

// applyConfig rebuilds the components whose tuning lives in cfg.
func (a *App) applyConfig(cfg *config.Config) {
	ex := selection.New(a.clipboard, a.keys)
	ex.SettleDelay = cfg.SelectionSettle()
	ex.Grace = cfg.SelectionGrace()
	a.extractor.Store(ex)

	w := writer.New(a.clipboard, a.keys, a.notifier)
	w.PasteDelay = cfg.PasteSettle()
	a.writer.Store(w)

	if cur := a.tracker.Load(); cur == nil || cur.Dir() != cfg.ScreenshotDir {
		a.tracker.Store(screenshot.NewTracker(cfg.ScreenshotDir))
		a.restartTracker()
	}
}

func (a *App) pathHandler() *pastepath.Handler {
	return &pastepath.Handler{
		Clipboard: a.clipboard,
		Keys:      a.keys,
		Notifier:  a.notifier,
		Locator:   liveLocator{a},
		Capture:   screenshot.CaptureToDir,
		Options: func() pastepath.Options {
			c := a.Config()
			return pastepath.Options{
				Capture:    c.CaptureScreenshot,
				Dir:        c.ScreenshotDir,
				AutoPaste:  c.AutoPasteScreenshotPath,
				PasteDelay: c.PasteSettle(),
			}
		},
	}
}

// Config returns the current configuration snapshot.
func (a *App) Config() *config.Config { return a.cfg.Load() }

// Listener exposes the state machine for inspection.
func (a *App) Listener() *listener.Listener { return a.listener }

// Post forwards a command to the loop.
func (a *App) Post(cmd eventloop.Command) { a.loop.Post(cmd) }

// Do runs cmd on the loop and waits for its result.
func (a *App) Do(ctx context.Context, cmd eventloop.Command) error { return a.loop.Do(ctx, cmd) }

// Done is closed once Run has returned.
func (a *App) Done() <-chan struct{} { return a.loop.Done() }

// Reload reads the configuration again. The listener re-registers afterwards
// through the loop. Backend choices and the worker timeout need a restart.
func (a *App) Reload() error {
	next, err := config.LoadWithOptions(a.loadOpts)
	if err != nil {
		return err
	}
	prev := a.cfg.Swap(next)
	a.applyConfig(next)
	if prev.HotkeyBackend != next.HotkeyBackend || prev.ClipboardBackend != next.ClipboardBackend {
		log.Printf("Backend changes take effect after restart")
	}
	log.Printf("Configuration reloaded from %s", next.Path)
	return nil
}

// OpenSettings makes sure the settings file exists and opens it.
func (a *App) OpenSettings() error {
	c := a.Config()
	if err := c.EnsureFile(); err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}
	if err := a.openFile(c.Path); err != nil {
		return fmt.Errorf("open settings file: %w", err)
	}
	return nil
}

// Run starts the listener, the worker and the watchers, then serves commands
// until Exit or ctx is done. In-flight jobs are abandoned on return.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.trackerMu.Lock()
	a.runCtx = ctx
	a.trackerMu.Unlock()
	a.restartTracker()

	if a.srv != nil {
		if err := a.srv.Start(ctx); err != nil {
			return fmt.Errorf("another instance is already running: %w", err)
		}
		defer a.srv.Close()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Worker stopped: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := config.Watch(ctx, a.Config().Path, func() { a.loop.Post(eventloop.Reload) }); err != nil {
			log.Printf("Settings watcher disabled: %v", err)
		}
	}()

	a.loop.Post(eventloop.Start)
	err := a.loop.Run(ctx)
	cancel()
	a.queue.Close()
	wg.Wait()
	return err
}

func (a *App) restartTracker() {
	a.trackerMu.Lock()
	defer a.trackerMu.Unlock()
	if a.trackerCancel != nil {
		a.trackerCancel()
		a.trackerCancel = nil
	}
	if a.runCtx == nil {
		return
	}
	t := a.tracker.Load()
	if t == nil {
		return
	}
	ctx, cancel := context.WithCancel(a.runCtx)
	a.trackerCancel = cancel
	go func() {
		if err := t.Run(ctx); err != nil {
			log.Printf("Screenshot tracker disabled: %v", err)
		}
	}()
}
