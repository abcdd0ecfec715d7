package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"

	"copypolish/src/eventloop"
	"copypolish/src/listener"
)

const (
	Title         = "CopyPolish"
	TooltipIdle   = "CopyPolish"
	TooltipBusy   = "CopyPolish - processing..."
	labelStart    = "Başlat"
	labelStop     = "Durdur"
	labelSettings = "Ayarlar"
	labelExit     = "Çıkış"
)

// Tray is the system tray menu. Clicks are posted to the command loop; the
// tray never touches the listener itself.
type Tray struct {
	post func(eventloop.Command)

	mu        sync.Mutex
	ready     bool
	listening bool
	busy      bool
	start     *systray.MenuItem
	stop      *systray.MenuItem
}

func New(post func(eventloop.Command)) *Tray {
	return &Tray{post: post}
}

// Run blocks on the systray main loop. It must be called from the main
// goroutine. onReady runs once the menu exists.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.build()
		if onReady != nil {
			onReady()
		}
	}, func() {
		log.Printf("Tray exited")
	})
}

// Quit ends Run.
func (t *Tray) Quit() { systray.Quit() }

func (t *Tray) build() {
	systray.SetIcon(Icon())
	systray.SetTitle(Title)

	mStart := systray.AddMenuItem(labelStart, "Kısayolları etkinleştir")
	mStop := systray.AddMenuItem(labelStop, "Kısayolları devre dışı bırak")
	systray.AddSeparator()
	mSettings := systray.AddMenuItem(labelSettings, "Ayarlar dosyasını aç")
	mExit := systray.AddMenuItem(labelExit, "Uygulamadan çık")

	t.mu.Lock()
	t.start, t.stop = mStart, mStop
	t.ready = true
	t.apply()
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-mStart.ClickedCh:
				t.post(eventloop.Start)
			case <-mStop.ClickedCh:
				t.post(eventloop.Stop)
			case <-mSettings.ClickedCh:
				t.post(eventloop.OpenSettings)
			case <-mExit.ClickedCh:
				t.post(eventloop.Exit)
				return
			}
		}
	}()
}

// SetListening enables "Başlat" while stopped and "Durdur" while listening.
func (t *Tray) SetListening(s listener.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listening = s == listener.Listening
	t.apply()
}

// SetBusy switches the tooltip while a job is being processed.
func (t *Tray) SetBusy(busy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.busy = busy
	t.apply()
}

// apply pushes the cached state to the menu; caller holds mu.
func (t *Tray) apply() {
	if !t.ready {
		return
	}
	if t.listening {
		t.start.Disable()
		t.stop.Enable()
	} else {
		t.start.Enable()
		t.stop.Disable()
	}
	systray.SetTooltip(Tooltip(t.busy))
}

// Tooltip returns the tooltip text for the given worker activity.
func Tooltip(busy bool) string {
	if busy {
		return TooltipBusy
	}
	return TooltipIdle
}
