package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"copypolish/src/listener"
	"copypolish/src/singleinstance"
)

// ErrClosed is returned by Do once the loop has finished.
var ErrClosed = errors.New("event loop closed")

// Listener is the part of the listener state machine the loop drives.
type Listener interface {
	Start() error
	Stop() error
	Reload() error
	State() listener.State
}

type request struct {
	cmd   Command
	reply chan error
}

// Loop serialises commands from the tray and from remote clients onto one
// goroutine. It is the only caller of the listener's Start, Stop and Reload.
type Loop struct {
	listener     Listener
	reloadConfig func() error
	openSettings func() error
	srv          singleinstance.Server

	commands chan request
	done     chan struct{}

	// OnState, if set, is told the listener state after every command.
	OnState func(listener.State)
}

// New creates a loop. reloadConfig runs before listener.Reload; openSettings
// handles OpenSettings. Either may be nil.
func New(l Listener, reloadConfig, openSettings func() error) *Loop {
	return &Loop{
		listener:     l,
		reloadConfig: reloadConfig,
		openSettings: openSettings,
		commands:     make(chan request, 16),
		done:         make(chan struct{}),
	}
}

// Serve makes Run answer remote-control connections from srv.
func (l *Loop) Serve(srv singleinstance.Server) { l.srv = srv }

// Post enqueues cmd without waiting for it. Posts after Run has returned are
// dropped.
func (l *Loop) Post(cmd Command) {
	select {
	case l.commands <- request{cmd: cmd}:
	case <-l.done:
		log.Printf("eventloop: %s dropped, loop closed", cmd)
	}
}

// Do enqueues cmd and waits for its result.
func (l *Loop) Do(ctx context.Context, cmd Command) error {
	req := request{cmd: cmd, reply: make(chan error, 1)}
	select {
	case l.commands <- req:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-l.done:
		// Exit replies before done closes
		select {
		case err := <-req.reply:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run executes commands until Exit or ctx is done, then stops the listener.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer l.shutdown()

	conns := l.accept(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("eventloop: context done: %v", ctx.Err())
			return nil
		case req := <-l.commands:
			err := l.execute(req.cmd)
			if req.reply != nil {
				req.reply <- err
			}
			if req.cmd == Exit {
				return nil
			}
		case conn, ok := <-conns:
			if !ok {
				conns = nil
				continue
			}
			if exit := l.handleConn(conn); exit {
				return nil
			}
		}
	}
}

func (l *Loop) accept(ctx context.Context) <-chan singleinstance.Conn {
	if l.srv == nil {
		return nil
	}
	ch := make(chan singleinstance.Conn, 4)
	go func() {
		defer close(ch)
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				return
			}
			select {
			case ch <- conn:
			case <-ctx.Done():
				_ = conn.Close()
				return
			}
		}
	}()
	return ch
}

func (l *Loop) handleConn(conn singleinstance.Conn) (exit bool) {
	defer conn.Close()
	cmd, err := ParseCommand(conn.Request().Command)
	if err != nil {
		log.Printf("eventloop: remote %v", err)
		_ = conn.RespondError(err.Error())
		return false
	}
	if err := l.execute(cmd); err != nil {
		_ = conn.RespondError(err.Error())
	} else {
		_ = conn.RespondOK()
	}
	return cmd == Exit
}

func (l *Loop) execute(cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in eventloop while executing %s: %v", cmd, r)
			err = fmt.Errorf("%s: panic: %v", cmd, r)
		}
		if l.OnState != nil {
			l.OnState(l.listener.State())
		}
	}()

	log.Printf("eventloop: %s", cmd)
	switch cmd {
	case Start:
		err = l.listener.Start()
	case Stop:
		err = l.listener.Stop()
	case Reload:
		if l.reloadConfig != nil {
			if err = l.reloadConfig(); err != nil {
				break
			}
		}
		err = l.listener.Reload()
	case OpenSettings:
		if l.openSettings != nil {
			err = l.openSettings()
		}
	case Exit:
		err = l.listener.Stop()
	default:
		err = fmt.Errorf("unknown command %s", cmd)
	}
	if err != nil {
		log.Printf("eventloop: %s failed: %v", cmd, err)
	}
	return err
}

func (l *Loop) shutdown() {
	if l.listener.State() == listener.Stopped {
		return
	}
	if err := l.listener.Stop(); err != nil {
		log.Printf("eventloop: stop on shutdown: %v", err)
	}
	if l.OnState != nil {
		l.OnState(l.listener.State())
	}
}
