package singleinstance

// Single-instance ownership and remote control of the resident process.

import (
	"context"
)

// Server owns the TCP endpoint and answers remote-control requests.
type Server interface {
	// Start binds the first port of the configured range and starts accepting.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted request, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one client connection carrying a single command.
type Conn interface {
	Request() Request
	RespondOK() error
	// RespondError sends ERROR with a one-line human-readable message.
	RespondError(msg string) error
	Close() error
}

// Request is a parsed "CMD <name>" line.
type Request struct {
	Command string
}

// Client delegates commands to a resident server.
type Client interface {
	// Send scans the port range for a resident and delivers command. If no
	// resident is found, returns delegated=false, err=nil.
	Send(ctx context.Context, command string) (delegated bool, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
