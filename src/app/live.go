package app

import (
	"context"

	"copypolish/src/credentials"
	"copypolish/src/selection"
)

// The adapters below resolve the current component on every call so a
// reload takes effect for the next trigger or job.

type liveExtractor struct{ a *App }

func (l liveExtractor) Extract(ctx context.Context) (selection.Selection, bool, error) {
	return l.a.extractor.Load().Extract(ctx)
}

type liveWriter struct{ a *App }

func (l liveWriter) Success(text string) error { return l.a.writer.Load().Success(text) }
func (l liveWriter) Failure(original string)   { l.a.writer.Load().Failure(original) }

type liveLocator struct{ a *App }

func (l liveLocator) Latest() (string, error) { return l.a.tracker.Load().Latest() }

type liveCredentials struct{ a *App }

func (l liveCredentials) APIKey() (string, bool) {
	return credentials.NewChain(l.a.Config().APIKeyPath).APIKey()
}
