package router

import (
	"context"
	"errors"
	"fmt"

	"copypolish/src/credentials"
	"copypolish/src/job"
	"copypolish/src/llm"
)

var (
	// ErrCredentialMissing means no API key is stored; no request was sent.
	ErrCredentialMissing = errors.New("API key not configured")
	// ErrServiceFailure covers transport errors, timeouts, non-success
	// statuses and responses without text.
	ErrServiceFailure = errors.New("text service failed")
)

// Router turns a Job's kind and payload into a service request.
type Router struct {
	Service     llm.Completer
	Credentials credentials.Source
	// Model is read on every call so a settings change applies to the next job.
	Model func() string
}

func New(service llm.Completer, creds credentials.Source, model func() string) *Router {
	return &Router{Service: service, Credentials: creds, Model: model}
}

// Request builds the service request for kind without sending it.
func (r *Router) Request(kind job.Kind, payload string) (llm.Request, error) {
	p, ok := prompts[kind]
	if !ok {
		return llm.Request{}, fmt.Errorf("%w: no prompt for %s", ErrServiceFailure, kind)
	}
	model := ""
	if r.Model != nil {
		model = r.Model()
	}
	return llm.Request{
		Model:        model,
		SystemPrompt: p.system,
		UserPrompt:   p.user(payload),
	}, nil
}

// Route returns the transformed text. Every failure wraps either
// ErrCredentialMissing or ErrServiceFailure.
func (r *Router) Route(ctx context.Context, kind job.Kind, payload string) (string, error) {
	req, err := r.Request(kind, payload)
	if err != nil {
		return "", err
	}
	key, ok := r.Credentials.APIKey()
	if !ok {
		return "", ErrCredentialMissing
	}
	text, err := r.Service.Complete(ctx, key, req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrServiceFailure, kind, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrServiceFailure, kind)
	}
	return text, nil
}
