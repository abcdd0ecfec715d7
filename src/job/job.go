package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the operation a hotkey binding (and its Job) requests.
type Kind int

const (
	Rewrite Kind = iota
	Translate
	PastePath
)

// Kinds lists every operation kind in registration order.
var Kinds = []Kind{Rewrite, Translate, PastePath}

func (k Kind) String() string {
	switch k {
	case Rewrite:
		return "rewrite"
	case Translate:
		return "translate"
	case PastePath:
		return "paste-path"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rewrite":
		return Rewrite, nil
	case "translate":
		return Translate, nil
	case "paste-path", "pastepath":
		return PastePath, nil
	default:
		return 0, fmt.Errorf("unknown operation kind %q", s)
	}
}

// Job is one unit of work produced by a hotkey trigger. It is never mutated
// after New returns.
type Job struct {
	ID                string
	Kind              Kind
	Payload           string
	OriginalClipboard string
	EnqueuedAt        time.Time
}

// New stamps a Job with a fresh id and the current time.
func New(kind Kind, payload, originalClipboard string) Job {
	return Job{
		ID:                uuid.NewString(),
		Kind:              kind,
		Payload:           payload,
		OriginalClipboard: originalClipboard,
		EnqueuedAt:        time.Now(),
	}
}

// ShortID is the first block of the id, enough to correlate log lines.
func (j Job) ShortID() string {
	if i := strings.IndexByte(j.ID, '-'); i > 0 {
		return j.ID[:i]
	}
	return j.ID
}
