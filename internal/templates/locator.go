package templates

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/logger"
)

type Status int

const (
	Unavailable Status = iota
	Available
)

func (s Status) String() string {
	if s == Available {
		return "available"
	}
	return "unavailable"
}

// Attempt is the outcome of trying one source.
type Attempt struct {
	Source  string
	Bytes   int
	Err     error
	Elapsed time.Duration
}

// Result is what Locate found. An Unavailable result is a normal outcome,
// not an error; callers degrade to the basic export.
type Result struct {
	Status   Status
	Data     []byte
	Source   string
	Attempts []Attempt
}

func (r Result) Available() bool {
	return r.Status == Available && len(r.Data) > 0
}

type Locator struct {
	sources  []Source
	timeout  time.Duration
	maxBytes int64
	log      *logger.Logger
}

// New builds a Locator over explicit sources, tried in order.
func New(sources []Source, timeout time.Duration, maxBytes int64, log *logger.Logger) *Locator {
	return &Locator{sources: sources, timeout: timeout, maxBytes: maxBytes, log: log}
}

// FromConfig builds the documented source chain: every local path, then the
// object store when configured, then the remote URL.
func FromConfig(cfg config.TemplateConfig, log *logger.Logger) (*Locator, error) {
	var sources []Source
	for _, p := range cfg.LocalPaths {
		if p != "" {
			sources = append(sources, FileSource{Path: p})
		}
	}

	if cfg.ObjectStore.Enabled() {
		obj, err := NewObjectSource(cfg.ObjectStore)
		if err != nil {
			return nil, err
		}
		sources = append(sources, obj)
	}

	if cfg.RemoteURL != "" {
		sources = append(sources, HTTPSource{
			URL:    cfg.RemoteURL,
			Client: &http.Client{Timeout: cfg.RequestTimeout},
		})
	}

	return New(sources, cfg.RequestTimeout, cfg.MaxBytes, log), nil
}

// Sources returns the source descriptions in the order they are tried.
func (l *Locator) Sources() []string {
	out := make([]string, len(l.sources))
	for i, s := range l.sources {
		out[i] = s.Describe()
	}
	return out
}

// Locate tries each source in order and stops at the first one that yields
// a valid xlsx payload.
func (l *Locator) Locate(ctx context.Context) Result {
	const component = "TemplateLocator"
	res := Result{Status: Unavailable}

	for _, src := range l.sources {
		if ctx.Err() != nil {
			l.log.Warn(component, "Template lookup cancelled: error=%v", ctx.Err())
			break
		}

		desc := src.Describe()
		start := time.Now()
		data, err := l.fetch(ctx, src)
		if err == nil {
			err = validate(data)
		}

		attempt := Attempt{Source: desc, Bytes: len(data), Err: err, Elapsed: time.Since(start)}
		res.Attempts = append(res.Attempts, attempt)

		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.log.Info(component, "Template not present: source=%s elapsed=%s", desc, attempt.Elapsed)
			} else {
				l.log.Warn(component, "Template source failed: source=%s bytes=%d elapsed=%s error=%v", desc, len(data), attempt.Elapsed, err)
			}
			continue
		}

		l.log.Info(component, "Template loaded: source=%s bytes=%d elapsed=%s", desc, len(data), attempt.Elapsed)
		res.Status = Available
		res.Data = data
		res.Source = desc
		return res
	}

	l.log.Warn(component, "Template unavailable after %d attempts: sources=%v", len(res.Attempts), l.Sources())
	return res
}

func (l *Locator) fetch(ctx context.Context, src Source) ([]byte, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return src.Fetch(ctx, l.maxBytes)
}
