package monograph

import (
	"bytes"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/giygas/vetref/logging"
	"github.com/giygas/vetref/metrics"
)

// FetchFunc returns the raw corpus bytes
type FetchFunc func(ctx context.Context) ([]byte, error)

// Loader fetches and parses the corpus at most once. Concurrent first callers share
// one fetch. A failed fetch is not cached, so the next call tries again.
type Loader struct {
	fetch FetchFunc
	group singleflight.Group

	mu     sync.RWMutex
	corpus *Corpus
}

func NewLoader(fetch FetchFunc) *Loader {
	return &Loader{fetch: fetch}
}

// Loaded reports whether the corpus is cached
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.corpus != nil
}

// Corpus returns the cached corpus, fetching it on first use
func (l *Loader) Corpus(ctx context.Context) (*Corpus, error) {
	l.mu.RLock()
	c := l.corpus
	l.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err, shared := l.group.Do("corpus", func() (any, error) {
		l.mu.RLock()
		cached := l.corpus
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		// the result is shared by every waiter; detach from the first caller
		content, err := l.fetch(context.WithoutCancel(ctx))
		if err != nil {
			metrics.MonographFetchTotals.WithLabelValues("error").Inc()
			return nil, err
		}
		parsed, err := Parse(bytes.NewReader(content))
		if err != nil {
			metrics.MonographFetchTotals.WithLabelValues("error").Inc()
			return nil, err
		}

		metrics.MonographFetchTotals.WithLabelValues("ok").Inc()
		logging.Debug("Monograph corpus parsed", "articles", parsed.Len(), "bytes", len(content))

		l.mu.Lock()
		l.corpus = parsed
		l.mu.Unlock()
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Debug("Monograph corpus fetch shared with a concurrent caller")
	}
	return v.(*Corpus), nil
}

// Find looks name up in the corpus, fetching it first if needed
func (l *Loader) Find(ctx context.Context, name string) (Article, error) {
	c, err := l.Corpus(ctx)
	if err != nil {
		return Article{}, err
	}
	return c.Find(name)
}
