// Package watch polls content storage and reports which live reload topics
// changed between two polls.
package watch

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/svmesh/svmesh-web/internal/cache"
	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/repository"
	"github.com/svmesh/svmesh-web/internal/routes"
	"github.com/svmesh/svmesh-web/internal/util"
)

var watchLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	watchLogger = l
}

type Watcher struct {
	repo     repository.ContentRepository
	interval time.Duration
	notify   func(topic string)

	// category/name -> content hash as of the previous poll
	hashes *cache.Cache[string, string]
	primed bool
}

func New(repo repository.ContentRepository, interval time.Duration, notify func(topic string)) *Watcher {
	return &Watcher{
		repo:     repo,
		interval: interval,
		notify:   notify,
		hashes:   cache.NewCache[string, string](),
	}
}

// Run polls until ctx is done. A zero interval returns immediately.
func (w *Watcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		topics, err := w.Scan(ctx)
		if err != nil {
			watchLogger.Error().Err(err).Msg("Error scanning content for changes")
		}
		for _, topic := range topics {
			watchLogger.Info().Str("topic", topic).Msg("Content changed, notifying clients")
			if w.notify != nil {
				go w.notify(topic)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Scan reads every content file and returns the topics whose files were
// added, changed or removed since the previous scan. The first scan only
// records the current state.
func (w *Watcher) Scan(ctx context.Context) ([]string, error) {
	current := make(map[string]string)
	for _, category := range []string{config.CategoryUpdates, config.CategoryPages} {
		names, err := w.repo.List(ctx, category)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			hash, err := w.hash(ctx, category, name)
			if err != nil {
				// Removed between List and Read; the next scan sees it gone.
				watchLogger.Debug().Err(err).Str("category", category).Str("file", name).Msg("Skipping unreadable file")
				continue
			}
			current[category+"/"+name] = hash
		}
	}

	var changed []string
	if w.primed {
		for key, hash := range current {
			if old, ok := w.hashes.Get(key); !ok || old != hash {
				changed = append(changed, key)
			}
		}
		for _, key := range w.hashes.Keys() {
			if _, ok := current[key]; !ok {
				changed = append(changed, key)
			}
		}
	}

	w.hashes.SetTo(current)
	w.primed = true

	var topics []string
	for _, key := range changed {
		for _, topic := range Topics(key) {
			if !slices.Contains(topics, topic) {
				topics = append(topics, topic)
			}
		}
	}
	slices.Sort(topics)
	return topics, nil
}

// hash uses the stored hash when the backend keeps one and hashes the body
// otherwise.
func (w *Watcher) hash(ctx context.Context, category, name string) (string, error) {
	if h, ok := w.repo.(repository.ContentHasher); ok {
		return h.ContentHash(ctx, category, name)
	}
	file, err := w.repo.Read(ctx, category, name)
	if err != nil {
		return "", err
	}
	return util.ContentHash(file.Content), nil
}

// Topics maps a "category/name.md" key to the views that display it.
func Topics(key string) []string {
	category, name, ok := strings.Cut(key, "/")
	if !ok {
		return nil
	}
	name = strings.TrimSuffix(name, config.MarkdownExt)

	switch category {
	case config.CategoryUpdates:
		return []string{routes.TopicHome, routes.TopicUpdates}
	case config.CategoryPages:
		if name == config.HomePage {
			return []string{routes.TopicHome}
		}
		return []string{routes.PageTopic(name)}
	}
	return nil
}
