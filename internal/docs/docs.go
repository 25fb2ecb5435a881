// Package docs holds the built-in documentation served by the docs command.
package docs

import (
	"fmt"
	"strings"
	"sync"
)

// Topic is one documentation article, addressed by its Name slug.
type Topic struct {
	Name    string
	Title   string
	Summary string // shown in the topic listing
	Content string // plain text, no ANSI
}

// All returns the topics in display order.
func All() []Topic {
	return topics
}

var index = sync.OnceValue(func() map[string]Topic {
	m := make(map[string]Topic, len(topics))
	for _, t := range topics {
		m[t.Name] = t
	}
	return m
})

// Get looks up a topic, ignoring case and surrounding space in the name.
func Get(name string) (Topic, error) {
	t, ok := index()[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Topic{}, fmt.Errorf("unknown topic %q (run 'pipewright docs' to list available topics)", name)
	}
	return t, nil
}
