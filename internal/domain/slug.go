package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

// ErrSlugUnavailable is returned when no free slug could be derived.
var ErrSlugUnavailable = errors.New("domain: slug unavailable")

const maxSlugAttempts = 100

// Slugify normalises value into a URL slug. It returns an empty string when
// value has no usable characters.
func Slugify(value string) string {
	normalized, err := slug.Normalize(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	return normalized
}

// UniqueSlug derives a slug from base that taken reports as free. Collisions
// get a numeric suffix starting at 2.
func UniqueSlug(ctx context.Context, base string, taken func(context.Context, string) (bool, error)) (string, error) {
	root := Slugify(base)
	if root == "" {
		return "", fmt.Errorf("%w: %q", ErrSlugUnavailable, base)
	}
	candidate := root
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", root, attempt)
	}
	return "", fmt.Errorf("%w: %q", ErrSlugUnavailable, root)
}
