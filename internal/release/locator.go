package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lurixo/reF1nd-releases/internal/config"
	"github.com/lurixo/reF1nd-releases/internal/logger"
)

// ErrNoVersion is returned when no tag identifier can be discovered from
// any resolution strategy.
var ErrNoVersion = errors.New("version resolution failed")

// diagExcerptSize caps the diagnostic excerpt attached to ErrNoVersion.
const diagExcerptSize = 512

// strategy is one ordered attempt at discovering a release version.
// A successful attempt with nothing found returns an empty version and the
// raw response for diagnostics. Adding a channel-pinned strategy later is
// a matter of appending to the Locator's list.
type strategy interface {
	name() string
	resolve(ctx context.Context) (version, diag string, err error)
}

// Locator resolves the release version to install: a pinned version
// short-circuits resolution entirely, otherwise the strategies run in order
// and the first discovered tag wins.
type Locator struct {
	strategies []strategy
}

// NewLocator builds a locator querying the configured release store,
// trying the newest stable release first and any release second.
func NewLocator(cfg *config.Config) *Locator {
	client := NewClient(cfg)

	return &Locator{
		strategies: []strategy{
			latestStrategy{client: client},
			anyReleaseStrategy{client: client},
		},
	}
}

// Resolve returns the normalized version to install. When pinned is
// non-empty it is returned (normalized) without any network call.
func (l *Locator) Resolve(ctx context.Context, pinned string) (string, error) {
	if pinned = strings.TrimSpace(pinned); pinned != "" {
		version := Normalize(pinned)
		logger.InfoKV(ctx, "Using pinned version", "version", version)

		return version, nil
	}

	var lastDiag string

	for _, s := range l.strategies {
		version, diag, err := s.resolve(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}

			// A failed query is treated the same as an empty answer so the
			// next strategy still gets its chance; keep the failure text
			// for the final diagnostic.
			logger.WarnKV(ctx, "Resolution strategy failed",
				"strategy", s.name(), "error", err)

			if diag == "" {
				diag = err.Error()
			}
		}

		if diag != "" {
			lastDiag = diag
		}

		if version != "" {
			logger.InfoKV(ctx, "Resolved release version",
				"strategy", s.name(), "version", version)

			return version, nil
		}
	}

	return "", fmt.Errorf("%w: last response: %s", ErrNoVersion, excerpt(lastDiag))
}

// Normalize strips the leading tag prefix from a version identifier,
// e.g. "v1.2.3" becomes "1.2.3".
func Normalize(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "v")
}

// latestStrategy queries the store's newest stable release.
type latestStrategy struct {
	client *Client
}

func (latestStrategy) name() string { return "latest" }

func (s latestStrategy) resolve(ctx context.Context) (string, string, error) {
	rel, body, err := s.client.Latest(ctx)
	if err != nil || rel == nil {
		return "", body, err
	}

	return Normalize(rel.TagName), body, nil
}

// anyReleaseStrategy takes the most recent release of any kind, including
// pre-releases, for stores that have never published a stable release.
type anyReleaseStrategy struct {
	client *Client
}

func (anyReleaseStrategy) name() string { return "any-release" }

func (s anyReleaseStrategy) resolve(ctx context.Context) (string, string, error) {
	releases, body, err := s.client.All(ctx)
	if err != nil {
		return "", body, err
	}

	for _, rel := range releases {
		if rel.TagName != "" {
			return Normalize(rel.TagName), body, nil
		}
	}

	return "", body, nil
}

// excerpt truncates a diagnostic body to a size fit for an error message.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "<empty>"
	}

	if len(s) > diagExcerptSize {
		return s[:diagExcerptSize] + "..."
	}

	return s
}
