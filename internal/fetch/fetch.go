package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/lurixo/reF1nd-releases/internal/logger"
)

var (
	// ErrBadStatus is returned when the store answers a download request
	// with a non-success status.
	ErrBadStatus = errors.New("unexpected http status")

	// errRedirectLoop is returned when a download bounces through too many
	// redirects to ever complete.
	errRedirectLoop = errors.New("too many redirects")
)

// maxRedirects bounds the redirect chain of a single download; release
// stores redirect asset downloads to their CDN once or twice.
const maxRedirects = 10

// Fetcher downloads release assets into a caller-scoped location. It never
// leaves partial state: the body lands in a sibling temporary file that is
// renamed over the destination only after the transfer completed.
type Fetcher struct {
	httpClient *http.Client
	token      string
}

// New builds a fetcher. The token, when non-empty, is attached to every
// download request with the same header scheme the metadata queries use.
func New(token string) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errRedirectLoop
				}

				return nil
			},
		},
		token: token,
	}
}

// Fetch downloads url into destPath. Any failure reports the attempted URL
// so operators can check the store's published asset list by hand.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}

	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("download %s: %s, check the repository's published assets: %w",
			url, resp.Status, ErrBadStatus)
	}

	if err := writeAtomically(destPath, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}

	logger.InfoKV(ctx, "Downloaded asset", "url", url, "path", destPath)

	return nil
}

// writeAtomically streams body into a temporary sibling of destPath and
// renames it into place, removing the temporary file on any failure.
func writeAtomically(destPath string, body io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".partial-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush body: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}

	return nil
}
