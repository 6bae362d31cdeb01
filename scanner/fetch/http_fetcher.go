package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Danny-Dasilva/CycleTLS/cycletls"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// tlsProfile is a JA3 fingerprint and the User-Agent that goes with it
type tlsProfile struct {
	ja3       string
	userAgent string
}

// defaultProfiles are tried in order until one is not rejected
var defaultProfiles = []tlsProfile{
	{
		// Safari on macos
		ja3:       "772,4865-4866-4867-49196-49195-52393-49200-49199-52392-49162-49161-49172-49171-157-156-53-47-49160-49170-10,0-23-65281-10-11-16-5-13-18-51-45-43-27,29-23-24-25,0",
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.4 Safari/605.1.15",
	},
	{
		// Firefox
		ja3:       "771,4865-4867-4866-49195-49199-52393-52392-49196-49200-49162-49161-49171-49172-51-57-47-53-10,0-23-65281-10-11-35-16-5-51-43-13-45-28-21,29-23-24-25-256-257,0",
		userAgent: "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:87.0) Gecko/20100101 Firefox/87.0",
	},
}

// ErrAllProfilesFailed when every TLS profile was rejected
var ErrAllProfilesFailed = errors.New("all tls profiles failed")

// HTTPFetcher fetches pages with CycleTLS so that sites sensitive to TLS
// fingerprints serve the same html a browser would get.
type HTTPFetcher struct {
	client   cycletls.CycleTLS
	profiles []tlsProfile
}

// NewHTTPFetcher with the default profiles
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client:   cycletls.Init(),
		profiles: defaultProfiles,
	}
}

// Fetch the target trying each profile in turn
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, string, error) {
	var resp cycletls.Response
	var lastErr error
	success := false

	for i, profile := range f.profiles {
		if err := ctx.Err(); err != nil {
			return nil, targetURL, err
		}

		options := cycletls.Options{
			Body:      "",
			Ja3:       profile.ja3,
			UserAgent: profile.userAgent,
			Headers:   map[string]string{},
		}

		resp, lastErr = f.client.Do(targetURL, options, "GET")
		if lastErr != nil {
			log.Ctx(ctx).Warn().Err(lastErr).Int("profile", i+1).Str("url", targetURL).Msg("fetch failed")
			continue
		}

		if resp.Status == 0 && (strings.Contains(resp.Body, "tls: protocol version not supported") || strings.Contains(resp.Body, "HANDSHAKE_FAILURE")) {
			log.Ctx(ctx).Warn().Int("profile", i+1).Str("url", targetURL).Msg("tls handshake rejected")
			continue
		}

		if resp.Status == http.StatusForbidden {
			log.Ctx(ctx).Warn().Int("profile", i+1).Str("url", targetURL).Msg("forbidden, trying next profile")
			continue
		}

		success = true
		break
	}

	finalURL := resp.FinalUrl
	if finalURL == "" {
		finalURL = targetURL
	}

	if !success {
		if lastErr != nil {
			return nil, finalURL, errors.Wrapf(ErrAllProfilesFailed, "%s: %s", targetURL, lastErr)
		}
		return nil, finalURL, errors.Wrapf(ErrAllProfilesFailed, "%s: last status %d", targetURL, resp.Status)
	}

	if resp.Status != http.StatusOK {
		return nil, finalURL, errors.Errorf("bad status code fetching %s: %d", targetURL, resp.Status)
	}

	return io.NopCloser(strings.NewReader(resp.Body)), finalURL, nil
}
