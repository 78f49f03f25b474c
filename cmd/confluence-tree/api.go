/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/toothbrush/confluence-tree/confluence"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

const cassetteName = "fixtures/confluence-tree"

func authToken(ctx context.Context) (string, error) {
	if len(AuthTokenCmd) > 0 {
		tokenCmdOutput, err := exec.CommandContext(ctx, AuthTokenCmd[0], AuthTokenCmd[1:]...).Output()
		if err != nil {
			return "", fmt.Errorf("confluence-tree: couldn't execute auth-token-cmd '%v': %w", AuthTokenCmd, err)
		}
		return strings.TrimSpace(strings.Split(string(tokenCmdOutput), "\n")[0]), nil
	}

	if token := os.Getenv("CONFLUENCE_API_TOKEN"); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("confluence-tree: please provide --auth-token-cmd or set CONFLUENCE_API_TOKEN")
}

func baseURL() string {
	if BaseURL != "" {
		return BaseURL
	}
	if ConfluenceInstance != "" {
		return confluence.InstanceURL(ConfluenceInstance)
	}
	return ""
}

// newAPI builds a client from the resolved flags.  The returned stop func must be called once the
// client is no longer needed; it flushes the VCR cassette when --with-vcr is on.
func newAPI(ctx context.Context) (*confluence.API, func() error, error) {
	noop := func() error { return nil }

	token, err := authToken(ctx)
	if err != nil {
		return nil, noop, err
	}

	api, err := confluence.NewAPI(confluence.Config{
		BaseURL:   baseURL(),
		Email:     AuthUsername,
		APIToken:  token,
		RateLimit: RateLimit,
		RateBurst: RateBurst,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("confluence-tree: couldn't instantiate Confluence API: %w", err)
	}

	if !WithVCR {
		return api, noop, nil
	}

	r, err := recorder.NewWithOptions(&recorder.Options{
		CassetteName:       cassetteName,
		Mode:               recorder.ModeReplayWithNewEpisodes,
		SkipRequestLatency: true,
		RealTransport:      http.DefaultTransport,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("confluence-tree: couldn't set up go-vcr recording: %w", err)
	}

	// never write credentials into the cassette
	hook := func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	}
	r.AddHook(hook, recorder.AfterCaptureHook)
	r.SetReplayableInteractions(true)

	api.Client = r.GetDefaultClient()
	Logger.Debug().Str("cassette", cassetteName).Msg("recording and replaying HTTP traffic")

	return api, r.Stop, nil
}
