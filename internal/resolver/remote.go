package resolver

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/download"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/manifest"
	"github.com/chenjicheng/upmc/internal/retry"
)

// Fetcher reads remote documents.
type Fetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Resolver fetches the remote documents through the retry executor.
type Resolver struct {
	fetcher     Fetcher
	policy      retry.Policy
	manifestURL string
	updaterURLs map[Channel]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy sets the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithUpdaterURLs sets the per-channel self-update document URLs.
func WithUpdaterURLs(stable, dev string) Option {
	return func(r *Resolver) {
		r.updaterURLs = map[Channel]string{Stable: stable, Dev: dev}
	}
}

// New creates a Resolver reading the server manifest at manifestURL.
func New(fetcher Fetcher, manifestURL string, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:     fetcher,
		policy:      retry.DefaultPolicy(),
		manifestURL: manifestURL,
		updaterURLs: map[Channel]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ensure the download client satisfies Fetcher.
var _ Fetcher = (*download.Client)(nil)

// FetchRemoteState fetches the server manifest and then the content index it
// names. Both fetches form one retried operation: a failure of either starts
// the pair over.
func (r *Resolver) FetchRemoteState(ctx context.Context) (RemoteState, error) {
	if r.manifestURL == "" {
		return RemoteState{}, failure.New(failure.RemoteDataMalformed, "no server manifest URL configured")
	}
	return retry.Do(ctx, r.policy, "fetching server manifest", func() (RemoteState, error) {
		return r.fetchOnce(ctx)
	})
}

func (r *Resolver) fetchOnce(ctx context.Context) (RemoteState, error) {
	raw, err := r.fetcher.GetBytes(ctx, r.manifestURL)
	if err != nil {
		return RemoteState{}, err
	}
	server, err := manifest.ParseServer(raw)
	if err != nil {
		return RemoteState{}, fmt.Errorf("server manifest %s: %w", r.manifestURL, err)
	}

	rawIndex, err := r.fetcher.GetBytes(ctx, server.ContentIndexURL)
	if err != nil {
		return RemoteState{}, err
	}
	idx, err := manifest.ParseContentIndex(rawIndex)
	if err != nil {
		return RemoteState{}, fmt.Errorf("content index %s: %w", server.ContentIndexURL, err)
	}

	state := RemoteState{
		Versions:        idx.Versions,
		ContentIndexURL: server.ContentIndexURL,
		Downloads:       server.Downloads.Map(),
	}
	log.WithFields(log.Fields{
		"minecraft": state.Minecraft(),
		"fabric":    state.Fabric(),
	}).Info("remote state fetched")
	return state, nil
}

// UpdaterURL returns the self-update document URL of a channel, or "".
func (r *Resolver) UpdaterURL(ch Channel) string {
	return r.updaterURLs[ch]
}

// FetchUpdaterInfo fetches the self-update document of a channel.
func (r *Resolver) FetchUpdaterInfo(ctx context.Context, ch Channel) (*manifest.UpdaterInfo, error) {
	url := r.UpdaterURL(ch)
	if url == "" {
		return nil, failure.Errorf(failure.RemoteDataMalformed, "no updater version URL configured for channel %s", ch)
	}
	return retry.Do(ctx, r.policy, "fetching updater version info", func() (*manifest.UpdaterInfo, error) {
		raw, err := r.fetcher.GetBytes(ctx, url)
		if err != nil {
			return nil, err
		}
		return manifest.ParseUpdaterInfo(raw)
	})
}
