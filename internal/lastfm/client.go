// Package lastfm fetches listening history from the last.fm API. Calls are
// paced by a rate limiter and retried with exponential backoff on the error
// codes the service documents as transient.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	lastfmgo "github.com/shkh/lastfm-go/lastfm"
	"golang.org/x/time/rate"

	"navidromefm/internal/config"
	"navidromefm/internal/logging"
)

// pageSize is the largest page the recent-tracks endpoint serves.
const pageSize = 200

// ErrUserNotFound is returned when last.fm does not know the user.
var ErrUserNotFound = errors.New("last.fm user not found")

// Client wraps the last.fm API for read-only history access.
type Client struct {
	api         *lastfmgo.Api
	limiter     *rate.Limiter
	retryBudget time.Duration
	logger      *slog.Logger
}

// New builds a client from the configured credentials and pacing settings.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	rps := cfg.Fetch.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		api:         lastfmgo.New(cfg.LastFM.APIKey, cfg.LastFM.APISecret),
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		retryBudget: time.Duration(cfg.Fetch.RetrySeconds) * time.Second,
		logger:      logging.WithComponent(logger, "lastfm"),
	}
}

// UserInfo fetches the user's profile summary.
func (c *Client) UserInfo(ctx context.Context, user string) (*UserInfo, error) {
	var info UserInfo
	err := c.call(ctx, func() error {
		result, err := c.api.User.GetInfo(lastfmgo.P{"user": user})
		if err != nil {
			return err
		}
		info.Name = result.Name
		info.PlayCount, _ = strconv.ParseInt(result.PlayCount, 10, 64)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// RecentTracks fetches the user's history one page at a time, starting at
// startPage (1 when zero), and hands each page to visit. Visiting stops
// when visit returns false or an error, or when the pages run out. Pages
// arrive newest first, which is the order the service serves them in.
func (c *Client) RecentTracks(ctx context.Context, user string, startPage int, visit func(Page) (bool, error)) error {
	page := startPage
	if page < 1 {
		page = 1
	}
	for {
		fetched, err := c.recentTracksPage(ctx, user, page)
		if err != nil {
			return err
		}
		cont, err := visit(*fetched)
		if err != nil {
			return err
		}
		if !cont || page >= fetched.TotalPages {
			return nil
		}
		page++
	}
}

func (c *Client) recentTracksPage(ctx context.Context, user string, page int) (*Page, error) {
	var out *Page
	err := c.call(ctx, func() error {
		result, err := c.api.User.GetRecentTracks(lastfmgo.P{
			"user":  user,
			"page":  page,
			"limit": pageSize,
		})
		if err != nil {
			return err
		}
		fetched := &Page{
			Number:     result.Page,
			TotalPages: result.TotalPages,
			Tracks:     make([]Track, 0, len(result.Tracks)),
		}
		for _, t := range result.Tracks {
			track := Track{
				Artist:     t.Artist.Name,
				Track:      t.Name,
				Album:      t.Album.Name,
				MBID:       t.Mbid,
				NowPlaying: t.NowPlaying == "true",
			}
			if uts, err := strconv.ParseInt(t.Date.Uts, 10, 64); err == nil {
				track.PlayedAt = time.Unix(uts, 0).UTC()
			}
			fetched.Tracks = append(fetched.Tracks, track)
		}
		out = fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch recent tracks page %d: %w", page, err)
	}
	c.logger.Debug("fetched page",
		slog.Int("page", out.Number),
		slog.Int("total_pages", out.TotalPages),
		slog.Int("tracks", len(out.Tracks)))
	return out, nil
}

// call paces the request and retries transient failures until the retry
// budget runs out. Permanent API errors abort immediately.
func (c *Client) call(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = c.retryBudget

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := op()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(classify(err))
		}
		c.logger.Warn("transient last.fm error, retrying",
			slog.Int("attempt", attempt), slog.String("error", err.Error()))
		return err
	}, backoff.WithContext(policy, ctx))
}

// Transient error codes per the API documentation: 8 operation failed, 16
// service temporarily unavailable, 29 rate limit exceeded. Anything that is
// not a service error at all is assumed to be a network problem and retried
// too.
func isTransient(err error) bool {
	var apiErr *lastfmgo.LastfmError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 8, 16, 29:
			return true
		default:
			return false
		}
	}
	return true
}

func classify(err error) error {
	var apiErr *lastfmgo.LastfmError
	if errors.As(err, &apiErr) && apiErr.Code == 6 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, apiErr.Message)
	}
	return err
}
