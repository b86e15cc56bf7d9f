package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/source"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// ClientOptions configures a Client.
type ClientOptions struct {
	Token      string
	BaseURL    string // API root; empty means api.github.com
	HTTPClient *http.Client
	Retry      retry.Policy
	Limiter    *RateLimiter
	Recorder   metrics.Recorder
}

// Client wraps go-github with rate limiting, retries and error classification.
type Client struct {
	gh       *gh.Client
	limiter  *RateLimiter
	policy   retry.Policy
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewClient builds a client. A token authenticates through oauth2.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	hc := opts.HTTPClient
	if opts.Token != "" {
		if hc != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
		}
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
		hc.Timeout = DefaultTimeout
	}
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}

	client := gh.NewClient(hc)
	if opts.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, errors.ConfigError("invalid GitHub API URL").
				WithCause(err).WithContext("field", "github.api_url").Build()
		}
		client.BaseURL = u
	}

	c := &Client{
		gh:       client,
		limiter:  opts.Limiter,
		policy:   opts.Retry,
		recorder: opts.Recorder,
		logger:   slog.Default().With("component", "github"),
	}
	if c.limiter == nil {
		c.limiter = NewRateLimiter(0, 0)
	}
	if c.recorder == nil {
		c.recorder = metrics.NoopRecorder{}
	}
	if c.policy == (retry.Policy{}) {
		c.policy = retry.DefaultPolicy()
	}
	return c, nil
}

// GetTree lists the repository tree at ref recursively.
func (c *Client) GetTree(ctx context.Context, owner, repo, ref string) ([]source.Entry, error) {
	var entries []source.Entry
	err := c.do(ctx, "tree", func(ctx context.Context) (*gh.Response, error) {
		tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
		if err != nil {
			return resp, err
		}
		if tree.GetTruncated() {
			c.logger.Warn("Repository tree truncated by the API",
				logfields.Repository(owner+"/"+repo), logfields.Ref(ref), logfields.Count(len(tree.Entries)))
		}
		entries = make([]source.Entry, 0, len(tree.Entries))
		for _, e := range tree.Entries {
			switch e.GetType() {
			case "blob":
				entries = append(entries, source.Entry{Path: e.GetPath()})
			case "tree":
				entries = append(entries, source.Entry{Path: e.GetPath(), IsDir: true})
			}
		}
		return resp, nil
	})
	return entries, err
}

// GetContents returns the decoded bytes of the file at p on ref.
func (c *Client) GetContents(ctx context.Context, owner, repo, p, ref string) ([]byte, error) {
	var data []byte
	err := c.do(ctx, "contents", func(ctx context.Context) (*gh.Response, error) {
		opts := &gh.RepositoryContentGetOptions{Ref: ref}
		file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, p, opts)
		if err != nil {
			return resp, err
		}
		if file == nil {
			return resp, errors.SourceError("path is a directory").WithContext("path", p).Build()
		}
		// Files over 1 MB come back without inline content.
		if file.GetEncoding() == "none" {
			rc, dresp, derr := c.gh.Repositories.DownloadContents(ctx, owner, repo, p, opts)
			if derr != nil {
				return dresp, derr
			}
			defer func() { _ = rc.Close() }()
			data, err = io.ReadAll(rc)
			return dresp, err
		}
		text, err := file.GetContent()
		if err != nil {
			return resp, errors.SourceError("decode file content").WithCause(err).WithContext("path", p).Build()
		}
		data = []byte(text)
		return resp, nil
	})
	return data, err
}

// do runs one API call under the rate limiter and retry policy.
func (c *Client) do(ctx context.Context, operation string, call func(ctx context.Context) (*gh.Response, error)) error {
	start := time.Now()
	err := c.policy.Do(ctx, errors.IsRetryable, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		resp, err := call(ctx)
		if resp != nil {
			c.limiter.UpdateFromResponse(resp.Response)
		}
		if err != nil {
			werr := c.classify(err, operation)
			if errors.IsRetryable(werr) {
				c.logger.Debug("Retrying GitHub request", "operation", operation, logfields.Error(werr))
			}
			return werr
		}
		return nil
	})
	c.recorder.ObserveFetchDuration(operation, time.Since(start), err == nil)
	return err
}

// classify maps go-github failures onto the error taxonomy.
func (c *Client) classify(err error, operation string) error {
	if errors.IsClassified(err) {
		return err
	}

	var rateErr *gh.RateLimitError
	if stderrors.As(err, &rateErr) {
		return errors.NetworkError("GitHub rate limit exceeded").RateLimit().
			WithCause(err).WithContext("reset", rateErr.Rate.Reset.Time).Build()
	}
	var abuseErr *gh.AbuseRateLimitError
	if stderrors.As(err, &abuseErr) {
		return errors.NetworkError("GitHub secondary rate limit").RateLimit().WithCause(err).Build()
	}

	var apiErr *gh.ErrorResponse
	if stderrors.As(err, &apiErr) && apiErr.Response != nil {
		status := apiErr.Response.StatusCode
		switch {
		case status == http.StatusNotFound:
			return errors.WrapError(source.ErrNotFound, errors.CategoryNotFound, source.ErrNotFound.Message()).
				WithContext("operation", operation).Build()
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return errors.AuthError("GitHub rejected the credentials").
				WithCause(err).WithContext("status", status).Build()
		case status == http.StatusTooManyRequests || status >= 500:
			return errors.NetworkError(operation+" failed").
				WithCause(err).WithContext("status", status).Build()
		default:
			return errors.SourceError(operation+" failed").
				WithCause(err).WithContext("status", status).Build()
		}
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.NetworkError(operation + " failed").WithCause(err).Build()
}
