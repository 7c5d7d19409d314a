package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"onlinesync/internal/providers"
	"onlinesync/internal/structures"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const (
	loginPath  = "/login/"
	onlinePath = "/online_kon/"
)

var (
	ErrLoginFailed = errors.New("login failed")
	ErrBadStatus   = errors.New("unexpected response status")
)

// Client talks to the site over one cookie-carrying HTTP session. It serves
// both as the session provider and as the profile fetcher.
type Client struct {
	baseURL *url.URL
	http    *resty.Client
	jar     http.CookieJar
	conf    structures.SiteConfig
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (*Client, error) {
	baseURL, err := url.Parse(conf.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("site url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	userAgent := conf.Site.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := conf.Site.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL.String())
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	client.SetTimeout(timeout)

	return &Client{
		baseURL: baseURL,
		http:    client,
		jar:     jar,
		conf:    conf.Site,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// page performs a request and parses the HTML body. It returns the final
// URL after redirects.
func (c *Client) page(ctx context.Context, endpoint string, req func(r *resty.Request) (*resty.Response, error)) (*goquery.Document, *url.URL, error) {
	start := time.Now()
	res, err := req(c.http.R().SetContext(ctx))
	c.metrics.ObserveRequestDuration(endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncRequestsTotal(endpoint, 0)
		return nil, nil, err
	}
	c.metrics.IncRequestsTotal(endpoint, res.StatusCode())
	if res.IsError() {
		return nil, nil, fmt.Errorf("%s: %w: %s", endpoint, ErrBadStatus, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: parse html: %w", endpoint, err)
	}

	final := c.baseURL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		final = res.RawResponse.Request.URL
	}
	return doc, final, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string) (*goquery.Document, *url.URL, error) {
	return c.page(ctx, endpoint, func(r *resty.Request) (*resty.Response, error) {
		return r.Get(path)
	})
}
