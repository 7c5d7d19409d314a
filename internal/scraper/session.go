package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"onlinesync/internal/providers"
)

// EnsureSession reuses saved cookies when they still grant access and logs in
// otherwise.
func (c *Client) EnsureSession(ctx context.Context) error {
	if c.restoreCookies() {
		ok, err := c.sessionValid(ctx)
		if err != nil {
			return err
		}
		if ok {
			c.logger.Debugf(providers.TypeScrape, "Reusing saved session from %s", c.conf.CookieFile)
			return nil
		}
		c.logger.Infof(providers.TypeScrape, "Saved session expired, logging in again")
	}

	if err := c.login(ctx); err != nil {
		return err
	}
	c.saveCookies()
	return nil
}

func (c *Client) sessionValid(ctx context.Context) (bool, error) {
	_, final, err := c.get(ctx, "session", onlinePath)
	if err != nil {
		return false, err
	}
	return !isLoginURL(final.Path), nil
}

func isLoginURL(path string) bool {
	return strings.Contains(strings.ToLower(path), "login")
}

func (c *Client) login(ctx context.Context) error {
	c.logger.Infof(providers.TypeScrape, "Logging in as %s", c.conf.Username)

	doc, _, err := c.get(ctx, "login", loginPath)
	if err != nil {
		return fmt.Errorf("login page: %w", err)
	}

	form, action := loginForm(doc)
	form["nick"] = c.conf.Username
	form["pass"] = c.conf.Password

	_, final, err := c.page(ctx, "login", func(r *resty.Request) (*resty.Response, error) {
		return r.SetFormData(form).SetHeader("referer", c.baseURL.JoinPath(loginPath).String()).Post(action)
	})
	if err != nil {
		return fmt.Errorf("login submit: %w", err)
	}
	if isLoginURL(final.Path) {
		return ErrLoginFailed
	}
	c.logger.Infof(providers.TypeScrape, "Login successful")
	return nil
}

// loginForm collects the hidden inputs (CSRF token included) of the form that
// holds the nick field.
func loginForm(doc *goquery.Document) (map[string]string, string) {
	fields := map[string]string{}
	form := doc.Find("input[name=nick]").First().Closest("form")
	if form.Length() == 0 {
		form = doc.Find("form").First()
	}
	form.Find("input[type=hidden]").Each(func(_ int, s *goquery.Selection) {
		if name, ok := s.Attr("name"); ok && name != "" {
			fields[name] = s.AttrOr("value", "")
		}
	})
	action := strings.TrimSpace(form.AttrOr("action", ""))
	if action == "" {
		action = loginPath
	}
	return fields, action
}

func (c *Client) restoreCookies() bool {
	if c.conf.CookieFile == "" {
		return false
	}
	data, err := os.ReadFile(c.conf.CookieFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warnf(providers.TypeScrape, "Cannot read cookie file %s: %s", c.conf.CookieFile, err)
		}
		return false
	}
	var cookies []*http.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil || len(cookies) == 0 {
		c.logger.Warnf(providers.TypeScrape, "Ignoring unreadable cookie file %s", c.conf.CookieFile)
		return false
	}
	c.jar.SetCookies(c.baseURL, cookies)
	return true
}

func (c *Client) saveCookies() {
	if c.conf.CookieFile == "" {
		return
	}
	data, err := json.Marshal(c.jar.Cookies(c.baseURL))
	if err != nil {
		c.logger.Warnf(providers.TypeScrape, "Cannot encode cookies: %s", err)
		return
	}
	if err := os.WriteFile(c.conf.CookieFile, data, 0o600); err != nil {
		c.logger.Warnf(providers.TypeScrape, "Cannot save cookies to %s: %s", c.conf.CookieFile, err)
	}
}
