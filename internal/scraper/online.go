package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"onlinesync/internal/providers"
)

var navigationLabels = map[string]struct{}{
	"next":   {},
	"prev":   {},
	"top":    {},
	"bottom": {},
}

// OnlineUsers returns the nicknames listed on the online page in page order.
func (c *Client) OnlineUsers(ctx context.Context) ([]string, error) {
	doc, final, err := c.get(ctx, "online", onlinePath)
	if err != nil {
		return nil, fmt.Errorf("online page: %w", err)
	}
	if isLoginURL(final.Path) {
		return nil, fmt.Errorf("online page: %w: redirected to login", ErrLoginFailed)
	}

	users := parseOnlineUsers(doc)
	c.logger.Infof(providers.TypeScrape, "Found %d online users", len(users))
	return users, nil
}

func parseOnlineUsers(doc *goquery.Document) []string {
	users := collectNicknames(doc.Find("b.clb bdi"), nil)
	if len(users) > 0 {
		return users
	}
	return collectNicknames(doc.Find("bdi"), navigationLabels)
}

func collectNicknames(sel *goquery.Selection, skip map[string]struct{}) []string {
	seen := map[string]struct{}{}
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		nick := strings.TrimSpace(s.Text())
		if nick == "" {
			return
		}
		if _, ok := skip[strings.ToLower(nick)]; ok {
			return
		}
		if _, dup := seen[nick]; dup {
			return
		}
		seen[nick] = struct{}{}
		out = append(out, nick)
	})
	return out
}
