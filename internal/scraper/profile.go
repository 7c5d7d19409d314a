package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"onlinesync/internal/models"
)

const joinedLayout = "02-Jan-06"

var (
	introSelectors  = []string{".ow span.nos", ".ow .nos", "span.nos"}
	imageSelectors  = []string{"img[src*='avatar-imgs']", "img[src*='avatar']"}
	postsSelectors  = []string{"a[href*='/profile/public/'] button div:first-child", "a[href*='/profile/public/'] button div"}
	followSelectors = []string{"span.cl.sp.clb", ".cl.sp.clb"}

	countPattern    = regexp.MustCompile(`\d[\d,]*`)
	relativePattern = regexp.MustCompile(`(\d+)\s*(second|minute|hour|day|week|month|year)s?\s*ago`)
)

// Profile fetches one user page. A page without the profile header is an
// extraction error rather than an empty record.
func (c *Client) Profile(ctx context.Context, nickname string) (models.RawProfile, error) {
	path := "/users/" + url.PathEscape(nickname) + "/"
	doc, final, err := c.get(ctx, "profile", path)
	if err != nil {
		return models.RawProfile{}, err
	}
	if isLoginURL(final.Path) {
		return models.RawProfile{}, fmt.Errorf("profile %s: %w: redirected to login", nickname, ErrLoginFailed)
	}
	return parseProfile(doc, nickname, final.String(), c.now())
}

func parseProfile(doc *goquery.Document, nickname, pageURL string, now time.Time) (models.RawProfile, error) {
	if doc.Find("h1.cxl.clb.lsp").Length() == 0 {
		return models.RawProfile{}, &models.ExtractionError{Nickname: nickname, Reason: "profile header not found"}
	}

	raw := models.RawProfile{
		Nickname:     nickname,
		ProfileLink:  pageURL,
		Intro:        firstText(doc, introSelectors),
		City:         labelledValue(doc, "City:"),
		Gender:       labelledValue(doc, "Gender:"),
		Married:      labelledValue(doc, "Married:"),
		Age:          labelledValue(doc, "Age:"),
		Joined:       RelativeToAbsolute(labelledValue(doc, "Joined:"), now),
		Followers:    firstCount(doc, followSelectors),
		Posts:        firstCount(doc, postsSelectors),
		ProfileImage: firstAttr(doc, imageSelectors, "src"),
	}
	return raw, nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstCount(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if m := countPattern.FindString(doc.Find(sel).First().Text()); m != "" {
			return m
		}
	}
	return ""
}

func firstAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// labelledValue reads the span that follows a bold label such as "City:".
func labelledValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("b").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if !strings.Contains(b.Text(), label) {
			return true
		}
		value = strings.TrimSpace(b.NextAllFiltered("span").First().Text())
		return value == ""
	})
	return value
}

// RelativeToAbsolute turns "2 months ago" into a 02-Jan-06 date. Months count
// as 30 days and years as 365. Text that is not relative is returned as is.
func RelativeToAbsolute(text string, now time.Time) string {
	text = strings.TrimSpace(text)
	m := relativePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return text
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return text
	}

	var d time.Duration
	switch m[2] {
	case "second":
		d = time.Duration(n) * time.Second
	case "minute":
		d = time.Duration(n) * time.Minute
	case "hour":
		d = time.Duration(n) * time.Hour
	case "day":
		d = time.Duration(n) * 24 * time.Hour
	case "week":
		d = time.Duration(n) * 7 * 24 * time.Hour
	case "month":
		d = time.Duration(n) * 30 * 24 * time.Hour
	case "year":
		d = time.Duration(n) * 365 * 24 * time.Hour
	}
	return now.Add(-d).Format(joinedLayout)
}
