package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RawProfile is the untyped output of a profile scrape. Every field is the
// text found on the page, possibly empty.
type RawProfile struct {
	Nickname     string
	City         string
	Gender       string
	Married      string
	Age          string
	Joined       string
	Followers    string
	Posts        string
	ProfileLink  string
	ProfileImage string
	Intro        string
}

// ProfileRecord is one validated profile snapshot. Nickname is the identity key;
// every other field may change between snapshots.
type ProfileRecord struct {
	Nickname     string
	ScrapedAt    time.Time
	City         string
	Gender       string
	Married      string
	Age          string
	Joined       string
	Followers    int
	Posts        int
	ProfileLink  string
	ProfileImage string
	Intro        string
	Tags         TagSet
}

// ExtractionError reports a profile that could not be turned into a record.
type ExtractionError struct {
	Nickname string
	Field    string
	Reason   string
}

func (e *ExtractionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("extract %q: %s", e.Nickname, e.Reason)
	}
	return fmt.Sprintf("extract %q: %s: %s", e.Nickname, e.Field, e.Reason)
}

var placeholderTexts = map[string]struct{}{
	"not set": {},
	"no city": {},
	"no set":  {},
	"none":    {},
	"n/a":     {},
	"null":    {},
	"no age":  {},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs and non-breaking spaces into single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// CleanField is CleanText plus blanking of the site's placeholder values.
func CleanField(s string) string {
	s = CleanText(s)
	if _, ok := placeholderTexts[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

func parseCount(nickname, field, value string) (int, error) {
	value = strings.ReplaceAll(CleanField(value), ",", "")
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ExtractionError{Nickname: nickname, Field: field, Reason: fmt.Sprintf("not a number: %q", value)}
	}
	if n < 0 {
		return 0, &ExtractionError{Nickname: nickname, Field: field, Reason: "negative count"}
	}
	return n, nil
}

// NewProfileRecord validates raw scrape output. Tags are left empty; they are
// attached later by the tag resolver.
func NewProfileRecord(raw RawProfile, scrapedAt time.Time) (ProfileRecord, error) {
	nickname := CleanText(raw.Nickname)
	if nickname == "" {
		return ProfileRecord{}, &ExtractionError{Field: "nickname", Reason: "empty"}
	}

	followers, err := parseCount(nickname, "followers", raw.Followers)
	if err != nil {
		return ProfileRecord{}, err
	}
	posts, err := parseCount(nickname, "posts", raw.Posts)
	if err != nil {
		return ProfileRecord{}, err
	}

	return ProfileRecord{
		Nickname:     nickname,
		ScrapedAt:    scrapedAt,
		City:         CleanField(raw.City),
		Gender:       CleanField(raw.Gender),
		Married:      CleanField(raw.Married),
		Age:          CleanField(raw.Age),
		Joined:       CleanField(raw.Joined),
		Followers:    followers,
		Posts:        posts,
		ProfileLink:  strings.TrimSpace(raw.ProfileLink),
		ProfileImage: strings.TrimSpace(raw.ProfileImage),
		Intro:        CleanText(raw.Intro),
	}, nil
}

// WithTags returns a copy of the record carrying the given tags.
func (r ProfileRecord) WithTags(tags TagSet) ProfileRecord {
	r.Tags = tags.Clone()
	return r
}
