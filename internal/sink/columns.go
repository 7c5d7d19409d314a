package sink

import (
	"strconv"
	"strings"
	"time"

	"onlinesync/internal/models"
)

const (
	DateLayout = "02-Jan-06"
	TimeLayout = "03:04 PM"
)

// Header is the fixed column contract shared by every store.
var Header = []string{
	"DATE", "TIME", "NICKNAME", "TAGS", "CITY", "GENDER", "MARRIED",
	"AGE", "JOINED", "FOLLOWERS", "POSTS", "PLINK", "PIMAGE", "INTRO",
}

const (
	colDate = iota
	colTime
	colNickname
	colTags
	colCity
	colGender
	colMarried
	colAge
	colJoined
	colFollowers
	colPosts
	colProfileLink
	colProfileImage
	colIntro
)

// EncodeRow renders r in column order. DATE and TIME carry the write time,
// which is the record's scrape time.
func EncodeRow(r models.ProfileRecord) []string {
	at := r.ScrapedAt.Local()
	return []string{
		at.Format(DateLayout),
		at.Format(TimeLayout),
		r.Nickname,
		r.Tags.Render(),
		r.City,
		r.Gender,
		r.Married,
		r.Age,
		r.Joined,
		strconv.Itoa(r.Followers),
		strconv.Itoa(r.Posts),
		r.ProfileLink,
		r.ProfileImage,
		r.Intro,
	}
}

// DecodeRow parses a stored row. Short rows are padded; unparseable counts
// read as zero so a hand-edited cell ends up rewritten rather than blocking the load.
func DecodeRow(cells []string, rowIndex int) (models.PersistedRow, bool) {
	if len(cells) < len(Header) {
		padded := make([]string, len(Header))
		copy(padded, cells)
		cells = padded
	}
	nick := strings.TrimSpace(cells[colNickname])
	if nick == "" {
		return models.PersistedRow{}, false
	}

	written := parseWriteTime(cells[colDate], cells[colTime])
	rec := models.ProfileRecord{
		Nickname:     nick,
		ScrapedAt:    written,
		City:         cells[colCity],
		Gender:       cells[colGender],
		Married:      cells[colMarried],
		Age:          cells[colAge],
		Joined:       cells[colJoined],
		Followers:    atoi(cells[colFollowers]),
		Posts:        atoi(cells[colPosts]),
		ProfileLink:  cells[colProfileLink],
		ProfileImage: cells[colProfileImage],
		Intro:        cells[colIntro],
		Tags:         models.ParseTagSet(cells[colTags]),
	}
	return models.PersistedRow{
		RowIndex:      rowIndex,
		Record:        rec,
		FirstSeenAt:   written,
		LastUpdatedAt: written,
	}, true
}

func parseWriteTime(date, clock string) time.Time {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// columnLetter converts a 1-based column number to A1 notation.
func columnLetter(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}
