package models

import "strings"

// TagCategory is one column of the tags side table.
type TagCategory struct {
	Name      string   `json:"name"`
	Nicknames []string `json:"nicknames"`
}

// TagTable is a snapshot of the tags side table. Category order is the column order.
type TagTable struct {
	Categories []TagCategory `json:"categories"`
}

// NewTagTableFromRows builds a table from raw cells where the first row holds
// category names and each following row holds one nickname per column.
// Blank headers and blank cells are skipped. Header names go through
// CategoryName.
func NewTagTableFromRows(rows [][]string) *TagTable {
	table := &TagTable{}
	if len(rows) == 0 {
		return table
	}
	for col, header := range rows[0] {
		name := CategoryName(header)
		if name == "" {
			continue
		}
		category := TagCategory{Name: name}
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			if nick := strings.TrimSpace(row[col]); nick != "" {
				category.Nicknames = append(category.Nicknames, nick)
			}
		}
		table.Categories = append(table.Categories, category)
	}
	return table
}

var tagIcons = map[string]string{
	"Following": "🔗",
	"Followers": "⭐",
	"Bookmark":  "📖",
	"Pending":   "⏳",
}

const defaultTagIcon = "🔸"

// CategoryName normalizes a tags column header. Commas separate labels in the
// TAGS column, so they are dropped and the remaining words are rejoined with
// single spaces: "Close, friends" becomes "Close friends".
func CategoryName(header string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(header, ",", " ")), " ")
}

// TagLabel renders a category name the way it is shown in the TAGS column.
func TagLabel(category string) string {
	if icon, ok := tagIcons[category]; ok {
		return icon + " " + category
	}
	return defaultTagIcon + " " + category
}

// TagSet is an ordered set of category names.
type TagSet []string

func (t TagSet) Clone() TagSet {
	if len(t) == 0 {
		return nil
	}
	out := make(TagSet, len(t))
	copy(out, t)
	return out
}

func (t TagSet) Equal(other TagSet) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Render joins the labels, e.g. "🔗 Following, 📖 Bookmark".
func (t TagSet) Render() string {
	labels := make([]string, len(t))
	for i, c := range t {
		labels[i] = TagLabel(c)
	}
	return strings.Join(labels, ", ")
}

// ParseTagSet is the inverse of Render. Parts without a known icon prefix are
// kept as category names verbatim.
func ParseTagSet(cell string) TagSet {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	var out TagSet
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, stripTagIcon(part))
	}
	return out
}

func stripTagIcon(label string) string {
	for category, icon := range tagIcons {
		if label == icon+" "+category {
			return category
		}
	}
	if rest, ok := strings.CutPrefix(label, defaultTagIcon+" "); ok {
		return rest
	}
	return label
}
