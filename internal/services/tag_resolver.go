package services

import (
	"strings"

	"onlinesync/internal/models"
)

// TagResolver answers category membership from one tag table snapshot.
// It never fails: unknown nicknames and a missing table both yield an empty set.
type TagResolver struct {
	caseInsensitive bool
	index           map[string]models.TagSet
}

func NewTagResolver(table *models.TagTable, caseInsensitive bool) *TagResolver {
	r := &TagResolver{
		caseInsensitive: caseInsensitive,
		index:           make(map[string]models.TagSet),
	}
	if table == nil {
		return r
	}
	for _, category := range table.Categories {
		seen := make(map[string]struct{}, len(category.Nicknames))
		for _, nick := range category.Nicknames {
			key := r.key(nick)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			r.index[key] = append(r.index[key], category.Name)
		}
	}
	return r
}

func (r *TagResolver) key(nickname string) string {
	nickname = strings.TrimSpace(nickname)
	if r.caseInsensitive {
		return strings.ToLower(nickname)
	}
	return nickname
}

// Resolve returns the categories of nickname in table column order.
func (r *TagResolver) Resolve(nickname string) models.TagSet {
	return r.index[r.key(nickname)].Clone()
}

// Tagged reports how many distinct nicknames carry at least one tag.
func (r *TagResolver) Tagged() int {
	return len(r.index)
}
