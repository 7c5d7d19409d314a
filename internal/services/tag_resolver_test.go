package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"onlinesync/internal/models"
)

func sampleTagTable() *models.TagTable {
	return &models.TagTable{Categories: []models.TagCategory{
		{Name: "Following", Nicknames: []string{"alice", "bob"}},
		{Name: "Followers", Nicknames: []string{"carol"}},
		{Name: "Bookmark", Nicknames: []string{"alice", "alice"}},
	}}
}

func TestTagResolver_CategoryOrder(t *testing.T) {
	r := NewTagResolver(sampleTagTable(), false)

	tags := r.Resolve("alice")
	assert.Equal(t, models.TagSet{"Following", "Bookmark"}, tags)
	assert.Equal(t, "🔗 Following, 📖 Bookmark", tags.Render())
	assert.Equal(t, models.TagSet{"Followers"}, r.Resolve("carol"))
	assert.Equal(t, 3, r.Tagged())
}

func TestTagResolver_UnknownAndNilTable(t *testing.T) {
	assert.Empty(t, NewTagResolver(sampleTagTable(), false).Resolve("nobody"))
	assert.Empty(t, NewTagResolver(nil, false).Resolve("alice"))
	assert.Empty(t, NewTagResolver(&models.TagTable{}, true).Resolve(""))
}

func TestTagResolver_CaseSensitivity(t *testing.T) {
	strict := NewTagResolver(sampleTagTable(), false)
	assert.Empty(t, strict.Resolve("ALICE"))

	loose := NewTagResolver(sampleTagTable(), true)
	assert.Equal(t, models.TagSet{"Following", "Bookmark"}, loose.Resolve("ALICE"))
	assert.Equal(t, models.TagSet{"Following"}, loose.Resolve(" Bob "))
}

func TestTagResolver_ResolveReturnsCopy(t *testing.T) {
	r := NewTagResolver(sampleTagTable(), false)
	tags := r.Resolve("alice")
	tags[0] = "Pending"
	assert.Equal(t, models.TagSet{"Following", "Bookmark"}, r.Resolve("alice"))
}
