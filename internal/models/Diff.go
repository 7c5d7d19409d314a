package models

// Field names a tracked profile attribute.
type Field string

const (
	FieldCity         Field = "city"
	FieldGender       Field = "gender"
	FieldMarried      Field = "married"
	FieldAge          Field = "age"
	FieldJoined       Field = "joined"
	FieldFollowers    Field = "followers"
	FieldPosts        Field = "posts"
	FieldProfileImage Field = "profileImage"
	FieldIntro        Field = "intro"
	FieldTags         Field = "tags"
)

// TrackedFields lists the fields compared for change detection, in report order.
// ScrapedAt and ProfileLink are deliberately absent.
var TrackedFields = []Field{
	FieldCity, FieldGender, FieldMarried, FieldAge, FieldJoined,
	FieldFollowers, FieldPosts, FieldProfileImage, FieldIntro, FieldTags,
}

// Diff returns the tracked fields whose values differ between the stored and
// incoming snapshot. An empty result means the two are equal for sync purposes.
func Diff(stored, incoming ProfileRecord) []Field {
	var changed []Field
	check := func(f Field, differs bool) {
		if differs {
			changed = append(changed, f)
		}
	}
	check(FieldCity, stored.City != incoming.City)
	check(FieldGender, stored.Gender != incoming.Gender)
	check(FieldMarried, stored.Married != incoming.Married)
	check(FieldAge, stored.Age != incoming.Age)
	check(FieldJoined, stored.Joined != incoming.Joined)
	check(FieldFollowers, stored.Followers != incoming.Followers)
	check(FieldPosts, stored.Posts != incoming.Posts)
	check(FieldProfileImage, stored.ProfileImage != incoming.ProfileImage)
	check(FieldIntro, stored.Intro != incoming.Intro)
	check(FieldTags, !stored.Tags.Equal(incoming.Tags))
	return changed
}
