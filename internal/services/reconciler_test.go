package services

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlinesync/internal/models"
)

var cycleTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func record(nick string, mutate ...func(r *models.ProfileRecord)) models.ProfileRecord {
	r := models.ProfileRecord{
		Nickname:  nick,
		ScrapedAt: cycleTime,
		City:      "Karachi",
		Followers: 10,
	}
	for _, m := range mutate {
		m(&r)
	}
	return r
}

func stored(rowIndex int, r models.ProfileRecord) models.PersistedRow {
	return models.PersistedRow{
		RowIndex:      rowIndex,
		Record:        r,
		FirstSeenAt:   cycleTime.Add(-time.Hour),
		LastUpdatedAt: cycleTime.Add(-time.Hour),
	}
}

func TestReconcile_EmptyStoreInserts(t *testing.T) {
	decisions := Reconcile(nil, []models.ProfileRecord{record("alice")})

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionInsert, decisions[0].Action)
	assert.Equal(t, "alice", decisions[0].Record.Nickname)
}

func TestReconcile_ChangedFollowers(t *testing.T) {
	snapshot := []models.PersistedRow{stored(4, record("alice"))}
	batch := []models.ProfileRecord{record("alice", func(r *models.ProfileRecord) { r.Followers = 15 })}

	decisions := Reconcile(snapshot, batch)

	want := []models.Decision{models.Update(4, batch[0], []models.Field{models.FieldFollowers})}
	if diff := cmp.Diff(want, decisions); diff != "" {
		t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_IdenticalIsUnchanged(t *testing.T) {
	bob := record("bob", func(r *models.ProfileRecord) { r.City = "Lahore" })
	decisions := Reconcile([]models.PersistedRow{stored(0, bob)}, []models.ProfileRecord{bob})

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionUnchanged, decisions[0].Action)
	assert.Empty(t, decisions[0].Changed)
}

func TestReconcile_DuplicateInBatchLastWins(t *testing.T) {
	batch := []models.ProfileRecord{
		record("carol", func(r *models.ProfileRecord) { r.Followers = 1 }),
		record("dave"),
		record("carol", func(r *models.ProfileRecord) { r.Followers = 2 }),
	}

	decisions := Reconcile(nil, batch)

	require.Len(t, decisions, 2)
	assert.Equal(t, "carol", decisions[0].Record.Nickname)
	assert.Equal(t, 2, decisions[0].Record.Followers)
	assert.Equal(t, "dave", decisions[1].Record.Nickname)
}

func TestReconcile_DuplicateInSnapshotFirstRowWins(t *testing.T) {
	snapshot := []models.PersistedRow{
		stored(0, record("erin")),
		stored(1, record("erin", func(r *models.ProfileRecord) { r.City = "Multan" })),
	}

	decisions := Reconcile(snapshot, []models.ProfileRecord{record("erin")})

	require.Len(t, decisions, 1)
	assert.Equal(t, models.ActionUnchanged, decisions[0].Action)
}

func TestReconcile_Idempotent(t *testing.T) {
	batch := []models.ProfileRecord{
		record("alice"),
		record("bob", func(r *models.ProfileRecord) { r.Tags = models.TagSet{"Following"} }),
	}

	first := Reconcile(nil, batch)
	snapshot := make([]models.PersistedRow, 0, len(first))
	for i, d := range first {
		require.Equal(t, models.ActionInsert, d.Action)
		snapshot = append(snapshot, stored(i, d.Record))
	}

	second := Reconcile(snapshot, batch)
	counts := CountDecisions(second)
	assert.Equal(t, 0, counts[models.ActionUpdate])
	assert.Equal(t, 0, counts[models.ActionInsert])
	assert.Equal(t, 2, counts[models.ActionUnchanged])
}

func TestReconcile_InsertOncePerNickname(t *testing.T) {
	snapshot := []models.PersistedRow{stored(0, record("alice"))}
	batch := []models.ProfileRecord{record("bob"), record("alice"), record("carol"), record("bob")}

	inserts := map[string]int{}
	for _, d := range Reconcile(snapshot, batch) {
		if d.Action == models.ActionInsert {
			inserts[d.Record.Nickname]++
		}
	}
	assert.Equal(t, map[string]int{"bob": 1, "carol": 1}, inserts)
}

func TestReconcile_EveryTrackedFieldTriggersUpdate(t *testing.T) {
	mutations := map[models.Field]func(r *models.ProfileRecord){
		models.FieldCity:         func(r *models.ProfileRecord) { r.City = "Quetta" },
		models.FieldGender:       func(r *models.ProfileRecord) { r.Gender = "Male" },
		models.FieldMarried:      func(r *models.ProfileRecord) { r.Married = "Yes" },
		models.FieldAge:          func(r *models.ProfileRecord) { r.Age = "30" },
		models.FieldJoined:       func(r *models.ProfileRecord) { r.Joined = "01-Feb-25" },
		models.FieldFollowers:    func(r *models.ProfileRecord) { r.Followers = 11 },
		models.FieldPosts:        func(r *models.ProfileRecord) { r.Posts = 1 },
		models.FieldProfileImage: func(r *models.ProfileRecord) { r.ProfileImage = "https://img.test/x.jpg" },
		models.FieldIntro:        func(r *models.ProfileRecord) { r.Intro = "salam" },
		models.FieldTags:         func(r *models.ProfileRecord) { r.Tags = models.TagSet{"Pending"} },
	}

	for field, mutate := range mutations {
		t.Run(string(field), func(t *testing.T) {
			decisions := Reconcile(
				[]models.PersistedRow{stored(2, record("alice"))},
				[]models.ProfileRecord{record("alice", mutate)},
			)
			require.Len(t, decisions, 1)
			assert.Equal(t, models.ActionUpdate, decisions[0].Action)
			assert.Equal(t, 2, decisions[0].RowIndex)
			assert.Contains(t, decisions[0].Changed, field)
		})
	}
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	snapshot := []models.PersistedRow{stored(0, record("alice"))}
	batch := []models.ProfileRecord{record("alice", func(r *models.ProfileRecord) { r.Posts = 9 })}
	snapshotCopy := append([]models.PersistedRow(nil), snapshot...)
	batchCopy := append([]models.ProfileRecord(nil), batch...)

	Reconcile(snapshot, batch)

	assert.Equal(t, snapshotCopy, snapshot)
	assert.Equal(t, batchCopy, batch)
}
