package services

import "onlinesync/internal/models"

// Reconcile decides, per incoming record, whether the store needs an insert,
// an update or nothing. It only reads its inputs.
//
// A nickname repeated within batch yields one decision, built from the last
// occurrence and placed where the nickname first appeared. If the snapshot
// itself repeats a nickname, the first row is authoritative.
func Reconcile(snapshot []models.PersistedRow, batch []models.ProfileRecord) []models.Decision {
	index := make(map[string]*models.PersistedRow, len(snapshot))
	for i := range snapshot {
		nick := snapshot[i].Record.Nickname
		if _, exists := index[nick]; !exists {
			index[nick] = &snapshot[i]
		}
	}

	order := make([]string, 0, len(batch))
	latest := make(map[string]models.ProfileRecord, len(batch))
	for _, rec := range batch {
		if _, seen := latest[rec.Nickname]; !seen {
			order = append(order, rec.Nickname)
		}
		latest[rec.Nickname] = rec
	}

	decisions := make([]models.Decision, 0, len(order))
	for _, nick := range order {
		rec := latest[nick]
		stored, found := index[nick]
		if !found {
			decisions = append(decisions, models.Insert(rec))
			continue
		}
		changed := models.Diff(stored.Record, rec)
		if len(changed) == 0 {
			decisions = append(decisions, models.Unchanged(rec))
			continue
		}
		decisions = append(decisions, models.Update(stored.RowIndex, rec, changed))
	}
	return decisions
}

// CountDecisions tallies decisions by action.
func CountDecisions(decisions []models.Decision) map[models.Action]int {
	counts := make(map[models.Action]int, 3)
	for _, d := range decisions {
		counts[d.Action]++
	}
	return counts
}
