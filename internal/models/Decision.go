package models

import (
	"fmt"
	"time"
)

// PersistedRow is a record as it currently sits in a store. RowIndex is owned
// by the store and only meaningful to the sink that produced it.
type PersistedRow struct {
	RowIndex      int
	Record        ProfileRecord
	FirstSeenAt   time.Time
	LastUpdatedAt time.Time
}

type Action int

const (
	ActionInsert Action = iota
	ActionUpdate
	ActionUnchanged
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is the reconciliation verdict for one incoming record.
// RowIndex and Changed are only set for updates.
type Decision struct {
	Action   Action
	Record   ProfileRecord
	RowIndex int
	Changed  []Field
}

func Insert(r ProfileRecord) Decision {
	return Decision{Action: ActionInsert, Record: r}
}

func Update(rowIndex int, r ProfileRecord, changed []Field) Decision {
	return Decision{Action: ActionUpdate, Record: r, RowIndex: rowIndex, Changed: changed}
}

func Unchanged(r ProfileRecord) Decision {
	return Decision{Action: ActionUnchanged, Record: r}
}

// RecordError ties a per-record failure to its nickname.
type RecordError struct {
	Nickname string
	Err      error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s: %s", e.Nickname, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// ApplyResult counts what a sink did with a batch of decisions.
type ApplyResult struct {
	Inserted  int
	Updated   int
	Unchanged int
	Failed    int
	Errors    []RecordError
}

func (r *ApplyResult) Fail(nickname string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, RecordError{Nickname: nickname, Err: err})
}
