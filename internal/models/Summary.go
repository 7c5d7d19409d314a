package models

import (
	"errors"
	"time"
)

// SinkSummary is the outcome of one sink within a cycle.
type SinkSummary struct {
	Sink      string `json:"sink"`
	New       int    `json:"new"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// Summary is the per-cycle report. Failed covers both scrape and write failures.
type Summary struct {
	CycleID    string        `json:"cycleId"`
	StartedAt  time.Time     `json:"startedAt"`
	UsersFound int           `json:"usersFound"`
	Scraped    int           `json:"scraped"`
	New        int           `json:"new"`
	Updated    int           `json:"updated"`
	Unchanged  int           `json:"unchanged"`
	Failed     int           `json:"failed"`
	Elapsed    time.Duration `json:"-"`
	Sinks      []SinkSummary `json:"sinks"`
	Err        error         `json:"-"`
}

func (s *Summary) ElapsedSeconds() float64 {
	return s.Elapsed.Seconds()
}

// AddSink folds a sink outcome into the totals.
func (s *Summary) AddSink(name string, res ApplyResult) {
	s.New += res.Inserted
	s.Updated += res.Updated
	s.Unchanged += res.Unchanged
	s.Failed += res.Failed
	s.Sinks = append(s.Sinks, SinkSummary{
		Sink:      name,
		New:       res.Inserted,
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
		Failed:    res.Failed,
	})
}

// FailSink records a sink that could not be loaded this cycle.
func (s *Summary) FailSink(name string, err error) {
	s.Sinks = append(s.Sinks, SinkSummary{Sink: name, Error: err.Error()})
	s.Err = errors.Join(s.Err, err)
}

// Report is the JSON shape of a summary.
type Report struct {
	Summary
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Error          string  `json:"error,omitempty"`
}

func (s Summary) Report() Report {
	r := Report{Summary: s, ElapsedSeconds: s.Elapsed.Seconds()}
	if s.Err != nil {
		r.Error = s.Err.Error()
	}
	return r
}
