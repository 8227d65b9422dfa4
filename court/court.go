// Package court defines the structured types courtwatch emits and stores.
// These are the public API contract: consumers of the core (the REST read
// API, the WebSocket broadcaster, the push-notification gateway) import
// this package rather than parsing loose JSON themselves.
package court

import "time"

// BenchType distinguishes a single-judge court from a division bench.
type BenchType string

const (
	SingleBench   BenchType = "SingleBench"
	DivisionBench BenchType = "DivisionBench"
)

// CaseStatus is the coarse state of the case currently before a court.
type CaseStatus string

const (
	InSession  CaseStatus = "IN_SESSION"
	Recess     CaseStatus = "RECESS"
	SittingOver CaseStatus = "SITTING_OVER"
)

// CaseType mirrors CaseStatus but using the lowercase vocabulary the
// upstream board's own JSON rows use; kept distinct because the two
// enumerations are independently derived from caseinfo (see Footer).
type CaseType string

const (
	TypeActive     CaseType = "active"
	TypeRecess     CaseType = "recess"
	TypeSittingOver CaseType = "sitting_over"
)

// Court is a transient, per-tick snapshot of a single courtroom's board
// entry. It is regenerated fully on every tick; nothing about it persists
// across ticks except through CourtSnapshot/CaseHistory/CaseStatistics.
type Court struct {
	CourtCode   string `json:"courtCode"`
	CourtNumber string `json:"courtNumber"`

	JudgeName   string    `json:"judgeName"`
	BenchType   BenchType `json:"benchType"`
	JudgeCount  int       `json:"judgeCount"`
	JudgePhotos []string  `json:"judgePhotos"`

	CaseNumber string     `json:"caseNumber,omitempty"` // empty means none
	CaseStatus CaseStatus `json:"caseStatus,omitempty"` // empty means none
	CaseType   CaseType   `json:"caseType,omitempty"`   // empty means none

	SrNo          string `json:"srNo,omitempty"`
	QueuePosition *int   `json:"queuePosition,omitempty"` // nil when srNo carries no integer

	StreamURL string `json:"streamUrl,omitempty"`
	HasStream bool   `json:"hasStream"`
	IsLive    bool   `json:"isLive"`
	IsActive  bool   `json:"isActive"`

	ScrapedAt time.Time `json:"scrapedAt"`
}

// HasCaseNumber reports whether this court currently has a case before it.
func (c Court) HasCaseNumber() bool { return c.CaseNumber != "" }
