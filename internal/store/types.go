package store

import "github.com/hazyhaar/courtwatch/court"

// CurrentCourtRow is the durable per-courtCode view DeltaEngine maintains
// (spec §3's CourtSnapshot entry, renamed here to avoid colliding with the
// periodic full-board CourtSnapshot collection).
type CurrentCourtRow struct {
	CourtCode    string
	Data         court.Court
	DataHash     string
	CheckedAt    int64 // epoch millis
	ChangedAt    int64
	MissingCount int
	IsVisible    bool
}

// Watchlist tracks one device's subscription to one case number.
type Watchlist struct {
	ID                  string
	DeviceID            string
	CaseNumber          string
	Settings            NotificationSettings
	LastSeenStatus      string
	LastSeenCourt       string
	LastSeenPosition    *int
	MissCount           int
	LastNotificationAt  *int64
	Active              bool
	CreatedAt           int64
	UpdatedAt           int64
}

// NotificationSettings is the subset of alert types a watchlist wants.
type NotificationSettings struct {
	EarlyWarning bool `json:"earlyWarning"`
	Approaching  bool `json:"approaching"`
	InSession    bool `json:"inSession"`
	Completed    bool `json:"completed"`
}

// CaseHistoryEntry is one append-only observation of a case's state.
type CaseHistoryEntry struct {
	ID          string
	CaseNumber  string
	Status      string
	Position    *int
	CourtNumber string
	ScrapedAt   int64
}

// CaseStatistics is the running aggregate for one case number.
type CaseStatistics struct {
	CaseNumber       string
	FirstSeen        int64
	LastSeen         int64
	TotalAppearances int
	Courts           []string
	Judges           []string
	StatusHistory    []StatusHistoryEntry
	WatchCount       int
}

// StatusHistoryEntry is one bounded-tail entry of CaseStatistics.StatusHistory.
type StatusHistoryEntry struct {
	Status      string `json:"status"`
	Timestamp   int64  `json:"timestamp"`
	CourtNumber string `json:"courtNumber"`
	QueuePosition *int `json:"queuePosition,omitempty"`
}

// MaxStatusHistory bounds CaseStatistics.StatusHistory (spec §3).
const MaxStatusHistory = 100

// NotificationLogEntry records one push attempt, successful or not.
type NotificationLogEntry struct {
	ID               string
	DeviceID         string
	CaseNumber       string
	NotificationType string
	CourtNumber      string
	Success          bool
	ErrorMessage     string
	SentAt           int64
}

// Device is read-only to the core (spec §3); only a getter is exposed.
type Device struct {
	DeviceID  string
	PushToken string
	Active    bool
}

// CourtSnapshot is a periodic full-board capture (spec §4.G's 5-minute job).
type CourtSnapshot struct {
	ID      string
	Courts  []court.Court
	TakenAt int64
}
