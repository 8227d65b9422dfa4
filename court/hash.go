package court

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// canonical is the stable, order-independent projection of a Court used for
// hashing. Field order here is fixed and deliberate — reordering it changes
// every hash, so stored dataHash values would stop matching. JudgePhotos is
// sorted by CanonicalJSON so upstream photo order does not affect the hash.
type canonical struct {
	CourtCode     string   `json:"court_code"`
	CourtNumber   string   `json:"court_number"`
	JudgeName     string   `json:"judge_name"`
	BenchType     string   `json:"bench_type"`
	JudgeCount    int      `json:"judge_count"`
	JudgePhotos   []string `json:"judge_photos"`
	CaseNumber    string   `json:"case_number"`
	CaseStatus    string   `json:"case_status"`
	CaseType      string   `json:"case_type"`
	SrNo          string   `json:"sr_no"`
	QueuePosition *int     `json:"queue_position"`
	StreamURL     string   `json:"stream_url"`
	HasStream     bool     `json:"has_stream"`
	IsLive        bool     `json:"is_live"`
	IsActive      bool     `json:"is_active"`
}

// CanonicalJSON returns the stable serialisation of a Court used for
// DataHash. Photos are sorted so that upstream reordering the same photo
// set does not register as a change.
func CanonicalJSON(c Court) ([]byte, error) {
	photos := append([]string(nil), c.JudgePhotos...)
	sort.Strings(photos)

	return json.Marshal(canonical{
		CourtCode:     c.CourtCode,
		CourtNumber:   c.CourtNumber,
		JudgeName:     c.JudgeName,
		BenchType:     string(c.BenchType),
		JudgeCount:    c.JudgeCount,
		JudgePhotos:   photos,
		CaseNumber:    c.CaseNumber,
		CaseStatus:    string(c.CaseStatus),
		CaseType:      string(c.CaseType),
		SrNo:          c.SrNo,
		QueuePosition: c.QueuePosition,
		StreamURL:     c.StreamURL,
		HasStream:     c.HasStream,
		IsLive:        c.IsLive,
		IsActive:      c.IsActive,
	})
}

// DataHash returns the SHA-256 hex digest of the Court's canonical JSON.
// Two Courts with equal DataHash are semantically equal for durable
// change-tracking purposes (the "canonical" layer of the dual hash in
// spec §4.C); two Courts with differing HTMLHash-level signatures may
// still share a DataHash when upstream markup churns without a semantic
// change.
func DataHash(c Court) (string, error) {
	b, err := CanonicalJSON(c)
	if err != nil {
		return "", fmt.Errorf("court: canonical json: %w", err)
	}
	h := sha256.Sum256(b)
	return fmt.Sprintf("%x", h), nil
}

// HashHTML returns the SHA-256 hex digest of raw HTML bytes — the cheap,
// in-memory layer of the dual hash used by DeltaEngine to skip unchanged
// cards without touching the durable store.
func HashHTML(html []byte) string {
	h := sha256.Sum256(html)
	return fmt.Sprintf("%x", h)
}
