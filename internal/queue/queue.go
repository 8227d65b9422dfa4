// Package queue groups a tick's visible courts by courtNumber into ordered
// queues: the case currently in session, if any, and everything waiting
// behind it sorted by its position in the cause list.
package queue

import (
	"sort"

	"github.com/hazyhaar/courtwatch/court"
)

// Group is one court number's queue view.
type Group struct {
	CourtNumber string
	Current     *court.Court
	Pending     []court.Court
}

// Build partitions courts by CourtNumber and orders each group's pending
// cases by QueuePosition, dropping any without a court number assigned.
// Courts in IN_SESSION or SITTING_OVER never belong to the pending queue:
// the former is the current case, the latter has left the board.
func Build(courts []court.Court) []Group {
	byNumber := make(map[string][]court.Court)
	var order []string
	for _, c := range courts {
		if c.CourtNumber == "" {
			continue
		}
		if _, ok := byNumber[c.CourtNumber]; !ok {
			order = append(order, c.CourtNumber)
		}
		byNumber[c.CourtNumber] = append(byNumber[c.CourtNumber], c)
	}

	groups := make([]Group, 0, len(order))
	for _, number := range order {
		groups = append(groups, buildGroup(number, byNumber[number]))
	}
	return groups
}

func buildGroup(number string, courts []court.Court) Group {
	g := Group{CourtNumber: number}
	for i := range courts {
		c := courts[i]
		switch {
		case c.CaseStatus == court.InSession:
			if g.Current == nil {
				g.Current = &c
			}
		case c.CaseStatus == court.SittingOver:
			// left the board: neither current nor pending
		case c.QueuePosition != nil:
			g.Pending = append(g.Pending, c)
		}
	}
	sort.SliceStable(g.Pending, func(i, j int) bool {
		return *g.Pending[i].QueuePosition < *g.Pending[j].QueuePosition
	})
	return g
}
