package aggregator

import (
	"sort"

	"github.com/heroual/MTSAV/internal/sla"
	"github.com/heroual/MTSAV/internal/types"
)

// topN bounds the motif, secteur and ZR rankings
const topN = 10

// Calculate reduces a ticket set to dashboard statistics. It is pure and
// deterministic: groups are created in first-seen order and every ranking
// uses a stable sort, so ties keep that order.
func Calculate(tickets []types.Ticket) types.Statistics {
	var tracker sla.Tracker

	months := newGroups()
	products := newGroups()
	motifs := newGroups()
	kinds := newGroups()
	secteurs := newGroups()
	zrs := newGroups()

	for _, t := range tickets {
		tracker.Add(t)

		m := months.get(t.MoisAnnee)
		m.total++
		if t.SLARespected {
			m.sla++
		}
		products.get(t.Produit).total++
		motifs.get(t.Motif).total++
		kinds.get(t.Type).total++

		s := secteurs.get(t.Secteur)
		s.total++
		s.delay += t.Delai

		z := zrs.get(t.ZR)
		z.total++
		z.delay += t.Delai
	}

	perMonth := make([]types.MonthCount, 0, len(months.order))
	for _, g := range months.order {
		perMonth = append(perMonth, types.MonthCount{Name: g.name, Total: g.total, SLA: g.sla})
	}
	sort.SliceStable(perMonth, func(i, j int) bool { return perMonth[i].Name < perMonth[j].Name })

	return types.Statistics{
		TotalTickets:      tracker.Total,
		RespectedSLA:      tracker.InSLA,
		ExceededSLA:       tracker.Total - tracker.InSLA,
		SLARate:           tracker.Rate(),
		AvgDelay:          tracker.AvgDelay(),
		ReopenedTickets:   tracker.Reopened,
		ReopenedRate:      tracker.ReopenRate(),
		TicketsPerMonth:   perMonth,
		TicketsPerProduct: products.counts(false, 0),
		TicketsPerSecteur: secteurs.delays(topN),
		TicketsPerZR:      zrs.delays(topN),
		TicketsPerMotif:   motifs.counts(true, topN),
		TicketsPerType:    kinds.counts(true, 0),
	}
}

type group struct {
	name  string
	total int
	sla   int
	delay float64
}

// groups keeps buckets in insertion order
type groups struct {
	index map[string]*group
	order []*group
}

func newGroups() *groups {
	return &groups{index: make(map[string]*group)}
}

func (g *groups) get(name string) *group {
	if b, ok := g.index[name]; ok {
		return b
	}
	b := &group{name: name}
	g.index[name] = b
	g.order = append(g.order, b)
	return b
}

// ranked returns the buckets by total descending, optionally capped
func (g *groups) ranked(limit int) []*group {
	out := make([]*group, len(g.order))
	copy(out, g.order)
	sort.SliceStable(out, func(i, j int) bool { return out[i].total > out[j].total })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (g *groups) counts(rank bool, limit int) []types.NameValue {
	buckets := g.order
	if rank {
		buckets = g.ranked(limit)
	}
	out := make([]types.NameValue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, types.NameValue{Name: b.name, Value: b.total})
	}
	return out
}

func (g *groups) delays(limit int) []types.GroupDelay {
	buckets := g.ranked(limit)
	out := make([]types.GroupDelay, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, types.GroupDelay{Name: b.name, Total: b.total, Delay: b.delay / float64(b.total)})
	}
	return out
}
