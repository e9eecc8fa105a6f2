// Package stats derives shopping and waste statistics from the store state.
// Everything is recomputed on each call.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dukerupert/compras/internal/model"
)

const (
	trendMonths        = 6
	topWastedLimit     = 3
	highWasteThreshold = 10
)

type Report struct {
	CompletedItems  int     `json:"completedItems"`
	TotalItems      int     `json:"totalItems"`
	WasteCount      int     `json:"wasteCount"`
	TotalWasteValue float64 `json:"totalWasteValue"`
	Efficiency      float64 `json:"efficiency"`

	// WastePercentage is waste reports over all archived items, rounded.
	WastePercentage int      `json:"wastePercentage"`
	HighWaste       bool     `json:"highWaste"`
	TopWastedItems  []string `json:"topWastedItems"`

	ByCategory   []CategoryStat `json:"byCategory"`
	ByReason     []ReasonStat   `json:"byReason"`
	MonthlyTrend []MonthStat    `json:"monthlyTrend"`
}

type CategoryStat struct {
	Category        model.Category `json:"category"`
	Purchased       int            `json:"purchased"`
	Wasted          int            `json:"wasted"`
	Efficiency      float64        `json:"efficiency"`
	EfficiencyLabel string         `json:"efficiencyLabel"`
}

type ReasonStat struct {
	Reason model.WasteReason `json:"reason"`
	Count  int               `json:"count"`
	Value  float64           `json:"value"`
}

type MonthStat struct {
	Month      string  `json:"month"` // YYYY-MM
	Purchased  int     `json:"purchased"`
	Wasted     int     `json:"wasted"`
	Efficiency float64 `json:"efficiency"`
}

// Compute derives the full report. Months are taken in loc; nil means UTC.
func Compute(st model.State, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}

	r := Report{
		CompletedItems:  CompletedItems(st),
		TotalItems:      TotalItems(st),
		WasteCount:      len(st.WasteReports),
		TotalWasteValue: TotalWasteValue(st),
		ByCategory:      ByCategory(st),
		ByReason:        ByReason(st),
		MonthlyTrend:    MonthlyTrend(st, loc),
		TopWastedItems:  TopWastedItems(st, topWastedLimit),
	}
	r.Efficiency = Efficiency(r.CompletedItems, r.WasteCount)
	r.WastePercentage = WastePercentage(r.WasteCount, r.TotalItems)
	r.HighWaste = r.WastePercentage > highWasteThreshold
	return r
}

// CompletedItems counts completed items across the history. The current list
// is not counted.
func CompletedItems(st model.State) int {
	n := 0
	for _, l := range st.ShoppingHistory {
		for _, item := range l.Items {
			if item.Completed {
				n++
			}
		}
	}
	return n
}

func TotalItems(st model.State) int {
	n := 0
	for _, l := range st.ShoppingHistory {
		n += len(l.Items)
	}
	return n
}

func TotalWasteValue(st model.State) float64 {
	total := 0.0
	for _, r := range st.WasteReports {
		total += r.Value()
	}
	return total
}

// Efficiency relates purchases to waste as a percentage. It is floored at
// zero but not capped.
func Efficiency(purchased, wasted int) float64 {
	if purchased <= 0 {
		return 0
	}
	return math.Max(0, float64(purchased-wasted)/float64(purchased)*100)
}

func WastePercentage(wasted, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(wasted) / float64(total) * 100))
}

// ByCategory returns one row per category in display order.
func ByCategory(st model.State) []CategoryStat {
	purchased := make(map[model.Category]int)
	for _, l := range st.ShoppingHistory {
		for _, item := range l.Items {
			if item.Completed {
				purchased[item.Category]++
			}
		}
	}
	wasted := make(map[model.Category]int)
	for _, r := range st.WasteReports {
		wasted[r.Category]++
	}

	out := make([]CategoryStat, 0, len(model.Categories))
	for _, c := range model.Categories {
		p, w := purchased[c], wasted[c]
		eff := 0.0
		if p > 0 {
			eff = math.Round(float64(p-w)/float64(p)*100*10) / 10
		}
		out = append(out, CategoryStat{
			Category:        c,
			Purchased:       p,
			Wasted:          w,
			Efficiency:      eff,
			EfficiencyLabel: fmt.Sprintf("%.1f", eff),
		})
	}
	return out
}

// ByReason returns reasons in display order, skipping those with no reports.
func ByReason(st model.State) []ReasonStat {
	counts := make(map[model.WasteReason]int)
	values := make(map[model.WasteReason]float64)
	for _, r := range st.WasteReports {
		counts[r.Reason]++
		values[r.Reason] += r.Value()
	}

	out := []ReasonStat{}
	for _, reason := range model.WasteReasons {
		if counts[reason] == 0 {
			continue
		}
		out = append(out, ReasonStat{Reason: reason, Count: counts[reason], Value: values[reason]})
	}
	return out
}

// MonthlyTrend groups archived purchases by the month each list was completed
// and waste by report month, oldest first, keeping the latest six months.
func MonthlyTrend(st model.State, loc *time.Location) []MonthStat {
	if loc == nil {
		loc = time.UTC
	}

	months := make(map[string]*MonthStat)
	month := func(t time.Time) *MonthStat {
		key := t.In(loc).Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthStat{Month: key}
			months[key] = m
		}
		return m
	}

	for _, l := range st.ShoppingHistory {
		if l.CompletedAt == nil {
			continue
		}
		m := month(*l.CompletedAt)
		for _, item := range l.Items {
			if item.Completed {
				m.Purchased++
			}
		}
	}
	for _, r := range st.WasteReports {
		month(r.Date).Wasted++
	}

	out := make([]MonthStat, 0, len(months))
	for _, m := range months {
		m.Efficiency = Efficiency(m.Purchased, m.Wasted)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > trendMonths {
		out = out[len(out)-trendMonths:]
	}
	return out
}

// TopWastedItems returns up to n item names ordered by report count. Ties keep
// the order in which names first appear in the newest-first report sequence.
func TopWastedItems(st model.State, n int) []string {
	counts := make(map[string]int)
	var names []string
	for _, r := range st.WasteReports {
		if _, seen := counts[r.ItemName]; !seen {
			names = append(names, r.ItemName)
		}
		counts[r.ItemName]++
	}

	sort.SliceStable(names, func(i, j int) bool { return counts[names[i]] > counts[names[j]] })
	if len(names) > n {
		names = names[:n]
	}
	if names == nil {
		names = []string{}
	}
	return names
}
