package trade

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateRange selects orders by order date
type DateRange string

const (
	DateRangeAll    DateRange = ""
	DateRangeToday  DateRange = "today"
	DateRange7Days  DateRange = "7d"
	DateRange30Days DateRange = "30d"
	DateRange90Days DateRange = "90d"
	DateRangeCustom DateRange = "custom"
)

// IsValid checks if the range is supported
func (r DateRange) IsValid() bool {
	switch r {
	case DateRangeAll, DateRangeToday, DateRange7Days, DateRange30Days, DateRange90Days, DateRangeCustom:
		return true
	}
	return false
}

// SortKey is a list sort column
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByOrderNumber SortKey = "order_number"
	SortByTotal       SortKey = "total"
)

// IsValid checks if the key is supported
func (k SortKey) IsValid() bool {
	switch k {
	case SortByDate, SortByOrderNumber, SortByTotal:
		return true
	}
	return false
}

// PurchaseOrderQuery filters and sorts an in-memory set of orders.
// Evaluating a query never mutates its input and gives the same result for the same input and clock.
type PurchaseOrderQuery struct {
	Statuses  []PurchaseOrderStatus
	Search    string
	DateRange DateRange
	From      *time.Time // custom range start, inclusive by day
	To        *time.Time // custom range end, inclusive by day
	SortBy    SortKey
	SortDesc  bool
}

// Apply returns the matching orders in sort order. now anchors relative date ranges.
func (q PurchaseOrderQuery) Apply(orders []PurchaseOrder, now time.Time) []PurchaseOrder {
	from, to := q.window(now)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]PurchaseOrder, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		if !q.matchesStatus(o.Status) {
			continue
		}
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		if from != nil && o.OrderDate.Before(*from) {
			continue
		}
		if to != nil && !o.OrderDate.Before(*to) {
			continue
		}
		result = append(result, *o)
	}

	q.sort(result)
	return result
}

func (q PurchaseOrderQuery) matchesStatus(status PurchaseOrderStatus) bool {
	if len(q.Statuses) == 0 {
		return true
	}
	for _, s := range q.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func matchesSearch(o *PurchaseOrder, needle string) bool {
	return strings.Contains(strings.ToLower(o.OrderNumber), needle) ||
		strings.Contains(strings.ToLower(o.SupplierName), needle) ||
		strings.Contains(strings.ToLower(o.Notes), needle)
}

// window returns the half-open [from, to) interval for the date range, nil meaning unbounded
func (q PurchaseOrderQuery) window(now time.Time) (*time.Time, *time.Time) {
	startOfToday := truncateDay(now)
	endOfToday := startOfToday.AddDate(0, 0, 1)

	relative := func(days int) (*time.Time, *time.Time) {
		from := startOfToday.AddDate(0, 0, -days)
		return &from, &endOfToday
	}

	switch q.DateRange {
	case DateRangeToday:
		return &startOfToday, &endOfToday
	case DateRange7Days:
		return relative(7)
	case DateRange30Days:
		return relative(30)
	case DateRange90Days:
		return relative(90)
	case DateRangeCustom:
		var from, to *time.Time
		if q.From != nil {
			f := truncateDay(*q.From)
			from = &f
		}
		if q.To != nil {
			t := truncateDay(*q.To).AddDate(0, 0, 1)
			to = &t
		}
		return from, to
	}
	return nil, nil
}

func (q PurchaseOrderQuery) sort(orders []PurchaseOrder) {
	key := q.SortBy
	if !key.IsValid() {
		key = SortByDate
	}

	less := func(a, b *PurchaseOrder) int {
		switch key {
		case SortByOrderNumber:
			return strings.Compare(a.OrderNumber, b.OrderNumber)
		case SortByTotal:
			return a.TotalAmount.Cmp(b.TotalAmount)
		default:
			return a.OrderDate.Compare(b.OrderDate)
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		c := less(&orders[i], &orders[j])
		if c == 0 {
			// Order numbers are unique, so ties on the sort key still resolve deterministically
			c = strings.Compare(orders[i].OrderNumber, orders[j].OrderNumber)
		}
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

// StatusSummary aggregates a set of orders by status
type StatusSummary struct {
	Counts    map[PurchaseOrderStatus]int
	Total     int
	OpenValue decimal.Decimal // total amount of sent and partially received orders
}

// SummarizeByStatus counts orders per status. Every status appears in Counts, possibly with 0.
func SummarizeByStatus(orders []PurchaseOrder) StatusSummary {
	summary := StatusSummary{
		Counts:    make(map[PurchaseOrderStatus]int, len(AllPurchaseOrderStatuses())),
		OpenValue: decimal.Zero,
	}
	for _, s := range AllPurchaseOrderStatuses() {
		summary.Counts[s] = 0
	}
	for i := range orders {
		summary.Counts[orders[i].Status]++
		summary.Total++
		if orders[i].Status.CanReceive() {
			summary.OpenValue = summary.OpenValue.Add(orders[i].TotalAmount)
		}
	}
	return summary
}
