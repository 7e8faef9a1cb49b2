package mockgateway

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/peekdata/datagateway-go/pkg/models"
)

// ErrInvalidQuery is returned for requests the stub cannot answer
var ErrInvalidQuery = errors.New("invalid query")

// DefaultDateKey is the date column used by date ranges without a key
const DefaultDateKey = "closingdate"

type columnKind int

const (
	dimensionColumn columnKind = iota
	metricColumn
	dateColumn
)

// Loan is one row of the canned Mortgage-Lending dataset
type Loan struct {
	PropertyCityID string
	Currency       string
	OfficerID      string
	ClosingDate    time.Time
	LoanAmount     float64
	TotalIncome    float64
	WAIntRate      float64
}

var columns = map[string]columnKind{
	"propertyCityID": dimensionColumn,
	"currency":       dimensionColumn,
	"officerid":      dimensionColumn,
	"closingdate":    dateColumn,
	"loanamount":     metricColumn,
	"totalincome":    metricColumn,
	"waintrate":      metricColumn,
}

func (l Loan) value(column string) any {
	switch column {
	case "propertyCityID":
		return l.PropertyCityID
	case "currency":
		return l.Currency
	case "officerid":
		return l.OfficerID
	case "closingdate":
		return l.ClosingDate
	case "loanamount":
		return l.LoanAmount
	case "totalincome":
		return l.TotalIncome
	case "waintrate":
		return l.WAIntRate
	}
	return nil
}

// Dataset answers queries against a fixed set of loans
type Dataset struct {
	loans []Loan
}

// NewDataset creates a dataset over loans
func NewDataset(loans []Loan) *Dataset {
	return &Dataset{loans: slices.Clone(loans)}
}

// DefaultDataset returns the canned Mortgage-Lending loans
func DefaultDataset() *Dataset {
	day := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	return NewDataset([]Loan{
		{"1001", "EUR", "1", day("2016-11-03"), 120000, 42000, 2.15},
		{"1001", "EUR", "2", day("2017-01-16"), 95000, 38500, 2.05},
		{"1001", "USD", "3", day("2017-02-21"), 210000, 81000, 3.40},
		{"1002", "EUR", "1", day("2017-03-09"), 150000, 56000, 1.95},
		{"1002", "EUR", "4", day("2017-04-27"), 87500, 31000, 2.30},
		{"1002", "GBP", "2", day("2017-05-12"), 132000, 47500, 2.80},
		{"1003", "EUR", "3", day("2017-06-30"), 64000, 29000, 2.45},
		{"1003", "USD", "1", day("2017-08-18"), 178000, 69000, 3.10},
		{"1003", "EUR", "2", day("2017-09-05"), 101000, 40500, 2.10},
		{"1004", "EUR", "5", day("2017-10-23"), 240000, 98000, 1.85},
		{"1004", "USD", "3", day("2017-12-31"), 99000, 36000, 3.25},
		{"1004", "EUR", "1", day("2018-01-15"), 143000, 52000, 2.00},
		{"1005", "GBP", "4", day("2018-02-02"), 188000, 73500, 2.95},
		{"1005", "EUR", "2", day("2018-03-19"), 76000, 30500, 2.25},
	})
}

// query is a request checked against the dataset columns
type query struct {
	scope      string
	graph      string
	dimensions []string
	metrics    []string
	singleKeys []models.SingleKeyFilter
	dateRanges []models.DateRange
	dimSorts   []models.DimensionSortKey
	metricSort *models.MetricSortKey
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

// compile validates req and resolves defaults
func compile(req *models.Request) (*query, error) {
	if req.ScopeName == "" {
		return nil, invalid("scopeName is required")
	}

	q := &query{
		scope:      req.ScopeName,
		graph:      req.GraphName,
		dimensions: req.Dimensions.Items(),
		metrics:    make([]string, 0, req.Metrics.Len()),
	}

	if len(q.dimensions) == 0 && req.Metrics.Len() == 0 {
		return nil, invalid("request selects no dimensions or metrics")
	}

	for _, d := range q.dimensions {
		if !isKind(d, dimensionColumn) {
			return nil, invalid("unknown dimension %q", d)
		}
	}
	for _, m := range req.Metrics.Items() {
		if !isKind(m.Name, metricColumn) {
			return nil, invalid("unknown metric %q", m.Name)
		}
		q.metrics = append(q.metrics, m.Name)
	}

	for _, f := range req.Filters.SingleKeys.Items() {
		if !known(f.Key) {
			return nil, invalid("unknown filter key %q", f.Key)
		}
		// A filter without values constrains nothing
		if len(f.Values) == 0 {
			continue
		}
		q.singleKeys = append(q.singleKeys, f)
	}

	for _, dr := range req.Filters.DateRanges.Items() {
		if dr.Key == "" {
			dr.Key = DefaultDateKey
		}
		if !isKind(dr.Key, dateColumn) {
			return nil, invalid("unknown date key %q", dr.Key)
		}
		q.dateRanges = append(q.dateRanges, dr)
	}

	for _, s := range req.Sortings.Dimensions.Items() {
		if !slices.Contains(q.dimensions, s.Dimension) {
			return nil, invalid("sort dimension %q is not selected", s.Dimension)
		}
		q.dimSorts = append(q.dimSorts, s)
	}

	if ms := req.Sortings.Metric; ms.Metric.Name != "" {
		if !slices.Contains(q.metrics, ms.Metric.Name) {
			return nil, invalid("sort metric %q is not selected", ms.Metric.Name)
		}
		q.metricSort = &ms
	}

	return q, nil
}

func known(column string) bool {
	_, ok := columns[column]
	return ok
}

func isKind(column string, kind columnKind) bool {
	k, ok := columns[column]
	return ok && k == kind
}

// Query evaluates req: filters the loans, groups them by the requested
// dimensions, sums the requested metrics and sorts the groups.
func (d *Dataset) Query(req *models.Request) (models.ReportData, error) {
	q, err := compile(req)
	if err != nil {
		return models.ReportData{}, err
	}
	return d.run(q), nil
}

type group struct {
	dims []string
	sums []float64
}

func (d *Dataset) run(q *query) models.ReportData {
	var groups []*group
	index := make(map[string]*group)

	for _, loan := range d.loans {
		if !q.matches(loan) {
			continue
		}

		dims := make([]string, len(q.dimensions))
		for i, name := range q.dimensions {
			dims[i] = cellString(loan.value(name))
		}
		key := strings.Join(dims, "\x00")

		g, ok := index[key]
		if !ok {
			g = &group{dims: dims, sums: make([]float64, len(q.metrics))}
			index[key] = g
			groups = append(groups, g)
		}
		for i, name := range q.metrics {
			g.sums[i] += loan.value(name).(float64)
		}
	}

	q.sort(groups)

	report := models.NewReportData()
	report.ColumnHeaders = append(append(report.ColumnHeaders, q.dimensions...), q.metrics...)
	for _, g := range groups {
		row := make([]any, 0, len(g.dims)+len(g.sums))
		for _, v := range g.dims {
			row = append(row, v)
		}
		for _, v := range g.sums {
			row = append(row, math.Round(v*100)/100)
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

func (q *query) matches(loan Loan) bool {
	for _, dr := range q.dateRanges {
		t := loan.value(dr.Key).(time.Time)
		if !dr.From.IsZero() && t.Before(dr.From) {
			return false
		}
		if !dr.To.IsZero() && t.After(dr.To) {
			return false
		}
	}
	for _, f := range q.singleKeys {
		if !matchFilter(loan.value(f.Key), f) {
			return false
		}
	}
	return true
}

func matchFilter(cell any, f models.SingleKeyFilter) bool {
	s := cellString(cell)
	switch f.Operation {
	case models.OperationEquals:
		return slices.ContainsFunc(f.Values, func(v string) bool { return compareCell(cell, v) == 0 })
	case models.OperationNotEquals:
		return !slices.ContainsFunc(f.Values, func(v string) bool { return compareCell(cell, v) == 0 })
	case models.OperationStartsWith:
		return slices.ContainsFunc(f.Values, func(v string) bool { return strings.HasPrefix(s, v) })
	case models.OperationNotStartsWith:
		return !slices.ContainsFunc(f.Values, func(v string) bool { return strings.HasPrefix(s, v) })
	case models.OperationAllIsLess:
		return all(f.Values, func(v string) bool { return compareCell(cell, v) < 0 })
	case models.OperationAllIsMore:
		return all(f.Values, func(v string) bool { return compareCell(cell, v) > 0 })
	case models.OperationAtLeastOneIsLess:
		return slices.ContainsFunc(f.Values, func(v string) bool { return compareCell(cell, v) < 0 })
	case models.OperationAtLeastOneIsMore:
		return slices.ContainsFunc(f.Values, func(v string) bool { return compareCell(cell, v) > 0 })
	}
	return false
}

func all(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

// compareCell orders a cell against a filter value. Numbers compare
// numerically when both sides parse as numbers, everything else compares
// as text.
func compareCell(cell any, v string) int {
	s := cellString(cell)
	a, errA := strconv.ParseFloat(s, 64)
	b, errB := strconv.ParseFloat(v, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(a, b)
	}
	return strings.Compare(s, v)
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02")
	}
	return fmt.Sprint(cell)
}

// sort orders groups by the dimension sort keys, then by the metric sort key.
// Groups that tie keep first-seen order.
func (q *query) sort(groups []*group) {
	if len(q.dimSorts) == 0 && q.metricSort == nil {
		return
	}

	dimIndex := make(map[string]int, len(q.dimensions))
	for i, d := range q.dimensions {
		dimIndex[d] = i
	}
	metricIndex := -1
	if q.metricSort != nil {
		metricIndex = slices.Index(q.metrics, q.metricSort.Metric.Name)
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		for _, s := range q.dimSorts {
			i := dimIndex[s.Dimension]
			if c := directed(compareCell(a.dims[i], b.dims[i]), s.Direction); c != 0 {
				return c
			}
		}
		if metricIndex >= 0 {
			c := cmp.Compare(a.sums[metricIndex], b.sums[metricIndex])
			return directed(c, q.metricSort.Direction)
		}
		return 0
	})
}

func directed(c int, dir models.SortDirection) int {
	if dir == models.SortDirectionDESC {
		return -c
	}
	return c
}
