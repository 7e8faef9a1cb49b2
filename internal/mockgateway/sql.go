package mockgateway

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/peekdata/datagateway-go/pkg/models"
)

// RenderSQL returns the SELECT statement the gateway would run for req
func RenderSQL(req *models.Request) (string, error) {
	q, err := compile(req)
	if err != nil {
		return "", err
	}
	return q.sql(), nil
}

func (q *query) sql() string {
	var b strings.Builder

	selected := make([]string, 0, len(q.dimensions)+len(q.metrics))
	selected = append(selected, q.dimensions...)
	for _, m := range q.metrics {
		selected = append(selected, fmt.Sprintf("SUM(%s) AS %s", m, m))
	}
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selected, ", "))
	b.WriteString("\nFROM ")
	b.WriteString(tableName(q.scope, q.graph))

	var where []string
	for _, dr := range q.dateRanges {
		if c := dateCondition(dr); c != "" {
			where = append(where, c)
		}
	}
	for _, f := range q.singleKeys {
		where = append(where, filterCondition(f))
	}
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, "\n  AND "))
	}

	if len(q.dimensions) > 0 && len(q.metrics) > 0 {
		b.WriteString("\nGROUP BY ")
		b.WriteString(strings.Join(q.dimensions, ", "))
	}

	var order []string
	for _, s := range q.dimSorts {
		order = append(order, s.Dimension+" "+s.Direction.String())
	}
	if q.metricSort != nil {
		order = append(order, q.metricSort.Metric.Name+" "+q.metricSort.Direction.String())
	}
	if len(order) > 0 {
		b.WriteString("\nORDER BY ")
		b.WriteString(strings.Join(order, ", "))
	}

	return b.String()
}

// tableName maps Mortgage-Lending on Origination-MySQL to
// origination_mysql.mortgage_lending
func tableName(scope, graph string) string {
	name := identifier(scope)
	if graph != "" {
		name = identifier(graph) + "." + name
	}
	return name
}

func identifier(s string) string {
	return strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(s))
}

func dateCondition(dr models.DateRange) string {
	switch {
	case !dr.From.IsZero() && !dr.To.IsZero():
		return fmt.Sprintf("%s BETWEEN %s AND %s", dr.Key, dateLiteral(dr.From), dateLiteral(dr.To))
	case !dr.From.IsZero():
		return fmt.Sprintf("%s >= %s", dr.Key, dateLiteral(dr.From))
	case !dr.To.IsZero():
		return fmt.Sprintf("%s <= %s", dr.Key, dateLiteral(dr.To))
	}
	return ""
}

func dateLiteral(t time.Time) string {
	return quote(t.Format(time.DateTime))
}

func filterCondition(f models.SingleKeyFilter) string {
	switch f.Operation {
	case models.OperationEquals:
		return fmt.Sprintf("%s IN (%s)", f.Key, literals(f.Key, f.Values))
	case models.OperationNotEquals:
		return fmt.Sprintf("%s NOT IN (%s)", f.Key, literals(f.Key, f.Values))
	case models.OperationStartsWith:
		return likeChain(f.Key, "LIKE", " OR ", f.Values)
	case models.OperationNotStartsWith:
		return likeChain(f.Key, "NOT LIKE", " AND ", f.Values)
	case models.OperationAllIsLess:
		return fmt.Sprintf("%s < ALL (%s)", f.Key, literals(f.Key, f.Values))
	case models.OperationAllIsMore:
		return fmt.Sprintf("%s > ALL (%s)", f.Key, literals(f.Key, f.Values))
	case models.OperationAtLeastOneIsLess:
		return fmt.Sprintf("%s < ANY (%s)", f.Key, literals(f.Key, f.Values))
	case models.OperationAtLeastOneIsMore:
		return fmt.Sprintf("%s > ANY (%s)", f.Key, literals(f.Key, f.Values))
	}
	return "1 = 0"
}

func likeChain(key, op, joiner string, values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%s %s %s", key, op, quote(escapeLike(v)+"%"))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, joiner) + ")"
}

// literals renders values as a comma-separated list. Values of metric
// columns that parse as numbers are left unquoted.
func literals(column string, values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err == nil && isKind(column, metricColumn) {
			out[i] = v
			continue
		}
		out[i] = quote(v)
	}
	return strings.Join(out, ", ")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
