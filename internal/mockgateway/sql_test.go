package mockgateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekdata/datagateway-go/internal/requests"
	"github.com/peekdata/datagateway-go/pkg/models"
)

func TestRenderSQL_SampleRequests(t *testing.T) {
	sql, err := RenderSQL(requests.TwoDimensionsTwoMetricsFilterAndSorting())
	require.NoError(t, err)
	assert.Equal(t, `SELECT propertyCityID, currency, SUM(loanamount) AS loanamount, SUM(totalincome) AS totalincome
FROM mortgage_lending
WHERE currency IN ('EUR')
GROUP BY propertyCityID, currency
ORDER BY currency ASC`, sql)

	req, err := requests.TwoMetricsAndTwoFiltersFromSpecifiedGraph()
	require.NoError(t, err)
	sql, err = RenderSQL(req)
	require.NoError(t, err)
	assert.Equal(t, `SELECT SUM(loanamount) AS loanamount, SUM(waintrate) AS waintrate
FROM origination_mysql.mortgage_lending
WHERE closingdate BETWEEN '2017-01-01 00:00:00' AND '2017-12-31 00:00:00'
  AND officerid IN ('1', '2', '3')`, sql)
}

func TestRenderSQL_Conditions(t *testing.T) {
	tests := []struct {
		name   string
		filter models.SingleKeyFilter
		want   string
	}{
		{"not equals", models.NewSingleKeyFilterWith("currency", models.OperationNotEquals, []string{"EUR"}), "currency NOT IN ('EUR')"},
		{"starts with one", models.NewSingleKeyFilterWith("currency", models.OperationStartsWith, []string{"E"}), "currency LIKE 'E%'"},
		{"starts with many", models.NewSingleKeyFilterWith("currency", models.OperationStartsWith, []string{"E", "U"}), "(currency LIKE 'E%' OR currency LIKE 'U%')"},
		{"not starts with", models.NewSingleKeyFilterWith("currency", models.OperationNotStartsWith, []string{"E", "U"}), "(currency NOT LIKE 'E%' AND currency NOT LIKE 'U%')"},
		{"like escaping", models.NewSingleKeyFilterWith("currency", models.OperationStartsWith, []string{"5%_"}), `currency LIKE '5\%\_%'`},
		{"all is less", models.NewSingleKeyFilterWith("loanamount", models.OperationAllIsLess, []string{"100", "200"}), "loanamount < ALL (100, 200)"},
		{"all is more", models.NewSingleKeyFilterWith("loanamount", models.OperationAllIsMore, []string{"100"}), "loanamount > ALL (100)"},
		{"at least one is less", models.NewSingleKeyFilterWith("officerid", models.OperationAtLeastOneIsLess, []string{"3"}), "officerid < ANY ('3')"},
		{"at least one is more", models.NewSingleKeyFilterWith("loanamount", models.OperationAtLeastOneIsMore, []string{"1e5", "x"}), "loanamount > ANY (1e5, 'x')"},
		{"quote escaping", models.NewSingleKeyFilterWith("currency", models.OperationEquals, []string{"O'Brien"}), "currency IN ('O''Brien')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newQuery([]string{"currency"}, "loanamount")
			req.Filters.SingleKeys.Add(tt.filter)

			sql, err := RenderSQL(req)
			require.NoError(t, err)
			assert.Contains(t, sql, "\nWHERE "+tt.want+"\n")
		})
	}
}

func TestRenderSQL_OpenDateRangesAndMetricSort(t *testing.T) {
	req := newQuery(nil, "loanamount")
	req.Filters.DateRanges.Add(
		models.DateRange{From: models.MustParseDateTime("2018-01-01")},
		models.DateRange{Key: "closingdate", To: models.MustParseDateTime("20181231T235959")},
		models.DateRange{},
	)
	req.Sortings.Metric = models.NewMetricSortKey(models.NewMetric("loanamount"), models.SortDirectionDESC)

	sql, err := RenderSQL(req)
	require.NoError(t, err)
	assert.Equal(t, `SELECT SUM(loanamount) AS loanamount
FROM mortgage_lending
WHERE closingdate >= '2018-01-01 00:00:00'
  AND closingdate <= '2018-12-31 23:59:59'
ORDER BY loanamount DESC`, sql)
}

func TestRenderSQL_Invalid(t *testing.T) {
	_, err := RenderSQL(models.NewRequest())
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
