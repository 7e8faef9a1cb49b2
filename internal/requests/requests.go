// Package requests builds the sample queries used by the walkthrough command.
package requests

import (
	"fmt"

	"github.com/peekdata/datagateway-go/pkg/models"
)

// ScopeMortgageLending is the scope every sample query runs against
const ScopeMortgageLending = "Mortgage-Lending"

// GraphOriginationMySQL is one of the data sources of the Mortgage-Lending
// scope. The others are DataWarehouse-HPVertica and Servicing-PostgreSQL.
const GraphOriginationMySQL = "Origination-MySQL"

// TwoDimensionsTwoMetricsFilterAndSorting groups loan amount and total income
// by city and currency, keeps EUR only and sorts by currency.
func TwoDimensionsTwoMetricsFilterAndSorting() *models.Request {
	req := models.NewRequest()
	req.ScopeName = ScopeMortgageLending

	req.Dimensions.Add("propertyCityID", "currency")
	req.Metrics.Add(
		models.NewMetric("loanamount"),
		models.NewMetric("totalincome"),
	)

	req.Filters.SingleKeys.Add(
		models.NewSingleKeyFilterWith("currency", models.OperationEquals, []string{"EUR"}),
	)

	req.Sortings.Dimensions.Add(
		models.NewDimensionSortKeyWithDirection("currency", models.SortDirectionASC),
	)

	return req
}

// TwoMetricsAndTwoFiltersFromSpecifiedGraph sums loan amount and interest
// rate over loans closed in 2017 by officers 1, 2 and 3, read from the
// Origination-MySQL graph.
func TwoMetricsAndTwoFiltersFromSpecifiedGraph() (*models.Request, error) {
	req := models.NewRequest()
	req.ScopeName = ScopeMortgageLending
	req.GraphName = GraphOriginationMySQL

	req.Metrics.Add(
		models.NewMetric("loanamount"),
		models.NewMetric("waintrate"),
	)

	closing, err := models.NewDateRangeKeyed("closingdate", "2017-01-01", "2017-12-31")
	if err != nil {
		return nil, fmt.Errorf("failed to build closing date range: %w", err)
	}
	req.Filters.DateRanges.Add(closing)
	req.Filters.SingleKeys.Add(
		models.NewSingleKeyFilterWith("officerid", models.OperationEquals, []string{"1", "2", "3"}),
	)

	return req, nil
}
