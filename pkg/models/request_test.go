package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_RequestIDGeneratedOnce(t *testing.T) {
	req := NewRequest()

	first := req.RequestID()
	second := req.RequestID()

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)

	id, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(1), id.Version())
}

func TestRequest_SetRequestID(t *testing.T) {
	req := NewRequest()
	_ = req.RequestID()

	req.SetRequestID("my-request")
	assert.Equal(t, "my-request", req.RequestID())

	withID := NewRequestWithID("explicit", map[string]string{"user": "demo"})
	assert.Equal(t, "explicit", withID.RequestID())
	assert.Equal(t, "demo", withID.ConsumerInfo["user"])
}

func TestRequest_SerializeDoesNotGenerateID(t *testing.T) {
	req := NewRequest()

	out, err := Serialize(req)
	require.NoError(t, err)
	assert.Contains(t, out, `"requestID": ""`)

	id := req.RequestID()
	out, err = Serialize(req)
	require.NoError(t, err)
	assert.Contains(t, out, `"requestID": "`+id+`"`)
}

func TestRequest_IndependentContainers(t *testing.T) {
	a := NewRequest()
	b := NewRequest()

	a.ConsumerInfo["k"] = "v"
	a.Dimensions.Add("currency")
	a.Filters.SingleKeys.Add(NewSingleKeyFilter())

	assert.Empty(t, b.ConsumerInfo)
	assert.Equal(t, 0, b.Dimensions.Len())
	assert.Equal(t, 0, b.Filters.SingleKeys.Len())

	info := map[string]string{"k": "v"}
	c := NewRequestWithID("c", info)
	info["k"] = "changed"
	assert.Equal(t, "v", c.ConsumerInfo["k"])
}

func TestMetric_AddParameter(t *testing.T) {
	m1 := NewMetric("loanamount")
	m2 := NewMetric("totalincome")

	m1.AddParameter("currency", "EUR")

	assert.Equal(t, map[string]string{"currency": "EUR"}, m1.Parameters())
	assert.Empty(t, m2.Parameters())

	var zero Metric
	zero.AddParameter("a", "b")
	assert.Equal(t, map[string]string{"a": "b"}, zero.Parameters())

	params := m1.Parameters()
	params["currency"] = "USD"
	assert.Equal(t, "EUR", m1.Parameters()["currency"])
}

func TestConstructors(t *testing.T) {
	dr := NewDateRange()
	assert.Empty(t, dr.Key)
	assert.True(t, dr.From.IsZero())
	assert.True(t, dr.To.IsZero())

	dr, err := NewDateRangeFromTo("19760518", "19760519")
	require.NoError(t, err)
	assert.Empty(t, dr.Key)
	assert.Equal(t, 18, dr.From.Day())
	assert.Equal(t, 19, dr.To.Day())

	dr, err = NewDateRangeKeyed("key", "19760518", "19760519")
	require.NoError(t, err)
	assert.Equal(t, "key", dr.Key)

	_, err = NewDateRangeKeyed("key", "19760518", "1976-13-19")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
	assert.Contains(t, err.Error(), "date range to")

	_, err = NewDateRangeFromTo("bad", "19760519")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	skf := NewSingleKeyFilter()
	assert.Equal(t, OperationEquals, skf.Operation)
	assert.Empty(t, skf.Values)

	values := []string{"a", "b"}
	skf = NewSingleKeyFilterWith("key", OperationEquals, values)
	values[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, skf.Values)

	assert.Equal(t, SortDirectionASC, NewDimensionSortKey("dimension").Direction)
	assert.Equal(t, SortDirectionDESC, NewDimensionSortKeyWithDirection("dimension", SortDirectionDESC).Direction)

	msk := NewMetricSortKey(NewMetric("abc"), SortDirectionDESC)
	assert.Equal(t, "abc", msk.Metric.Name)
	assert.Equal(t, SortDirectionDESC, msk.Direction)

	sf := NewSimpleFilter()
	assert.Equal(t, FilterDataTypeNumber, sf.Type)
	assert.False(t, sf.IsMetric)
}

func TestRequest_DecodeSerialized(t *testing.T) {
	req := NewRequestWithID("abc", map[string]string{"app": "example"})
	req.ScopeName = "Mortgage-Lending"
	req.GraphName = "Servicing-PostgreSQL"
	req.Dimensions.Add("currency")
	m := NewMetric("loanamount")
	m.AddParameter("precision", "2")
	req.Metrics.Add(m)
	dr, err := NewDateRangeKeyed("closingdate", "2017-01-01T00:00:00+0200", "20171231")
	require.NoError(t, err)
	req.Filters.DateRanges.Add(dr)
	req.Filters.SingleKeys.Add(NewSingleKeyFilterWith("officerid", OperationNotStartsWith, []string{"9"}))
	req.Sortings.Dimensions.Add(NewDimensionSortKeyWithDirection("currency", SortDirectionDESC))
	req.Sortings.Metric = NewMetricSortKey(NewMetric("loanamount"), SortDirectionDESC)

	first, err := Serialize(req)
	require.NoError(t, err)

	var decoded Request
	require.NoError(t, json.Unmarshal([]byte(first), &decoded))

	assert.Equal(t, "abc", decoded.RequestID())
	assert.Equal(t, "2", decoded.Metrics.At(0).Parameters()["precision"])
	assert.Equal(t, OperationNotStartsWith, decoded.Filters.SingleKeys.At(0).Operation)
	_, offset := decoded.Filters.DateRanges.At(0).From.Zone()
	assert.Equal(t, 2*3600, offset)

	second, err := Serialize(&decoded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRequest_DecodeSparseDocument(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"scopeName":"Mortgage-Lending","metrics":[{"metric":"loanamount"}]}`), &req))

	assert.Equal(t, "Mortgage-Lending", req.ScopeName)
	assert.NotNil(t, req.ConsumerInfo)
	assert.Equal(t, 1, req.Metrics.Len())
	assert.Empty(t, req.Metrics.At(0).Parameters())
	assert.Equal(t, SortDirectionASC, req.Sortings.Metric.Direction)

	err := json.Unmarshal([]byte(`{"filters":{"singleKeys":[{"key":"a","operation":"LIKE"}]}}`), &req)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"filters":{"dateRanges":[{"from":"tomorrow"}]}}`), &req)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}
