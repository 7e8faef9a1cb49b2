// Package models holds the request and response documents exchanged with a
// DataGateway, together with their canonical JSON encoding.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Request is a data query sent to the gateway
type Request struct {
	requestID    string
	ConsumerInfo map[string]string
	ScopeName    string
	GraphName    string
	Dimensions   List[string]
	Metrics      List[Metric]
	Filters      Filter
	Sortings     Sort
}

// NewRequest creates an empty request. The request ID is generated on first
// read.
func NewRequest() *Request {
	return &Request{
		ConsumerInfo: make(map[string]string),
		Dimensions:   NewList[string](),
		Metrics:      NewList[Metric](),
		Filters:      NewFilter(),
		Sortings:     NewSort(),
	}
}

// NewRequestWithID creates a request with an explicit ID and consumer info
func NewRequestWithID(requestID string, consumerInfo map[string]string) *Request {
	r := NewRequest()
	r.requestID = requestID
	r.ConsumerInfo = cloneStringMap(consumerInfo)
	return r
}

// RequestID returns the request ID, generating a time-based UUID on the
// first call if none was set. Callers sharing a Request across goroutines
// must synchronize this call themselves.
func (r *Request) RequestID() string {
	if r.requestID == "" {
		id, err := uuid.NewUUID()
		if err != nil {
			id = uuid.New()
		}
		r.requestID = id.String()
	}
	return r.requestID
}

// SetRequestID overrides the request ID
func (r *Request) SetRequestID(id string) {
	r.requestID = id
}

// MarshalJSON emits the stored request ID as is; it never generates one.
func (r Request) MarshalJSON() ([]byte, error) {
	return object{
		"requestID":    r.requestID,
		"consumerInfo": stringMap(r.ConsumerInfo),
		"scopeName":    r.ScopeName,
		"graphName":    r.GraphName,
		"dimensions":   r.Dimensions,
		"metrics":      r.Metrics,
		"filters":      r.Filters,
		"sortings":     r.Sortings,
	}.marshal()
}

// UnmarshalJSON decodes a request document
func (r *Request) UnmarshalJSON(data []byte) error {
	var w struct {
		RequestID    string            `json:"requestID"`
		ConsumerInfo map[string]string `json:"consumerInfo"`
		ScopeName    string            `json:"scopeName"`
		GraphName    string            `json:"graphName"`
		Dimensions   List[string]      `json:"dimensions"`
		Metrics      List[Metric]      `json:"metrics"`
		Filters      *Filter           `json:"filters"`
		Sortings     *Sort             `json:"sortings"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = *NewRequest()
	r.requestID = w.RequestID
	if w.ConsumerInfo != nil {
		r.ConsumerInfo = w.ConsumerInfo
	}
	r.ScopeName = w.ScopeName
	r.GraphName = w.GraphName
	r.Dimensions = w.Dimensions
	r.Metrics = w.Metrics
	if w.Filters != nil {
		r.Filters = *w.Filters
	}
	if w.Sortings != nil {
		r.Sortings = *w.Sortings
	}
	return nil
}

// Metric is a measured quantity, optionally parameterized
type Metric struct {
	Name       string
	parameters map[string]string
}

// NewMetric creates a metric with the given name and no parameters
func NewMetric(name string) Metric {
	return Metric{Name: name, parameters: make(map[string]string)}
}

// AddParameter sets a named parameter on the metric
func (m *Metric) AddParameter(name, value string) {
	if m.parameters == nil {
		m.parameters = make(map[string]string)
	}
	m.parameters[name] = value
}

// Parameters returns a copy of the metric parameters
func (m Metric) Parameters() map[string]string {
	return cloneStringMap(m.parameters)
}

// MarshalJSON encodes the metric
func (m Metric) MarshalJSON() ([]byte, error) {
	return object{
		"metric":     m.Name,
		"parameters": stringMap(m.parameters),
	}.marshal()
}

// UnmarshalJSON decodes a metric
func (m *Metric) UnmarshalJSON(data []byte) error {
	var w struct {
		Metric     string            `json:"metric"`
		Parameters map[string]string `json:"parameters"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = NewMetric(w.Metric)
	for k, v := range w.Parameters {
		m.parameters[k] = v
	}
	return nil
}

// Filter groups the date-range and single-key filters of a request
type Filter struct {
	DateRanges List[DateRange]
	SingleKeys List[SingleKeyFilter]
}

// NewFilter creates an empty filter
func NewFilter() Filter {
	return Filter{
		DateRanges: NewList[DateRange](),
		SingleKeys: NewList[SingleKeyFilter](),
	}
}

// MarshalJSON encodes the filter
func (f Filter) MarshalJSON() ([]byte, error) {
	return object{
		"dateRanges": f.DateRanges,
		"singleKeys": f.SingleKeys,
	}.marshal()
}

// UnmarshalJSON decodes a filter
func (f *Filter) UnmarshalJSON(data []byte) error {
	var w struct {
		DateRanges List[DateRange]       `json:"dateRanges"`
		SingleKeys List[SingleKeyFilter] `json:"singleKeys"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	f.DateRanges = w.DateRanges
	f.SingleKeys = w.SingleKeys
	return nil
}

// DateRange constrains an optionally named date field to an inclusive interval
type DateRange struct {
	Key  string
	From time.Time
	To   time.Time
}

// NewDateRange creates a date range with no key and unset bounds
func NewDateRange() DateRange {
	return DateRange{}
}

// NewDateRangeFromTo creates an unnamed date range from two date strings
func NewDateRangeFromTo(from, to string) (DateRange, error) {
	return NewDateRangeKeyed("", from, to)
}

// NewDateRangeKeyed creates a date range on the named field
func NewDateRangeKeyed(key, from, to string) (DateRange, error) {
	fromTime, err := ParseDateTime(from)
	if err != nil {
		return DateRange{}, fmt.Errorf("date range from: %w", err)
	}
	toTime, err := ParseDateTime(to)
	if err != nil {
		return DateRange{}, fmt.Errorf("date range to: %w", err)
	}
	return DateRange{Key: key, From: fromTime, To: toTime}, nil
}

// MarshalJSON encodes the date range; the lower bound goes under "from".
func (d DateRange) MarshalJSON() ([]byte, error) {
	return object{
		"key":  d.Key,
		"from": FormatDateTime(d.From),
		"to":   FormatDateTime(d.To),
	}.marshal()
}

// UnmarshalJSON decodes a date range
func (d *DateRange) UnmarshalJSON(data []byte) error {
	var w struct {
		Key  string `json:"key"`
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	from, err := parseWireDateTime(w.From)
	if err != nil {
		return fmt.Errorf("date range from: %w", err)
	}
	to, err := parseWireDateTime(w.To)
	if err != nil {
		return fmt.Errorf("date range to: %w", err)
	}
	*d = DateRange{Key: w.Key, From: from, To: to}
	return nil
}

// SingleKeyFilter constrains one field by an operation over a set of values
type SingleKeyFilter struct {
	Key       string
	Operation Operation
	Values    []string
}

// NewSingleKeyFilter creates an EQUALS filter with no key and no values
func NewSingleKeyFilter() SingleKeyFilter {
	return SingleKeyFilter{Operation: OperationEquals, Values: []string{}}
}

// NewSingleKeyFilterWith creates a filter on key
func NewSingleKeyFilterWith(key string, op Operation, values []string) SingleKeyFilter {
	v := make([]string, len(values))
	copy(v, values)
	return SingleKeyFilter{Key: key, Operation: op, Values: v}
}

// MarshalJSON encodes the filter
func (s SingleKeyFilter) MarshalJSON() ([]byte, error) {
	return object{
		"key":       s.Key,
		"operation": s.Operation,
		"values":    stringSlice(s.Values),
	}.marshal()
}

// UnmarshalJSON decodes the filter
func (s *SingleKeyFilter) UnmarshalJSON(data []byte) error {
	var w struct {
		Key       string    `json:"key"`
		Operation Operation `json:"operation"`
		Values    []string  `json:"values"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = NewSingleKeyFilterWith(w.Key, w.Operation, w.Values)
	return nil
}

// SimpleFilter is a typed filter on a dimension or metric
type SimpleFilter struct {
	Key      string
	IsMetric bool
	Type     FilterDataType
	Values   []string
}

// NewSimpleFilter creates an empty NUMBER filter
func NewSimpleFilter() SimpleFilter {
	return SimpleFilter{Type: FilterDataTypeNumber, Values: []string{}}
}

// MarshalJSON encodes the filter
func (s SimpleFilter) MarshalJSON() ([]byte, error) {
	return object{
		"key":      s.Key,
		"isMetric": s.IsMetric,
		"type":     s.Type,
		"values":   stringSlice(s.Values),
	}.marshal()
}

// UnmarshalJSON decodes the filter
func (s *SimpleFilter) UnmarshalJSON(data []byte) error {
	var w struct {
		Key      string         `json:"key"`
		IsMetric bool           `json:"isMetric"`
		Type     FilterDataType `json:"type"`
		Values   []string       `json:"values"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = SimpleFilter{Key: w.Key, IsMetric: w.IsMetric, Type: w.Type, Values: stringSlice(w.Values)}
	return nil
}

// Sort holds the sort options of a request
type Sort struct {
	Dimensions List[DimensionSortKey]
	Metric     MetricSortKey
}

// NewSort creates sort options with no dimension keys and an empty metric key
func NewSort() Sort {
	return Sort{
		Dimensions: NewList[DimensionSortKey](),
		Metric:     NewMetricSortKey(NewMetric(""), SortDirectionASC),
	}
}

// MarshalJSON encodes the sort options
func (s Sort) MarshalJSON() ([]byte, error) {
	return object{
		"dimensions": s.Dimensions,
		"metric":     s.Metric,
	}.marshal()
}

// UnmarshalJSON decodes the sort options
func (s *Sort) UnmarshalJSON(data []byte) error {
	var w struct {
		Dimensions List[DimensionSortKey] `json:"dimensions"`
		Metric     *MetricSortKey         `json:"metric"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = NewSort()
	s.Dimensions = w.Dimensions
	if w.Metric != nil {
		s.Metric = *w.Metric
	}
	return nil
}

// DimensionSortKey sorts by a dimension
type DimensionSortKey struct {
	Dimension string
	Direction SortDirection
}

// NewDimensionSortKey sorts ascending by dimension
func NewDimensionSortKey(dimension string) DimensionSortKey {
	return DimensionSortKey{Dimension: dimension, Direction: SortDirectionASC}
}

// NewDimensionSortKeyWithDirection sorts by dimension in the given direction
func NewDimensionSortKeyWithDirection(dimension string, direction SortDirection) DimensionSortKey {
	return DimensionSortKey{Dimension: dimension, Direction: direction}
}

// MarshalJSON encodes the sort key
func (k DimensionSortKey) MarshalJSON() ([]byte, error) {
	return object{
		"dimension": k.Dimension,
		"direction": k.Direction,
	}.marshal()
}

// UnmarshalJSON decodes the sort key
func (k *DimensionSortKey) UnmarshalJSON(data []byte) error {
	var w struct {
		Dimension string        `json:"dimension"`
		Direction SortDirection `json:"direction"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*k = DimensionSortKey{Dimension: w.Dimension, Direction: w.Direction}
	return nil
}

// MetricSortKey sorts by a metric
type MetricSortKey struct {
	Metric    Metric
	Direction SortDirection
}

// NewMetricSortKey sorts by metric in the given direction
func NewMetricSortKey(metric Metric, direction SortDirection) MetricSortKey {
	return MetricSortKey{Metric: metric, Direction: direction}
}

// MarshalJSON encodes the sort key
func (k MetricSortKey) MarshalJSON() ([]byte, error) {
	return object{
		"metric":    k.Metric,
		"direction": k.Direction,
	}.marshal()
}

// UnmarshalJSON decodes the sort key
func (k *MetricSortKey) UnmarshalJSON(data []byte) error {
	var w struct {
		Metric    *Metric       `json:"metric"`
		Direction SortDirection `json:"direction"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*k = NewMetricSortKey(NewMetric(""), w.Direction)
	if w.Metric != nil {
		k.Metric = *w.Metric
	}
	return nil
}
