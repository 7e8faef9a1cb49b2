package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is the result of a get-data call
type Response struct {
	RequestID  string
	ReportData ReportData
	TotalRows  int
}

// ReportData is a tabular result. Each row is expected to have one value per
// column header; this is not checked.
type ReportData struct {
	ColumnHeaders []string
	Rows          [][]any
}

// NewResponse creates an empty response for the given request
func NewResponse(requestID string) *Response {
	return &Response{
		RequestID:  requestID,
		ReportData: NewReportData(),
	}
}

// NewResponseWithData creates a response carrying report data
func NewResponseWithData(requestID string, data ReportData, totalRows int) *Response {
	return &Response{
		RequestID:  requestID,
		ReportData: data,
		TotalRows:  totalRows,
	}
}

// NewReportData creates an empty report
func NewReportData() ReportData {
	return ReportData{ColumnHeaders: []string{}, Rows: [][]any{}}
}

// ParseResponse decodes a get-data response body
func ParseResponse(raw []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &r, nil
}

// MarshalJSON encodes the response
func (r Response) MarshalJSON() ([]byte, error) {
	return object{
		"requestID":  r.RequestID,
		"reportData": r.ReportData,
		"totalRows":  r.TotalRows,
	}.marshal()
}

// UnmarshalJSON decodes the response
func (r *Response) UnmarshalJSON(data []byte) error {
	var w struct {
		RequestID  string      `json:"requestID"`
		ReportData *ReportData `json:"reportData"`
		TotalRows  int         `json:"totalRows"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = *NewResponse(w.RequestID)
	r.TotalRows = w.TotalRows
	if w.ReportData != nil {
		r.ReportData = *w.ReportData
	}
	return nil
}

// MarshalJSON encodes the report
func (d ReportData) MarshalJSON() ([]byte, error) {
	rows := d.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return object{
		"columnHeaders": stringSlice(d.ColumnHeaders),
		"rows":          rows,
	}.marshal()
}

// UnmarshalJSON decodes the report. Numeric cells are kept as json.Number.
func (d *ReportData) UnmarshalJSON(data []byte) error {
	var w struct {
		ColumnHeaders []string `json:"columnHeaders"`
		Rows          [][]any  `json:"rows"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return err
	}
	*d = NewReportData()
	if w.ColumnHeaders != nil {
		d.ColumnHeaders = w.ColumnHeaders
	}
	if w.Rows != nil {
		d.Rows = w.Rows
	}
	return nil
}
