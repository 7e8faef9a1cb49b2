package models

import (
	"encoding/json"
	"fmt"
)

// SortDirection orders a dimension or metric in the result set
type SortDirection int

const (
	SortDirectionASC SortDirection = iota
	SortDirectionDESC
)

var sortDirectionNames = []string{"ASC", "DESC"}

// Operation is the comparison applied by a single-key filter
type Operation int

const (
	OperationEquals Operation = iota
	OperationNotEquals
	OperationStartsWith
	OperationNotStartsWith
	OperationAllIsLess
	OperationAllIsMore
	OperationAtLeastOneIsLess
	OperationAtLeastOneIsMore
)

var operationNames = []string{
	"EQUALS",
	"NOT_EQUALS",
	"STARTS_WITH",
	"NOT_STARTS_WITH",
	"ALL_IS_LESS",
	"ALL_IS_MORE",
	"AT_LEAST_ONE_IS_LESS",
	"AT_LEAST_ONE_IS_MORE",
}

// FilterDataType is the value type of a simple filter
type FilterDataType int

const (
	FilterDataTypeNumber FilterDataType = iota
	FilterDataTypeDate
	FilterDataTypeString
)

var filterDataTypeNames = []string{"NUMBER", "DATE", "STRING"}

func (d SortDirection) String() string {
	return enumName("SortDirection", sortDirectionNames, int(d))
}

// MarshalJSON encodes the direction by name
func (d SortDirection) MarshalJSON() ([]byte, error) {
	return marshalEnum("SortDirection", sortDirectionNames, int(d))
}

// UnmarshalJSON decodes a direction name
func (d *SortDirection) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum("SortDirection", sortDirectionNames, data)
	if err != nil {
		return err
	}
	*d = SortDirection(v)
	return nil
}

// ParseSortDirection returns the direction with the given name
func ParseSortDirection(name string) (SortDirection, error) {
	v, err := parseEnum("SortDirection", sortDirectionNames, name)
	return SortDirection(v), err
}

func (o Operation) String() string {
	return enumName("Operation", operationNames, int(o))
}

// MarshalJSON encodes the operation by name
func (o Operation) MarshalJSON() ([]byte, error) {
	return marshalEnum("Operation", operationNames, int(o))
}

// UnmarshalJSON decodes an operation name
func (o *Operation) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum("Operation", operationNames, data)
	if err != nil {
		return err
	}
	*o = Operation(v)
	return nil
}

// ParseOperation returns the operation with the given name
func ParseOperation(name string) (Operation, error) {
	v, err := parseEnum("Operation", operationNames, name)
	return Operation(v), err
}

func (t FilterDataType) String() string {
	return enumName("FilterDataType", filterDataTypeNames, int(t))
}

// MarshalJSON encodes the data type by name
func (t FilterDataType) MarshalJSON() ([]byte, error) {
	return marshalEnum("FilterDataType", filterDataTypeNames, int(t))
}

// UnmarshalJSON decodes a data type name
func (t *FilterDataType) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum("FilterDataType", filterDataTypeNames, data)
	if err != nil {
		return err
	}
	*t = FilterDataType(v)
	return nil
}

// ParseFilterDataType returns the data type with the given name
func ParseFilterDataType(name string) (FilterDataType, error) {
	v, err := parseEnum("FilterDataType", filterDataTypeNames, name)
	return FilterDataType(v), err
}

func enumName(kind string, names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, v)
	}
	return names[v]
}

func marshalEnum(kind string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("invalid %s value: %d", kind, v)
	}
	return marshalValue(names[v])
}

func unmarshalEnum(kind string, names []string, data []byte) (int, error) {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return 0, fmt.Errorf("%s must be a string: %w", kind, err)
	}
	return parseEnum(kind, names, name)
}

func parseEnum(kind string, names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s: %q", kind, name)
}
