package db

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type SessionMock struct {
	mock.Mock
}

func NewSessionMock() *SessionMock {
	return &SessionMock{}
}

func (o *SessionMock) Execute(_ context.Context, query string, values ...interface{}) error {
	args := o.Called(query, values)
	return args.Error(0)
}

func (o *SessionMock) ExecuteIter(_ context.Context, query string, values ...interface{}) (ResultSet, error) {
	args := o.Called(query, values)
	if rs := args.Get(0); rs != nil {
		return rs.(ResultSet), args.Error(1)
	}
	return nil, args.Error(1)
}

// ExecuteStream feeds the rows configured as the first return value to fn.
func (o *SessionMock) ExecuteStream(_ context.Context, query string, fn func(Row) error, values ...interface{}) error {
	args := o.Called(query, values)
	if rows := args.Get(0); rows != nil {
		for _, row := range rows.([]Row) {
			if err := fn(row); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (o *SessionMock) Close() {
	o.Called()
}

// NewResultSet builds a materialized result set for mock expectations.
func NewResultSet(rows ...Row) ResultSet {
	return &resultSet{values: rows}
}
