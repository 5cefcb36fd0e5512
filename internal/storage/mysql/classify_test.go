package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"dealership_api/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{sql.ErrNoRows, domain.ErrNotFound},
		{sql.ErrConnDone, domain.ErrStorageUnavailable},
		{fmt.Errorf("exec: %w", driver.ErrBadConn), domain.ErrStorageUnavailable},
		{mysqldrv.ErrInvalidConn, domain.ErrStorageUnavailable},
		{context.DeadlineExceeded, domain.ErrStorageUnavailable},
		{errors.New("sql: database is closed"), domain.ErrStorageUnavailable},
		{&mysqldrv.MySQLError{Number: 1064, Message: "syntax"}, domain.ErrInternal},
		{errors.New("boom"), domain.ErrInternal},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, classify(tc.in), tc.want, "classify(%v)", tc.in)
	}
	assert.NoError(t, classify(nil))
}

func TestFindQuery(t *testing.T) {
	q, args, err := findQuery(domain.Cars, domain.ByDealer("7"))
	assert.NoError(t, err)
	assert.Contains(t, q, "FROM documents WHERE collection = ?")
	assert.Contains(t, q, "JSON_TYPE(JSON_EXTRACT(doc, ?)) = 'STRING'")
	assert.Contains(t, q, "ORDER BY seq")
	assert.Equal(t, []any{"cars", `$."dealer_id"`, `$."dealer_id"`, "7"}, args)

	q, args, err = findQuery(domain.Reviews, nil)
	assert.NoError(t, err)
	assert.NotContains(t, q, "JSON_EXTRACT")
	assert.Equal(t, []any{"reviews"}, args)

	_, _, err = findQuery(domain.Cars, domain.Filter{`x") OR 1=1 --`: "y"})
	assert.ErrorIs(t, err, domain.ErrInternal)
}
