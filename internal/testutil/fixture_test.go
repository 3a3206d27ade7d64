package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mik629/ktorm/internal/expr"
)

func TestOpenEmployees_Seeded(t *testing.T) {
	s := OpenEmployees(t)

	var employees, departments, managed int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM employees").Scan(&employees))
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM departments").Scan(&departments))
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM employees WHERE manager_id IS NOT NULL").Scan(&managed))

	assert.Equal(t, EmployeeCount, employees)
	assert.Equal(t, len(Departments), departments)
	assert.Equal(t, EmployeeCount-len(Departments), managed)
}

func TestEmployee_Deterministic(t *testing.T) {
	name, job, manager, salary, department := Employee(1)
	assert.Equal(t, "emp01", name)
	assert.Equal(t, "engineer", job)
	assert.Nil(t, manager)
	assert.Equal(t, 55, salary)
	assert.Equal(t, 1, department)

	name, job, manager, salary, department = Employee(5)
	assert.Equal(t, "emp05", name)
	assert.Equal(t, "operator", job)
	assert.Equal(t, 2, manager)
	assert.Equal(t, 75, salary)
	assert.Equal(t, 2, department)
}

func TestCountingDatabase_RecordsExecutions(t *testing.T) {
	db := NewCountingDatabase(OpenEmployees(t))
	q := expr.NewSelect(expr.Table("departments"))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.ExecuteQuery(context.Background(), q)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, db.Executions())
	assert.Len(t, db.Executed(), 5)

	_, _, err := db.FormatExpression(q, true)
	require.NoError(t, err)
	assert.Equal(t, 1, db.Formats())
}
