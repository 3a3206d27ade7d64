// Package testutil provides a deterministic SQLite data set shared by tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mik629/ktorm/internal/store"
)

// EmployeeCount is the number of rows seeded into the employees table.
const EmployeeCount = 37

// Schema creates the fixture tables.
const Schema = `
CREATE TABLE departments (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	location TEXT NOT NULL
);
CREATE TABLE employees (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	job TEXT NOT NULL,
	manager_id INTEGER REFERENCES employees(id),
	salary INTEGER NOT NULL,
	department_id INTEGER NOT NULL REFERENCES departments(id)
);
`

// Departments are seeded in id order starting at 1.
var Departments = []struct {
	Name     string
	Location string
}{
	{"engineering", "Berlin"},
	{"operations", "Lisbon"},
	{"sales", "Austin"},
}

var jobs = []string{"engineer", "operator", "seller"}

// Employee returns the seeded values of employee id (1-based).
//
// Salaries grow by 5 per id starting at 55. Employees are spread round-robin
// over the departments, and everyone after the first three reports to the
// head of their department.
func Employee(id int) (name, job string, manager any, salary, department int) {
	department = (id-1)%len(Departments) + 1
	name = fmt.Sprintf("emp%02d", id)
	job = jobs[department-1]
	if id > len(Departments) {
		manager = department
	}
	salary = 50 + id*5
	return name, job, manager, salary, department
}

// Seed creates the fixture schema in s and fills it.
func Seed(ctx context.Context, s *store.Store) error {
	if err := s.ExecScript(ctx, Schema); err != nil {
		return err
	}
	for i, d := range Departments {
		if _, err := s.Exec(ctx,
			"INSERT INTO departments (id, name, location) VALUES (?, ?, ?)",
			i+1, d.Name, d.Location,
		); err != nil {
			return fmt.Errorf("seed department %q: %w", d.Name, err)
		}
	}
	for id := 1; id <= EmployeeCount; id++ {
		name, job, manager, salary, department := Employee(id)
		if _, err := s.Exec(ctx,
			"INSERT INTO employees (id, name, job, manager_id, salary, department_id) VALUES (?, ?, ?, ?, ?, ?)",
			id, name, job, manager, salary, department,
		); err != nil {
			return fmt.Errorf("seed employee %d: %w", id, err)
		}
	}
	return nil
}

// OpenEmployees opens a seeded store in a temporary directory. The store
// is closed when the test ends.
func OpenEmployees(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "employees.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := Seed(context.Background(), s); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	return s
}
