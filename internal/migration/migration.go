// Package migration holds the ordered, reversible schema history of both
// applications.  Each Set is applied with gormigrate and records its
// progress in its own bookkeeping table, so the two applications may share a
// database during development.
package migration

import (
	"errors"
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Set is the migration history of one application.
type Set struct {
	Name  string
	Table string
	Steps []*gormigrate.Migration
}

// StepStatus tells whether a step has been applied.
type StepStatus struct {
	ID      string
	Applied bool
}

func (s Set) migrator(db *gorm.DB) *gormigrate.Gormigrate {
	opts := *gormigrate.DefaultOptions
	opts.TableName = s.Table
	opts.UseTransaction = useTransaction(db)
	return gormigrate.New(db, &opts, s.Steps)
}

// Only PostgreSQL has transactional DDL.  MySQL commits implicitly and the
// SQLite table rebuilds must toggle foreign keys outside a transaction.
func useTransaction(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// withoutForeignKeys runs fn with SQLite foreign key enforcement switched
// off.  SQLite rebuilds a table to alter or drop a column, and dropping the
// old copy would otherwise cascade into every child row.  The SQLite pool
// holds a single connection, so the pragma applies to fn's statements.
func withoutForeignKeys(tx *gorm.DB, fn func(*gorm.DB) error) error {
	if tx.Dialector.Name() != "sqlite" {
		return fn(tx)
	}
	if err := tx.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
		return err
	}
	err := fn(tx)
	if on := tx.Exec("PRAGMA foreign_keys = ON").Error; err == nil {
		err = on
	}
	return err
}

// Up applies pending steps.  With a non-empty to it stops after that step.
func (s Set) Up(db *gorm.DB, to string) error {
	m := s.migrator(db)
	var err error
	if to == "" {
		err = m.Migrate()
	} else {
		if !s.has(to) {
			return fmt.Errorf("%s: unknown migration %q", s.Name, to)
		}
		err = m.MigrateTo(to)
	}
	if err != nil {
		return fmt.Errorf("%s: migrate up: %w", s.Name, err)
	}
	logrus.WithFields(logrus.Fields{"app": s.Name, "to": to}).Info("migrations applied")
	return nil
}

// Down rolls back the last applied step.  With a non-empty to it rolls back
// every step applied after to (to itself stays).
func (s Set) Down(db *gorm.DB, to string) error {
	m := s.migrator(db)
	var err error
	if to == "" {
		err = m.RollbackLast()
	} else {
		if !s.has(to) {
			return fmt.Errorf("%s: unknown migration %q", s.Name, to)
		}
		err = m.RollbackTo(to)
	}
	if err != nil {
		return fmt.Errorf("%s: migrate down: %w", s.Name, err)
	}
	logrus.WithFields(logrus.Fields{"app": s.Name, "to": to}).Info("migrations rolled back")
	return nil
}

// Reset rolls back every applied step.
func (s Set) Reset(db *gorm.DB) error {
	m := s.migrator(db)
	for {
		err := m.RollbackLast()
		if errors.Is(err, gormigrate.ErrNoRunMigration) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: reset: %w", s.Name, err)
		}
	}
}

// Status lists every step in order with its applied flag.
func (s Set) Status(db *gorm.DB) ([]StepStatus, error) {
	applied := map[string]bool{}
	if db.Migrator().HasTable(s.Table) {
		var ids []string
		if err := db.Table(s.Table).Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("%s: read %s: %w", s.Name, s.Table, err)
		}
		for _, id := range ids {
			applied[id] = true
		}
	}
	out := make([]StepStatus, 0, len(s.Steps))
	for _, step := range s.Steps {
		out = append(out, StepStatus{ID: step.ID, Applied: applied[step.ID]})
	}
	return out, nil
}

func (s Set) has(id string) bool {
	for _, step := range s.Steps {
		if step.ID == id {
			return true
		}
	}
	return false
}
