package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/san-kum/flighteom/internal/validation"
)

// SaveReport writes a validation report to reports/<id>/report.json.
func (s *Store) SaveReport(rep *validation.Report) error {
	if rep.ID == "" {
		return fmt.Errorf("storage: report has no id")
	}
	dir := filepath.Join(s.baseDir, reportsDir, rep.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "report.json"), rep)
}

func (s *Store) LoadReport(id string) (*validation.Report, error) {
	var rep validation.Report
	if err := readJSON(filepath.Join(s.baseDir, reportsDir, id, "report.json"), &rep); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: report %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	return &rep, nil
}

// ListReports returns saved reports, newest first.
func (s *Store) ListReports() ([]*validation.Report, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, reportsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var reps []*validation.Report
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rep, err := s.LoadReport(e.Name())
		if err != nil {
			continue
		}
		reps = append(reps, rep)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i].Created.After(reps[j].Created) })
	return reps, nil
}
