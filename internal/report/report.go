// Package report persists the outcome of an issue check as a YAML file
// that CI hosts can archive next to build logs.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"covcheck/internal/issues"
	"covcheck/internal/stepworkflow"
)

// Verdict summarizes how a check ended.
type Verdict string

const (
	// VerdictPassed means no issues were found.
	VerdictPassed Verdict = "passed"

	// VerdictReported means issues were found and reported without failing.
	VerdictReported Verdict = "reported"

	// VerdictFailed means issues were found and the check failed.
	VerdictFailed Verdict = "failed"

	// VerdictError means the check could not complete.
	VerdictError Verdict = "error"
)

// Report is the persisted record of one issue check.
type Report struct {
	RunID       string                    `yaml:"run_id"`
	GeneratedAt time.Time                 `yaml:"generated_at"`
	Instance    string                    `yaml:"instance"`
	Project     string                    `yaml:"project"`
	View        string                    `yaml:"view"`
	IssueCount  int                       `yaml:"issue_count"`
	Verdict     Verdict                   `yaml:"verdict"`
	Error       string                    `yaml:"error,omitempty"`
	Steps       []stepworkflow.StepRecord `yaml:"steps"`
}

// FromCheck builds a report from a finished check: the request, the
// values returned by [issues.Checker.Check] and the checker's last run.
func FromCheck(req issues.CheckRequest, count int, err error, run issues.Run, at time.Time) Report {
	r := Report{
		RunID:       run.ID,
		GeneratedAt: at.UTC(),
		Instance:    req.InstanceURL,
		Project:     req.ProjectName,
		View:        req.ViewName,
		IssueCount:  count,
		Steps:       run.Records,
	}

	var failure *issues.CheckFailure
	switch {
	case errors.As(err, &failure):
		r.Verdict = VerdictFailed
		r.IssueCount = failure.Count
		r.Error = failure.Message
	case err != nil:
		r.Verdict = VerdictError
		r.Error = err.Error()
	case count > 0:
		r.Verdict = VerdictReported
	default:
		r.Verdict = VerdictPassed
	}
	return r
}

// Write stores r at path as YAML. The file is replaced atomically: data
// goes to a temporary file first, which is then renamed over path.
func Write(path string, r Report) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Read loads a report written by [Write].
func Read(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("failed to parse report: %w", err)
	}
	return r, nil
}
