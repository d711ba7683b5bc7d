package worker

import (
	lm "github.com/gofhir/loinc-mapper"
)

// Job is one search term to resolve.
type Job struct {
	// Index is the term's position in the input batch. Results are
	// reordered by Index, so resolution order never leaks into output
	// order.
	Index int

	// Term is the raw search term.
	Term string
}

// JobResult is the outcome of resolving one term.
type JobResult struct {
	// Index matches the Job.Index that produced this result.
	Index int

	// Term is the raw search term.
	Term string

	// Result holds the ranked rows when resolution succeeded.
	Result *lm.TermResult

	// Error contains any error that aborted resolution.
	Error error

	// Duration is the resolution time in nanoseconds.
	Duration int64
}

// BatchResult aggregates results from a batch of jobs.
type BatchResult struct {
	// Results contains all job results, sorted by Index.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including errors).
	CompletedJobs int

	// TotalDuration is the summed resolution time (in nanoseconds).
	TotalDuration int64
}

// FirstError returns the first error in index order, or nil.
func (br *BatchResult) FirstError() error {
	for _, r := range br.Results {
		if r.Error != nil {
			return r.Error
		}
	}
	return nil
}
