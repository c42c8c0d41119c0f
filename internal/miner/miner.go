package miner

import (
	"context"
	"maps"

	"github.com/spiffcs/racefinder/internal/log"
	"github.com/spiffcs/racefinder/internal/model"
	"github.com/spiffcs/racefinder/internal/query"
)

// ProgressFunc is called after every examined issue with a snapshot of the
// running report.
type ProgressFunc func(Report)

// Miner runs the whole pipeline for one configuration.
type Miner struct {
	settings   Settings
	walker     *Walker
	filter     *Filter
	onProgress ProgressFunc
}

// Option configures a Miner.
type Option func(*Miner)

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Miner) {
		m.onProgress = fn
	}
}

// New creates a Miner that talks to GitHub through client.
func New(settings Settings, client Client, opts ...Option) *Miner {
	m := &Miner{
		settings: settings,
		walker:   NewWalker(client, settings.PerPage, settings.PaginationFailure),
		filter:   NewFilter(settings, NewEnricher(client), client),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// run is the mutable state of a single Run call.
type run struct {
	acc    *Accumulator
	report Report
}

// Run searches every keyword batch, filters the hits and returns the ranked
// top candidates together with a report of the run. Any error aborts the run
// and no candidates are returned.
func (m *Miner) Run(ctx context.Context) ([]model.Candidate, Report, error) {
	r := &run{
		acc:    NewAccumulator(m.settings.TotalCap),
		report: Report{Rejected: make(map[Reason]int)},
	}

	opts := query.Options{
		Status:     m.settings.IssueStatus,
		Languages:  m.settings.Languages,
		MinCreated: m.settings.MinCreated,
	}
	batches := query.Batches(m.settings.SearchKeywords, m.settings.BatchSize)

	for i, batch := range batches {
		q := query.Build(batch, opts)
		log.Info("performing query", "batch", i+1, "of", len(batches), "query", q)

		r.report.Batches++
		stats, err := m.walker.Walk(ctx, q, func(ctx context.Context, issue model.Issue) (Signal, error) {
			return m.process(ctx, r, issue)
		})
		r.report.Pages += stats.Pages
		if err != nil {
			return nil, r.snapshot(), err
		}
		if stats.Signal == Halt {
			log.Info("reached total count, stopping", "accepted", r.acc.Len())
			r.report.Halted = true
			break
		}
	}

	ranked := Rank(r.acc.Results(), m.settings.TopN)
	return ranked, r.snapshot(), nil
}

// process takes one issue through deduplication and the filter funnel.
func (m *Miner) process(ctx context.Context, r *run, issue model.Issue) (Signal, error) {
	r.report.Examined++
	defer m.progress(r)

	if !r.acc.MarkSeen(issue.HTMLURL) {
		m.discard(r, issue, reject(ReasonDuplicate))
		return Continue, nil
	}

	verdict, err := m.filter.Evaluate(ctx, issue)
	if err != nil {
		return Halt, err
	}
	if !verdict.Accepted() {
		m.discard(r, issue, verdict)
		return Continue, nil
	}

	r.report.Accepted++
	log.Debug("issue accepted", "url", issue.HTMLURL, "stars", verdict.Candidate.Stars)
	return r.acc.Accept(verdict.Candidate), nil
}

func (m *Miner) discard(r *run, issue model.Issue, v Verdict) {
	r.report.Rejected[v.Reason]++
	args := append([]any{"url", issue.HTMLURL, "reason", string(v.Reason)}, v.Attrs...)
	log.Info("issue discarded", args...)
}

func (m *Miner) progress(r *run) {
	if m.onProgress != nil {
		m.onProgress(r.snapshot())
	}
}

// snapshot copies the report so callers cannot observe later updates.
func (r *run) snapshot() Report {
	rep := r.report
	rep.Rejected = maps.Clone(r.report.Rejected)
	return rep
}
