package miner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spiffcs/racefinder/internal/model"
	"github.com/spiffcs/racefinder/internal/query"
)

var errBoom = errors.New("boom")

// fakeClient serves canned GitHub responses and records every call.
type fakeClient struct {
	pages    map[string][]model.IssuePage // query -> pages, index 0 is page 1
	pageErrs map[string]map[int]error     // query -> page -> error
	comments map[string][]model.Comment
	repos    map[string]*model.Repository
	code     map[string]map[string]int // repo full name -> keyword -> hits
	repoErr  error

	searchCalls  []string
	commentCalls []string
	repoCalls    []string
	codeCalls    []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages:    make(map[string][]model.IssuePage),
		pageErrs: make(map[string]map[int]error),
		comments: make(map[string][]model.Comment),
		repos:    make(map[string]*model.Repository),
		code:     make(map[string]map[string]int),
	}
}

func (f *fakeClient) SearchIssues(_ context.Context, q string, page, _ int) (*model.IssuePage, error) {
	f.searchCalls = append(f.searchCalls, fmt.Sprintf("%s#%d", q, page))
	if err := f.pageErrs[q][page]; err != nil {
		return nil, err
	}
	pages := f.pages[q]
	if page-1 >= len(pages) {
		return &model.IssuePage{}, nil
	}
	p := pages[page-1]
	return &p, nil
}

func (f *fakeClient) Comments(_ context.Context, commentsURL string) ([]model.Comment, error) {
	f.commentCalls = append(f.commentCalls, commentsURL)
	return f.comments[commentsURL], nil
}

func (f *fakeClient) Repository(_ context.Context, repoURL string) (*model.Repository, error) {
	f.repoCalls = append(f.repoCalls, repoURL)
	if f.repoErr != nil {
		return nil, f.repoErr
	}
	repo, ok := f.repos[repoURL]
	if !ok {
		return nil, fmt.Errorf("unknown repository %s", repoURL)
	}
	cp := *repo
	return &cp, nil
}

func (f *fakeClient) CodeMatches(_ context.Context, keyword, repoFullName string) (int, error) {
	f.codeCalls = append(f.codeCalls, repoFullName+":"+keyword)
	return f.code[repoFullName][keyword], nil
}

// addRepo registers a repository under its API URL.
func (f *fakeClient) addRepo(fullName string, stars int, updated time.Time) string {
	u := "https://api.github.com/repos/" + fullName
	f.repos[u] = &model.Repository{
		URL:        u,
		FullName:   fullName,
		Stars:      stars,
		OpenIssues: stars / 10,
		UpdatedAt:  updated,
	}
	return u
}

// onBatch registers result pages for the query built from batch.
func (f *fakeClient) onBatch(batch []string, pages ...model.IssuePage) {
	f.pages[testQuery(batch...)] = pages
}

func testQuery(batch ...string) string {
	return query.Build(batch, query.Options{})
}

// makeIssue creates an issue numbered n in repo fullName.
func makeIssue(fullName string, n int) model.Issue {
	api := fmt.Sprintf("https://api.github.com/repos/%s/issues/%d", fullName, n)
	return model.Issue{
		URL:           api,
		HTMLURL:       fmt.Sprintf("https://github.com/%s/issues/%d", fullName, n),
		Title:         fmt.Sprintf("data race #%d", n),
		CommentsURL:   api + "/comments",
		RepositoryURL: "https://api.github.com/repos/" + fullName,
	}
}

func page(next int, issues ...model.Issue) model.IssuePage {
	return model.IssuePage{Issues: issues, Total: len(issues), NextPage: next}
}

var recent = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
