package application

import "github.com/automator-io/admin-service/pkg/resterr"

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// Page is the pagination block attached to every list response.
type Page struct {
	TotalCount    int64 `json:"total_count"`
	ReturnedCount int   `json:"returned_count"`
	Limit         int   `json:"limit"`
	Skip          int   `json:"skip"`
	HasMore       bool  `json:"has_more"`
}

func newPage(total int64, returned, limit, skip int) Page {
	return Page{
		TotalCount:    total,
		ReturnedCount: returned,
		Limit:         limit,
		Skip:          skip,
		HasMore:       int64(skip+returned) < total,
	}
}

func validatePageParams(limit, skip int) *resterr.Error {
	if limit < 1 || limit > maxPageLimit {
		return resterr.BadRequest("INVALID_LIMIT", "Limit must be between 1 and 1000").WithField("limit")
	}
	if skip < 0 {
		return resterr.BadRequest("INVALID_SKIP", "Skip must be 0 or greater").WithField("skip")
	}
	return nil
}
