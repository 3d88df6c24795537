package services

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/justsurfingit/temu/internal/flows"
	"github.com/justsurfingit/temu/internal/models"
	"github.com/justsurfingit/temu/internal/wizard"
	"gorm.io/gorm"
)

type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// Match is a posting with the number of expectation rules it satisfies.
type Match struct {
	Job   models.JobPosting `json:"job"`
	Score int               `json:"score"`
}

// Recommend ranks open postings against a job seeker's expectations. A posting
// needs at least one matching rule to be listed.
func (s *MatcherService) Recommend(ctx context.Context, seeker wizard.FormState, limit int) ([]Match, error) {
	want, err := flows.DecodeExpectations(seeker)
	if err != nil {
		return nil, err
	}

	// TODO: push the job type and salary rules into the query once postings outgrow a full scan.
	var jobs []models.JobPosting
	if err := s.DB.WithContext(ctx).Where("status = ?", JobOpen).Order("created_at DESC, id DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}

	var out []Match
	for _, job := range jobs {
		if score := matchScore(want, job); score > 0 {
			out = append(out, Match{Job: job, Score: score})
		}
	}
	slices.SortStableFunc(out, func(a, b Match) int { return cmp.Compare(b.Score, a.Score) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchScore(want flows.JobExpectations, job models.JobPosting) int {
	score := 0

	// Rule 1: job type
	if slices.Contains(want.JobTypes, job.JobType) {
		score++
	}

	// Rule 2: location, remote postings match anywhere
	location := strings.ToLower(job.WorkLocation)
	preferred := strings.ToLower(strings.TrimSpace(want.PreferredLocation))
	if strings.Contains(location, "remote") || (len(preferred) >= 3 && strings.Contains(location, preferred)) {
		score++
	}

	// Rule 3: salary ranges overlap, only when both sides give an upper bound
	if want.SalaryMax > 0 && job.SalaryMax > 0 {
		if job.SalaryMax >= want.SalaryMin && want.SalaryMax >= job.SalaryMin {
			score++
		}
	}
	return score
}
