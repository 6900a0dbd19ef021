package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/models"
	"github.com/masterok/backend/internal/utils"
)

// Ranking weights. Proximity dominates, tools barely nudge.
const (
	weightProximity = 0.4
	weightWorkload  = 0.3
	weightRating    = 0.2
	weightTools     = 0.1

	neutralScore   = 50.0
	neutralRating  = 3.5
	maxProximityKm = 20.0
)

// Matcher selects the best eligible master for a job. All failures degrade
// to "no match": matching must never break job creation.
type Matcher struct {
	masters      db.MasterStore
	jobs         db.JobStore
	maxDailyJobs int
	logger       zerolog.Logger
	now          func() time.Time
}

// NewMatcher builds a matcher. A nil job store switches ranking to the
// simplified rating-only variant since workload cannot be computed.
func NewMatcher(masters db.MasterStore, jobs db.JobStore, maxDailyJobs int, logger zerolog.Logger) *Matcher {
	return &Matcher{
		masters:      masters,
		jobs:         jobs,
		maxDailyJobs: maxDailyJobs,
		logger:       logger.With().Str("component", "matcher").Logger(),
		now:          time.Now,
	}
}

// FindBestMaster returns the top-ranked eligible master, or false when none
// qualifies.
func (m *Matcher) FindBestMaster(ctx context.Context, job models.Job) (models.Master, bool) {
	candidates := m.eligible(ctx, job, nil)
	if len(candidates) == 0 {
		m.logger.Warn().Str("category", job.Category).Msg("no eligible masters")
		return models.Master{}, false
	}
	ranked := m.rank(ctx, candidates, job)
	m.logger.Info().
		Str("job_id", job.ID).
		Str("master_id", ranked[0].ID).
		Int("candidates", len(ranked)).
		Msg("job matched")
	return ranked[0], true
}

// FindAlternatives reruns the filter and ranking excluding given masters and
// returns up to limit candidates.
func (m *Matcher) FindAlternatives(ctx context.Context, job models.Job, excludedIDs []string, limit int) []models.Master {
	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}
	candidates := m.eligible(ctx, job, excluded)
	if len(candidates) == 0 {
		return nil
	}
	ranked := m.rank(ctx, candidates, job)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// eligible applies the filter stage: active status, matching specialization
// and an available schedule slot at the job's target time.
func (m *Matcher) eligible(ctx context.Context, job models.Job, excluded map[string]bool) []models.Master {
	masters, err := m.masters.ListMasters(ctx, models.MasterActive)
	if err != nil {
		m.logger.Error().Err(err).Msg("listing masters failed, treating as no match")
		return nil
	}

	target := m.targetTime(job)
	var out []models.Master
	for _, master := range masters {
		if excluded[master.ID] {
			continue
		}
		if !master.HasSpecialization(job.Category) {
			continue
		}
		if !availableAt(master, target) {
			continue
		}
		out = append(out, master)
	}
	return out
}

func (m *Matcher) targetTime(job models.Job) time.Time {
	if job.ScheduledAt != nil {
		return *job.ScheduledAt
	}
	return m.now()
}

func availableAt(master models.Master, at time.Time) bool {
	if len(master.Schedule) == 0 {
		return false
	}
	day, ok := master.Schedule[strings.ToLower(at.Weekday().String())]
	if !ok || !day.Available {
		return false
	}
	return day.StartHour <= at.Hour() && at.Hour() < day.EndHour
}

// rank scores candidates by the weighted sum and sorts descending. The sort
// is stable so ties keep filter-stage enumeration order. Without a job store
// the richer signals are unavailable and ranking degrades to the simplified
// rating-plus-history ordering.
func (m *Matcher) rank(ctx context.Context, candidates []models.Master, job models.Job) []models.Master {
	if m.jobs == nil {
		return RankSimplified(candidates)
	}
	type scored struct {
		master models.Master
		score  float64
	}
	scoredAll := make([]scored, 0, len(candidates))
	for _, master := range candidates {
		score := m.proximityScore(master, job)*weightProximity +
			m.workloadScore(ctx, master)*weightWorkload +
			ratingScore(master)*weightRating +
			toolsScore(master, job)*weightTools
		scoredAll = append(scoredAll, scored{master, score})
	}
	sort.SliceStable(scoredAll, func(i, j int) bool {
		return scoredAll[i].score > scoredAll[j].score
	})
	out := make([]models.Master, len(scoredAll))
	for i, s := range scoredAll {
		out[i] = s.master
	}
	return out
}

// proximityScore maps distance to the nearest service zone onto [0,100]:
// 0km is 100, 20km is 0, beyond 20km from every zone is 0. Missing geodata
// scores the neutral 50.
func (m *Matcher) proximityScore(master models.Master, job models.Job) float64 {
	if len(master.ServiceZones) == 0 || job.ClientLocation == nil {
		return neutralScore
	}
	for _, zone := range master.ServiceZones {
		distanceKm := utils.HaversineKm(job.ClientLocation.Lat, job.ClientLocation.Lng, zone.Lat, zone.Lng)
		if distanceKm <= maxProximityKm {
			score := 100 - distanceKm*5
			if score < 0 {
				score = 0
			}
			return score
		}
	}
	return 0
}

// workloadScore counts the master's active jobs scheduled today. A nil job
// store yields the neutral score.
func (m *Matcher) workloadScore(ctx context.Context, master models.Master) float64 {
	if m.jobs == nil {
		return neutralScore
	}
	jobs, err := m.jobs.ListJobsByMaster(ctx, master.ID)
	if err != nil {
		m.logger.Error().Err(err).Str("master_id", master.ID).Msg("workload lookup failed")
		return neutralScore
	}

	dayStart := m.now().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	active := 0
	for _, j := range jobs {
		switch j.Status {
		case models.JobAssigned, models.JobInTransit, models.JobInProgress:
		default:
			continue
		}
		at := j.CreatedAt
		if j.ScheduledAt != nil {
			at = *j.ScheduledAt
		}
		if !at.Before(dayStart) && at.Before(dayEnd) {
			active++
		}
	}

	score := 100 - float64(active)/float64(m.maxDailyJobs)*100
	if score < 0 {
		score = 0
	}
	return score
}

func ratingScore(master models.Master) float64 {
	rating := master.Rating
	if rating == 0 {
		rating = neutralRating
	}
	return rating / 5 * 20
}

// toolsScore is the share of required tools the master carries. No required
// tools is a full score; no tool data at all is neutral.
func toolsScore(master models.Master, job models.Job) float64 {
	if job.Instructions == nil || len(master.Tools) == 0 {
		return neutralScore
	}
	required := job.Instructions.RequiredTools
	if len(required) == 0 {
		return 100
	}
	have := make(map[string]bool, len(master.Tools))
	for _, t := range master.Tools {
		have[t] = true
	}
	matched := 0
	for _, t := range required {
		if have[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(required)) * 100
}

// RankSimplified orders masters by rating and completed-job history only.
// Used when schedule and geodata are not obtainable.
func RankSimplified(masters []models.Master) []models.Master {
	out := make([]models.Master, len(masters))
	copy(out, masters)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating*10+float64(out[i].CompletedJobs) > out[j].Rating*10+float64(out[j].CompletedJobs)
	})
	return out
}
