package services

import (
	"slices"
	"sort"

	"github.com/samber/lo"

	"facility-maintenance/microservices/statistics-service/models"
)

const (
	completedWeight = 3
	highWeight      = 2
	mediumWeight    = 1
	lowWeight       = 0.5
	maxRating       = 5
)

type assigneeTally struct {
	userID     string
	assigned   int
	byStatus   map[models.TaskStatus]int
	byPriority map[models.TaskPriority]int
	categories []models.TaskCategory
}

// tallyAssignees fans every task out to each of its distinct assignees.
func tallyAssignees(tasks []models.Task) map[string]*assigneeTally {
	tallies := make(map[string]*assigneeTally)
	for _, task := range tasks {
		task = task.WithDefaults()
		assignees := lo.Uniq(lo.Compact(task.AssignedTo))
		for _, userID := range assignees {
			t, ok := tallies[userID]
			if !ok {
				t = &assigneeTally{
					userID:     userID,
					byStatus:   make(map[models.TaskStatus]int, len(models.Statuses)),
					byPriority: make(map[models.TaskPriority]int, 3),
				}
				tallies[userID] = t
			}
			t.assigned++
			t.byStatus[task.Status]++
			t.byPriority[task.Priority]++
			t.categories = append(t.categories, task.Category...)
		}
	}
	return tallies
}

func (t *assigneeTally) weightedScore() float64 {
	return completedWeight*float64(t.byStatus[models.StatusCompleted]) +
		highWeight*float64(t.byPriority[models.PriorityHigh]) +
		mediumWeight*float64(t.byPriority[models.PriorityMedium]) +
		lowWeight*float64(t.byPriority[models.PriorityLow])
}

func (t *assigneeTally) categoriesWorkedOn() models.CategoriesWorkedOn {
	categories := lo.Uniq(t.categories)
	slices.Sort(categories)
	return models.CategoriesWorkedOn{Categories: categories, Size: len(categories)}
}

// dominantPriority resolves ties toward the more urgent label.
func dominantPriority(high, medium, low int) models.TaskPriority {
	switch {
	case high >= medium:
		return models.PriorityHigh
	case medium >= low:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// rankEntries sorts entries by descending weighted score and assigns dense
// ranks and ratings. Equal scores are ordered by user id so output is stable.
func rankEntries(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WeightedScore != entries[j].WeightedScore {
			return entries[i].WeightedScore > entries[j].WeightedScore
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) == 0 {
		return
	}
	maxScore := entries[0].WeightedScore

	rank := 0
	for i := range entries {
		if i == 0 || entries[i].WeightedScore != entries[i-1].WeightedScore {
			rank++
		}
		entries[i].Rank = rank
		if maxScore > 0 {
			entries[i].Rating = entries[i].WeightedScore / maxScore * maxRating
		}
	}
}

// buildLeaderboard aggregates the window's tasks per assignee. Ranks are
// assigned over every assignee before limit truncates the result; a limit of
// zero or less keeps every entry.
func buildLeaderboard(w Window, tasks []models.Task, users map[string]models.User, progress models.OverallProgress, limit int) []models.LeaderboardEntry {
	tallies := tallyAssignees(tasks)
	interval := w.Interval()

	entries := make([]models.LeaderboardEntry, 0, len(tallies))
	for _, t := range tallies {
		user := users[t.userID]
		high := t.byPriority[models.PriorityHigh]
		medium := t.byPriority[models.PriorityMedium]
		low := t.byPriority[models.PriorityLow]
		completed := t.byStatus[models.StatusCompleted]

		entries = append(entries, models.LeaderboardEntry{
			UserID:             t.userID,
			FirstName:          user.FirstName,
			LastName:           user.LastName,
			FullName:           user.FullName(),
			Email:              user.Email,
			AssignedTasks:      t.assigned,
			CompletedTasks:     completed,
			InProgressTasks:    t.byStatus[models.StatusInProgress],
			PendingTasks:       t.byStatus[models.StatusPending],
			ToDoTasks:          t.byStatus[models.StatusToDo],
			HighPriority:       high,
			MediumPriority:     medium,
			LowPriority:        low,
			CategoriesWorkedOn: t.categoriesWorkedOn(),
			WeightedScore:      t.weightedScore(),
			Prioritization:     dominantPriority(high, medium, low),
			Performance:        completionPerformance(completed, t.assigned),
			Interval:           interval,
			Last30DaysOverall:  progress,
		})
	}

	rankEntries(entries)

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// assigneeIDs lists the distinct assignees of tasks, sorted.
func assigneeIDs(tasks []models.Task) []string {
	ids := lo.Uniq(lo.Compact(lo.FlatMap(tasks, func(task models.Task, _ int) []string {
		return task.AssignedTo
	})))
	slices.Sort(ids)
	return ids
}
