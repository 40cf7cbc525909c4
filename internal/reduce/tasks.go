package reduce

import (
	"sort"

	"flock/internal/core"
	"flock/internal/normalize"
	"flock/internal/timewindow"
)

// ReduceTasks reports the task backlog. Status counts cover every task;
// window only bounds CompletedInWindow.
func ReduceTasks(tasks []core.Task, window *timewindow.Window, opts Options) core.TaskStats {
	stats := core.TaskStats{ByPriority: []core.LabelCount{}, DueSoon: []core.TaskSummary{}}
	priorities := newCounter()
	var due []core.Task

	for _, t := range tasks {
		if t.CreatedAt.IsZero() {
			continue
		}
		stats.Total++
		status := normalize.Normalize(t.Status, normalize.TaskStatus)
		switch status {
		case normalize.TaskOpen:
			stats.Open++
		case normalize.TaskInProgress:
			stats.InProgress++
		case normalize.TaskDone:
			stats.Done++
			if t.CompletedAt != nil && timewindow.In(window, *t.CompletedAt) {
				stats.CompletedInWindow++
			}
		case normalize.TaskCancelled:
			stats.Cancelled++
		default:
			// Unrecognised statuses count as open work.
			stats.Open++
			status = normalize.TaskOpen
		}

		if isOpenTask(status) {
			priorities.add(normalize.Normalize(t.Priority, normalize.TaskPriority))
			if t.DueAt != nil {
				due = append(due, t)
				if t.DueAt.Before(opts.Now) {
					stats.Overdue++
				}
			}
		}
	}

	stats.CompletionRate = percent(float64(stats.Done), float64(stats.Total-stats.Cancelled))
	stats.ByPriority = priorities.result()

	sort.SliceStable(due, func(i, j int) bool { return due[i].DueAt.Before(*due[j].DueAt) })
	for i, t := range due {
		if i == UpcomingLimit {
			break
		}
		stats.DueSoon = append(stats.DueSoon, core.TaskSummary{
			ID:         t.ID,
			Title:      t.Title,
			Priority:   normalize.Normalize(t.Priority, normalize.TaskPriority),
			AssigneeID: t.AssigneeID,
			DueAt:      t.DueAt,
		})
	}
	return stats
}
