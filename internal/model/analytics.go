package model

// StatusSummary counts tasks per board column
type StatusSummary struct {
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}

// Summarize counts tasks by status. Unknown statuses only add to Total.
func Summarize(tasks []Task) StatusSummary {
	var s StatusSummary
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case StatusTodo:
			s.Todo++
		case StatusInProgress:
			s.InProgress++
		case StatusDone:
			s.Done++
		}
	}
	return s
}

// Count returns the number of tasks in the given column
func (s StatusSummary) Count(status Status) int {
	switch status {
	case StatusTodo:
		return s.Todo
	case StatusInProgress:
		return s.InProgress
	case StatusDone:
		return s.Done
	default:
		return 0
	}
}

// Percent returns the share of tasks in the given column, 0-100
func (s StatusSummary) Percent(status Status) int {
	if s.Total == 0 {
		return 0
	}
	return s.Count(status) * 100 / s.Total
}
