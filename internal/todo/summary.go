package todo

// Priority brackets used by Summary. The scale itself is configuration; the
// brackets are fixed reporting buckets.
const (
	bracketCritical = "critical (9-10)"
	bracketHigh     = "high (7-8)"
	bracketMedium   = "medium (4-6)"
	bracketLow      = "low (1-3)"
)

// Summary aggregates task counts by status, category, and priority bracket.
type Summary struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	ByCategory   map[string]int `json:"by_category"`
	ByPriority   map[string]int `json:"by_priority"`
	HighPriority int            `json:"high_priority_count"`
	InProgress   int            `json:"in_progress_count"`
	Dependencies int            `json:"dependencies_count"`
	TodoFile     string         `json:"todo_file"`
}

// Summary computes counts over the full record set. High priority means an
// open todo at priority 8 or above.
func (s *Store) Summary() Summary {
	sum := Summary{
		Total:        len(s.doc.Todos),
		ByStatus:     make(map[string]int, len(s.doc.Statuses)),
		ByCategory:   make(map[string]int, len(s.doc.Categories)),
		ByPriority:   make(map[string]int, 4),
		Dependencies: len(s.doc.Dependencies),
		TodoFile:     s.path,
	}

	for _, status := range s.doc.Statuses {
		sum.ByStatus[status] = 0
	}
	for _, category := range s.doc.Categories {
		sum.ByCategory[category] = 0
	}
	sum.ByPriority[bracketCritical] = 0
	sum.ByPriority[bracketHigh] = 0
	sum.ByPriority[bracketMedium] = 0
	sum.ByPriority[bracketLow] = 0

	for i := range s.doc.Todos {
		t := &s.doc.Todos[i]
		sum.ByStatus[t.Status]++
		sum.ByCategory[t.Category]++
		switch {
		case t.Priority >= 9:
			sum.ByPriority[bracketCritical]++
		case t.Priority >= 7:
			sum.ByPriority[bracketHigh]++
		case t.Priority >= 4:
			sum.ByPriority[bracketMedium]++
		case t.Priority >= 1:
			sum.ByPriority[bracketLow]++
		}
		if t.Priority >= 8 && t.Status == "todo" {
			sum.HighPriority++
		}
		if t.Status == "in_progress" {
			sum.InProgress++
		}
	}
	return sum
}
