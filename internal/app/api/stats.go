package api

// Stats summarizes a complaint listing for the admin dashboard.
type Stats struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"byStatus"`
	ByCategory map[Category]int `json:"byCategory"`
	HighOpen   int              `json:"highPriorityOpen"`
}

// Summarize counts complaints by status and category. Every known status and category is
// present in the maps, zero or not.
func Summarize(list []Complaint) Stats {
	st := Stats{
		Total:      len(list),
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByCategory: make(map[Category]int, len(Categories)),
	}
	for _, s := range Statuses {
		st.ByStatus[s] = 0
	}
	for _, c := range Categories {
		st.ByCategory[c] = 0
	}

	for _, c := range list {
		st.ByStatus[c.Status]++
		st.ByCategory[c.Category]++
		if c.Priority == PriorityHigh && c.Status != StatusResolved {
			st.HighOpen++
		}
	}
	return st
}
