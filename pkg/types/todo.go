package types

// Todo is a single todo list item.
type Todo struct {
	// ID is assigned by the store on creation and never reassigned.
	ID int64 `json:"id"`

	Title     string `json:"title"`
	Completed bool   `json:"completed"`

	// Order is used by clients for display ordering only.
	Order int `json:"order"`
}

// TodoPatch is a partial Todo as sent in a PATCH body. A nil field means
// "keep the current value". Any id in the body is ignored.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Order     *int    `json:"order,omitempty"`
}

// Merge returns a copy of t with every field set in p applied on top.
// The identity of t is kept regardless of p.
func (t Todo) Merge(p TodoPatch) Todo {
	merged := t
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Completed != nil {
		merged.Completed = *p.Completed
	}
	if p.Order != nil {
		merged.Order = *p.Order
	}
	return merged
}
