package models

// Division is an age/gender competitive bracket. Brackets may overlap; the
// matcher picks the candidate with the lowest SortOrder, then the earliest
// CreatedAt, then ID, so the same athlete always lands in the same bracket.
type Division struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid"`
	Name string `json:"name" gorm:"not null"`

	// nil bounds are unbounded; both bounds are inclusive.
	AgeMin *int `json:"age_min,omitempty"`
	AgeMax *int `json:"age_max,omitempty"`

	// nil matches any gender.
	Gender *string `json:"gender,omitempty"`

	SortOrder int `json:"sort_order" gorm:"column:sort_order;default:0"`

	Timestamps
}
