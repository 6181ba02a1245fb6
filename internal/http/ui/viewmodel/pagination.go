package viewmodel

// Pagination contains pagination metadata for list views.
type Pagination struct {
	Page    int
	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
}
