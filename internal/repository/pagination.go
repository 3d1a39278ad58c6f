package repository

// Page is the limit/offset window shared by the team, roster, and game
// listing operations. Filtering beyond the window belongs to higher layers.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries one window of items plus the total matching the query,
// so a client can page through a roster without an extra count round trip.
type PageResult[T any] struct {
	Items []T
	Total int
}
