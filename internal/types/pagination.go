package types

// Pagination restricts a list query's result window. Limit of 0 means
// "unbounded". Offset requires Limit to be set for backends that have
// no native offset-without-limit support (spec.md §4.2); storage
// implementations that do should treat an unset Limit with a nonzero
// Offset as "use a very large limit".
type Pagination struct {
	Limit  int
	Offset int
}

// RecentlyChangedParams filters RecentlyChangedPlaces: Since is
// inclusive (milliseconds), Until is exclusive.
type RecentlyChangedParams struct {
	Since *int64
	Until *int64
}

// PopularTagsParams filters MostPopularPlaceRevisionTags by count
// bounds (HAVING count BETWEEN Min AND Max).
type PopularTagsParams struct {
	Min *int
	Max *int
}

// TagCount is one row of a popular-tags query result.
type TagCount struct {
	Tag   string
	Count int
}
