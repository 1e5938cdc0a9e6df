package constants

type CachePrefix string

const (
	CachePrefixRoutes CachePrefix = "ROUTES_"
)
