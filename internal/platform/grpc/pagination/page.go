// Package pagination normalizes page sizing and ordering for list
// operations over the roster and the event log.
package pagination

import "fmt"

// PageSizeConfig bounds the page size a caller may request.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig restricts order_by to the sort orders a list supports.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize resolves a requested page size against the configured
// default and ceiling. Non-positive requests fall back to the default.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// NormalizeOrderBy resolves order_by against the allowed sort orders,
// falling back to the default when the request leaves it empty.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	if orderBy == "" {
		return cfg.Default, nil
	}
	for _, allowed := range cfg.Allowed {
		if orderBy == allowed {
			return orderBy, nil
		}
	}
	return "", fmt.Errorf("invalid order_by: %s", orderBy)
}
