package resource

import (
	"net/http"
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidCategory = apperror.New(http.StatusBadRequest, "invalid resource category")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be positive")
)

// Category is the closed set of bookable unit kinds. Each category
// maps to exactly one pricing rule.
type Category string

const (
	CategoryLongTable  Category = "long_table"
	CategoryRoundTable Category = "round_table"
	CategorySoloPod    Category = "solo_pod"
	CategoryMultiPod   Category = "multi_pod"
)

// ValidCategories lists every accepted category value.
var ValidCategories = []Category{
	CategoryLongTable,
	CategoryRoundTable,
	CategorySoloPod,
	CategoryMultiPod,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, v := range ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Resource represents a bookable physical unit (e.g., Meeting Room A, Pod 3).
// The catalog is owned by the admin side; scheduling treats it as immutable.
type Resource struct {
	ID        string
	Name      string
	Category  Category
	Capacity  int
	CreatedAt time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Category string
	Page     int
	PageSize int
}
