package http

import (
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/request"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
)

type CreateResourceRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required,oneof=long_table round_table solo_pod multi_pod"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

type ListResourcesRequest struct {
	request.ListParams
	Category string `form:"category" binding:"omitempty,oneof=long_table round_table solo_pod multi_pod"`
}

type AvailabilityRequest struct {
	Date  string `form:"date" binding:"required"`
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}

type ResourceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResourceResponse(res *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        res.ID,
		Name:      res.Name,
		Category:  string(res.Category),
		Capacity:  res.Capacity,
		CreatedAt: res.CreatedAt,
	}
}

type AvailabilityResponse struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Available  bool   `json:"available"`
}
