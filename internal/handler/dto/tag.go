package dto

import (
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

// UpsertTagRequest represents the request body for creating or
// renaming a tag.
type UpsertTagRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TagListResponse represents the tag listing.
type TagListResponse struct {
	Data []TagResponse `json:"data"`
}

// ToTagResponse converts a Tag model to TagResponse DTO.
func ToTagResponse(tag *model.Tag) *TagResponse {
	return &TagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
	}
}

// ToTagListResponse converts Tag models to TagListResponse.
func ToTagListResponse(tags []*model.Tag) *TagListResponse {
	return &TagListResponse{Data: toTagResponses(tags)}
}

func toTagResponses(tags []*model.Tag) []TagResponse {
	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = *ToTagResponse(tag)
	}
	return responses
}
