package models

import (
	"sort"
	"strings"
)

// Category groups notes. The remote collection for categories is "modules".
type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// RecordID implements Record.
func (c Category) RecordID() string { return c.ID }

// CategoryInput is used for creating categories via API, CLI and MCP.
type CategoryInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// NormalizeCategoryTitle trims and upper-cases a category title.
func NormalizeCategoryTitle(title string) string {
	return strings.ToUpper(strings.TrimSpace(title))
}

// Validate rejects a category without a title.
func (in CategoryInput) Validate() error {
	if NormalizeCategoryTitle(in.Title) == "" {
		return newValidationError("title", "category title is required")
	}
	return nil
}

func (c Category) document() Document {
	return Document{
		ID: c.ID,
		Fields: map[string]any{
			"id":          c.ID,
			"title":       c.Title,
			"description": c.Description,
			"createdAt":   c.CreatedAt,
		},
	}
}

func categoryFromDocument(doc Document) Category {
	return Category{
		ID:          doc.ID,
		Title:       fieldString(doc.Fields, "title"),
		Description: fieldString(doc.Fields, "description"),
		CreatedAt:   fieldInt64(doc.Fields, "createdAt"),
	}
}

// SortCategories orders categories oldest first, the way the sidebar lists them.
func SortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].CreatedAt != cats[j].CreatedAt {
			return cats[i].CreatedAt < cats[j].CreatedAt
		}
		return cats[i].ID < cats[j].ID
	})
}
