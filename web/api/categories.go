package api

import (
	"encoding/json"
	"net/http"

	"notevault/models"

	"github.com/rohanthewiz/rweb"
)

// CategoryOutput is a category with its note count.
type CategoryOutput struct {
	models.Category
	NoteCount int `json:"noteCount"`
}

// ListCategories handles GET /api/v1/modules
func (h *Handlers) ListCategories(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	counts := h.Store.NoteCounts()
	cats := h.Store.Categories()
	out := make([]CategoryOutput, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryOutput{Category: c, NoteCount: counts[c.ID]})
	}
	return writeSuccess(ctx, http.StatusOK, out)
}

// CreateCategory handles POST /api/v1/modules
func (h *Handlers) CreateCategory(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	var input models.CategoryInput
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
	}

	opCtx, cancel := h.opContext()
	defer cancel()
	cat, err := h.Store.CreateCategory(opCtx, input)
	if err != nil {
		return writeStoreError(ctx, err, "create category")
	}
	return writeSuccess(ctx, http.StatusCreated, cat)
}

// RenameCategory handles PUT /api/v1/modules/:id
func (h *Handlers) RenameCategory(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	id := ctx.Request().Param("id")
	var input models.CategoryInput
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
	}

	opCtx, cancel := h.opContext()
	defer cancel()
	cat, err := h.Store.RenameCategory(opCtx, id, input)
	if err != nil {
		return writeStoreError(ctx, err, "update category")
	}
	return writeSuccess(ctx, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /api/v1/modules/:id
// Notes of the category are kept and show up as uncategorized.
func (h *Handlers) DeleteCategory(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	id := ctx.Request().Param("id")
	opCtx, cancel := h.opContext()
	defer cancel()
	if err := h.Store.DeleteCategory(opCtx, id); err != nil {
		return writeStoreError(ctx, err, "delete category")
	}
	return writeSuccess(ctx, http.StatusOK, map[string]string{"deleted": id})
}
