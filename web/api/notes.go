package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"notevault/models"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

// BodyEncodingHeader switches note content to Base64 msgpack when set to "msgpack".
const BodyEncodingHeader = "X-Body-Encoding"

func wantsMsgPack(ctx rweb.Context) bool {
	return strings.EqualFold(ctx.Request().Header(BodyEncodingHeader), "msgpack")
}

// CreateNoteResponse carries the created note and, for analyzed notes, the analysis.
type CreateNoteResponse struct {
	Note     interface{}      `json:"note"`
	Analysis *models.Analysis `json:"analysis,omitempty"`
}

// writeNote sends a note, msgpack-encoding its content when the client asked for it.
func writeNote(ctx rweb.Context, status int, note models.Note) error {
	if !wantsMsgPack(ctx) {
		return writeSuccess(ctx, status, note)
	}
	resp, err := note.ToMsgPackResponse()
	if err != nil {
		logger.LogErr(err, "failed to encode note content", "id", note.ID)
		return writeError(ctx, http.StatusInternalServerError, "failed to encode note")
	}
	ctx.Response().SetHeader(BodyEncodingHeader, "msgpack")
	return writeSuccess(ctx, status, resp)
}

// ListNotes handles GET /api/v1/notes
//
// Query parameters:
//   - module: category id, or "uncategorized" for notes whose category is gone
//   - q: case-insensitive substring of title or content
//   - tag, type: exact tag and kind filters
//   - limit: maximum number of results
func (h *Handlers) ListNotes(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	req := ctx.Request()
	filter := models.NoteFilter{
		ModuleID: req.QueryParam("module"),
		Query:    req.QueryParam("q"),
		Tag:      req.QueryParam("tag"),
		Kind:     models.NoteKind(req.QueryParam("type")),
	}
	if limitStr := req.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return writeError(ctx, http.StatusBadRequest, "invalid limit parameter")
		}
		filter.Limit = limit
	}

	notes := h.Store.Notes(filter)
	if !wantsMsgPack(ctx) {
		return writeSuccess(ctx, http.StatusOK, notes)
	}

	out := make([]*models.MsgPackNoteResponse, 0, len(notes))
	for _, n := range notes {
		resp, err := n.ToMsgPackResponse()
		if err != nil {
			logger.LogErr(err, "failed to encode note content", "id", n.ID)
			return writeError(ctx, http.StatusInternalServerError, "failed to encode notes")
		}
		out = append(out, resp)
	}
	ctx.Response().SetHeader(BodyEncodingHeader, "msgpack")
	return writeSuccess(ctx, http.StatusOK, out)
}

// GetNote handles GET /api/v1/notes/:id
func (h *Handlers) GetNote(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	note, err := h.Store.Note(ctx.Request().Param("id"))
	if err != nil {
		return writeStoreError(ctx, err, "get note")
	}
	return writeNote(ctx, http.StatusOK, note)
}

// CreateNote handles POST /api/v1/notes
// With ?analyze=true the content is analyzed first; analysis failures fall
// back to a plain note.
func (h *Handlers) CreateNote(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}

	var input models.NoteInput
	body := ctx.Request().Body()
	if wantsMsgPack(ctx) {
		var mp models.MsgPackNoteRequest
		if err := json.Unmarshal(body, &mp); err != nil {
			return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
		}
		in, err := mp.ToNoteInput()
		if err != nil {
			return writeError(ctx, http.StatusBadRequest, "invalid msgpack content")
		}
		input = in
	} else if err := json.Unmarshal(body, &input); err != nil {
		logger.LogErr(serr.Wrap(err, "failed to decode request body"), "invalid JSON")
		return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
	}

	opCtx, cancel := h.opContext()
	defer cancel()

	var (
		note     models.Note
		analysis *models.Analysis
		err      error
	)
	if ctx.Request().QueryParam("analyze") == "true" {
		note, analysis, err = h.Store.CreateNoteWithAnalysis(opCtx, input)
	} else {
		note, err = h.Store.CreateNote(opCtx, input)
	}
	if err != nil {
		return writeStoreError(ctx, err, "create note")
	}

	if analysis == nil {
		return writeNote(ctx, http.StatusCreated, note)
	}
	return writeSuccess(ctx, http.StatusCreated, CreateNoteResponse{Note: note, Analysis: analysis})
}

// UpdateNote handles PUT /api/v1/notes/:id
func (h *Handlers) UpdateNote(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	id := ctx.Request().Param("id")

	var upd models.NoteUpdate
	body := ctx.Request().Body()
	if wantsMsgPack(ctx) {
		var mp models.MsgPackNoteRequest
		if err := json.Unmarshal(body, &mp); err != nil {
			return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
		}
		u, err := mp.ToNoteUpdate()
		if err != nil {
			return writeError(ctx, http.StatusBadRequest, "invalid msgpack content")
		}
		upd = u
	} else if err := json.Unmarshal(body, &upd); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid JSON body")
	}

	opCtx, cancel := h.opContext()
	defer cancel()
	note, err := h.Store.UpdateNote(opCtx, id, upd)
	if err != nil {
		return writeStoreError(ctx, err, "update note")
	}
	return writeNote(ctx, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/v1/notes/:id
func (h *Handlers) DeleteNote(ctx rweb.Context) error {
	if !requireAuth(ctx) {
		return nil
	}
	id := ctx.Request().Param("id")

	opCtx, cancel := h.opContext()
	defer cancel()
	if err := h.Store.DeleteNote(opCtx, id); err != nil {
		return writeStoreError(ctx, err, "delete note")
	}
	return writeSuccess(ctx, http.StatusOK, map[string]string{"deleted": id})
}
