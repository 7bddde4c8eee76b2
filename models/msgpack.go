package models

import (
	"encoding/base64"

	"github.com/rohanthewiz/serr"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgPackNoteRequest is the JSON request format used when the client sends
// X-Body-Encoding: msgpack. Only the content travels as Base64 msgpack bytes;
// the other fields stay plain JSON.
type MsgPackNoteRequest struct {
	ModuleID       string    `json:"moduleId"`
	Title          string    `json:"title,omitempty"`
	ContentEncoded string    `json:"content_encoded"`
	Tags           *[]string `json:"tags,omitempty"`
	Kind           NoteKind  `json:"type,omitempty"`
}

// MsgPackNoteResponse mirrors Note with the content msgpack encoded.
type MsgPackNoteResponse struct {
	ID             string   `json:"id"`
	ModuleID       string   `json:"moduleId"`
	Title          string   `json:"title"`
	ContentEncoded string   `json:"content_encoded"`
	Tags           []string `json:"tags"`
	Kind           NoteKind `json:"type"`
	CreatedAt      int64    `json:"createdAt"`
}

// EncodeMsgPackContent encodes content as Base64 msgpack. Empty content encodes to "".
func EncodeMsgPackContent(content string) (string, error) {
	if content == "" {
		return "", nil
	}
	raw, err := msgpack.Marshal(content)
	if err != nil {
		return "", serr.Wrap(err, "failed to msgpack encode content")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeMsgPackContent reverses EncodeMsgPackContent.
func DecodeMsgPackContent(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", serr.Wrap(err, "failed to decode base64 content")
	}
	var content string
	if err := msgpack.Unmarshal(raw, &content); err != nil {
		return "", serr.Wrap(err, "failed to unmarshal msgpack content")
	}
	return content, nil
}

// ToNoteInput decodes the content and returns a plain NoteInput.
func (r *MsgPackNoteRequest) ToNoteInput() (NoteInput, error) {
	content, err := DecodeMsgPackContent(r.ContentEncoded)
	if err != nil {
		return NoteInput{}, err
	}
	in := NoteInput{ModuleID: r.ModuleID, Title: r.Title, Content: content, Kind: r.Kind}
	if r.Tags != nil {
		in.Tags = *r.Tags
	}
	return in, nil
}

// ToNoteUpdate decodes the content and returns an update touching the sent fields.
func (r *MsgPackNoteRequest) ToNoteUpdate() (NoteUpdate, error) {
	var upd NoteUpdate
	if r.ContentEncoded != "" {
		content, err := DecodeMsgPackContent(r.ContentEncoded)
		if err != nil {
			return NoteUpdate{}, err
		}
		upd.Content = &content
	}
	if r.Title != "" {
		title := r.Title
		upd.Title = &title
	}
	upd.Tags = r.Tags
	return upd, nil
}

// ToMsgPackResponse encodes a note's content for a msgpack-mode client.
func (n Note) ToMsgPackResponse() (*MsgPackNoteResponse, error) {
	encoded, err := EncodeMsgPackContent(n.Content)
	if err != nil {
		return nil, err
	}
	return &MsgPackNoteResponse{
		ID:             n.ID,
		ModuleID:       n.ModuleID,
		Title:          n.Title,
		ContentEncoded: encoded,
		Tags:           n.Tags,
		Kind:           n.Kind,
		CreatedAt:      n.CreatedAt,
	}, nil
}
