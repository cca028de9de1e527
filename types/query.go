package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

// ChatMessage is one turn of prior conversation, role-tagged the way the
// generation provider expects.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatParams is the body of POST /api/v1/chat.
type ChatParams struct {
	SessionID   string        `json:"session_id" validate:"required"`
	UserMessage string        `json:"user_message"`
	ChatHistory []ChatMessage `json:"chat_history" validate:"dive"`
	Lead        bool          `json:"lead"`
}

func (params *ChatParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

// UploadResponse is returned once a document has been extracted, chunked,
// embedded and upserted.
type UploadResponse struct {
	SessionID  string `json:"session_id"`
	Summary    string `json:"summary"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
}

// SourcePreview is a citation entry shown next to an answer. Excerpt is
// shortened for display; the full chunk text stays in the store.
type SourcePreview struct {
	Page     int     `json:"page"`
	Distance float64 `json:"distance"`
	Excerpt  string  `json:"excerpt"`
}

// ChatResponse carries the assistant message and the sources that actually
// made it into the grounding context.
type ChatResponse struct {
	AIMessage string          `json:"ai_message"`
	Sources   []SourcePreview `json:"sources"`
}
