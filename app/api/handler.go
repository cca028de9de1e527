package api

import (
	"fmt"
	"io"
	"strings"

	"paperchat/app/agent"
	"paperchat/loader"
	"paperchat/retriever"
	"paperchat/store"
	"paperchat/types"

	"github.com/gofiber/fiber/v2"
)

const (
	topK               = 4
	sourcePreviewChars = 220
)

type PaperHandler struct {
	loader       *loader.Service
	retriever    *retriever.Retriever
	agent        *agent.Client
	store        store.VectorStorer
	uploadDir    string
	maxCtxChars  int
	defaultQuery string
}

type PaperHandlerConfig struct {
	UploadDir       string
	MaxContextChars int
}

func NewPaperHandler(svc *loader.Service, rtr *retriever.Retriever, ag *agent.Client, storer store.VectorStorer, cfg PaperHandlerConfig) *PaperHandler {
	return &PaperHandler{
		loader:       svc,
		retriever:    rtr,
		agent:        ag,
		store:        storer,
		uploadDir:    cfg.UploadDir,
		maxCtxChars:  cfg.MaxContextChars,
		defaultQuery: "paper overview",
	}
}

// HandleUpload accepts a PDF, runs the ingest pipeline and responds with the
// new session id, a plain-language summary and pipeline counts.
func (h *PaperHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest("missing 'file' form field")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return ErrBadRequest("please upload a PDF file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	path, sessionID, err := loader.PersistUpload(h.uploadDir, data)
	if err != nil {
		return err
	}

	res, err := h.loader.Ingest(c.Context(), path, sessionID)
	if err != nil {
		return err
	}
	if res.ChunkCount == 0 {
		return ErrBadRequest("no extractable text found in PDF")
	}

	// The summary is best-effort: the paper is already queryable, so a
	// generation failure degrades to a message instead of failing the upload.
	summary, err := h.agent.Summarize(c.Context(), loader.FullText(res.Pages))
	if err != nil {
		summary = fmt.Sprintf("Summary unavailable due to an error: %v", err)
	}

	return c.JSON(types.UploadResponse{
		SessionID:  sessionID,
		Summary:    summary,
		PageCount:  len(res.Pages),
		ChunkCount: res.ChunkCount,
	})
}

// HandleChat retrieves grounding context for the user turn and asks the
// mentor agent for the next message.
func (h *PaperHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest("invalid JSON request")
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	// Trim once: a blank message must both fall back to the default
	// retrieval query and trigger the agent's lead turn.
	userMessage := strings.TrimSpace(params.UserMessage)
	query := userMessage
	if query == "" {
		query = h.defaultQuery
	}

	contextBlock, sources, err := h.retriever.BuildContext(
		c.Context(), loader.Collection(params.SessionID), query, topK, h.maxCtxChars,
	)
	if err != nil {
		return err
	}

	answer, err := h.agent.Chat(c.Context(), contextBlock, userMessage, params.ChatHistory, params.Lead)
	if err != nil {
		return err
	}

	return c.JSON(types.ChatResponse{
		AIMessage: answer,
		Sources:   previewSources(sources),
	})
}

// HandleDeleteSession drops the session's collection when the paper is
// replaced or discarded.
func (h *PaperHandler) HandleDeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return ErrBadRequest("missing session id")
	}
	if err := h.store.DropCollection(c.Context(), loader.Collection(sessionID)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"result": "ok"})
}

func previewSources(sources []types.RetrievalResult) []types.SourcePreview {
	previews := make([]types.SourcePreview, len(sources))
	for i, src := range sources {
		excerpt := src.Text
		// Cut on rune count so a multi-byte character is never bisected.
		if runes := []rune(excerpt); len(runes) > sourcePreviewChars {
			excerpt = string(runes[:sourcePreviewChars]) + "…"
		}
		previews[i] = types.SourcePreview{
			Page:     src.Page,
			Distance: src.Distance,
			Excerpt:  excerpt,
		}
	}
	return previews
}
