package handlers

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ourpaint/ourpainthub/backend/internal/middleware"
	"github.com/ourpaint/ourpainthub/backend/internal/services"
	"github.com/ourpaint/ourpainthub/backend/pkg/response"
)

// maxMediaBytes caps media uploads at 500 MiB (installer builds).
const maxMediaBytes = 500 << 20

// ContentHandler serves news, documentation, FAQ and media.
type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// --- News ---

func (h *ContentHandler) ListNews(c *gin.Context) {
	items, err := h.contentService.ListNews()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

type newsRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *ContentHandler) CreateNews(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and content are required")
		return
	}
	item, err := h.contentService.CreateNews(middleware.GetUserID(c), req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

type newsUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *ContentHandler) UpdateNews(c *gin.Context) {
	newsID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req newsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid news fields")
		return
	}
	item, err := h.contentService.UpdateNews(middleware.GetUserID(c), newsID, req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

func (h *ContentHandler) DeleteNews(c *gin.Context) {
	newsID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteNews(middleware.GetUserID(c), newsID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// --- Documentation ---

func (h *ContentHandler) ListDocumentation(c *gin.Context) {
	items, err := h.contentService.ListDocumentation(c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

func (h *ContentHandler) GetDocumentation(c *gin.Context) {
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.contentService.GetDocumentation(docID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

type docRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

func (h *ContentHandler) CreateDocumentation(c *gin.Context) {
	var req docRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and content are required")
		return
	}
	item, err := h.contentService.CreateDocumentation(middleware.GetUserID(c), req.Title, req.Content, req.Category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

type docUpdateRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

func (h *ContentHandler) UpdateDocumentation(c *gin.Context) {
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req docUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid documentation fields")
		return
	}
	item, err := h.contentService.UpdateDocumentation(middleware.GetUserID(c), docID, req.Title, req.Content, req.Category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

func (h *ContentHandler) DeleteDocumentation(c *gin.Context) {
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteDocumentation(middleware.GetUserID(c), docID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// --- FAQ ---

func (h *ContentHandler) ListFAQ(c *gin.Context) {
	items, err := h.contentService.ListFAQ(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func (h *ContentHandler) AskQuestion(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "question is required")
		return
	}
	item, err := h.contentService.AskQuestion(middleware.GetUserID(c), req.Question)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

type answerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

func (h *ContentHandler) AnswerQuestion(c *gin.Context) {
	faqID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "answer is required")
		return
	}
	item, err := h.contentService.AnswerQuestion(middleware.GetUserID(c), faqID, req.Answer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

func (h *ContentHandler) DeleteQuestion(c *gin.Context) {
	faqID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteQuestion(middleware.GetUserID(c), faqID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// --- Media ---

func (h *ContentHandler) ListMedia(c *gin.Context) {
	items, err := h.contentService.ListMedia(c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// UploadMedia stores an admin media file from a multipart upload.
// Fields: file, type, name, description.
func (h *ContentHandler) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if file.Size > maxMediaBytes {
		response.BadRequest(c, "media file exceeds the 500 MB limit")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "failed to read upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.ServerError(c, "failed to read upload")
		return
	}

	item, err := h.contentService.UploadMedia(
		middleware.GetUserID(c),
		c.PostForm("type"),
		c.PostForm("name"),
		c.PostForm("description"),
		data,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// DownloadMedia streams a media file.
func (h *ContentHandler) DownloadMedia(c *gin.Context) {
	mediaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	file, meta, err := h.contentService.DownloadMedia(mediaID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Name))
	c.Data(200, "application/octet-stream", file.Data)
}

func (h *ContentHandler) DeleteMedia(c *gin.Context) {
	metaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.DeleteMedia(middleware.GetUserID(c), metaID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
