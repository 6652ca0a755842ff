package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"docqa/internal/billing"
	"docqa/internal/qa_service/service"
	"docqa/internal/rag/loaders"
	"docqa/internal/rag/pipeline"
	"docqa/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Service is the part of the metered controller the HTTP layer depends on.
type Service interface {
	IndexDocument(ctx context.Context, path string) (int, error)
	RegisterPayer(ctx context.Context, email, name string) (*billing.Payer, error)
	Answer(ctx context.Context, question string) (*service.CombinedResponse, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	svc         Service
	log         *logger.Logger
	uploadDir   string
	maxFileSize int64
}

// NewHandler creates a Handler.
func NewHandler(svc Service, uploadDir string, maxFileSize int64, log *logger.Logger) *Handler {
	return &Handler{
		svc:         svc,
		log:         log,
		uploadDir:   uploadDir,
		maxFileSize: maxFileSize,
	}
}

// expectedMIME maps binary document extensions to the MIME type the file
// content must actually carry. Text formats are checked against text/plain
// instead, since markdown and plain text are indistinguishable by content.
var expectedMIME = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// UploadDocument handles POST /api/v1/documents. It validates the uploaded
// file by extension, size and content type, saves it under the upload
// directory and rebuilds the knowledge index from it.
func (h *Handler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing form file field 'file'"})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large: %d bytes (limit %d)", fileHeader.Size, h.maxFileSize),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !loaders.SupportedExtensions()[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type: %q", ext)})
		return
	}

	// uuid 前缀避免同名文件互相覆盖
	name := uuid.NewString() + "_" + sanitizeFilename(fileHeader.Filename)
	dst := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		h.log.Error(fmt.Sprintf("Failed to save uploaded file: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return
	}

	if err := verifyContentType(dst, ext); err != nil {
		os.Remove(dst)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chunks, err := h.svc.IndexDocument(c.Request.Context(), dst)
	if err != nil {
		h.log.Error(fmt.Sprintf("Indexing failed for %s: %v", fileHeader.Filename, err))
		c.JSON(statusFor(err), gin.H{"error": "failed to index document"})
		return
	}

	h.log.WithPayload(map[string]interface{}{
		"file":   fileHeader.Filename,
		"chunks": chunks,
	}).Info("Document indexed")

	c.JSON(http.StatusOK, gin.H{
		"message": "document indexed successfully",
		"file":    fileHeader.Filename,
		"chunks":  chunks,
	})
}

type registerPayerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// RegisterPayer handles POST /api/v1/payers. Registering a new payer
// replaces the previous one and restarts question metering from zero.
func (h *Handler) RegisterPayer(c *gin.Context) {
	var req registerPayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	payer, err := h.svc.RegisterPayer(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		h.log.Error(fmt.Sprintf("Payer registration failed: %v", err))
		c.JSON(statusFor(err), gin.H{"error": "failed to register payer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "payer registered successfully",
		"payer":   payer,
	})
}

type askQuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskQuestion handles POST /api/v1/questions.
func (h *Handler) AskQuestion(c *gin.Context) {
	var req askQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	resp, err := h.svc.Answer(c.Request.Context(), req.Question)
	if err != nil {
		h.log.Error(fmt.Sprintf("Question failed: %v", err))
		c.JSON(statusFor(err), gin.H{"error": userMessage(err)})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, billing.ErrNoPayer):
		return http.StatusPaymentRequired
	case errors.Is(err, billing.ErrPayment):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrNotInitialized):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns a stable client-facing message for known errors and a
// generic one otherwise.
func userMessage(err error) string {
	switch {
	case errors.Is(err, billing.ErrNoPayer):
		return "no payer registered: register a payer before asking questions"
	case errors.Is(err, billing.ErrPayment):
		return "payment processing failed"
	case errors.Is(err, pipeline.ErrGenerationFailed):
		return "answer generation failed"
	default:
		return "internal server error"
	}
}

// sanitizeFilename strips any path components from the client-supplied name.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	return name
}

// verifyContentType checks that the saved file's content matches its
// extension, so a renamed binary cannot slip past the extension allow-list.
func verifyContentType(path, ext string) error {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to inspect file content: %w", err)
	}

	if want, ok := expectedMIME[ext]; ok {
		if !detected.Is(want) {
			return fmt.Errorf("file content is %s, which does not match %s", detected.String(), ext)
		}
		return nil
	}

	// .txt / .md / .html — 只要求文本内容
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return nil
		}
	}
	return fmt.Errorf("file content is %s, expected a text format for %s", detected.String(), ext)
}
