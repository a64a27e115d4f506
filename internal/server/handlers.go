package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/novelquest/backend/internal/extract"
	"github.com/novelquest/backend/internal/pdftext"
)

type processLinkRequest struct {
	URL string `json:"url"`
}

// extractionResult is the success payload of both extraction routes.
type extractionResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"message": "Welcome to NovelQuest API. Use /api/ for health check.",
		"endpoints": gin.H{
			"health_check": "/api/",
			"process_link": "/api/process-link",
			"process_pdf":  "/api/process-pdf",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"message": "NovelQuest API is running",
		"features": gin.H{
			"firebase_admin": s.caps.IdentityProvider,
			"pdf_parser":     s.caps.PDFParser,
		},
	})
}

// handleProcessLink fetches a URL and strips its HTML body to plain text.
func (s *Server) handleProcessLink(c *gin.Context) {
	var req processLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "No JSON payload received")
		return
	}
	if req.URL == "" {
		errorJSON(c, http.StatusBadRequest, "No URL provided")
		return
	}

	body, contentType, err := s.fetcher.Get(c.Request.Context(), req.URL)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Network error: "+err.Error())
		return
	}

	doc, err := extract.FromHTML(body, contentType)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Internal server error: "+err.Error())
		return
	}

	title := doc.Title
	if title == "" {
		// Fall back to the last path segment of the URL
		parts := strings.Split(req.URL, "/")
		title = parts[len(parts)-1]
	}
	name := "Web Article"
	if title != "" {
		name = extract.Truncate(title, s.cfg.NameChars)
	}

	c.JSON(http.StatusOK, extractionResult{
		Name:    name,
		Content: extract.Truncate(doc.Text, s.cfg.ContentChars),
	})
}

// handleProcessPDF extracts the text of an uploaded PDF. The filename and
// the concatenated page text are returned unmodified.
func (s *Server) handleProcessPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		// A part sent with an explicitly empty filename parses as a plain
		// form value rather than a file, so it never reaches FormFile.
		if form, ferr := c.MultipartForm(); ferr == nil && form != nil {
			if _, ok := form.Value["file"]; ok {
				errorJSON(c, http.StatusBadRequest, "Empty filename")
				return
			}
		}
		errorJSON(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if fileHeader.Filename == "" {
		errorJSON(c, http.StatusBadRequest, "Empty filename")
		return
	}
	if !s.caps.PDFParser {
		errorJSON(c, http.StatusInternalServerError, "PDF parser not installed")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "PDF Error: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "PDF Error: "+err.Error())
		return
	}

	text, err := pdftext.Extract(data, s.cfg.PDFPages)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "PDF Error: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, extractionResult{
		Name:    fileHeader.Filename,
		Content: text,
	})
}
