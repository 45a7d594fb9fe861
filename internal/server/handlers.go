package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"lawdesk/internal/gmail"
	"lawdesk/internal/model"
	"lawdesk/internal/store"

	"github.com/gin-gonic/gin"
)

type fetchRequest struct {
	Credentials gmail.Credentials `json:"credentials"`
	Sender      string            `json:"sender" binding:"required"`
	StartDate   string            `json:"start_date" binding:"required"`
	Limit       int64             `json:"limit" binding:"gte=0"`
	LawyerEmail string            `json:"lawyer_email"`
	CaseID      string            `json:"case_id"`
}

// fetchEmails runs one ingest and answers with the batch. With lawyer_email
// or case_id set the batch is also saved.
func (s *Server) fetchEmails(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}
	if err := req.Credentials.Validate(); err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()
	if req.CaseID != "" {
		if _, err := s.store.GetCase(ctx, req.CaseID); err != nil {
			abortWithError(c, err)
			return
		}
	}

	opts := append([]gmail.Option{}, s.ingestOpts...)
	opts = append(opts, gmail.WithLimit(req.Limit))
	batch, err := s.fetch(ctx, req.Credentials, req.Sender, req.StartDate, opts...)
	if err != nil && batch.Emails == nil {
		abortWithError(c, err)
		return
	}

	if req.LawyerEmail != "" || req.CaseID != "" {
		if err := s.store.SaveEmails(ctx, req.LawyerEmail, req.CaseID, batch.Emails); err != nil {
			abortWithError(c, err)
			return
		}
	}

	resp := gin.H{"emails": batch.Emails}
	if err != nil {
		// Partial batch under the skip-failed policy.
		resp["skipped"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listEmails(c *gin.Context) {
	emails, err := s.store.ListEmails(c.Request.Context(), store.EmailFilter{
		SenderEmail: c.Query("sender"),
		CaseID:      c.Query("case_id"),
		LawyerEmail: c.Query("lawyer_email"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": emails})
}

type lawyerRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *Server) createLawyer(c *gin.Context) {
	var req lawyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}
	l := model.Lawyer{Email: strings.ToLower(req.Email), Name: req.Name, Picture: req.Picture}
	if err := s.store.CreateLawyer(c.Request.Context(), l); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (s *Server) getLawyer(c *gin.Context) {
	l, err := s.store.GetLawyer(c.Request.Context(), c.Param("email"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

type caseRequest struct {
	LawyerEmail string `json:"lawyer_email" binding:"required,email"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Client      string `json:"client"`
}

func (s *Server) createCase(c *gin.Context) {
	var req caseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}
	created, err := s.store.CreateCase(c.Request.Context(), model.Case{
		LawyerEmail: req.LawyerEmail,
		Title:       req.Title,
		Description: req.Description,
		Client:      req.Client,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) listCases(c *gin.Context) {
	cases, err := s.store.ListCases(c.Request.Context(), c.Query("lawyer_email"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

func (s *Server) getCase(c *gin.Context) {
	cs, err := s.store.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (s *Server) extractText(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field 'file' is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		badRequest(c, "only PDF files are supported")
		return
	}
	f, err := fh.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer f.Close()

	text, err := s.ocr.ExtractPDF(c.Request.Context(), f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
