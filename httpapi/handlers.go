package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meigma/certledger"
	"github.com/meigma/certledger/render"
)

// maxUploadBytes bounds verification image uploads.
const maxUploadBytes = 16 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

type issueRequest struct {
	ID         string `json:"id" binding:"required"`
	HolderName string `json:"holderName" binding:"required"`
	CourseName string `json:"courseName" binding:"required"`
	IssueDate  int64  `json:"issueDate" binding:"required"`

	// Image is the base64-encoded certificate image. Optional when the
	// server is configured with a renderer.
	Image []byte `json:"image"`
}

type issueResponse struct {
	ID             string `json:"id"`
	HolderName     string `json:"holderName"`
	CourseName     string `json:"courseName"`
	IssueDate      int64  `json:"issueDate"`
	ContentLocator string `json:"contentLocator"`
	ContentDigest  string `json:"contentDigest"`
	ContentURL     string `json:"contentUrl"`
}

type verifyResponse struct {
	RecordExists      bool   `json:"recordExists"`
	ContentUnmodified bool   `json:"contentUnmodified"`
	ContentVerified   bool   `json:"contentVerified"`
	HolderName        string `json:"holderName,omitempty"`
	CourseName        string `json:"courseName,omitempty"`
	IssueDate         int64  `json:"issueDate,omitempty"`
	ContentLocator    string `json:"contentLocator,omitempty"`
}

type lookupResponse struct {
	RecordExists   bool   `json:"recordExists"`
	IdentityMatch  *bool  `json:"identityMatch,omitempty"`
	HolderName     string `json:"holderName,omitempty"`
	CourseName     string `json:"courseName,omitempty"`
	IssueDate      int64  `json:"issueDate,omitempty"`
	ContentLocator string `json:"contentLocator,omitempty"`
	ContentURL     string `json:"contentUrl,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIssue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	payload := req.Image
	if len(payload) == 0 {
		if s.renderer == nil {
			respondError(c, http.StatusBadRequest, "no image supplied and server-side rendering is not configured")
			return
		}
		// The QR links to the verification URL, which depends only on the
		// identifier, so the stamped image is final before upload.
		rendered, err := s.renderer.RenderWithQR(render.Certificate{
			HolderName: req.HolderName,
			CourseName: req.CourseName,
			ID:         req.ID,
			IssueDate:  req.IssueDate,
		}, s.publicURL+"/api/certificates/"+req.ID)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		payload = rendered
	}

	record, err := s.client.Issue(c.Request.Context(), certledger.IssueRequest{
		ID:         req.ID,
		HolderName: req.HolderName,
		CourseName: req.CourseName,
		IssueDate:  req.IssueDate,
		Payload:    payload,
	})
	if err != nil {
		s.log().Warn("issue failed", "id", req.ID, "error", err)
		respondError(c, issueStatus(err), err.Error())
		return
	}

	c.JSON(http.StatusCreated, issueResponse{
		ID:             record.ID,
		HolderName:     record.HolderName,
		CourseName:     record.CourseName,
		IssueDate:      record.IssueDate,
		ContentLocator: record.ContentLocator,
		ContentDigest:  record.ContentDigest,
		ContentURL:     s.publicURL + "/api/content/" + record.ContentLocator,
	})
}

// issueStatus maps an issuance failure to an HTTP status.
func issueStatus(err error) int {
	var issueErr *certledger.IssuanceError
	if !errors.As(err, &issueErr) {
		return http.StatusInternalServerError
	}
	switch issueErr.Stage {
	case certledger.StageValidate:
		return http.StatusBadRequest
	case certledger.StageDuplicateID:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleLookup(c *gin.Context) {
	id := c.Param("id")

	if holder := c.Query("holder"); holder != "" {
		outcome, err := s.client.VerifyHolder(c.Request.Context(), holder, id)
		if err != nil {
			respondError(c, http.StatusBadGateway, err.Error())
			return
		}
		if !outcome.RecordExists {
			// Holder mismatch and unknown id are deliberately identical.
			respondError(c, http.StatusNotFound, "certificate not found")
			return
		}
		match := true
		c.JSON(http.StatusOK, lookupResponse{
			RecordExists:   true,
			IdentityMatch:  &match,
			HolderName:     outcome.HolderName,
			CourseName:     outcome.CourseName,
			IssueDate:      outcome.IssueDate,
			ContentLocator: outcome.ContentLocator,
			ContentURL:     s.publicURL + "/api/content/" + outcome.ContentLocator,
		})
		return
	}

	outcome, err := s.client.Verify(c.Request.Context(), id, nil)
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}
	if !outcome.RecordExists {
		respondError(c, http.StatusNotFound, "certificate not found")
		return
	}
	c.JSON(http.StatusOK, lookupResponse{
		RecordExists:   true,
		HolderName:     outcome.HolderName,
		CourseName:     outcome.CourseName,
		IssueDate:      outcome.IssueDate,
		ContentLocator: outcome.ContentLocator,
		ContentURL:     s.publicURL + "/api/content/" + outcome.ContentLocator,
	})
}

func (s *Server) handleVerify(c *gin.Context) {
	id := c.Param("id")

	var payload []byte
	file, _, err := c.Request.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		payload, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			respondError(c, http.StatusBadRequest, "read image: "+err.Error())
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// No image: existence is still reported, content stays unverified.
	default:
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.client.Verify(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		RecordExists:      outcome.RecordExists,
		ContentUnmodified: outcome.ContentUnmodified,
		ContentVerified:   outcome.RecordExists && len(payload) > 0,
		HolderName:        outcome.HolderName,
		CourseName:        outcome.CourseName,
		IssueDate:         outcome.IssueDate,
		ContentLocator:    outcome.ContentLocator,
	})
}

func (s *Server) handleContent(c *gin.Context) {
	locator := c.Param("locator")

	content, err := s.client.Content(c.Request.Context(), locator)
	if err != nil {
		switch {
		case errors.Is(err, certledger.ErrInvalidLocator):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, certledger.ErrContentNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		default:
			respondError(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	c.Data(http.StatusOK, "image/png", content)
}
