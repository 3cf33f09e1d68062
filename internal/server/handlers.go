package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/profile"
)

const (
	maxMultipartMemory = extract.MaxFileSize + 1<<20
	maxLoggedJobLength = 200
)

// MatchResponse is returned by POST /api/match-resume.
type MatchResponse struct {
	Score      float64 `json:"score"`
	Feedback   string  `json:"feedback"`
	MatchLevel string  `json:"matchLevel"`
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
}

// ErrorResponse is returned for any failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// ProfilesResponse is returned by GET /api/profiles.
type ProfilesResponse struct {
	Default  string        `json:"default"`
	Profiles []ProfileInfo `json:"profiles"`
}

type ProfileInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg, Success: false})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.config.Service,
	})
}

func (s *Server) profiles(c *gin.Context) {
	resp := ProfilesResponse{Default: s.registry.Default()}
	for _, name := range s.registry.Names() {
		p, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		resp.Profiles = append(resp.Profiles, ProfileInfo{Name: p.Name, Description: p.Description})
	}
	c.JSON(http.StatusOK, resp)
}

// matchResume handles POST /api/match-resume.
func (s *Server) matchResume(c *gin.Context) {
	fh, err := c.FormFile("resume")
	if err != nil || fh == nil {
		fail(c, http.StatusBadRequest, "No resume file provided")
		return
	}
	if fh.Filename == "" {
		fail(c, http.StatusBadRequest, "No file selected")
		return
	}

	job := strings.TrimSpace(c.PostForm("jobDescription"))
	if job == "" {
		fail(c, http.StatusBadRequest, "Job description is required")
		return
	}

	if !extract.SupportedExtension(fh.Filename) {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Unsupported file type. Please use: %s", strings.Join(extract.Extensions, ", ")))
		return
	}
	if fh.Size > extract.MaxFileSize {
		fail(c, http.StatusBadRequest, extract.ErrTooLarge.Error())
		return
	}

	profileName := c.PostForm("profile")
	if profileName == "" {
		profileName = c.Query("profile")
	}
	a, err := s.analyzer(profileName)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	log := logger.WithFields(
		logger.WithAnalysisFields(s.logger, a.Profile(), fh.Filename),
		logger.StringFields(logger.StringField{Key: logger.FieldRequestID, Value: RequestID(c)})...,
	)
	log.Debug("match request", zap.String("job_description", logger.TruncateForLog(job, maxLoggedJobLength)))

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := extract.ReadLimited(f, extract.MaxFileSize)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	text, err := extract.Extract(fh.Filename, data)
	if err != nil {
		log.Info("extracting resume text", zap.Error(err))
		fail(c, http.StatusBadRequest, "Could not extract text from the resume file")
		return
	}

	result, err := a.Analyze(c.Request.Context(), text, job)
	switch {
	case errors.Is(err, analyzer.ErrNoUsableInput):
		fail(c, http.StatusBadRequest, "Neither the resume nor the job description contains usable text")
		return
	case err != nil:
		log.Error("analyzing resume", zap.Error(err))
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "Failed to process resume")
		return
	}

	c.JSON(http.StatusOK, MatchResponse{
		Score:      result.Score,
		Feedback:   result.Feedback,
		MatchLevel: string(result.MatchLevel),
		Success:    result.Success,
		Message:    "Resume analyzed successfully",
	})
}

func (s *Server) analyzer(name string) (*analyzer.Analyzer, error) {
	p, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	a, ok := s.analyzers[profile.NormalizeName(p.Name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", profile.ErrUnknownProfile, name)
	}
	return a, nil
}
