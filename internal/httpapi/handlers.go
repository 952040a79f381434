package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"spinescan/internal/extraction"
	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/render"
	"spinescan/internal/services"
	"spinescan/internal/textutil"
)

// ResolveRequest is the body of POST /api/resolve. Queries wins when both
// fields are set.
type ResolveRequest struct {
	Queries []string `json:"queries"`
	Text    string   `json:"text"`
}

// ProviderView is one entry of GET /api/providers.
type ProviderView struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	Enabled bool   `json:"enabled"`
	Active  bool   `json:"active"`
	Reason  string `json:"reason,omitempty"`
}

// ProvidersResponse is the body of GET /api/providers.
type ProvidersResponse struct {
	Providers []ProviderView `json:"providers"`
	Engines   []string       `json:"engines"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleProviders(c *gin.Context) {
	settings := s.svc.Providers()
	views := make([]ProviderView, 0, len(settings))
	for _, p := range settings {
		views = append(views, ProviderView{
			Name:    p.Name,
			Source:  p.Source,
			Enabled: p.Enabled,
			Active:  p.Active(),
			Reason:  p.Reason,
		})
	}
	engines := s.svc.Engines()
	if engines == nil {
		engines = []string{}
	}
	c.JSON(http.StatusOK, ProvidersResponse{Providers: views, Engines: engines})
}

func (s *Server) handleResolve(c *gin.Context) {
	format, ok := s.format(c)
	if !ok {
		return
	}
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "resolve", "invalid request body", err))
		return
	}

	var (
		set metadata.ResultSet
		err error
	)
	if len(req.Queries) > 0 {
		set, err = s.svc.Resolve(c.Request.Context(), req.Queries)
	} else {
		set, err = s.svc.ResolveText(c.Request.Context(), req.Text)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeResult(c, format, set, downloadName("", format))
}

func (s *Server) handleScan(c *gin.Context) {
	format, ok := s.format(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, extraction.MaxImageBytes+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "scan", `multipart field "image" required`, err))
		return
	}
	file, err := header.Open()
	if err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "scan", "open upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, extraction.MaxImageBytes+1))
	if err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "scan", "read upload", err))
		return
	}
	img, err := extraction.NewImage(header.Filename, data)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.svc.Scan(c.Request.Context(), img)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("X-Extracted-Lines", fmt.Sprint(len(result.Lines)))
	s.writeResult(c, format, result.Results, downloadName(img.Name, format))
}

func (s *Server) format(c *gin.Context) (render.Format, bool) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		s.writeError(c, err)
		return "", false
	}
	return format, true
}

func (s *Server) writeResult(c *gin.Context, format render.Format, set metadata.ResultSet, name string) {
	data, err := render.Bytes(format, set)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if format.Binary() || isTruthy(c.Query("download")) {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(logging.WithContext(c.Request.Context(), s.logger), "request failed", "api_request_failed",
			logging.String("path", c.FullPath()),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// downloadName is cd_metadata with the format's extension, prefixed with the
// uploaded image's name when there is one.
func downloadName(image string, format render.Format) string {
	name := strings.TrimSuffix(render.DefaultFileName, ".json") + format.Extension()
	stem := textutil.SanitizeFileName(strings.TrimSuffix(image, filepath.Ext(image)))
	if stem == "" {
		return name
	}
	return stem + "_" + name
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
