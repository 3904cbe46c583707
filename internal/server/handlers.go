package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/playlist"
	"github.com/toozej/precureplaylist/internal/store"
	"github.com/toozej/precureplaylist/internal/types"
)

// DecodeFailure is the data of a 422 response to a rejected document.
type DecodeFailure struct {
	Kind   string `json:"kind"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// PlaylistSummary is a stored playlist without its tracks.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	TrackCount  int       `json:"track_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    gin.H{"status": "ok"},
	})
}

// exportDocument turns a posted playlist in any supported shape into a document.
func (s *Server) exportDocument(c *gin.Context) {
	format, ok := s.format(c)
	if !ok {
		return
	}

	body, ok := s.readBody(c)
	if !ok {
		return
	}
	raw, err := codec.Parse(body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	allowEmpty, _ := strconv.ParseBool(c.Query("allow_empty"))
	result, err := s.playlists.Export(c.Request.Context(), playlist.ExportRequest{
		Raw:        raw,
		Format:     format,
		AllowEmpty: allowEmpty,
	})
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: result})
}

// importDocument validates a posted document and optionally saves it.
func (s *Server) importDocument(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	raw, err := codec.Parse(body)
	if err != nil {
		s.rejectDocument(c, &codec.DecodeError{
			Stage:  codec.StageStart,
			Kind:   codec.ErrMalformedDocument,
			Reason: "request body is not valid JSON",
		})
		return
	}

	save, _ := strconv.ParseBool(c.Query("save"))
	publish, _ := strconv.ParseBool(c.Query("publish"))

	result, err := s.playlists.Import(c.Request.Context(), raw, playlist.ImportOptions{
		Save:    save,
		UserID:  s.opts.UserID,
		Publish: publish,
	})
	if de, ok := codec.IsDecodeError(err); ok {
		s.rejectDocument(c, de)
		return
	}
	if err != nil && result == nil {
		s.fail(c, statusFor(err), err)
		return
	}
	if err != nil {
		// Saved but publishing failed part way.
		c.JSON(http.StatusBadGateway, types.APIResponse{Success: false, Data: result, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: result})
}

func (s *Server) listPlaylists(c *gin.Context) {
	userID := c.DefaultQuery("user_id", s.opts.UserID)

	rows, err := s.playlists.ListPlaylists(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	rows = s.playlists.FilterPlaylistsBySearch(rows, c.Query("q"))

	summaries := make([]PlaylistSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, PlaylistSummary{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			IsPublic:    r.IsPublic,
			TrackCount:  len(r.Tracks),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: summaries})
}

func (s *Server) exportStored(c *gin.Context) {
	format, ok := s.format(c)
	if !ok {
		return
	}

	allowEmpty, _ := strconv.ParseBool(c.Query("allow_empty"))
	result, err := s.playlists.Export(c.Request.Context(), playlist.ExportRequest{
		PlaylistID: c.Param("id"),
		Format:     format,
		AllowEmpty: allowEmpty,
	})
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: result})
}

func (s *Server) deletePlaylist(c *gin.Context) {
	if err := s.playlists.DeletePlaylist(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: gin.H{"id": c.Param("id")}})
}

func (s *Server) format(c *gin.Context) (codec.Format, bool) {
	name := c.Query("format")
	if name == "" {
		return s.opts.DefaultFormat, true
	}
	format, err := codec.ParseFormat(name)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return "", false
	}
	return format, true
}

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.fail(c, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return nil, false
	}
	return body, true
}

func (s *Server) rejectDocument(c *gin.Context, de *codec.DecodeError) {
	s.logger.WithFields(log.Fields{
		"component": "server",
		"operation": "import",
		"kind":      de.Code(),
		"stage":     string(de.Stage),
	}).Info("Rejected document")

	c.JSON(http.StatusUnprocessableEntity, types.APIResponse{
		Success: false,
		Data: DecodeFailure{
			Kind:   de.Code(),
			Stage:  string(de.Stage),
			Reason: de.Reason,
		},
		Error: de.Error(),
	})
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("component", "server").Error("Request failed")
	}
	c.JSON(status, types.APIResponse{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, codec.ErrUnknownFormat),
		errors.Is(err, codec.ErrMalformedDocument),
		errors.Is(err, playlist.ErrNoSource):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, playlist.ErrNothingToExport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, playlist.ErrStoreUnavailable),
		errors.Is(err, playlist.ErrSpotifyUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, playlist.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
