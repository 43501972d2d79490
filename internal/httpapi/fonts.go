package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gogpu/artboard"
)

// uploadFont registers the multipart "file" under a synthesized family
// name and returns it.
func (s *Server) uploadFont(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > s.deps.MaxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("font exceeds %d bytes", s.deps.MaxUploadBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		failErr(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.deps.MaxUploadBytes))
	if err != nil {
		failErr(c, err)
		return
	}

	family, err := s.deps.Fonts.RegisterUpload(data)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	artboard.Logger().Info("http: font uploaded", "family", family, "file", fh.Filename, "bytes", len(data))
	c.JSON(http.StatusOK, envelope{OK: true, Family: family})
}
