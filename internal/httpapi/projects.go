package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/render"
)

type createRequest struct {
	GenerationID string            `json:"generationId"`
	Project      *artboard.Project `json:"project"`
}

type updateRequest struct {
	Project *artboard.Patch `json:"project"`
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.deps.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{OK: true, Project: p})
}

func (s *Server) createProject(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	if req.GenerationID == "" || req.Project == nil {
		fail(c, http.StatusBadRequest, "missing generationId or project")
		return
	}
	p, err := s.deps.Store.Create(c.Request.Context(), req.GenerationID, req.Project)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{OK: true, Project: p})
}

func (s *Server) updateProject(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	if req.Project == nil {
		fail(c, http.StatusBadRequest, "missing project")
		return
	}
	p, err := s.deps.Store.Update(c.Request.Context(), c.Param("id"), *req.Project)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{OK: true, Project: p})
}

func (s *Server) renderProject(c *gin.Context) {
	size := DefaultRenderSize
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(c, http.StatusBadRequest, fmt.Sprintf("invalid size %q", v))
			return
		}
		size = n
	}
	if size > s.deps.MaxRenderSize {
		fail(c, http.StatusBadRequest, fmt.Sprintf("size %d exceeds the limit of %d", size, s.deps.MaxRenderSize))
		return
	}
	format := render.PNG
	if v := c.Query("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			failErr(c, err)
			return
		}
		format = f
	}
	quality := render.DefaultJPEGQuality
	if v := c.Query("quality"); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil || q <= 0 || q > 1 {
			fail(c, http.StatusBadRequest, fmt.Sprintf("invalid quality %q", v))
			return
		}
		quality = q
	}
	if s.renderLimiter != nil && !s.renderLimiter.Allow() {
		fail(c, http.StatusTooManyRequests, "render rate limit exceeded")
		return
	}

	ctx := c.Request.Context()
	p, err := s.deps.Store.Get(ctx, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	data, err := s.deps.Renderer.Render(ctx, p, size, format, quality)
	if err != nil {
		failErr(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}

func (s *Server) exportProject(c *gin.Context) {
	if s.limiter != nil && !s.limiter.Allow() {
		fail(c, http.StatusTooManyRequests, "export rate limit exceeded")
		return
	}
	ctx := c.Request.Context()
	p, err := s.deps.Store.Get(ctx, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	var buf bytes.Buffer
	if err := s.deps.Renderer.Export(ctx, p, &buf); err != nil {
		failErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.ArchiveName(p)))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
