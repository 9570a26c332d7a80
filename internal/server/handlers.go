package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/colorvibe/internal/app"
	"github.com/jmylchreest/colorvibe/internal/colour"
	imgpkg "github.com/jmylchreest/colorvibe/internal/image"
	"github.com/jmylchreest/colorvibe/internal/palette"
	"github.com/jmylchreest/colorvibe/internal/preview"
	"github.com/jmylchreest/colorvibe/internal/telemetry"
	"github.com/jmylchreest/colorvibe/internal/version"
)

var errNoFile = errors.New("no image in request")

// stateView is the JSON form of a session.
type stateView struct {
	app.Snapshot
	Contrast []preview.ContrastCheck `json:"contrast"`
}

func newStateView(snap app.Snapshot) stateView {
	return stateView{Snapshot: snap, Contrast: preview.ContrastReport(snap.Palette)}
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// render shows the upload page until an image is loaded, then the theme page.
func (s *Server) render(c *gin.Context, status int) {
	ctrl := controller(c)
	snap := ctrl.Snapshot()
	page := preview.NewPage(snap, ctrl.TakeNotices())
	page.MaxUpload = s.cfg.Upload.MaxBytes

	name := preview.ThemePage
	if !snap.HasImage {
		name = preview.UploadPage
	}
	c.HTML(status, name, page)
}

// done answers a successful mutation: JSON clients get the new state,
// browsers are redirected back to the page.
func (s *Server) done(c *gin.Context) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, newStateView(controller(c).Snapshot()))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// fail answers a rejected mutation. The notice must already be queued.
func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	if wantsJSON(c) {
		controller(c).TakeNotices()
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	s.render(c, status)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  version.Version,
		"sessions": s.store.Len(),
	})
}

func (s *Server) index(c *gin.Context) {
	s.render(c, http.StatusOK)
}

func (s *Server) upload(c *gin.Context) {
	ctrl := controller(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Upload.MaxBytes+multipartOverhead)

	src, err := s.readUpload(c)
	if err != nil {
		ctrl.RejectImage(err)
		s.log.Warn("upload rejected", "error", err)
		s.fail(c, statusFor(err), err)
		return
	}

	img, err := src.DecodeLimit(s.cfg.Upload.MaxPixels)
	if err != nil {
		s.metrics.RecordRejected(c.Request.Context())
		ctrl.RejectImage(err)
		s.log.Warn("upload could not be decoded", "name", src.Name, "mime", src.MIME, "error", err)
		s.fail(c, statusFor(err), err)
		return
	}

	res := s.extract(c.Request.Context(), img)
	ctrl.ApplyImage(src, res)
	s.done(c)
}

func (s *Server) readUpload(c *gin.Context) (*imgpkg.Source, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", imgpkg.ErrTooLarge, mbe.Limit)
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}
	if fh.Size > s.cfg.Upload.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", imgpkg.ErrTooLarge, fh.Size, s.cfg.Upload.MaxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	return imgpkg.Read(f, fh.Filename, s.cfg.Upload.MaxBytes)
}

// extract downscales and quantises img under the configured timeout.
func (s *Server) extract(ctx context.Context, img image.Image) palette.ExtractResult {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Extract.Timeout)
	defer cancel()

	start := time.Now()
	res := palette.ExtractN(ctx, s.extractor, imgpkg.Downscale(img, s.cfg.Extract.MaxDimension), s.cfg.Extract.Count)
	elapsed := time.Since(start)

	result := telemetry.ResultOK
	if res.FellBack {
		result = telemetry.ResultFallback
		s.log.Warn("extraction fell back to default palette", "error", res.Err, "duration", elapsed)
	} else {
		s.log.Debug("extracted palette", "swatches", res.Swatches.Len(), "padded", res.Padded, "duration", elapsed)
	}
	s.metrics.RecordExtraction(ctx, result, elapsed)
	return res
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, imgpkg.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, imgpkg.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errNoFile), errors.Is(err, imgpkg.ErrDecodeImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// role parses the :role parameter, answering 404 when it is unknown.
func (s *Server) role(c *gin.Context) (palette.Role, bool) {
	r, err := palette.ParseRole(c.Param("role"))
	if err != nil {
		controller(c).Notify(app.Notice{Level: app.NoticeError, Title: "Unknown color", Description: err.Error()})
		s.fail(c, http.StatusNotFound, err)
		return "", false
	}
	return r, true
}

func (s *Server) recolor(c *gin.Context) {
	role, ok := s.role(c)
	if !ok {
		return
	}
	ctrl := controller(c)
	hex := c.PostForm("hex")
	if err := ctrl.Recolor(role, hex); err != nil {
		ctrl.Notify(app.Notice{
			Level:       app.NoticeError,
			Title:       "Invalid color",
			Description: fmt.Sprintf("%q is not a six digit hex color", hex),
		})
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.done(c)
}

func (s *Server) toggleLock(c *gin.Context) {
	role, ok := s.role(c)
	if !ok {
		return
	}
	if _, err := controller(c).ToggleLock(role); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.done(c)
}

func (s *Server) shuffle(c *gin.Context) {
	controller(c).Shuffle()
	s.metrics.RecordShuffle(c.Request.Context())
	s.done(c)
}

func (s *Server) setFont(c *gin.Context) {
	ctrl := controller(c)
	if err := ctrl.SetFont(c.PostForm("font")); err != nil {
		ctrl.Notify(app.Notice{Level: app.NoticeError, Title: "Unknown font", Description: err.Error()})
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.done(c)
}

func (s *Server) randomFont(c *gin.Context) {
	controller(c).RandomFont()
	s.done(c)
}

func (s *Server) setAnimation(c *gin.Context) {
	ctrl := controller(c)
	if err := ctrl.SetAnimation(c.PostForm("animation")); err != nil {
		ctrl.Notify(app.Notice{Level: app.NoticeError, Title: "Unknown animation", Description: err.Error()})
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.done(c)
}

func (s *Server) reset(c *gin.Context) {
	controller(c).Reset()
	s.done(c)
}

func (s *Server) download(c *gin.Context) {
	p := controller(c).Snapshot().Palette
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", palette.ExportFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(p.Export()))
}

func (s *Server) image(c *gin.Context) {
	src, ok := controller(c).Image()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no image uploaded"})
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, src.MIME, src.Data)
}

func (s *Server) apiPalette(c *gin.Context) {
	c.JSON(http.StatusOK, newStateView(controller(c).Snapshot()))
}

func (s *Server) apiContrast(c *gin.Context) {
	a, b := c.Query("a"), c.Query("b")
	ratio, err := colour.ContrastRatio(a, b)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"a":     a,
		"b":     b,
		"ratio": ratio,
		"grade": colour.GradeFor(ratio),
	})
}
