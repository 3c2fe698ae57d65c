package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/export"
	"github.com/PlayerIUnknown/aegis-gui/internal/metrics"
)

func (h *Handlers) HandleExportCSV(c *echo.Context) error {
	return h.handleExport(c, export.FormatCSV)
}

func (h *Handlers) HandleExportPDF(c *echo.Context) error {
	return h.handleExport(c, export.FormatPDF)
}

// handleExport renders the SBOM into memory first so failures never send a partial download.
func (h *Handlers) handleExport(c *echo.Context, format string) error {
	scanID := strings.TrimSpace(c.Param("scanID"))
	if scanID == "" {
		return RenderNotFound(c)
	}

	details, err := h.scanDetails(c.Request().Context(), principal(c), scanID)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			return h.expireSession(c)
		}
		var apiErr *configapi.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return RenderNotFound(c)
		}
		return c.String(http.StatusBadGateway, h.apiErrorMessage(c, err))
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, details); err != nil {
		return h.RenderError(c, err)
	}

	metrics.ExportsTotal.WithLabelValues(format).Inc()
	filename := export.Filename(details.Repository.Name, details.ID, format)
	header := c.Response().Header()
	header.Set("Content-Type", export.ContentType(format))
	header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	header.Set("Content-Length", strconv.Itoa(buf.Len()))
	c.Response().WriteHeader(http.StatusOK)
	_, err = c.Response().Write(buf.Bytes())
	return err
}
