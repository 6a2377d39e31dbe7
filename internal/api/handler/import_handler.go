package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/importer"
)

// ImportHandler handles bulk catalog imports.
type ImportHandler struct {
	importer *importer.Importer
}

func NewImportHandler(imp *importer.Importer) *ImportHandler {
	return &ImportHandler{importer: imp}
}

// Import handles POST /v1/books/import (admin only). The request body is
// raw CSV with a header row of title,author,category,status.
//
// @Summary      Bulk-import books from CSV
// @Tags         books
// @Accept       plain
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  importer.Result
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/books/import [post]
func (h *ImportHandler) Import(c echo.Context) error {
	result, err := h.importer.ImportCSV(c.Request().Context(), c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	metrics.BooksImportedTotal.WithLabelValues("imported").Add(float64(result.Imported))
	metrics.BooksImportedTotal.WithLabelValues("skipped").Add(float64(result.Skipped))

	return c.JSON(http.StatusOK, result)
}
