package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/core/ports"
)

// BookHandler handles HTTP requests for catalog operations.
type BookHandler struct {
	catalog ports.CatalogService
	lending ports.LendingService
}

func NewBookHandler(catalog ports.CatalogService, lending ports.LendingService) *BookHandler {
	return &BookHandler{catalog: catalog, lending: lending}
}

// List handles GET /v1/books.
//
// @Summary      List or search books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Substring matched against title, author and isbn"
// @Success      200  {object}  listBooksResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/books [get]
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.catalog.ListBooks(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}

	resp := listBooksResponse{Data: make([]bookResponse, 0, len(books)), Total: len(books)}
	for _, b := range books {
		resp.Data = append(resp.Data, toBookResponse(b))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /v1/books (admin only).
//
// @Summary      Add a book to the catalog
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookRequest  true  "Book details"
// @Success      201   {object}  bookResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/books [post]
func (h *BookHandler) Create(c echo.Context) error {
	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.catalog.AddBook(c.Request().Context(), ports.AddBookInput{
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		Publisher: req.Publisher,
		Category:  req.Category,
		Copies:    req.Copies,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toBookResponse(book))
}

// Update handles PUT /v1/books/:id (admin only).
//
// @Summary      Edit a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Book ID"
// @Param        body  body      updateBookRequest  true  "Updated fields"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	var req updateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.catalog.EditBook(c.Request().Context(), ports.EditBookInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Publisher:   req.Publisher,
		Category:    req.Category,
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookResponse(book))
}

// Delete handles DELETE /v1/books/:id (admin only).
//
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Book ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Issue handles POST /v1/books/:id/issue: self-service issue for the
// current principal.
//
// @Summary      Issue a book to yourself
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Book ID"
// @Success      201  {object}  loanResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/books/{id}/issue [post]
func (h *BookHandler) Issue(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	loan, err := h.lending.Issue(c.Request().Context(), principal.UserID, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.LoansIssuedTotal.Inc()
	return c.JSON(http.StatusCreated, toLoanResponse(loan))
}
