package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

type stubCatalogService struct {
	books     []*domain.Book
	added     *domain.Book
	addErr    error
	deleteErr error
	lastQuery string
	lastAdd   ports.AddBookInput
	lastEdit  ports.EditBookInput
}

func (s *stubCatalogService) AddBook(_ context.Context, input ports.AddBookInput) (*domain.Book, error) {
	s.lastAdd = input
	if s.addErr != nil {
		return nil, s.addErr
	}
	if s.added != nil {
		return s.added, nil
	}
	return &domain.Book{ID: "b1", Title: input.Title, Author: input.Author, TotalCopies: 1, AvailableCopies: 1}, nil
}

func (s *stubCatalogService) EditBook(_ context.Context, input ports.EditBookInput) (*domain.Book, error) {
	s.lastEdit = input
	return &domain.Book{ID: input.ID, Title: input.Title, Author: input.Author, TotalCopies: input.TotalCopies, AvailableCopies: input.TotalCopies}, nil
}

func (s *stubCatalogService) DeleteBook(_ context.Context, _ string) error {
	return s.deleteErr
}

func (s *stubCatalogService) ListBooks(_ context.Context, query string) ([]*domain.Book, error) {
	s.lastQuery = query
	return s.books, nil
}

func (s *stubCatalogService) GetBook(_ context.Context, id string) (*domain.Book, error) {
	for _, b := range s.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, domain.ErrBookNotFound
}

type stubLendingService struct {
	loan        *domain.Loan
	loans       []*domain.Loan
	issueErr    error
	returnErr   error
	adminDash   *ports.AdminDashboard
	userDash    *ports.UserDashboard
	lastUserID  string
	lastBookID  string
	lastActor   ports.Principal
	lastFilter  ports.ListLoansFilter
	lastLoanID  string
	lastDashFor string
}

func (s *stubLendingService) Issue(_ context.Context, userID, bookID string) (*domain.Loan, error) {
	s.lastUserID, s.lastBookID = userID, bookID
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	return s.loan, nil
}

func (s *stubLendingService) IssueFor(_ context.Context, actor ports.Principal, userID, bookID string) (*domain.Loan, error) {
	s.lastActor = actor
	return s.Issue(context.Background(), userID, bookID)
}

func (s *stubLendingService) Return(_ context.Context, actor ports.Principal, loanID string) (*domain.Loan, error) {
	s.lastActor, s.lastLoanID = actor, loanID
	if s.returnErr != nil {
		return nil, s.returnErr
	}
	return s.loan, nil
}

func (s *stubLendingService) ListLoans(_ context.Context, filter ports.ListLoansFilter) ([]*domain.Loan, error) {
	s.lastFilter = filter
	return s.loans, nil
}

func (s *stubLendingService) ListUserLoans(_ context.Context, userID string) ([]*domain.Loan, error) {
	s.lastUserID = userID
	return s.loans, nil
}

func (s *stubLendingService) AdminDashboard(_ context.Context) (*ports.AdminDashboard, error) {
	return s.adminDash, nil
}

func (s *stubLendingService) UserDashboard(_ context.Context, userID string) (*ports.UserDashboard, error) {
	s.lastDashFor = userID
	return s.userDash, nil
}

func newBookTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBookHandler_List(t *testing.T) {
	catalog := &stubCatalogService{books: []*domain.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", TotalCopies: 2, AvailableCopies: 1, CreatedAt: time.Now()},
	}}
	h := NewBookHandler(catalog, &stubLendingService{})

	c, rec := newBookTestContext(t, http.MethodGet, "/v1/books?q=dune", "")

	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if catalog.lastQuery != "dune" {
		t.Fatalf("query param not forwarded, got %q", catalog.lastQuery)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("expected total in response, got %s", rec.Body.String())
	}
}

func TestBookHandler_Create(t *testing.T) {
	catalog := &stubCatalogService{}
	h := NewBookHandler(catalog, &stubLendingService{})

	c, rec := newBookTestContext(t, http.MethodPost, "/v1/books",
		`{"title":"Dune","author":"Frank Herbert","copies":3}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if catalog.lastAdd.Copies != 3 {
		t.Fatalf("copies not forwarded: %+v", catalog.lastAdd)
	}
}

func TestBookHandler_Create_MissingTitle(t *testing.T) {
	h := NewBookHandler(&stubCatalogService{}, &stubLendingService{})

	c, _ := newBookTestContext(t, http.MethodPost, "/v1/books", `{"author":"Frank Herbert"}`)

	err := h.Create(c)
	var he *echo.HTTPError
	if !asHTTPError(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestBookHandler_Update(t *testing.T) {
	catalog := &stubCatalogService{}
	h := NewBookHandler(catalog, &stubLendingService{})

	c, rec := newBookTestContext(t, http.MethodPut, "/v1/books/b9",
		`{"title":"Dune","author":"Frank Herbert","total_copies":5}`)
	c.SetParamNames("id")
	c.SetParamValues("b9")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if catalog.lastEdit.ID != "b9" || catalog.lastEdit.TotalCopies != 5 {
		t.Fatalf("edit input not forwarded: %+v", catalog.lastEdit)
	}
}

func TestBookHandler_Delete_Conflict(t *testing.T) {
	catalog := &stubCatalogService{deleteErr: domain.ErrBookHasActiveLoans}
	h := NewBookHandler(catalog, &stubLendingService{})

	c, _ := newBookTestContext(t, http.MethodDelete, "/v1/books/b1", "")
	c.SetParamNames("id")
	c.SetParamValues("b1")

	if err := h.Delete(c); err != domain.ErrBookHasActiveLoans {
		t.Fatalf("expected conflict error to propagate, got %v", err)
	}
}

func TestBookHandler_Issue_SelfService(t *testing.T) {
	lending := &stubLendingService{loan: &domain.Loan{
		ID: "l1", UserID: "u1", BookID: "b1", Status: domain.LoanStatusIssued,
		IssueDate: time.Now(), DueDate: time.Now().AddDate(0, 0, 14),
	}}
	h := NewBookHandler(&stubCatalogService{}, lending)

	c, rec := newBookTestContext(t, http.MethodPost, "/v1/books/b1/issue", "")
	c.SetParamNames("id")
	c.SetParamValues("b1")
	c.Set("role", domain.RoleUser)
	c.Set("user_id", "u1")

	if err := h.Issue(c); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if lending.lastUserID != "u1" || lending.lastBookID != "b1" {
		t.Fatalf("principal or book not forwarded: %q %q", lending.lastUserID, lending.lastBookID)
	}
}

func TestBookHandler_Issue_MissingClaims(t *testing.T) {
	h := NewBookHandler(&stubCatalogService{}, &stubLendingService{})

	c, _ := newBookTestContext(t, http.MethodPost, "/v1/books/b1/issue", "")

	err := h.Issue(c)
	var he *echo.HTTPError
	if !asHTTPError(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth claims, got %v", err)
	}
}
