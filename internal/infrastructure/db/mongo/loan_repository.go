package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

const collectionLoans = "loans"

// LoanRepository persists the lending ledger. Issue and Return each touch
// the loans and books collections inside one session transaction so the
// copy accounting can never drift from the set of issued loans.
type LoanRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewLoanRepository(db *mongo.Database) *LoanRepository {
	return &LoanRepository{db: db, col: db.Collection(collectionLoans)}
}

type loanDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	BookID     string             `bson:"book_id"`
	IssueDate  time.Time          `bson:"issue_date"`
	DueDate    time.Time          `bson:"due_date"`
	ReturnDate *time.Time         `bson:"return_date,omitempty"`
	Fine       float64            `bson:"fine"`
	Status     string             `bson:"status"`
}

func (d *loanDoc) toDomain() *domain.Loan {
	loan := &domain.Loan{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		BookID:    d.BookID,
		IssueDate: d.IssueDate.UTC(),
		DueDate:   d.DueDate.UTC(),
		Fine:      d.Fine,
		Status:    domain.LoanStatus(d.Status),
	}
	if d.ReturnDate != nil {
		rd := d.ReturnDate.UTC()
		loan.ReturnDate = &rd
	}
	return loan
}

// Issue claims one available copy and inserts the loan in a single
// transaction. The copy claim is a guarded update (available_copies > 0
// with $inc), so two racing issues for the last copy cannot both succeed;
// the loser aborts with domain.ErrNoCopiesAvailable before the insert. A
// duplicate-key failure on the partial unique (user_id, book_id) index is
// normalized to domain.ErrAlreadyIssued.
func (r *LoanRepository) Issue(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	bookOID, err := primitive.ObjectIDFromHex(loan.BookID)
	if err != nil {
		return nil, domain.ErrBookNotFound
	}

	doc := loanDoc{
		UserID:    loan.UserID,
		BookID:    loan.BookID,
		IssueDate: loan.IssueDate,
		DueDate:   loan.DueDate,
		Fine:      0,
		Status:    string(domain.LoanStatusIssued),
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	insertedID, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		claim, err := r.db.Collection(collectionBooks).UpdateOne(sc,
			bson.M{"_id": bookOID, "available_copies": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"available_copies": -1}},
		)
		if err != nil {
			return nil, err
		}
		if claim.MatchedCount == 0 {
			return nil, domain.ErrNoCopiesAvailable
		}

		res, err := r.col.InsertOne(sc, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrAlreadyIssued
			}
			return nil, err
		}
		return res.InsertedID, nil
	})
	if err != nil {
		return nil, err
	}

	created := *loan
	if oid, ok := insertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// Return transitions an issued loan to returned and releases its copy in a
// single transaction. The loan update filters on status "issued", so a
// second return matches nothing and fails with domain.ErrAlreadyReturned
// without touching the book. The copy release is a pipeline update capped
// at total_copies, guarding against over-increment from data anomalies.
func (r *LoanRepository) Return(ctx context.Context, loanID string, returnedAt time.Time, fine float64) error {
	oid, err := primitive.ObjectIDFromHex(loanID)
	if err != nil {
		return domain.ErrLoanNotFound
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var doc loanDoc
		err := r.col.FindOneAndUpdate(sc,
			bson.M{"_id": oid, "status": string(domain.LoanStatusIssued)},
			bson.M{"$set": bson.M{
				"status":      string(domain.LoanStatusReturned),
				"return_date": returnedAt,
				"fine":        fine,
			}},
		).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				if exists := r.col.FindOne(sc, bson.M{"_id": oid}); exists.Err() == nil {
					return nil, domain.ErrAlreadyReturned
				}
				return nil, domain.ErrLoanNotFound
			}
			return nil, err
		}

		bookOID, err := primitive.ObjectIDFromHex(doc.BookID)
		if err != nil {
			return nil, domain.ErrBookNotFound
		}

		release := mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"available_copies": bson.M{"$min": bson.A{
					"$total_copies",
					bson.M{"$add": bson.A{"$available_copies", 1}},
				}},
			}}},
		}
		if _, err := r.db.Collection(collectionBooks).UpdateOne(sc, bson.M{"_id": bookOID}, release); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (r *LoanRepository) FindByID(ctx context.Context, id string) (*domain.Loan, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrLoanNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *LoanRepository) FindActive(ctx context.Context, userID, bookID string) (*domain.Loan, error) {
	return r.findOne(ctx, bson.M{
		"user_id": userID,
		"book_id": bookID,
		"status":  string(domain.LoanStatusIssued),
	})
}

func (r *LoanRepository) findOne(ctx context.Context, filter bson.M) (*domain.Loan, error) {
	var doc loanDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, fmt.Errorf("find loan: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns loans matching filter, newest issue first.
func (r *LoanRepository) List(ctx context.Context, filter ports.ListLoansFilter) ([]*domain.Loan, error) {
	q := bson.M{}
	if filter.UserID != "" {
		q["user_id"] = filter.UserID
	}
	if filter.BookID != "" {
		q["book_id"] = filter.BookID
	}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "issue_date", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer cur.Close(ctx)

	var loans []*domain.Loan
	for cur.Next(ctx) {
		var doc loanDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode loan: %w", err)
		}
		loans = append(loans, doc.toDomain())
	}
	return loans, cur.Err()
}

func (r *LoanRepository) CountIssued(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"status": string(domain.LoanStatusIssued)})
}

func (r *LoanRepository) CountIssuedByBook(ctx context.Context, bookID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"book_id": bookID,
		"status":  string(domain.LoanStatusIssued),
	})
}

func (r *LoanRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"status":   string(domain.LoanStatusIssued),
		"due_date": bson.M{"$lt": now},
	})
}

// EnsureIndexes creates the loan indexes. The partial unique index on
// (user_id, book_id) for issued loans enforces at most one active loan per
// pair even under concurrent issues.
func (r *LoanRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.LoanStatusIssued)}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "issue_date", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
