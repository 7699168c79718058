package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/timeliner/helper"
	"github.com/siherrmann/timeliner/model"
	"github.com/siherrmann/timeliner/sql"
)

// ExamplesDBHandlerFunctions defines the interface for Examples database operations.
type ExamplesDBHandlerFunctions interface {
	InsertExample(ctx context.Context, example *model.Example) error
	SelectExample(ctx context.Context, rid uuid.UUID) (*model.Example, error)
	SelectExampleByDocID(ctx context.Context, docID string) (*model.Example, error)
	SelectAllExamples(ctx context.Context, lastCreatedAt *time.Time, lastID int64, limit int) ([]*model.Example, error)
	CountExamples(ctx context.Context) (int64, error)
	DeleteExample(ctx context.Context, rid uuid.UUID) error
}

// ExamplesDBHandler handles example-related database operations
type ExamplesDBHandler struct {
	db *helper.Database
}

// NewExamplesDBHandler creates a new examples database handler.
// It loads the example SQL functions and makes sure the table exists.
// If force is true, it will reload the SQL functions even if they already exist.
func NewExamplesDBHandler(db *helper.Database, force bool) (*ExamplesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	examplesDbHandler := &ExamplesDBHandler{
		db: db,
	}

	err := sql.Init(examplesDbHandler.db.Instance)
	if err != nil {
		return nil, helper.NewError("init extensions", err)
	}

	err = sql.LoadExamplesSql(examplesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load examples sql", err)
	}

	err = examplesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ExamplesDBHandler")

	return examplesDbHandler, nil
}

// CreateTable creates the 'examples' table in the database.
// If the table already exists, it does not create it again.
func (h *ExamplesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_examples();`)
	if err != nil {
		return helper.NewError("init examples", err)
	}

	h.db.Logger.Info("Checked/created table examples")

	return nil
}

// InsertExample stores an example. An existing example with the same doc id is overwritten.
func (h *ExamplesDBHandler) InsertExample(ctx context.Context, example *model.Example) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_example($1, $2, $3)`,
		example.DocID,
		example.DocText,
		example.Templates,
	)

	err := scanExample(row, example)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectExample retrieves an example by RID
func (h *ExamplesDBHandler) SelectExample(ctx context.Context, rid uuid.UUID) (*model.Example, error) {
	example := &model.Example{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_example($1)`,
		rid,
	)

	err := scanExample(row, example)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return example, nil
}

// SelectExampleByDocID retrieves an example by its document id
func (h *ExamplesDBHandler) SelectExampleByDocID(ctx context.Context, docID string) (*model.Example, error) {
	example := &model.Example{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_example_by_doc_id($1)`,
		docID,
	)

	err := scanExample(row, example)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return example, nil
}

// SelectAllExamples retrieves the examples following (lastCreatedAt, lastID), ordered by
// creation time and id. Pass the CreatedAt and ID of the last example of the previous page.
// A nil lastCreatedAt starts at the first page.
func (h *ExamplesDBHandler) SelectAllExamples(ctx context.Context, lastCreatedAt *time.Time, lastID int64, limit int) ([]*model.Example, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_all_examples($1, $2, $3)`,
		lastCreatedAt,
		lastID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var examples []*model.Example
	for rows.Next() {
		example := &model.Example{}
		err := scanExample(rows, example)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		examples = append(examples, example)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return examples, nil
}

// CountExamples returns the number of stored examples
func (h *ExamplesDBHandler) CountExamples(ctx context.Context) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_examples()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteExample deletes an example by RID
func (h *ExamplesDBHandler) DeleteExample(ctx context.Context, rid uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_example($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExample(row scanner, example *model.Example) error {
	return row.Scan(
		&example.ID,
		&example.RID,
		&example.DocID,
		&example.DocText,
		&example.Templates,
		&example.CreatedAt,
		&example.UpdatedAt,
	)
}
