package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"
)

type PostgresStoreTestSuite struct {
	suite.Suite
	mock  pgxmock.PgxPoolIface
	store *PostgresStore
	ctx   context.Context
}

func (s *PostgresStoreTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.store = NewPostgresStore(mock)
	s.ctx = context.Background()
}

func (s *PostgresStoreTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func (s *PostgresStoreTestSuite) TestQueryByOwner() {
	rows := pgxmock.NewRows([]string{"id", "owner", "doc"}).
		AddRow("item-1", "user@example.com", []byte(`{"name":"Rice"}`)).
		AddRow("item-2", "user@example.com", []byte(`{"name":"Beans"}`))
	s.mock.ExpectQuery("SELECT id, owner, doc").
		WithArgs(CollectionItems, "user@example.com").
		WillReturnRows(rows)

	docs, err := s.store.QueryByOwner(s.ctx, CollectionItems, "user@example.com")

	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("item-1", docs[0].ID)
	s.Equal("user@example.com", docs[0].Owner)

	var decoded map[string]string
	s.Require().NoError(docs[1].Decode(&decoded))
	s.Equal("Beans", decoded["name"])
}

func (s *PostgresStoreTestSuite) TestQueryByOwner_NoRows() {
	s.mock.ExpectQuery("SELECT id, owner, doc").
		WithArgs(CollectionAlerts, "user@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner", "doc"}))

	docs, err := s.store.QueryByOwner(s.ctx, CollectionAlerts, "user@example.com")

	s.NoError(err)
	s.Empty(docs)
}

func (s *PostgresStoreTestSuite) TestGetByID() {
	s.mock.ExpectQuery("SELECT id, owner, doc").
		WithArgs(CollectionItems, "item-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner", "doc"}).
			AddRow("item-1", "user@example.com", []byte(`{"quantity":5}`)))

	doc, err := s.store.GetByID(s.ctx, CollectionItems, "item-1")

	s.Require().NoError(err)
	s.Equal("item-1", doc.ID)
	s.Equal("user@example.com", doc.Owner)
}

func (s *PostgresStoreTestSuite) TestGetByID_NotFound() {
	s.mock.ExpectQuery("SELECT id, owner, doc").
		WithArgs(CollectionItems, "missing").
		WillReturnError(pgx.ErrNoRows)

	doc, err := s.store.GetByID(s.ctx, CollectionItems, "missing")

	s.Nil(doc)
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostgresStoreTestSuite) TestUpsert() {
	s.mock.ExpectExec("INSERT INTO documents").
		WithArgs(CollectionItems, "item-1", "user@example.com", []byte(`{"name":"Rice"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.store.Upsert(s.ctx, CollectionItems, "item-1", "user@example.com", map[string]string{"name": "Rice"})

	s.NoError(err)
}

func (s *PostgresStoreTestSuite) TestDeleteByID() {
	s.mock.ExpectExec("DELETE FROM documents").
		WithArgs(CollectionAlerts, "low-stock-item-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	s.NoError(s.store.DeleteByID(s.ctx, CollectionAlerts, "low-stock-item-1"))
}

func (s *PostgresStoreTestSuite) TestBatchWrite() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec("INSERT INTO documents").
		WithArgs(CollectionAlerts, "no-stock-item-1", "user@example.com", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec("DELETE FROM documents").
		WithArgs(CollectionAlerts, "predictive-item-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	s.mock.ExpectCommit()

	err := s.store.BatchWrite(s.ctx, []WriteOp{
		{Kind: WriteUpsert, Collection: CollectionAlerts, ID: "no-stock-item-1", Owner: "user@example.com", Doc: map[string]string{"title": "Out of Stock"}},
		{Kind: WriteDelete, Collection: CollectionAlerts, ID: "predictive-item-1"},
	})

	s.NoError(err)
}

func (s *PostgresStoreTestSuite) TestBatchWrite_RollsBackOnFailure() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec("INSERT INTO documents").
		WithArgs(CollectionAlerts, "no-stock-item-1", "user@example.com", pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	s.mock.ExpectRollback()

	err := s.store.BatchWrite(s.ctx, []WriteOp{
		{Kind: WriteUpsert, Collection: CollectionAlerts, ID: "no-stock-item-1", Owner: "user@example.com", Doc: map[string]string{}},
	})

	s.Require().Error(err)
	s.Contains(err.Error(), "disk full")
}

func (s *PostgresStoreTestSuite) TestBatchWrite_EmptyIsNoOp() {
	s.NoError(s.store.BatchWrite(s.ctx, nil))
}

func (s *PostgresStoreTestSuite) TestDistinctOwners() {
	s.mock.ExpectQuery("SELECT DISTINCT owner").
		WithArgs(CollectionItems).
		WillReturnRows(pgxmock.NewRows([]string{"owner"}).
			AddRow("a@example.com").
			AddRow("b@example.com"))

	owners, err := s.store.DistinctOwners(s.ctx, CollectionItems)

	s.Require().NoError(err)
	s.Equal([]string{"a@example.com", "b@example.com"}, owners)
}

func TestPostgresStoreTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreTestSuite))
}
