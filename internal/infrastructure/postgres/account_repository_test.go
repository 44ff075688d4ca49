package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zvit/internal/domain/account"
)

func accountColumns() []string {
	return []string{"id", "user_id", "balance", "credit_limit", "currency_code", "account_type", "masked_pan", "iban", "created_at", "updated_at"}
}

func TestAccountRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("acc-1", int64(1), int64(150000), int64(50000), 980, "black", "537541******1234", "UA213996220000026007233566001").
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow("acc-1", 1, 150000, 50000, 980, "black", "537541******1234", "UA213996220000026007233566001", now, now))

	acc, err := repo.Upsert(context.Background(), account.UpsertParams{
		ID:           "acc-1",
		UserID:       1,
		Balance:      150000,
		CreditLimit:  50000,
		CurrencyCode: 980,
		Type:         "black",
		MaskedPan:    "537541******1234",
		IBAN:         "UA213996220000026007233566001",
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", acc.ID)
	assert.Equal(t, int64(150000), acc.Balance)
	assert.Equal(t, 980, acc.CurrencyCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByID_Unknown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs("never-synced").
		WillReturnRows(sqlmock.NewRows(accountColumns()))

	acc, err := repo.GetByID(context.Background(), "never-synced")
	require.NoError(t, err, "unknown account is not an error, webhook ingestion probes for it")
	assert.Nil(t, acc)
}

func TestAccountRepository_ListByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow("acc-1", 1, 150000, 0, 980, "black", nil, nil, now, now).
			AddRow("acc-2", 1, -3000, 50000, 840, "white", nil, nil, now, now))

	accounts, err := repo.ListByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acc-2", accounts[1].ID)
	assert.Equal(t, int64(-3000), accounts[1].Balance)
	assert.Empty(t, accounts[0].MaskedPan)
}
