package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/temirlan/finance-dashboard-api/infrastructure/database/postgres"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

const bankAccountsTable = "bank_accounts"

type AccountRepository interface {
	// ListActiveByUser returns the user's active accounts in stable creation
	// order. The aggregator depends on that order for constrained-profile
	// tie-breaking.
	ListActiveByUser(userID string) ([]*domain.BankAccount, error)
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (a *accountRepository) ListActiveByUser(userID string) ([]*domain.BankAccount, error) {
	accountsSQL, args, err := squirrel.
		Select("id, user_id, name, bank, currency, balance, account_type, active, priority, created_at, updated_at").
		From(bankAccountsTable).
		Where(squirrel.Eq{"user_id": userID, "active": true}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := a.conn.Query(accountsSQL, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "listing bank accounts")
	}
	defer rows.Close()

	accounts := make([]*domain.BankAccount, 0)

	for rows.Next() {
		acc, err := deserializeAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func deserializeAccount(rows *sql.Rows) (*domain.BankAccount, error) {
	acc := &domain.BankAccount{}

	if err := rows.Scan(
		&acc.ID,
		&acc.UserID,
		&acc.Name,
		&acc.Bank,
		&acc.Currency,
		&acc.Balance,
		&acc.AccountType,
		&acc.Active,
		&acc.Priority,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "scanning bank account")
	}

	return acc, nil
}
