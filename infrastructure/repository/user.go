package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/temirlan/finance-dashboard-api/infrastructure/database/postgres"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

const usersTable = "users"

type UserRepository interface {
	GetUserByID(userID string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
}

type userRepository struct {
	conn *postgres.Connection
}

func NewUserRepository(conn *postgres.Connection) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (u *userRepository) GetUserByID(userID string) (*domain.User, error) {
	return u.getUser(squirrel.Eq{"id": userID})
}

func (u *userRepository) GetUserByEmail(email string) (*domain.User, error) {
	return u.getUser(squirrel.Eq{"email": email})
}

func (u *userRepository) getUser(whereClause map[string]interface{}) (*domain.User, error) {
	userSQL, args, err := squirrel.
		Select("id, name, email, company, password_hash, active, role_id, created_at, updated_at").
		From(usersTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := u.conn.QueryRow(userSQL, args...)

	user := &domain.User{}
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Company,
		&user.PasswordHash,
		&user.Active,
		&user.RoleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "scanning user")
	}

	return user, nil
}
