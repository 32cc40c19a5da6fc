package repository

import (
    "context"
    "database/sql"

    "github.com/go-sql-driver/mysql"

    "github.com/cinevn/backend/internal/model"
    "github.com/cinevn/backend/internal/utils"
)

// AccountRepo provides data access to the accounts table: registration,
// login lookups and the loyalty-point settlement performed when an order
// completes.
type AccountRepo struct {
    db *sql.DB
}

// NewAccountRepo returns a new AccountRepo bound to the provided database.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// Create registers a new account with a bcrypt-hashed password and returns
// the generated id.  A duplicate email maps to ErrEmailExists.
func (r *AccountRepo) Create(ctx context.Context, email, password, fullName, phone string, bcryptCost int) (uint64, error) {
    hash, err := utils.HashPassword(password, bcryptCost)
    if err != nil {
        return 0, err
    }
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO accounts (email, pass, full_name, phone) VALUES (?, ?, ?, ?)`,
        email, hash, fullName, phone,
    )
    if err != nil {
        if me, ok := err.(*mysql.MySQLError); ok && me.Number == 1062 {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail loads an account for login.  Returns ErrAccountNotFound when
// the email is unknown.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
    var (
        a      model.Account
        points sql.NullFloat64
    )
    err := r.db.QueryRowContext(ctx,
        `SELECT id, email, pass, full_name, phone, points, created_at
         FROM accounts WHERE email = ?`, email,
    ).Scan(&a.ID, &a.Email, &a.Password, &a.FullName, &a.Phone, &points, &a.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrAccountNotFound
    }
    if err != nil {
        return nil, err
    }
    if points.Valid {
        a.Points = &points.Float64
    }
    return &a, nil
}

// SettlePointsTx applies the one-shot balance adjustment for a completed
// order inside the supplied transaction: minus the points spent, plus the
// computed reward.  A NULL balance starts from the reward alone.  The
// caller guarantees this runs at most once per order via the order-status
// idempotency guard.
func (r *AccountRepo) SettlePointsTx(ctx context.Context, tx *sql.Tx, userID uint64, pointsUsed, reward float64) error {
    // No affected-row check here: the driver reports changed rows, and a
    // settlement where pointsUsed equals the reward leaves the value as-is.
    _, err := tx.ExecContext(ctx,
        `UPDATE accounts
         SET points = CASE WHEN points IS NULL THEN ? ELSE points - ? + ? END
         WHERE id = ?`,
        reward, pointsUsed, reward, userID,
    )
    return err
}
