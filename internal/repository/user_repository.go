package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/scanchain/scanchain/internal/model"
    "github.com/scanchain/scanchain/internal/utils"
)

// UserRepo persists users and their denormalized hash associations.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = `id, email, password_hash, full_name, role, company_name, is_active, last_login, created_at, updated_at`

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, role, companyName string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (email, password_hash, full_name, role, company_name) VALUES (?,?,?,?,?)",
        email, hash, fullName, role, companyName)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
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

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
    var u model.User
    var lastLogin sql.NullTime
    err := r.DB.QueryRowContext(ctx, q, arg).Scan(
        &u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.CompanyName,
        &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        return model.User{}, err
    }
    if lastLogin.Valid {
        t := lastLogin.Time
        u.LastLogin = &t
    }
    return u, nil
}

// TouchLastLogin stamps the user's last login time.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
    _, err := r.DB.ExecContext(ctx, "UPDATE users SET last_login=NOW() WHERE id=?", id)
    return err
}

// AddHashAssociation records that the user registered a batch. Exactly
// one association is written per batch creation.
func (r *UserRepo) AddHashAssociation(ctx context.Context, userID uint64, a model.HashAssociation) error {
    if a.CreatedAt.IsZero() {
        a.CreatedAt = time.Now().UTC()
    }
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO user_hash_associations (user_id, batch_id, content_hash, ledger_tx_ref, batch_name, created_at)
         VALUES (?,?,?,?,?,?)`,
        userID, a.BatchID, a.ContentHash, a.LedgerTxRef, a.BatchName, a.CreatedAt)
    return err
}

// ListHashAssociations returns the user's registered batches in
// registration order.
func (r *UserRepo) ListHashAssociations(ctx context.Context, userID uint64) ([]model.HashAssociation, error) {
    rows, err := r.DB.QueryContext(ctx,
        `SELECT id, user_id, batch_id, content_hash, ledger_tx_ref, batch_name, created_at
         FROM user_hash_associations WHERE user_id=? ORDER BY id`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.HashAssociation, 0)
    for rows.Next() {
        var a model.HashAssociation
        if err := rows.Scan(&a.ID, &a.UserID, &a.BatchID, &a.ContentHash, &a.LedgerTxRef, &a.BatchName, &a.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}
