package model

import "time"

// Role names are closed at the API boundary: registration only accepts
// manufacturer, supplier and user; admin is assigned out of band.
const (
    RoleManufacturer = "manufacturer"
    RoleSupplier     = "supplier"
    RoleUser         = "user"
    RoleAdmin        = "admin"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name used on dashboards and scan records.
//  Role         – one of the role constants above.
//  CompanyName  – optional company the user belongs to.
//  IsActive     – whether the account is active.
//  LastLogin    – when the user last logged in (null until first login).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64     // users.id
    Email        string     // users.email
    PasswordHash string     // users.password_hash
    FullName     string     // users.full_name
    Role         string     // users.role
    CompanyName  string     // users.company_name
    IsActive     bool       // users.is_active
    LastLogin    *time.Time // users.last_login (nullable)
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
}

// HashAssociation is a denormalized row linking a user to a batch they
// registered.  It lets a user enumerate "batches I registered" without
// scanning the whole batches table.  Every batch creation produces
// exactly one association on its owner.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the association.
//  BatchID     – batch registered by the user.
//  ContentHash – hex SHA-256 of the artifact at registration time.
//  LedgerTxRef – ledger reference returned by the anchor.
//  BatchName   – batch display name copied for cheap listing.
//  CreatedAt   – timestamp of creation.
type HashAssociation struct {
    ID          uint64    `json:"id"`            // user_hash_associations.id
    UserID      uint64    `json:"user_id"`       // user_hash_associations.user_id
    BatchID     string    `json:"batch_id"`      // user_hash_associations.batch_id
    ContentHash string    `json:"content_hash"`  // user_hash_associations.content_hash
    LedgerTxRef string    `json:"ledger_tx_ref"` // user_hash_associations.ledger_tx_ref
    BatchName   string    `json:"batch_name"`    // user_hash_associations.batch_name
    CreatedAt   time.Time `json:"created_at"`    // user_hash_associations.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
