package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tickethub/internal/identity/models"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/tx"
)

// PostgresStore persists identities and roles in PostgreSQL. Statements run on
// the transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const identityColumns = `identity_id, kind, username, password, display_name, email, mobile,
	national_id, birth_certificate, admin_role_id, status, created_at`

// CreateIfAvailable inserts identity unless its username, or for users any of
// email/mobile/national id/birth certificate, is already registered. The check
// and insert are one statement, so no partial state is visible to readers.
func (s *PostgresStore) CreateIfAvailable(ctx context.Context, identity *models.Identity) error {
	if identity == nil {
		return fmt.Errorf("identity is required")
	}
	const query = `
INSERT INTO identity_info (kind, username, password, display_name, email, mobile,
	national_id, birth_certificate, admin_role_id, status, created_at)
SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text,
	$9::bigint, $10::smallint, $11::timestamptz
WHERE NOT EXISTS (
	SELECT 1 FROM identity_info
	WHERE username = $2::text
	   OR ($1::text = 'user' AND kind = 'user' AND (
	          email = $5::text OR mobile = $6::text
	       OR national_id = $7::text OR birth_certificate = $8::text))
)
RETURNING identity_id`

	var newID int64
	err := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx, query,
		string(identity.Kind),
		identity.Username,
		identity.PasswordHash,
		identity.DisplayName,
		nullString(identity.Email),
		nullString(identity.Mobile),
		nullString(identity.NationalID),
		nullString(identity.BirthCertificate),
		nullRoleID(identity.RoleID),
		int(identity.Status),
		identity.CreatedAt,
	).Scan(&newID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return ErrAlreadyUsed
		}
		return fmt.Errorf("create identity: %w", err)
	}
	identity.ID = newID
	return nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, kind models.Kind, username string) (*models.Identity, error) {
	row := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identity_info WHERE kind = $1 AND username = $2`,
		string(kind), username)
	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find identity by username: %w", err)
	}
	return identity, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, kind models.Kind, identityID int64) (*models.Identity, error) {
	row := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identity_info WHERE kind = $1 AND identity_id = $2`,
		string(kind), identityID)
	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find identity by id: %w", err)
	}
	return identity, nil
}

// Delete removes an identity row. It exists for saga compensation only.
func (s *PostgresStore) Delete(ctx context.Context, identityID int64) error {
	res, err := tx.QuerierFor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM identity_info WHERE identity_id = $1`, identityID)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAdminRoleAndStatus sets an admin's role and status flag.
func (s *PostgresStore) UpdateAdminRoleAndStatus(ctx context.Context, adminID id.AdminID, roleID id.RoleID, status models.Status) error {
	res, err := tx.QuerierFor(ctx, s.db).ExecContext(ctx,
		`UPDATE identity_info SET admin_role_id = $2, status = $3 WHERE identity_id = $1 AND kind = 'admin'`,
		adminID.Int64(), roleID.Int64(), int(status))
	if err != nil {
		return fmt.Errorf("update admin role and status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update admin role and status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAdmins returns every admin except excludeUsername, with role names.
func (s *PostgresStore) ListAdmins(ctx context.Context, excludeUsername string) ([]models.AdminSummary, error) {
	rows, err := tx.QuerierFor(ctx, s.db).QueryContext(ctx, `
SELECT i.identity_id, i.username, i.display_name, COALESCE(i.email, ''), COALESCE(r.admin_role_name, ''), i.status
FROM identity_info i
LEFT JOIN admin_role_info r ON r.admin_role_id = i.admin_role_id
WHERE i.kind = 'admin' AND i.username <> $1
ORDER BY i.identity_id`, excludeUsername)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := make([]models.AdminSummary, 0)
	for rows.Next() {
		var (
			a       models.AdminSummary
			adminID int64
			status  int
		)
		if err := rows.Scan(&adminID, &a.Username, &a.AdminName, &a.Email, &a.AdminRole, &status); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		a.ID = id.AdminID(adminID)
		a.Status = models.Status(status)
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// CountUsers returns the number of distinct end-user identities.
func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT identity_id) FROM identity_info WHERE kind = 'user'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) FindRoleByName(ctx context.Context, name string) (*models.AdminRole, error) {
	var role models.AdminRole
	var roleID int64
	err := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT admin_role_id, admin_role_name FROM admin_role_info WHERE admin_role_name = $1`,
		name).Scan(&roleID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	role.ID = id.RoleID(roleID)
	return &role, nil
}

func (s *PostgresStore) FindRoleByID(ctx context.Context, roleID id.RoleID) (*models.AdminRole, error) {
	role := models.AdminRole{ID: roleID}
	err := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT admin_role_name FROM admin_role_info WHERE admin_role_id = $1`,
		roleID.Int64()).Scan(&role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find role by id: %w", err)
	}
	return &role, nil
}

// CreateRole inserts a role name. Returns ErrAlreadyUsed when the name exists.
func (s *PostgresStore) CreateRole(ctx context.Context, name string) (*models.AdminRole, error) {
	var roleID int64
	err := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO admin_role_info (admin_role_name) VALUES ($1) RETURNING admin_role_id`,
		name).Scan(&roleID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyUsed
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	return &models.AdminRole{ID: id.RoleID(roleID), Name: name}, nil
}

// Ping verifies the pool is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*models.Identity, error) {
	var (
		identity                                    models.Identity
		kind                                        string
		email, mobile, nationalID, birthCertificate sql.NullString
		roleID                                      sql.NullInt64
		status                                      int
	)
	err := row.Scan(
		&identity.ID,
		&kind,
		&identity.Username,
		&identity.PasswordHash,
		&identity.DisplayName,
		&email,
		&mobile,
		&nationalID,
		&birthCertificate,
		&roleID,
		&status,
		&identity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	identity.Kind = models.Kind(kind)
	identity.Email = email.String
	identity.Mobile = mobile.String
	identity.NationalID = nationalID.String
	identity.BirthCertificate = birthCertificate.String
	if roleID.Valid {
		identity.RoleID = id.RoleID(roleID.Int64)
	}
	identity.Status = models.Status(status)
	return &identity, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullRoleID(v id.RoleID) sql.NullInt64 {
	if v <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v.Int64(), Valid: true}
}
