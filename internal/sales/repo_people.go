package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.findUser(ctx, `WHERE username=$1`, username)
}

func (r *Repo) FindUserByQRToken(ctx context.Context, token string) (*User, error) {
	return r.findUser(ctx, `WHERE qr_token=$1`, token)
}

func (r *Repo) findUser(ctx context.Context, where string, arg string) (*User, error) {
	u := &User{}
	var role string
	err := r.DB.QueryRow(ctx, `SELECT id, username, password_hash, COALESCE(qr_token,''), role FROM users `+where, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.QRToken, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return u, nil
}

// UpsertUser creates the login or resets its hash, role and QR token.
func (r *Repo) UpsertUser(ctx context.Context, u User) error {
	var qr any
	if u.QRToken != "" {
		qr = u.QRToken
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(username, password_hash, qr_token, role) VALUES ($1,$2,$3,$4)
		ON CONFLICT (username) DO UPDATE
		SET password_hash=EXCLUDED.password_hash, qr_token=EXCLUDED.qr_token, role=EXCLUDED.role`,
		u.Username, u.PasswordHash, qr, string(u.Role))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *Repo) ListSaleUsers(ctx context.Context) ([]SaleUser, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, username, full_name, phone FROM sale_users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaleUser
	for rows.Next() {
		var s SaleUser
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Phone); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) CreateSaleUser(ctx context.Context, s SaleUser) (SaleUser, error) {
	s.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `INSERT INTO sale_users(id, username, full_name, phone) VALUES ($1,$2,$3,$4)`,
		s.ID, s.Username, s.FullName, s.Phone)
	if isUniqueViolation(err) {
		return s, ErrDuplicate
	}
	return s, err
}

func (r *Repo) UpdateSaleUser(ctx context.Context, s SaleUser) (SaleUser, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE sale_users SET username=$2, full_name=$3, phone=$4 WHERE id=$1`,
		s.ID, s.Username, s.FullName, s.Phone)
	if isUniqueViolation(err) {
		return s, ErrDuplicate
	}
	if err != nil {
		return s, err
	}
	if ct.RowsAffected() == 0 {
		return s, ErrNotFound
	}
	return s, nil
}

func (r *Repo) DeleteSaleUser(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM sale_users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SearchDrivers(ctx context.Context, q DriverQuery) ([]Driver, error) {
	where, args := q.where()
	rows, err := r.DB.Query(ctx, `SELECT id, name, license_plate, phone, htx FROM drivers`+where+` ORDER BY name LIMIT 200`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.LicensePlate, &d.Phone, &d.HTX); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
