package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"muellepos/internal/domain"

	"github.com/google/uuid"
)

// SaleRepository persists sale records in the ventas table. It is a thin
// store: classification, retries and readiness live in the bridge above it.
type SaleRepository struct {
	DB *sql.DB
}

const createVentasTable = `
CREATE TABLE IF NOT EXISTS ventas (
	id CHAR(36) NOT NULL PRIMARY KEY,
	codigo VARCHAR(32) NOT NULL,
	nombre VARCHAR(120) NOT NULL,
	documento VARCHAR(40) NOT NULL,
	telefono VARCHAR(40) NOT NULL DEFAULT '',
	email VARCHAR(120) NOT NULL DEFAULT '',
	fecha CHAR(10) NOT NULL,
	hora CHAR(5) NOT NULL,
	embarcacion VARCHAR(20) NOT NULL,
	adultos INT NOT NULL,
	ninos INT NOT NULL,
	total_pasajeros INT NOT NULL,
	precio BIGINT NOT NULL,
	tipo_servicio VARCHAR(20) NOT NULL,
	estado VARCHAR(12) NOT NULL,
	usuario VARCHAR(120) NOT NULL,
	creado_en DATETIME NOT NULL,
	KEY idx_ventas_codigo (codigo),
	KEY idx_ventas_fecha (fecha)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	email VARCHAR(120) NOT NULL,
	password_hash VARCHAR(100) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'taquilla',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the tables this backend owns when they are absent.
func (r SaleRepository) EnsureSchema(ctx context.Context) error {
	if r.DB == nil {
		return fmt.Errorf("db no disponible")
	}
	for _, q := range []string{createVentasTable, createUsersTable} {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("creando schema: %w", err)
		}
	}
	return nil
}

const saleColumns = `id, codigo, nombre, documento, telefono, email, fecha, hora,
	embarcacion, adultos, ninos, total_pasajeros, precio, tipo_servicio, estado, usuario, creado_en`

// Insert stores a new sale record and returns its id. The id is assigned
// here when the caller did not set one.
func (r SaleRepository) Insert(ctx context.Context, rec domain.SaleRecord) (string, error) {
	if r.DB == nil {
		return "", fmt.Errorf("db no disponible")
	}
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ventas (`+saleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.Code,
		rec.Name,
		rec.DocumentID,
		rec.Phone,
		rec.Email,
		rec.TravelDate,
		rec.TravelTime,
		string(rec.Vessel),
		rec.Adults,
		rec.Children,
		rec.TotalPassengers,
		rec.Price,
		rec.ServiceType,
		string(rec.Status),
		rec.Operator,
		rec.GeneratedAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindByCode returns the newest sale with the given ticket code.
func (r SaleRepository) FindByCode(ctx context.Context, code string) (domain.SaleRecord, error) {
	var rec domain.SaleRecord
	if r.DB == nil {
		return rec, fmt.Errorf("db no disponible")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return rec, domain.ValidationError{Fields: []string{"codigo"}}
	}

	row := r.DB.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM ventas
		WHERE codigo = ?
		ORDER BY creado_en DESC
		LIMIT 1`, code)

	if err := scanSale(row, &rec); err != nil {
		if err == sql.ErrNoRows {
			return rec, domain.NotFoundError{Resource: "venta", Err: err}
		}
		return rec, err
	}
	return rec, nil
}

// UpdateStatus moves a sale to a new status, normally ANULADO after Cancel.
func (r SaleRepository) UpdateStatus(ctx context.Context, code string, status domain.TicketState) error {
	if r.DB == nil {
		return fmt.Errorf("db no disponible")
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE ventas SET estado = ? WHERE codigo = ?`,
		string(status), strings.TrimSpace(code))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "venta"}
	}
	return nil
}

// ListByDate returns all sales for a YYYY-MM-DD travel date, newest first.
func (r SaleRepository) ListByDate(ctx context.Context, date string) ([]domain.SaleRecord, error) {
	if r.DB == nil {
		return nil, fmt.Errorf("db no disponible")
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM ventas
		WHERE fecha = ?
		ORDER BY creado_en DESC`, strings.TrimSpace(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SaleRecord{}
	for rows.Next() {
		var rec domain.SaleRecord
		if err := scanSale(rows, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner, rec *domain.SaleRecord) error {
	var vessel, status string
	err := row.Scan(
		&rec.ID,
		&rec.Code,
		&rec.Name,
		&rec.DocumentID,
		&rec.Phone,
		&rec.Email,
		&rec.TravelDate,
		&rec.TravelTime,
		&vessel,
		&rec.Adults,
		&rec.Children,
		&rec.TotalPassengers,
		&rec.Price,
		&rec.ServiceType,
		&status,
		&rec.Operator,
		&rec.GeneratedAt,
	)
	if err != nil {
		return err
	}
	rec.Vessel = domain.VesselClass(vessel)
	rec.Status = domain.TicketState(status)
	return nil
}
