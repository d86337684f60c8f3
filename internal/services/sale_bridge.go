package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"muellepos/internal/domain"
	"muellepos/internal/utils"

	"github.com/go-sql-driver/mysql"
)

// SaleStore is the narrow contract the bridge needs from the repository.
type SaleStore interface {
	Insert(ctx context.Context, rec domain.SaleRecord) (string, error)
	FindByCode(ctx context.Context, code string) (domain.SaleRecord, error)
	UpdateStatus(ctx context.Context, code string, status domain.TicketState) error
}

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 2 * time.Second
	defaultReadyTimeout = 5 * time.Second
	readyPollInterval   = 250 * time.Millisecond
)

// SaleBridge sits between the ticket controller and the store. It validates
// records locally, waits (bounded) for the store to be ready, and retries
// transient failures with a fixed backoff before surfacing a classified
// error. Permission and validation failures are never retried.
type SaleBridge struct {
	Store SaleStore
	// Ping reports store reachability; readiness is polled through it.
	Ping func(ctx context.Context) error

	MaxAttempts  int
	RetryBackoff time.Duration
	ReadyTimeout time.Duration

	// Sleep is swappable so tests do not wait out real backoffs.
	Sleep     func(ctx context.Context, d time.Duration) error
	RequestID string
}

func NewSaleBridge(store SaleStore, ping func(ctx context.Context) error) *SaleBridge {
	return &SaleBridge{Store: store, Ping: ping}
}

func (b *SaleBridge) maxAttempts() int {
	if b.MaxAttempts > 0 {
		return b.MaxAttempts
	}
	return defaultMaxAttempts
}

func (b *SaleBridge) backoff() time.Duration {
	if b.RetryBackoff > 0 {
		return b.RetryBackoff
	}
	return defaultRetryBackoff
}

func (b *SaleBridge) readyTimeout() time.Duration {
	if b.ReadyTimeout > 0 {
		return b.ReadyTimeout
	}
	return defaultReadyTimeout
}

func (b *SaleBridge) sleep(ctx context.Context, d time.Duration) error {
	if b.Sleep != nil {
		return b.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WaitReady polls the store until it answers or the bound expires.
func (b *SaleBridge) WaitReady(ctx context.Context) error {
	if b.Ping == nil {
		return nil
	}
	deadline := time.Now().Add(b.readyTimeout())
	for {
		if err := b.Ping(ctx); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return domain.NotReadyError{}
		}
		if err := b.sleep(ctx, readyPollInterval); err != nil {
			return domain.NotReadyError{}
		}
	}
}

// ValidateRecord rejects incomplete records locally, before any round-trip.
func ValidateRecord(rec domain.SaleRecord) error {
	var missing []string
	if strings.TrimSpace(rec.Code) == "" {
		missing = append(missing, "codigo")
	}
	if strings.TrimSpace(rec.Name) == "" {
		missing = append(missing, "nombre")
	}
	if strings.TrimSpace(rec.DocumentID) == "" {
		missing = append(missing, "documento")
	}
	if strings.TrimSpace(rec.TravelDate) == "" {
		missing = append(missing, "fecha")
	}
	if rec.Vessel == domain.VesselNone {
		missing = append(missing, "embarcacion")
	}
	if rec.Price <= 0 {
		missing = append(missing, "precio")
	}
	if len(missing) > 0 {
		return domain.ValidationError{Fields: missing}
	}
	return nil
}

// Persist stores a sale record, retrying transient failures. Returns the
// record id assigned by the store.
func (b *SaleBridge) Persist(ctx context.Context, rec domain.SaleRecord) (string, error) {
	if err := ValidateRecord(rec); err != nil {
		return "", err
	}
	if err := b.WaitReady(ctx); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= b.maxAttempts(); attempt++ {
		id, err := b.Store.Insert(ctx, rec)
		if err == nil {
			utils.LogEvent(b.RequestID, "ventas", "persist", fmt.Sprintf("codigo=%s id=%s intento=%d", rec.Code, id, attempt))
			return id, nil
		}

		classified := ClassifyStoreError(err)
		lastErr = classified
		if domain.PersistenceClassOf(classified) != domain.PersistenceTransient {
			utils.LogError(b.RequestID, "ventas", "persist", classified)
			return "", classified
		}

		utils.LogEvent(b.RequestID, "ventas", "persist_retry",
			fmt.Sprintf("codigo=%s intento=%d/%d", rec.Code, attempt, b.maxAttempts()))
		if attempt < b.maxAttempts() {
			if err := b.sleep(ctx, b.backoff()); err != nil {
				return "", domain.PersistenceError{Class: domain.PersistenceTransient, Err: err}
			}
		}
	}

	utils.LogError(b.RequestID, "ventas", "persist", lastErr)
	return "", lastErr
}

// FindByCode looks up a persisted sale, classifying store failures.
func (b *SaleBridge) FindByCode(ctx context.Context, code string) (domain.SaleRecord, error) {
	if err := b.WaitReady(ctx); err != nil {
		return domain.SaleRecord{}, err
	}
	rec, err := b.Store.FindByCode(ctx, code)
	if err != nil {
		if domain.IsNotFound(err) || domain.IsValidation(err) {
			return rec, err
		}
		return rec, ClassifyStoreError(err)
	}
	return rec, nil
}

// MarkCancelled propagates a cancellation to the persisted record. Single
// attempt: the cancel is already authoritative in the controller.
func (b *SaleBridge) MarkCancelled(ctx context.Context, code string) error {
	if err := b.WaitReady(ctx); err != nil {
		return err
	}
	if err := b.Store.UpdateStatus(ctx, code, domain.StateCancelled); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return ClassifyStoreError(err)
	}
	utils.LogEvent(b.RequestID, "ventas", "mark_cancelled", "codigo="+code)
	return nil
}

// MySQL server error numbers that matter for classification.
const (
	mysqlErrTooManyConnections = 1040
	mysqlErrAccessDeniedDB     = 1044
	mysqlErrAccessDenied       = 1045
	mysqlErrServerShutdown     = 1053
	mysqlErrTableAccessDenied  = 1142
	mysqlErrLockWaitTimeout    = 1205
	mysqlErrDeadlock           = 1213
)

// ClassifyStoreError folds driver errors into the persistence taxonomy:
// connectivity problems are transient (retryable), credential problems are
// permission, everything else is unknown.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsPersistence(err) {
		return err
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrAccessDenied, mysqlErrAccessDeniedDB, mysqlErrTableAccessDenied:
			return domain.PersistenceError{Class: domain.PersistencePermission, Err: err}
		case mysqlErrTooManyConnections, mysqlErrLockWaitTimeout, mysqlErrDeadlock, mysqlErrServerShutdown:
			return domain.PersistenceError{Class: domain.PersistenceTransient, Err: err}
		default:
			return domain.PersistenceError{Class: domain.PersistenceUnknown, Err: err}
		}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return domain.PersistenceError{Class: domain.PersistenceTransient, Err: err}
	}

	return domain.PersistenceError{Class: domain.PersistenceUnknown, Err: err}
}
