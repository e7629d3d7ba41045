package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	requestDatamodel "github.com/frahmantamala/hr-backoffice/internal/core/datamodel/request"
	"github.com/frahmantamala/hr-backoffice/internal/core/events"
	"github.com/frahmantamala/hr-backoffice/internal/core/store"
	notificationPostgres "github.com/frahmantamala/hr-backoffice/internal/notification/postgres"
	"github.com/frahmantamala/hr-backoffice/internal/workflow"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

const aggregateTypeRequest = "request"

const countsQuery = `
SELECT
	(SELECT COUNT(*) FROM leave_requests WHERE status = ?) AS pending_leave,
	(SELECT COUNT(*) FROM bank_requests WHERE status = ?) AS pending_bank_change,
	(SELECT COUNT(*) FROM salary_advance_requests WHERE status = ?) AS pending_salary_advance,
	(SELECT COUNT(*) FROM reimbursements WHERE status = ?) AS pending_reimbursement`

// RequestRepository implements workflow.RepositoryAPI over the four request
// tables. Writes go through GORM, the pending snapshot through sqlx.
type RequestRepository struct {
	db      *gorm.DB
	reader  *sqlx.DB
	outbox  *notificationPostgres.OutboxRepository
	timeout store.Timeout
}

func NewRequestRepository(db *gorm.DB, reader *sqlx.DB, outbox *notificationPostgres.OutboxRepository, timeout time.Duration) *RequestRepository {
	return &RequestRepository{db: db, reader: reader, outbox: outbox, timeout: store.Timeout(timeout)}
}

func (r *RequestRepository) WithinTx(ctx context.Context, fn func(repo workflow.RepositoryAPI) error) error {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RequestRepository{
			db:      tx,
			reader:  r.reader,
			outbox:  r.outbox.WithTx(tx),
			timeout: r.timeout,
		})
	})
	return store.Translate(err, "request transaction failed", nil)
}

func (r *RequestRepository) List(ctx context.Context, filter workflow.Filter) ([]workflow.Request, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	kinds := workflow.Kinds
	if filter.Kind != nil {
		kinds = []workflow.Kind{*filter.Kind}
	}

	var all []workflow.Request
	for _, kind := range kinds {
		requests, err := r.load(ctx, kind, filter, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, requests...)
	}
	return all, nil
}

func (r *RequestRepository) Get(ctx context.Context, kind workflow.Kind, id int64) (*workflow.Request, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	requests, err := r.load(ctx, kind, workflow.Filter{}, &id)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, apperrors.ErrRequestNotFound
	}
	return &requests[0], nil
}

func (r *RequestRepository) Exists(ctx context.Context, kind workflow.Kind, id int64) (bool, error) {
	t, err := workflow.TableFor(kind)
	if err != nil {
		return false, err
	}

	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var n int64
	err = r.db.WithContext(ctx).Table(t.Name).Where(t.IDColumn+" = ?", id).Count(&n).Error
	if err != nil {
		return false, store.Translate(err, "failed to look up request", nil)
	}
	return n > 0, nil
}

func (r *RequestRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Table("employees").Where("emp_id = ?", employeeID).Count(&n).Error
	if err != nil {
		return false, store.Translate(err, "failed to look up employee", nil)
	}
	return n > 0, nil
}

// CompareAndSetStatus moves a request out of from. It reports false when no
// row matched, either because the id is absent or the status already moved.
func (r *RequestRepository) CompareAndSetStatus(ctx context.Context, kind workflow.Kind, id int64, from, to workflow.Status, resolvedBy int64, resolvedAt time.Time) (bool, error) {
	t, err := workflow.TableFor(kind)
	if err != nil {
		return false, err
	}

	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Table(t.Name).
		Where(t.IDColumn+" = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":      string(to),
			"resolved_by": resolvedBy,
			"resolved_at": resolvedAt,
		})
	if res.Error != nil {
		return false, store.Translate(res.Error, "failed to update request status", nil)
	}
	return res.RowsAffected == 1, nil
}

func (r *RequestRepository) Create(ctx context.Context, employeeID int64, payload workflow.Payload, submittedAt time.Time) (int64, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	pending := string(workflow.StatusPending)

	var (
		id  int64
		err error
	)
	switch p := payload.(type) {
	case workflow.LeavePayload:
		row := &requestDatamodel.LeaveRequest{EmpID: employeeID, Status: pending, RequestedOn: submittedAt, StartDate: p.Start, EndDate: p.End, Reason: p.Reason}
		err = db.Create(row).Error
		id = row.LeaveID
	case workflow.BankChangePayload:
		row := &requestDatamodel.BankRequest{EmpID: employeeID, Status: pending, RequestDate: submittedAt, OldAccount: p.OldAccount, NewAccount: p.NewAccount}
		err = db.Create(row).Error
		id = row.RequestID
	case workflow.SalaryAdvancePayload:
		row := &requestDatamodel.SalaryAdvanceRequest{EmpID: employeeID, Status: pending, RequestDate: submittedAt, Amount: p.Amount, Reason: p.Reason}
		err = db.Create(row).Error
		id = row.AdvanceID
	case workflow.ReimbursementPayload:
		row := &requestDatamodel.Reimbursement{EmpID: employeeID, Status: pending, RequestDate: submittedAt, Amount: p.Amount, Reason: p.Reason}
		err = db.Create(row).Error
		id = row.ReimbID
	default:
		return 0, apperrors.ErrInvalidRequestKind
	}
	if err != nil {
		return 0, store.Translate(err, "failed to create request", nil)
	}
	return id, nil
}

func (r *RequestRepository) Enqueue(ctx context.Context, aggregateID string, event events.Event) error {
	return r.outbox.Enqueue(ctx, aggregateTypeRequest, aggregateID, event)
}

// AggregateCounts reads every pending count in one statement so the numbers
// come from a single snapshot.
func (r *RequestRepository) AggregateCounts(ctx context.Context) (*workflow.Counts, error) {
	ctx, cancel := r.timeout.Context(ctx)
	defer cancel()

	var row struct {
		PendingLeave         int64 `db:"pending_leave"`
		PendingBankChange    int64 `db:"pending_bank_change"`
		PendingSalaryAdvance int64 `db:"pending_salary_advance"`
		PendingReimbursement int64 `db:"pending_reimbursement"`
	}
	pending := string(workflow.StatusPending)
	if err := r.reader.GetContext(ctx, &row, r.reader.Rebind(countsQuery), pending, pending, pending, pending); err != nil {
		return nil, store.Translate(err, "failed to count pending requests", nil)
	}

	return &workflow.Counts{
		TotalPending:         row.PendingLeave + row.PendingBankChange + row.PendingSalaryAdvance + row.PendingReimbursement,
		PendingLeave:         row.PendingLeave,
		PendingBankChange:    row.PendingBankChange,
		PendingSalaryAdvance: row.PendingSalaryAdvance,
		PendingReimbursement: row.PendingReimbursement,
	}, nil
}

func (r *RequestRepository) load(ctx context.Context, kind workflow.Kind, filter workflow.Filter, id *int64) ([]workflow.Request, error) {
	switch kind {
	case workflow.KindLeave:
		return loadKind(ctx, r.db, kind, filter, id, leaveRow.toRequest)
	case workflow.KindBankChange:
		return loadKind(ctx, r.db, kind, filter, id, bankRow.toRequest)
	case workflow.KindSalaryAdvance:
		return loadKind(ctx, r.db, kind, filter, id, advanceRow.toRequest)
	case workflow.KindReimbursement:
		return loadKind(ctx, r.db, kind, filter, id, reimbursementRow.toRequest)
	}
	return nil, apperrors.ErrInvalidRequestKind
}

func loadKind[T any](ctx context.Context, db *gorm.DB, kind workflow.Kind, filter workflow.Filter, id *int64, convert func(T) workflow.Request) ([]workflow.Request, error) {
	t, err := workflow.TableFor(kind)
	if err != nil {
		return nil, err
	}

	q := db.WithContext(ctx).
		Table(t.Name + " r").
		Select("r.*, u.first_name, u.last_name").
		Joins("LEFT JOIN employees e ON e.emp_id = r.emp_id").
		Joins("LEFT JOIN users u ON u.user_id = e.user_id")
	if id != nil {
		q = q.Where("r."+t.IDColumn+" = ?", *id)
	}
	if filter.Status != "" {
		q = q.Where("r.status = ?", string(filter.Status))
	}
	if filter.EmployeeID != nil {
		q = q.Where("r.emp_id = ?", *filter.EmployeeID)
	}

	var rows []T
	if err := q.Scan(&rows).Error; err != nil {
		return nil, store.Translate(err, fmt.Sprintf("failed to load %s requests", kind), nil)
	}

	requests := make([]workflow.Request, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, convert(row))
	}
	return requests, nil
}

type leaveRow struct {
	requestDatamodel.LeaveRequest
	FirstName sql.NullString
	LastName  sql.NullString
}

func (row leaveRow) toRequest() workflow.Request {
	return workflow.Request{
		Kind:         workflow.KindLeave,
		ID:           row.LeaveID,
		EmployeeID:   row.EmpID,
		EmployeeName: store.DisplayName(row.FirstName, row.LastName),
		Status:       workflow.Status(row.Status),
		SubmittedAt:  row.RequestedOn.UTC(),
		ResolvedBy:   row.ResolvedBy,
		ResolvedAt:   row.ResolvedAt,
		Payload:      workflow.LeavePayload{Start: row.StartDate.UTC(), End: row.EndDate.UTC(), Reason: row.Reason},
	}
}

type bankRow struct {
	requestDatamodel.BankRequest
	FirstName sql.NullString
	LastName  sql.NullString
}

func (row bankRow) toRequest() workflow.Request {
	return workflow.Request{
		Kind:         workflow.KindBankChange,
		ID:           row.RequestID,
		EmployeeID:   row.EmpID,
		EmployeeName: store.DisplayName(row.FirstName, row.LastName),
		Status:       workflow.Status(row.Status),
		SubmittedAt:  row.RequestDate.UTC(),
		ResolvedBy:   row.ResolvedBy,
		ResolvedAt:   row.ResolvedAt,
		Payload:      workflow.BankChangePayload{OldAccount: row.OldAccount, NewAccount: row.NewAccount},
	}
}

type advanceRow struct {
	requestDatamodel.SalaryAdvanceRequest
	FirstName sql.NullString
	LastName  sql.NullString
}

func (row advanceRow) toRequest() workflow.Request {
	return workflow.Request{
		Kind:         workflow.KindSalaryAdvance,
		ID:           row.AdvanceID,
		EmployeeID:   row.EmpID,
		EmployeeName: store.DisplayName(row.FirstName, row.LastName),
		Status:       workflow.Status(row.Status),
		SubmittedAt:  row.RequestDate.UTC(),
		ResolvedBy:   row.ResolvedBy,
		ResolvedAt:   row.ResolvedAt,
		Payload:      workflow.SalaryAdvancePayload{Amount: row.Amount, Reason: row.Reason},
	}
}

type reimbursementRow struct {
	requestDatamodel.Reimbursement
	FirstName sql.NullString
	LastName  sql.NullString
}

func (row reimbursementRow) toRequest() workflow.Request {
	return workflow.Request{
		Kind:         workflow.KindReimbursement,
		ID:           row.ReimbID,
		EmployeeID:   row.EmpID,
		EmployeeName: store.DisplayName(row.FirstName, row.LastName),
		Status:       workflow.Status(row.Status),
		SubmittedAt:  row.RequestDate.UTC(),
		ResolvedBy:   row.ResolvedBy,
		ResolvedAt:   row.ResolvedAt,
		Payload:      workflow.ReimbursementPayload{Amount: row.Amount, Reason: row.Reason},
	}
}
