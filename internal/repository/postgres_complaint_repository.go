package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/streetlight-service/internal/domain"
)

const complaintColumns = `id::text, user_id::text, user_name, address, lat, lng, description,
               status, admin_notes, created_at, updated_at`

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates a Postgres-backed repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	userID, ok := parseID(complaint.UserID)
	if !ok {
		return fmt.Errorf("invalid owner id %q", complaint.UserID)
	}
	const query = `
        INSERT INTO complaints (user_id, user_name, address, lat, lng, description, status, admin_notes, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id::text`
	return r.pool.QueryRow(ctx, query,
		userID,
		complaint.UserName,
		complaint.Location.Address,
		complaint.Location.Coordinates.Lat,
		complaint.Location.Coordinates.Lng,
		complaint.Description,
		string(complaint.Status),
		complaint.AdminNotes,
		complaint.CreatedAt,
		complaint.UpdatedAt,
	).Scan(&complaint.ID)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	numericID, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	return scanComplaint(r.pool.QueryRow(ctx, query, numericID))
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, notes *string, at time.Time) (*domain.Complaint, domain.ComplaintStatus, error) {
	numericID, ok := parseID(id)
	if !ok {
		return nil, "", ErrNotFound
	}
	query := `
        WITH prev AS (
            SELECT id AS prev_id, status AS prev_status FROM complaints WHERE id=$4 FOR UPDATE
        )
        UPDATE complaints SET status=$1,
            updated_at=GREATEST($2::timestamptz, updated_at + INTERVAL '1 microsecond'),
            admin_notes=COALESCE($3, admin_notes)
        FROM prev
        WHERE complaints.id = prev.prev_id
        RETURNING ` + complaintColumns + `, prev.prev_status`
	var previous string
	complaint, err := scanComplaint(r.pool.QueryRow(ctx, query, string(status), at, notes, numericID), &previous)
	if err != nil {
		return nil, "", err
	}
	return complaint, domain.ComplaintStatus(previous), nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		userID, ok := parseID(*filter.UserID)
		if !ok {
			return []domain.Complaint{}, nil
		}
		args = append(args, userID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(address) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY updated_at DESC, id DESC`,
		complaintColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int, len(domain.ComplaintStatuses))
	for _, status := range domain.ComplaintStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.ComplaintStatus(status)] = count
	}
	return counts, rows.Err()
}

func (r *complaintRepository) CountByUser(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id::text, COUNT(*) FROM complaints GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			userID string
			count  int
		)
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, err
		}
		counts[userID] = count
	}
	return counts, rows.Err()
}

func (r *complaintRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&count)
	return count, err
}

// scanComplaint reads complaintColumns, followed by any extra destinations.
func scanComplaint(row pgx.Row, extra ...any) (*domain.Complaint, error) {
	var (
		complaint domain.Complaint
		status    string
	)
	dest := []any{
		&complaint.ID,
		&complaint.UserID,
		&complaint.UserName,
		&complaint.Location.Address,
		&complaint.Location.Coordinates.Lat,
		&complaint.Location.Coordinates.Lng,
		&complaint.Description,
		&status,
		&complaint.AdminNotes,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	complaint.Status = domain.ComplaintStatus(status)
	return &complaint, nil
}

func parseID(id string) (int64, bool) {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
