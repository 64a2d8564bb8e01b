package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, party, party_id, items, total, points, status, created_by, created_at, updated_at`

// OrderRepo ventas o compras sobre PostgreSQL; cada tipo vive en su tabla con el mismo esquema.
type OrderRepo struct {
	q     Querier
	kind  entity.OrderKind
	table string
}

// NewOrderRepository construye el adaptador para el tipo de pedido. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier, kind entity.OrderKind) *OrderRepo {
	table := "purchases"
	if kind == entity.OrderSale {
		table = "sales"
	}
	return &OrderRepo{q: q, kind: kind, table: table}
}

func (r *OrderRepo) Kind() entity.OrderKind { return r.kind }

// Create persiste el pedido con sus líneas en JSONB.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query := `INSERT INTO ` + r.table + ` (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.Party, o.PartyID, items, o.Total, o.Points, o.Status, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", r.kind, err)
	}
	return nil
}

// GetByID obtiene un pedido por ID; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM `+r.table+` WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea el pedido para editarlo o eliminarlo.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM `+r.table+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, query, id string) (*entity.Order, error) {
	o, err := r.scan(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", r.kind, err)
	}
	return o, nil
}

// Update reemplaza contraparte, líneas, total y puntos.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query := `UPDATE ` + r.table + `
		SET party = $2, party_id = $3, items = $4, total = $5, points = $6, status = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, o.ID, o.Party, o.PartyID, items, o.Total, o.Points, o.Status, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.kind, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el pedido. Las filas del ledger que lo referencian se conservan.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	return nil
}

// List pedidos del más reciente al más antiguo.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	cond, args, err := orderWhere(f)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM `+r.table+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind, err)
	}

	args = append(args, limitOrAll(f.Limit), f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, r.table, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind, err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", r.kind, err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// Summary cantidad y suma de totales de los pedidos que cumplen el filtro.
func (r *OrderRepo) Summary(ctx context.Context, f repository.OrderFilter) (repository.OrderSummary, error) {
	cond, args, err := orderWhere(f)
	if err != nil {
		return repository.OrderSummary{}, err
	}
	var sum repository.OrderSummary
	query := `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM ` + r.table + cond
	if err := r.q.QueryRow(ctx, query, args...).Scan(&sum.Count, &sum.Total); err != nil {
		return repository.OrderSummary{}, fmt.Errorf("summary %s: %w", r.kind, err)
	}
	return sum, nil
}

func orderWhere(f repository.OrderFilter) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.PartyID != "" {
		add("party_id = $%d", f.PartyID)
	}
	if f.CreatedBy != "" {
		add("created_by = $%d", f.CreatedBy)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	if f.ProductCode != "" {
		contains, err := json.Marshal([]map[string]string{{"product_code": f.ProductCode}})
		if err != nil {
			return "", nil, fmt.Errorf("encode product filter: %w", err)
		}
		add("items @> $%d::jsonb", string(contains))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, likePattern(q))
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(party ILIKE $%d OR EXISTS (SELECT 1 FROM jsonb_array_elements(items) it WHERE it->>'product_code' ILIKE $%d))",
			n, n))
	}
	if len(where) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(where, " AND "), args, nil
}

func (r *OrderRepo) scan(row pgx.Row) (*entity.Order, error) {
	var (
		o     entity.Order
		items []byte
		total decimal.Decimal
	)
	err := row.Scan(&o.ID, &o.Party, &o.PartyID, &items, &total, &o.Points, &o.Status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	o.Kind = r.kind
	o.Total = total
	return &o, nil
}
