// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"sales-browser/internal/common/logger"
	"sales-browser/internal/sales"
)

// PostgresStore is the relational backend. It conforms to the same query
// contract as the memory and Elasticsearch stores: the predicate becomes a
// WHERE clause, the catalog becomes DISTINCT/MIN/MAX aggregation, and the
// effective page is fetched with LIMIT/OFFSET after a COUNT.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"backend": "postgres"}),
	}
}

const salesProjection = `transaction_id, date, raw_date, customer_id, customer_name,
	phone_number, gender, age, product_category, quantity, total_amount,
	customer_region, product_id, employee_name`

func (s *PostgresStore) Query(ctx context.Context, req sales.QueryRequest) (*sales.QueryResult, error) {
	if ire := sales.ValidateRanges(&req); ire != nil {
		return nil, ire
	}

	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = sales.DefaultPageSize
	}

	where, args := buildWhereClause(&req)

	var total int
	countQuery := "SELECT COUNT(*) FROM sales" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	effectivePage, totalPages, start, _ := sales.Paginate(total, req.Page, pageSize)

	pageQuery := fmt.Sprintf(
		"SELECT %s FROM sales%s ORDER BY %s LIMIT $%d OFFSET $%d",
		salesProjection, where, buildOrderClause(req.SortBy, req.SortOrder),
		len(args)+1, len(args)+2,
	)
	rows, err := s.db.QueryContext(ctx, pageQuery, append(args, pageSize, start)...)
	if err != nil {
		return nil, fmt.Errorf("page query failed: %w", err)
	}
	defer rows.Close()

	data := []sales.View{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		data = append(data, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &sales.QueryResult{
		Data:       data,
		Total:      total,
		Page:       effectivePage,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// buildWhereClause translates the request predicate into SQL. Set membership
// uses lower() = ANY so matching stays case-insensitive while stored values
// keep their original case; an active range bound excludes NULL values the
// same way the in-memory scan fails records with an absent age or date.
func buildWhereClause(req *sales.QueryRequest) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if req.SearchTerm != "" {
		p := arg("%" + escapeLikePattern(req.SearchTerm) + "%")
		conditions = append(conditions,
			fmt.Sprintf("(customer_name ILIKE %s OR phone_number ILIKE %s)", p, p))
	}

	addMembership := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		lowered := make([]string, len(values))
		for i, v := range values {
			lowered[i] = strings.ToLower(v)
		}
		conditions = append(conditions,
			fmt.Sprintf("lower(%s) = ANY(%s)", column, arg(pq.Array(lowered))))
	}

	addMembership("customer_region", req.Regions)
	addMembership("gender", req.Genders)
	addMembership("product_category", req.Categories)
	addMembership("payment_method", req.PaymentMethods)

	if len(req.Tags) > 0 {
		lowered := make([]string, len(req.Tags))
		for i, v := range req.Tags {
			lowered[i] = strings.ToLower(v)
		}
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE lower(tag) = ANY(%s))",
			arg(pq.Array(lowered))))
	}

	if req.AgeMin != nil || req.AgeMax != nil {
		conditions = append(conditions, "age IS NOT NULL")
		if req.AgeMin != nil {
			conditions = append(conditions, fmt.Sprintf("age >= %s", arg(*req.AgeMin)))
		}
		if req.AgeMax != nil {
			conditions = append(conditions, fmt.Sprintf("age <= %s", arg(*req.AgeMax)))
		}
	}

	if req.DateFrom != nil || req.DateTo != nil {
		conditions = append(conditions, "date IS NOT NULL")
		if req.DateFrom != nil {
			conditions = append(conditions, fmt.Sprintf("date >= %s", arg(req.DateFrom.UTC())))
		}
		if req.DateTo != nil {
			conditions = append(conditions, fmt.Sprintf("date <= %s", arg(req.DateTo.UTC())))
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// escapeLikePattern neutralizes the LIKE metacharacters so the search term
// matches as a literal substring, the same as the in-memory scan.
func escapeLikePattern(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// buildOrderClause applies the key-dependent default direction and orders
// NULLs as the smallest value, matching the in-memory comparator. The name
// column orders under the C collation so byte order matches the other
// backends regardless of the database locale. The transaction_id tiebreak
// keeps pagination deterministic.
func buildOrderClause(sortBy, sortOrder string) string {
	column := "date"
	switch sortBy {
	case sales.SortByQuantity:
		column = "quantity"
	case sales.SortByName:
		column = `customer_name COLLATE "C"`
	}

	direction := "DESC NULLS LAST"
	if sales.EffectiveOrder(sortBy, sortOrder) == sales.OrderAsc {
		direction = "ASC NULLS FIRST"
	}

	return fmt.Sprintf("%s %s, transaction_id ASC", column, direction)
}

func scanView(rows *sql.Rows) (sales.View, error) {
	var (
		view     sales.View
		date     sql.NullTime
		rawDate  sql.NullString
		age      sql.NullInt64
		quantity sql.NullInt64
		amount   sql.NullFloat64
	)

	err := rows.Scan(
		&view.TransactionID, &date, &rawDate, &view.CustomerID, &view.CustomerName,
		&view.PhoneNumber, &view.Gender, &age, &view.ProductCategory, &quantity,
		&amount, &view.CustomerRegion, &view.ProductID, &view.EmployeeName,
	)
	if err != nil {
		return view, err
	}

	if date.Valid {
		view.Date = date.Time.UTC().Format(time.RFC3339)
	} else {
		view.Date = rawDate.String
	}
	if age.Valid {
		n := int(age.Int64)
		view.Age = &n
	}
	if quantity.Valid {
		n := int(quantity.Int64)
		view.Quantity = &n
	}
	if amount.Valid {
		v := amount.Float64
		view.TotalAmount = &v
	}
	return view, nil
}

// FilterCatalog aggregates distinct values and extrema server-side.
func (s *PostgresStore) FilterCatalog(ctx context.Context) (*sales.FilterCatalog, error) {
	catalog := &sales.FilterCatalog{
		Regions:        []string{},
		Genders:        []string{},
		Categories:     []string{},
		Tags:           []string{},
		PaymentMethods: []string{},
	}

	distinct := func(query string, dest *[]string) error {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return err
			}
			*dest = append(*dest, v)
		}
		return rows.Err()
	}

	type distinctQuery struct {
		query string
		dest  *[]string
	}
	// ORDER BY under the C collation so the lists come back in byte order,
	// matching the in-memory sort and the term aggregation key order.
	for _, dq := range []distinctQuery{
		{`SELECT DISTINCT customer_region FROM sales WHERE customer_region <> '' ORDER BY customer_region COLLATE "C"`, &catalog.Regions},
		{`SELECT DISTINCT gender FROM sales WHERE gender <> '' ORDER BY gender COLLATE "C"`, &catalog.Genders},
		{`SELECT DISTINCT product_category FROM sales WHERE product_category <> '' ORDER BY product_category COLLATE "C"`, &catalog.Categories},
		{`SELECT DISTINCT tag FROM sales, unnest(tags) AS tag ORDER BY tag COLLATE "C"`, &catalog.Tags},
		{`SELECT DISTINCT payment_method FROM sales WHERE payment_method <> '' ORDER BY payment_method COLLATE "C"`, &catalog.PaymentMethods},
	} {
		if err := distinct(dq.query, dq.dest); err != nil {
			return nil, fmt.Errorf("catalog distinct query failed: %w", err)
		}
	}

	var (
		minAge, maxAge   sql.NullInt64
		minDate, maxDate sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT MIN(age), MAX(age), MIN(date), MAX(date) FROM sales",
	).Scan(&minAge, &maxAge, &minDate, &maxDate)
	if err != nil {
		return nil, fmt.Errorf("catalog extrema query failed: %w", err)
	}

	if minAge.Valid {
		n := int(minAge.Int64)
		catalog.MinAge = &n
	}
	if maxAge.Valid {
		n := int(maxAge.Int64)
		catalog.MaxAge = &n
	}
	if minDate.Valid {
		t := minDate.Time.UTC()
		catalog.MinDate = &t
	}
	if maxDate.Valid {
		t := maxDate.Time.UTC()
		catalog.MaxDate = &t
	}

	return catalog, nil
}
