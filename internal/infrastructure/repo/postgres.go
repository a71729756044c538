package repo

import (
	"database/sql"

	"github.com/lib/pq"

	"plate-backend/internal/domain"
)

// PostgresRepo backs every aggregate with the hosted Postgres instance. The
// service-role connection string comes from config; schema init is idempotent.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	r := &PostgresRepo{db: db}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepo) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			meal_id TEXT,
			taker_id TEXT,
			maker_id TEXT,
			quantity INT,
			unit_price_cents BIGINT,
			total_price_cents BIGINT,
			paid BOOLEAN DEFAULT FALSE,
			status TEXT,
			payment_intent_id TEXT,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE INDEX IF NOT EXISTS orders_payment_intent_idx ON orders (payment_intent_id);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			payment_intent_id TEXT NOT NULL,
			order_id TEXT NOT NULL,
			taker_id TEXT,
			maker_id TEXT,
			meal_id TEXT,
			base_price_cents BIGINT,
			buyer_payment_cents BIGINT,
			seller_payout_cents BIGINT,
			app_revenue_cents BIGINT,
			currency TEXT,
			status TEXT,
			created_at TIMESTAMPTZ,
			UNIQUE (payment_intent_id, order_id)
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			role TEXT,
			stripe_customer_id TEXT,
			tier TEXT,
			expo_push_token TEXT,
			metro_area TEXT,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS meals (
			meal_id TEXT PRIMARY KEY,
			maker_id TEXT,
			name TEXT,
			price_cents BIGINT,
			available BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS metro_area_counts (
			metro_area TEXT PRIMARY KEY,
			maker_count INT,
			taker_count INT,
			maker_cap INT,
			taker_cap INT
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			title TEXT,
			body TEXT,
			created_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS admin_alerts (
			id TEXT PRIMARY KEY,
			kind TEXT,
			metro_area TEXT,
			message TEXT,
			created_at TIMESTAMPTZ
		);`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepo) Put(o *domain.Order) error {
	_, err := r.db.Exec(`INSERT INTO orders (order_id,meal_id,taker_id,maker_id,quantity,unit_price_cents,total_price_cents,paid,status,payment_intent_id,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (order_id) DO UPDATE SET quantity=$5,unit_price_cents=$6,total_price_cents=$7,paid=$8,status=$9,payment_intent_id=$10,updated_at=$12`,
		o.OrderID, o.MealID, o.TakerID, o.MakerID, o.Quantity, o.UnitPriceCents, o.TotalPriceCents, o.Paid, string(o.Status), o.PaymentIntentID, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *PostgresRepo) Get(id string) (*domain.Order, bool) {
	var o domain.Order
	err := r.db.QueryRow(`SELECT order_id,meal_id,taker_id,maker_id,quantity,unit_price_cents,total_price_cents,paid,status,payment_intent_id,created_at,updated_at FROM orders WHERE order_id=$1`, id).
		Scan(&o.OrderID, &o.MealID, &o.TakerID, &o.MakerID, &o.Quantity, &o.UnitPriceCents, &o.TotalPriceCents, &o.Paid, (*string)(&o.Status), &o.PaymentIntentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, false
	}
	return &o, true
}

// MarkPaidByIntent is the single mutual-exclusion point for concurrent webhook
// deliveries: one statement, matched by intent id, idempotent values.
func (r *PostgresRepo) MarkPaidByIntent(intentID string) ([]domain.Order, error) {
	rows, err := r.db.Query(`UPDATE orders SET paid=TRUE, status=$2, updated_at=NOW()
		WHERE payment_intent_id=$1
		RETURNING order_id,meal_id,taker_id,maker_id,quantity,unit_price_cents,total_price_cents,paid,status,payment_intent_id,created_at,updated_at`,
		intentID, string(domain.OrderAccepted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.OrderID, &o.MealID, &o.TakerID, &o.MakerID, &o.Quantity, &o.UnitPriceCents, &o.TotalPriceCents, &o.Paid, (*string)(&o.Status), &o.PaymentIntentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) LinkIntent(orderIDs []string, intentID string) error {
	_, err := r.db.Exec(`UPDATE orders SET payment_intent_id=$1, updated_at=NOW() WHERE order_id = ANY($2)`,
		intentID, pq.Array(orderIDs))
	return err
}

// Insert appends one ledger row; the unique constraint turns webhook replay
// into a reported no-op instead of a duplicate.
func (r *PostgresRepo) Insert(t *domain.Transaction) (bool, error) {
	res, err := r.db.Exec(`INSERT INTO transactions (id,payment_intent_id,order_id,taker_id,maker_id,meal_id,base_price_cents,buyer_payment_cents,seller_payout_cents,app_revenue_cents,currency,status,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (payment_intent_id, order_id) DO NOTHING`,
		t.ID, t.PaymentIntentID, t.OrderID, t.TakerID, t.MakerID, t.MealID, t.BasePriceCents, t.BuyerPaymentCents, t.SellerPayoutCents, t.AppRevenueCents, t.Currency, string(t.Status), t.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) ListByIntent(intentID string) ([]domain.Transaction, error) {
	rows, err := r.db.Query(`SELECT id,payment_intent_id,order_id,taker_id,maker_id,meal_id,base_price_cents,buyer_payment_cents,seller_payout_cents,app_revenue_cents,currency,status,created_at FROM transactions WHERE payment_intent_id=$1`, intentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.PaymentIntentID, &t.OrderID, &t.TakerID, &t.MakerID, &t.MealID, &t.BasePriceCents, &t.BuyerPaymentCents, &t.SellerPayoutCents, &t.AppRevenueCents, &t.Currency, (*string)(&t.Status), &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) PutProfile(p *domain.Profile) error {
	_, err := r.db.Exec(`INSERT INTO profiles (user_id,role,stripe_customer_id,tier,expo_push_token,metro_area,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id) DO UPDATE SET role=$2,stripe_customer_id=$3,tier=$4,expo_push_token=$5,metro_area=$6,updated_at=$8`,
		p.UserID, string(p.Role), p.StripeCustomerID, string(p.Tier), p.ExpoPushToken, p.MetroArea, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PostgresRepo) GetProfile(id string) (*domain.Profile, bool) {
	return r.profileWhere(`user_id=$1`, id)
}

func (r *PostgresRepo) GetProfileByCustomer(customerID string) (*domain.Profile, bool) {
	return r.profileWhere(`stripe_customer_id=$1`, customerID)
}

func (r *PostgresRepo) profileWhere(cond string, arg any) (*domain.Profile, bool) {
	var p domain.Profile
	err := r.db.QueryRow(`SELECT user_id,role,stripe_customer_id,tier,expo_push_token,metro_area,created_at,updated_at FROM profiles WHERE `+cond, arg).
		Scan(&p.UserID, (*string)(&p.Role), &p.StripeCustomerID, (*string)(&p.Tier), &p.ExpoPushToken, &p.MetroArea, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, false
	}
	return &p, true
}

func (r *PostgresRepo) PutMeal(m *domain.Meal) error {
	_, err := r.db.Exec(`INSERT INTO meals (meal_id,maker_id,name,price_cents,available,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (meal_id) DO UPDATE SET name=$3,price_cents=$4,available=$5,updated_at=$7`,
		m.MealID, m.MakerID, m.Name, m.PriceCents, m.Available, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *PostgresRepo) GetMeal(id string) (*domain.Meal, bool) {
	var m domain.Meal
	err := r.db.QueryRow(`SELECT meal_id,maker_id,name,price_cents,available,created_at,updated_at FROM meals WHERE meal_id=$1`, id).
		Scan(&m.MealID, &m.MakerID, &m.Name, &m.PriceCents, &m.Available, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, false
	}
	return &m, true
}

func (r *PostgresRepo) PutMetroCounts(c domain.MetroAreaCounts) error {
	_, err := r.db.Exec(`INSERT INTO metro_area_counts (metro_area,maker_count,taker_count,maker_cap,taker_cap)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (metro_area) DO UPDATE SET maker_count=$2,taker_count=$3,maker_cap=$4,taker_cap=$5`,
		c.MetroArea, c.MakerCount, c.TakerCount, c.MakerCap, c.TakerCap)
	return err
}

func (r *PostgresRepo) ListMetroCounts() ([]domain.MetroAreaCounts, error) {
	rows, err := r.db.Query(`SELECT metro_area,maker_count,taker_count,maker_cap,taker_cap FROM metro_area_counts ORDER BY metro_area ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.MetroAreaCounts
	for rows.Next() {
		var c domain.MetroAreaCounts
		if err := rows.Scan(&c.MetroArea, &c.MakerCount, &c.TakerCount, &c.MakerCap, &c.TakerCap); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) InsertNotification(n *domain.Notification) error {
	_, err := r.db.Exec(`INSERT INTO notifications (id,user_id,title,body,created_at) VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.UserID, n.Title, n.Body, n.CreatedAt)
	return err
}

func (r *PostgresRepo) InsertAlert(a *domain.AdminAlert) error {
	_, err := r.db.Exec(`INSERT INTO admin_alerts (id,kind,metro_area,message,created_at) VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.Kind, a.MetroArea, a.Message, a.CreatedAt)
	return err
}
