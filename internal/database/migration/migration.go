package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mescude1/skinly-ecomm/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL UNIQUE,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  first_name    TEXT        NOT NULL DEFAULT '',
  last_name     TEXT        NOT NULL DEFAULT '',
  skin_tone     TEXT        NULL,
  skin_type     TEXT        NULL,
  is_staff      BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_brands",
		SQL: `CREATE TABLE IF NOT EXISTS brands (
  id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_colors",
		SQL: `CREATE TABLE IF NOT EXISTS colors (
  id       UUID       PRIMARY KEY DEFAULT uuid_generate_v4(),
  name     TEXT       NOT NULL UNIQUE,
  hex_code VARCHAR(7) NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_products",
		SQL: `CREATE TABLE IF NOT EXISTS products (
  id                      UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  name                    TEXT          NOT NULL,
  brand_id                UUID          NOT NULL REFERENCES brands (id) ON DELETE CASCADE,
  product_type            TEXT          NOT NULL,
  finish_type             TEXT          NOT NULL,
  color_id                UUID          NOT NULL REFERENCES colors (id) ON DELETE CASCADE,
  price                   NUMERIC(10,2) NOT NULL CHECK (price >= 0),
  skin_type_compatibility TEXT          NULL,
  stock_quantity          INTEGER       NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  rating                  DOUBLE PRECISION NOT NULL DEFAULT 0,
  image_key               TEXT          NOT NULL DEFAULT '',
  created_at              TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_products_brand",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_brand_id ON products (brand_id);`,
	},
	{
		Name: "create_index_products_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_product_type ON products (product_type);`,
	},
	{
		Name: "create_index_products_stock",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_stock_quantity ON products (stock_quantity);`,
	},
	{
		Name: "create_table_taste_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS taste_profiles (
  user_id                 UUID          PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  preferred_product_types VARCHAR(500)  NOT NULL DEFAULT '',
  preferred_finish_types  VARCHAR(500)  NOT NULL DEFAULT '',
  min_price               NUMERIC(10,2) NULL CHECK (min_price >= 0),
  max_price               NUMERIC(10,2) NULL CHECK (max_price >= 0)
);`,
	},
	{
		Name: "create_table_taste_profile_colors",
		SQL: `CREATE TABLE IF NOT EXISTS taste_profile_colors (
  user_id  UUID NOT NULL REFERENCES taste_profiles (user_id) ON DELETE CASCADE,
  color_id UUID NOT NULL REFERENCES colors (id) ON DELETE CASCADE,
  PRIMARY KEY (user_id, color_id)
);`,
	},
	{
		Name: "create_table_taste_brand_affinities",
		SQL: `CREATE TABLE IF NOT EXISTS taste_brand_affinities (
  user_id  UUID             NOT NULL REFERENCES taste_profiles (user_id) ON DELETE CASCADE,
  brand_id UUID             NOT NULL REFERENCES brands (id) ON DELETE CASCADE,
  score    DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (score >= 0 AND score <= 1),
  PRIMARY KEY (user_id, brand_id)
);`,
	},
	{
		Name: "create_table_user_preferred_brands",
		SQL: `CREATE TABLE IF NOT EXISTS user_preferred_brands (
  user_id  UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  brand_id UUID NOT NULL REFERENCES brands (id) ON DELETE CASCADE,
  PRIMARY KEY (user_id, brand_id)
);`,
	},
	{
		Name: "create_table_wishlist_items",
		SQL: `CREATE TABLE IF NOT EXISTS wishlist_items (
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  product_id UUID        NOT NULL REFERENCES products (id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (user_id, product_id)
);`,
	},
	{
		Name: "create_table_carts",
		SQL: `CREATE TABLE IF NOT EXISTS carts (
  id      UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id UUID NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_table_cart_items",
		SQL: `CREATE TABLE IF NOT EXISTS cart_items (
  id         UUID    PRIMARY KEY DEFAULT uuid_generate_v4(),
  cart_id    UUID    NOT NULL REFERENCES carts (id) ON DELETE CASCADE,
  product_id UUID    NOT NULL REFERENCES products (id) ON DELETE CASCADE,
  quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
  UNIQUE (cart_id, product_id)
);`,
	},
	{
		Name: "create_table_shipping_addresses",
		SQL: `CREATE TABLE IF NOT EXISTS shipping_addresses (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id        UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  name           VARCHAR(100) NOT NULL,
  first_name     VARCHAR(50) NOT NULL,
  last_name      VARCHAR(50) NOT NULL,
  address_line_1 TEXT        NOT NULL,
  address_line_2 TEXT        NOT NULL DEFAULT '',
  city           TEXT        NOT NULL,
  state          TEXT        NOT NULL,
  postal_code    VARCHAR(20) NOT NULL,
  country        TEXT        NOT NULL DEFAULT 'USA',
  phone          VARCHAR(20) NOT NULL DEFAULT '',
  is_default     BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_shipping_addresses_single_default",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_shipping_addresses_default ON shipping_addresses (user_id) WHERE is_default;`,
	},
	{
		Name: "create_table_orders",
		SQL: `CREATE TABLE IF NOT EXISTS orders (
  id               UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id          UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  status           TEXT          NOT NULL DEFAULT 'PENDING',
  subtotal         NUMERIC(10,2) NOT NULL DEFAULT 0,
  discount         NUMERIC(10,2) NOT NULL DEFAULT 0,
  shipping         NUMERIC(10,2) NOT NULL DEFAULT 0,
  tax              NUMERIC(10,2) NOT NULL DEFAULT 0,
  total_price      NUMERIC(10,2) NOT NULL DEFAULT 0,
  shipping_address TEXT          NOT NULL DEFAULT '',
  phone_number     TEXT          NOT NULL DEFAULT '',
  payment_method   TEXT          NOT NULL,
  created_at       TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_orders_user_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC);`,
	},
	{
		Name: "create_table_order_items",
		SQL: `CREATE TABLE IF NOT EXISTS order_items (
  id         UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  order_id   UUID          NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
  product_id UUID          NOT NULL REFERENCES products (id) ON DELETE CASCADE,
  quantity   INTEGER       NOT NULL DEFAULT 1 CHECK (quantity > 0),
  price      NUMERIC(10,2) NOT NULL,
  UNIQUE (order_id, product_id)
);`,
	},
	{
		Name: "create_table_payments",
		SQL: `CREATE TABLE IF NOT EXISTS payments (
  id             UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  order_id       UUID          NOT NULL UNIQUE REFERENCES orders (id) ON DELETE CASCADE,
  amount         NUMERIC(10,2) NOT NULL,
  payment_method TEXT          NOT NULL,
  status         TEXT          NOT NULL DEFAULT 'PENDING',
  payment_date   TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_reviews",
		SQL: `CREATE TABLE IF NOT EXISTS reviews (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  product_id UUID        NOT NULL REFERENCES products (id) ON DELETE CASCADE,
  rating     INTEGER     NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment    TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (user_id, product_id)
);`,
	},
	{
		Name: "create_table_coupons",
		SQL: `CREATE TABLE IF NOT EXISTS coupons (
  id                   UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  code                 VARCHAR(50)   NOT NULL UNIQUE,
  name                 VARCHAR(200)  NOT NULL,
  description          TEXT          NOT NULL DEFAULT '',
  discount_type        TEXT          NOT NULL,
  discount_value       NUMERIC(10,2) NOT NULL,
  minimum_order_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
  usage_limit          INTEGER       NULL CHECK (usage_limit >= 0),
  used_count           INTEGER       NOT NULL DEFAULT 0 CHECK (used_count >= 0),
  valid_from           TIMESTAMPTZ   NOT NULL,
  valid_until          TIMESTAMPTZ   NOT NULL,
  is_active            BOOLEAN       NOT NULL DEFAULT TRUE,
  created_at           TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_user_coupons",
		SQL: `CREATE TABLE IF NOT EXISTS user_coupons (
  id              UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id         UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  coupon_id       UUID          NOT NULL REFERENCES coupons (id) ON DELETE CASCADE,
  order_id        UUID          NULL REFERENCES orders (id) ON DELETE CASCADE,
  discount_amount NUMERIC(10,2) NOT NULL,
  used_at         TIMESTAMPTZ   NOT NULL DEFAULT now(),
  UNIQUE (user_id, coupon_id, order_id)
);`,
	},
	{
		Name: "create_table_user_coupons_available",
		SQL: `CREATE TABLE IF NOT EXISTS user_coupons_available (
  user_id     UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  coupon_id   UUID        NOT NULL REFERENCES coupons (id) ON DELETE CASCADE,
  assigned_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  is_used     BOOLEAN     NOT NULL DEFAULT FALSE,
  PRIMARY KEY (user_id, coupon_id)
);`,
	},
	{
		Name: "create_table_newsletter_subscribers",
		SQL: `CREATE TABLE IF NOT EXISTS newsletter_subscribers (
  id            UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT         NOT NULL UNIQUE,
  name          VARCHAR(100) NOT NULL DEFAULT '',
  is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
  subscribed_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_newsletter_campaigns",
		SQL: `CREATE TABLE IF NOT EXISTS newsletter_campaigns (
  id               UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  title            VARCHAR(200) NOT NULL,
  subject          VARCHAR(200) NOT NULL,
  content          TEXT         NOT NULL,
  recipients_count INTEGER      NOT NULL DEFAULT 0 CHECK (recipients_count >= 0),
  sent_at          TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_newsletter_campaign_products",
		SQL: `CREATE TABLE IF NOT EXISTS newsletter_campaign_products (
  campaign_id UUID NOT NULL REFERENCES newsletter_campaigns (id) ON DELETE CASCADE,
  product_id  UUID NOT NULL REFERENCES products (id) ON DELETE CASCADE,
  PRIMARY KEY (campaign_id, product_id)
);`,
	},
}

// EnsureMigrated checks if the 'products' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()
	log := logging.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Msg("starting")

	var exists bool
	query := "SELECT to_regclass('public.products') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Err(err).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Int("steps", len(steps)).Msg("in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("migration_step", step.Name).
				Err(err).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug().
			Str("event", "db_migration_step").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("success")
	}

	log.Info().
		Str("event", "db_migration_success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("success")

	return nil
}
