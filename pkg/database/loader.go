package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"ppa/pkg/models"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open accepts mariadb://, mysql:// and sqlite:// DSNs (native MySQL DSNs pass through)
// and returns the handle plus the driver DSN actually used.
func Open(dsn string) (*sqlx.DB, string, error) {
	driver, native, err := toDriverDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sqlx.Open(driver, native)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, native, nil
}

// toDriverDSN picks the driver for dsn and converts URL forms to the driver's native format.
// DSNs without a known scheme are passed to the MySQL driver unchanged.
func toDriverDSN(dsn string) (driver, native string, err error) {
	scheme, rest, _ := strings.Cut(dsn, "://")
	switch scheme {
	case "sqlite":
		if rest == "" {
			return "", "", fmt.Errorf("dsn incomplete (sqlite path)")
		}
		return "sqlite", rest, nil
	case "mysql", "mariadb":
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse dsn: %w", err)
		}
		pass, _ := u.User.Password()
		name := strings.TrimPrefix(u.Path, "/")
		if u.User.Username() == "" || u.Host == "" || name == "" {
			return "", "", fmt.Errorf("dsn incomplete (user/host/db)")
		}
		cfg := mysql.NewConfig()
		cfg.User, cfg.Passwd = u.User.Username(), pass
		cfg.Net, cfg.Addr, cfg.DBName = "tcp", u.Host, name
		cfg.ParseTime, cfg.Loc, cfg.InterpolateParams = true, time.UTC, true
		return "mysql", cfg.FormatDSN(), nil
	}
	return "mysql", dsn, nil
}

// skuRow mirrors a SKU table. Every column is read as text so the normalizer
// applies the same malformed-value rules as for files.
type skuRow struct {
	SKU              sql.NullString `db:"sku"`
	PackSize         sql.NullString `db:"pack_size"`
	Price            sql.NullString `db:"price"`
	Washes           sql.NullString `db:"number_of_washes"`
	Classification   sql.NullString `db:"classification"`
	PriceTier        sql.NullString `db:"price_tier"`
	ParentBrand      sql.NullString `db:"parent_brand"`
	PreviousVolume   sql.NullString `db:"previous_volume"`
	PresentVolume    sql.NullString `db:"present_volume"`
	PreviousNetSales sql.NullString `db:"previous_net_sales"`
	PresentNetSales  sql.NullString `db:"present_net_sales"`
	ShelfRow         sql.NullString `db:"shelf_row"`
}

func (r skuRow) raw() models.RawRecord {
	out := models.RawRecord{}
	set := func(col string, v sql.NullString) {
		if v.Valid {
			out[col] = v.String
		}
	}
	set(models.ColSKU, r.SKU)
	set(models.ColPackSize, r.PackSize)
	set(models.ColPrice, r.Price)
	set(models.ColWashes, r.Washes)
	set(models.ColClassification, r.Classification)
	set(models.ColPriceTier, r.PriceTier)
	set(models.ColParentBrand, r.ParentBrand)
	set(models.ColPreviousVolume, r.PreviousVolume)
	set(models.ColPresentVolume, r.PresentVolume)
	set(models.ColPreviousNetSales, r.PreviousNetSales)
	set(models.ColPresentNetSales, r.PresentNetSales)
	set(models.ColShelfRow, r.ShelfRow)
	return out
}

// Table columns by dataset. Company tables need all of them; competitor tables
// only the base columns, the others are read when present.
var (
	baseColumns  = []string{"sku", "pack_size", "price", "number_of_washes", "classification", "price_tier", "parent_brand"}
	salesColumns = []string{"previous_volume", "present_volume", "previous_net_sales", "present_net_sales", "shelf_row"}
)

// LoadSKUs reads every row of tableName. Columns missing from a competitor
// table's sales set are selected as NULL, so they load as missing values.
func LoadSKUs(ctx context.Context, db *sqlx.DB, tableName string, competitor bool) ([]models.RawRecord, error) {
	if !tableNameRe.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}

	present, err := tableColumns(ctx, db, tableName)
	if err != nil {
		return nil, err
	}

	var cols, missing []string
	for _, c := range append(append([]string{}, baseColumns...), salesColumns...) {
		actual, ok := present[c]
		switch {
		case ok:
			cols = append(cols, actual+" AS "+c)
		case competitor && slices.Contains(salesColumns, c):
			cols = append(cols, "NULL AS "+c)
		default:
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("table %s: missing columns: %s", tableName, strings.Join(missing, ", "))
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), tableName)

	var rows []skuRow
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableName, err)
	}

	out := make([]models.RawRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.raw())
	}
	return out, nil
}

// tableColumns maps the lower-cased column names of tableName to their spelling in the table.
func tableColumns(ctx context.Context, db *sqlx.DB, tableName string) (map[string]string, error) {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", tableName))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", tableName, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", tableName, err)
	}
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[strings.ToLower(n)] = n
	}
	return out, nil
}
