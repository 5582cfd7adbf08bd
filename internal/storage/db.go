package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS suppliers (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  senderEmails TEXT NOT NULL DEFAULT '[]',
  configJson TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY,
  mikroCode TEXT,
  name TEXT,
  foreignName TEXT NOT NULL,
  normalizedForeignName TEXT NOT NULL,
  currentCost REAL,
  vatRate REAL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_normalized ON products(normalizedForeignName);

CREATE TABLE IF NOT EXISTS upload_batches (
  id TEXT PRIMARY KEY,
  supplierId INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  totalItems INTEGER NOT NULL DEFAULT 0,
  matchedItems INTEGER NOT NULL DEFAULT 0,
  unmatchedItems INTEGER NOT NULL DEFAULT 0,
  multiMatchItems INTEGER NOT NULL DEFAULT 0,
  errorMessage TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  completedAt TEXT,
  FOREIGN KEY(supplierId) REFERENCES suppliers(id)
);

CREATE TABLE IF NOT EXISTS upload_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  batchId TEXT NOT NULL,
  supplierCode TEXT NOT NULL,
  normalizedCode TEXT NOT NULL,
  supplierName TEXT,
  sourcePrice REAL,
  netPrice REAL,
  currency TEXT,
  rawLine TEXT,
  matchCount INTEGER NOT NULL DEFAULT 0,
  FOREIGN KEY(batchId) REFERENCES upload_batches(id)
);
CREATE INDEX IF NOT EXISTS idx_upload_items_batch ON upload_items(batchId);

CREATE TABLE IF NOT EXISTS upload_matches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  itemId INTEGER NOT NULL,
  productId INTEGER NOT NULL,
  productCode TEXT NOT NULL,
  productName TEXT NOT NULL,
  currentCost REAL,
  netPrice REAL,
  costDifference REAL,
  FOREIGN KEY(itemId) REFERENCES upload_items(id)
);
CREATE INDEX IF NOT EXISTS idx_upload_matches_item ON upload_matches(itemId);

CREATE TABLE IF NOT EXISTS mails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  batchId TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertSupplier(cfg supplier.Config) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	emailsJSON, _ := json.Marshal(cfg.SenderEmails)
	_, err = d.conn.Exec(`
INSERT INTO suppliers (id, name, senderEmails, configJson)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  senderEmails=excluded.senderEmails,
  configJson=excluded.configJson,
  updatedAt=CURRENT_TIMESTAMP
`, cfg.ID, cfg.Name, string(emailsJSON), string(configJSON))
	return err
}

func (d *DB) GetSupplier(id int) (*supplier.Config, error) {
	var configJSON string
	err := d.conn.QueryRow(`SELECT configJson FROM suppliers WHERE id = ?`, id).Scan(&configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg supplier.Config
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (d *DB) GetSupplierByEmail(sender string) (*supplier.Config, error) {
	suppliers, err := d.ListSuppliers()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(sender))
	for i := range suppliers {
		for _, email := range suppliers[i].SenderEmails {
			email = strings.ToLower(strings.TrimSpace(email))
			if email != "" && strings.Contains(needle, email) {
				return &suppliers[i], nil
			}
		}
	}
	return nil, nil
}

func (d *DB) ListSuppliers() ([]supplier.Config, error) {
	rows, err := d.conn.Query(`SELECT configJson FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []supplier.Config
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		var cfg supplier.Config
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			continue
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (d *DB) UpsertProducts(products []internal.CatalogProduct) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (id, mikroCode, name, foreignName, normalizedForeignName, currentCost, vatRate, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  mikroCode=excluded.mikroCode,
  name=excluded.name,
  foreignName=excluded.foreignName,
  normalizedForeignName=excluded.normalizedForeignName,
  currentCost=excluded.currentCost,
  vatRate=excluded.vatRate,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(p.ID, p.MikroCode, p.Name, p.ForeignName, util.NormalizeCode(p.ForeignName), p.CurrentCost, p.VatRate); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListProducts() ([]internal.CatalogProduct, error) {
	rows, err := d.conn.Query(`SELECT id, mikroCode, name, foreignName, currentCost, vatRate FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CatalogProduct
	for rows.Next() {
		var p internal.CatalogProduct
		if err := rows.Scan(&p.ID, &p.MikroCode, &p.Name, &p.ForeignName, &p.CurrentCost, &p.VatRate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) CreateBatch(id string, supplierID int) error {
	_, err := d.conn.Exec(`INSERT INTO upload_batches (id, supplierId, status) VALUES (?, ?, 'PENDING')`, id, supplierID)
	return err
}

func (d *DB) FailBatch(id, message string) error {
	_, err := d.conn.Exec(`
UPDATE upload_batches
SET status='FAILED', errorMessage=?, completedAt=CURRENT_TIMESTAMP
WHERE id=? AND status='PENDING'
`, message, id)
	return err
}

func (d *DB) SaveUploadRun(batchID string, items []internal.UploadItem, matches [][]internal.MatchRow, summary internal.UploadBatch) error {
	if len(items) != len(matches) {
		return fmt.Errorf("items/matches length mismatch: %d != %d", len(items), len(matches))
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	itemStmt, err := tx.Prepare(`
INSERT INTO upload_items (batchId, supplierCode, normalizedCode, supplierName, sourcePrice, netPrice, currency, rawLine, matchCount)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer itemStmt.Close()

	matchStmt, err := tx.Prepare(`
INSERT INTO upload_matches (itemId, productId, productCode, productName, currentCost, netPrice, costDifference)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer matchStmt.Close()

	for i, item := range items {
		res, err := itemStmt.Exec(batchID, item.SupplierCode, item.NormalizedCode, item.SupplierName,
			item.SourcePrice, item.NetPrice, item.Currency, item.RawLine, item.MatchCount)
		if err != nil {
			return err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, m := range matches[i] {
			if _, err := matchStmt.Exec(itemID, m.ProductID, m.ProductCode, m.ProductName, m.CurrentCost, m.NetPrice, m.CostDifference); err != nil {
				return err
			}
		}
	}

	res, err := tx.Exec(`
UPDATE upload_batches
SET status='COMPLETED', totalItems=?, matchedItems=?, unmatchedItems=?, multiMatchItems=?, completedAt=CURRENT_TIMESTAMP
WHERE id=? AND status='PENDING'
`, summary.TotalItems, summary.MatchedItems, summary.UnmatchedItems, summary.MultiMatchItems, batchID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("batch %s is not PENDING", batchID)
	}

	return tx.Commit()
}

func (d *DB) GetBatch(id string) (*internal.UploadBatch, error) {
	var b internal.UploadBatch
	err := d.conn.QueryRow(`
SELECT id, supplierId, status, totalItems, matchedItems, unmatchedItems, multiMatchItems, errorMessage, createdAt
FROM upload_batches WHERE id = ?
`, id).Scan(&b.ID, &b.SupplierID, &b.Status, &b.TotalItems, &b.MatchedItems, &b.UnmatchedItems, &b.MultiMatchItems, &b.ErrorMessage, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (d *DB) ListBatchItems(batchID string) ([]internal.UploadItem, error) {
	rows, err := d.conn.Query(`
SELECT id, batchId, supplierCode, normalizedCode, supplierName, sourcePrice, netPrice, currency, rawLine, matchCount
FROM upload_items WHERE batchId = ? ORDER BY id
`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.UploadItem
	for rows.Next() {
		var it internal.UploadItem
		if err := rows.Scan(&it.ID, &it.BatchID, &it.SupplierCode, &it.NormalizedCode, &it.SupplierName,
			&it.SourcePrice, &it.NetPrice, &it.Currency, &it.RawLine, &it.MatchCount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (d *DB) ListItemMatches(itemID int64) ([]internal.MatchRow, error) {
	rows, err := d.conn.Query(`
SELECT id, itemId, productId, productCode, productName, currentCost, netPrice, costDifference
FROM upload_matches WHERE itemId = ? ORDER BY id
`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MatchRow
	for rows.Next() {
		var m internal.MatchRow
		if err := rows.Scan(&m.ID, &m.ItemID, &m.ProductID, &m.ProductCode, &m.ProductName, &m.CurrentCost, &m.NetPrice, &m.CostDifference); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) UpsertMail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.MailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO mails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.MailRow{}, err
	}

	var row internal.MailRow
	err = d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef, batchId
FROM mails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef, &row.BatchID)
	if err != nil {
		return internal.MailRow{}, err
	}
	return row, nil
}

func (d *DB) ListMailsByStatus(status string, limit int) ([]internal.MailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef, batchId
FROM mails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MailRow
	for rows.Next() {
		var row internal.MailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef, &row.BatchID); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateMailStatus(mailID int, status string, batchID *string) error {
	_, err := d.conn.Exec(`UPDATE mails SET status = ?, batchId = COALESCE(?, batchId), updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, batchID, mailID)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
