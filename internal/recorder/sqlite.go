package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/model"
)

// SQLiteRecorder persists evaluations to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers query history while the monitor writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.Named("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			asset          TEXT NOT NULL,
			horizon        TEXT NOT NULL,
			rule           TEXT NOT NULL,
			policy         TEXT,
			days           INTEGER,
			points         INTEGER,
			price          REAL,
			ema_fast       REAL,
			ema_slow       REAL,
			ema_long       REAL,
			rsi            REAL,
			atr            REAL,
			signal         TEXT,
			target_price   TEXT,
			stop_loss      TEXT,
			spot           REAL,
			low_confidence INTEGER NOT NULL DEFAULT 0,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_asset_ts ON evaluations(asset, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordEvaluation(ev *model.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := ev.Snapshot
	var (
		signal         sql.NullString
		target, stop   decimal.NullDecimal
		rsi, atr, spot sql.NullFloat64
	)
	if ev.Result != nil {
		signal = sql.NullString{String: string(ev.Result.Signal), Valid: true}
		target = decimal.NewNullDecimal(ev.Result.Target)
		stop = decimal.NewNullDecimal(ev.Result.StopLoss)
	}
	if snap.HasRSI {
		rsi = sql.NullFloat64{Float64: snap.RSI, Valid: true}
	}
	if snap.HasATR {
		atr = sql.NullFloat64{Float64: snap.ATR, Valid: true}
	}
	if ev.Spot != nil {
		spot = sql.NullFloat64{Float64: *ev.Spot, Valid: true}
	}
	ts := ev.EvaluatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO evaluations
		(timestamp, asset, horizon, rule, policy, days, points,
		 price, ema_fast, ema_slow, ema_long, rsi, atr,
		 signal, target_price, stop_loss, spot, low_confidence, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), ev.AssetID, string(ev.Horizon), string(ev.Rule), ev.Policy, ev.Days, snap.Points,
		snap.Price, snap.EMAFast, snap.EMASlow, snap.EMALong, rsi, atr,
		signal, target, stop, spot, ev.LowConfidence, ev.Err,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation %s: %w", ev.Key(), err)
	}
	return nil
}

func (r *SQLiteRecorder) Recent(assetID string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT
		id, timestamp, asset, horizon, rule, policy, days, points,
		price, ema_fast, ema_slow, ema_long, rsi, atr,
		signal, target_price, stop_loss, spot, low_confidence, error
		FROM evaluations
		WHERE (? = '' OR asset = ?)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, assetID, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			row            Row
			ts             int64
			horizon, rule  string
			policy, errMsg sql.NullString
			signal         sql.NullString
			rsi, atr, spot sql.NullFloat64
		)
		if err := rows.Scan(
			&row.ID, &ts, &row.AssetID, &horizon, &rule, &policy, &row.Days, &row.Points,
			&row.Price, &row.EMAFast, &row.EMASlow, &row.EMALong, &rsi, &atr,
			&signal, &row.Target, &row.StopLoss, &spot, &row.LowConfidence, &errMsg,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		row.Timestamp = time.Unix(ts, 0).UTC()
		row.Horizon = model.Horizon(horizon)
		row.Rule = model.Rule(rule)
		row.Policy = policy.String
		row.Signal = model.Signal(signal.String)
		row.Err = errMsg.String
		row.RSI = floatPtr(rsi)
		row.ATR = floatPtr(atr)
		row.Spot = floatPtr(spot)
		out = append(out, row)
	}
	return out, rows.Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
