package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
)

// Repository persists and serves TradeRecords. The engine itself never
// touches storage - this is the upstream ledger collaborator, kept thin
// so the core stays a pure in-memory computation.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new trade ledger repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

// Create inserts a closed trade
func (r *Repository) Create(trade darwin.TradeRecord) error {
	now := time.Now().Format(time.RFC3339)

	query := `
		INSERT INTO trades
		(pair, pips, session, agent_id, spread_pips, executed_at, coalition, indicators, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		strings.ToUpper(strings.TrimSpace(trade.Pair)),
		trade.Pips,
		trade.Session,
		trade.AgentID,
		trade.SpreadPips,
		trade.ExecutedAt.Format(time.RFC3339),
		encodeList(trade.Coalition),
		encodeList(trade.Indicators),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	r.log.Debug().
		Str("pair", trade.Pair).
		Float64("pips", trade.Pips).
		Str("agent", trade.AgentID).
		Msg("Trade recorded")

	return nil
}

// AllTrades returns every trade oldest-first
func (r *Repository) AllTrades() ([]darwin.TradeRecord, error) {
	query := `
		SELECT pair, pips, session, agent_id, spread_pips, executed_at, coalition, indicators
		FROM trades
		ORDER BY executed_at ASC, id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	defer rows.Close()

	var trades []darwin.TradeRecord
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

// TradesByPair returns every trade grouped by pair, each group oldest-first
func (r *Repository) TradesByPair() (map[string][]darwin.TradeRecord, error) {
	trades, err := r.AllTrades()
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]darwin.TradeRecord)
	for _, trade := range trades {
		grouped[trade.Pair] = append(grouped[trade.Pair], trade)
	}
	return grouped, nil
}

// CountAll returns the total number of recorded trades
func (r *Repository) CountAll() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

func scanTrade(rows *sql.Rows) (darwin.TradeRecord, error) {
	var trade darwin.TradeRecord
	var executedAt string
	var coalition, indicators sql.NullString

	err := rows.Scan(
		&trade.Pair,
		&trade.Pips,
		&trade.Session,
		&trade.AgentID,
		&trade.SpreadPips,
		&executedAt,
		&coalition,
		&indicators,
	)
	if err != nil {
		return trade, fmt.Errorf("failed to scan trade: %w", err)
	}

	if ts, err := time.Parse(time.RFC3339, executedAt); err == nil {
		trade.ExecutedAt = ts
	}
	trade.Coalition = decodeList(coalition.String)
	trade.Indicators = decodeList(indicators.String)

	return trade, nil
}

// encodeList joins a tag list for storage; empty lists store as NULL-ish ""
func encodeList(items []string) string {
	return strings.Join(items, ",")
}

// decodeList splits a stored tag list, empty string means none
func decodeList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
