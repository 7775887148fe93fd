package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"stellar-copytrade-lab/internal/domain"
)

// HorizonSource reads a Horizon history database. Each fetch opens its own
// connection and closes it before returning.
type HorizonSource struct {
	dsn       string
	batchSize int
	logger    *zap.Logger
}

// NewHorizonSource creates a source for the Horizon database at dsn.
// batchSize bounds the number of wallets per operations query.
func NewHorizonSource(dsn string, batchSize int, logger *zap.Logger) *HorizonSource {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HorizonSource{dsn: dsn, batchSize: batchSize, logger: logger.Named("horizon")}
}

// Compile-time interface checks.
var (
	_ LedgerSource = (*HorizonSource)(nil)
	_ FlowSource   = (*HorizonSource)(nil)
)

func (h *HorizonSource) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, h.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect horizon: %w", err)
	}
	return conn, nil
}

const walletActivitySQL = `
	SELECT
		ho.source_account,
		COUNT(*) AS num_swaps,
		COALESCE(SUM(CASE
			WHEN ho.type = 2  AND ho.details->>'asset_type' = 'native'        THEN (ho.details->>'amount')::double precision
			WHEN ho.type = 2  AND ho.details->>'source_asset_type' = 'native' THEN (ho.details->>'source_amount')::double precision
			WHEN ho.type = 13 AND ho.details->>'source_asset_type' = 'native' THEN (ho.details->>'source_amount')::double precision
			WHEN ho.type = 13 AND ho.details->>'asset_type' = 'native'        THEN (ho.details->>'amount')::double precision
			WHEN ho.type = 24 THEN $4::double precision
			ELSE 0
		END), 0) AS total_volume_native
	FROM history_operations ho
	JOIN history_transactions ht ON ho.transaction_id = ht.id
	WHERE ho.type IN (2, 13, 24)
	  AND ht.successful = true
	  AND ht.created_at >= $1
	  AND ho.source_account LIKE 'G%'
	GROUP BY ho.source_account
	HAVING COUNT(*) >= $2
	ORDER BY num_swaps DESC, ho.source_account ASC
	LIMIT $3
`

// FetchWalletActivity ranks wallets by swap count over the window.
func (h *HorizonSource) FetchWalletActivity(ctx context.Context, since time.Time, minSwaps, limit int) ([]*domain.WalletActivity, error) {
	conn, err := h.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, walletActivitySQL, since.UTC(), minSwaps, limit, ContractInvokeVolume)
	if err != nil {
		return nil, fmt.Errorf("query wallet activity: %w", err)
	}
	defer rows.Close()

	var out []*domain.WalletActivity
	for rows.Next() {
		var a domain.WalletActivity
		var n int64
		if err := rows.Scan(&a.WalletID, &n, &a.TotalVolumeNative); err != nil {
			return nil, fmt.Errorf("scan wallet activity: %w", err)
		}
		a.NumSwaps = int(n)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet activity: %w", err)
	}

	h.logger.Info("wallet activity fetched", zap.Int("wallets", len(out)), zap.Time("since", since))
	return out, nil
}

const walletOperationsSQL = `
	SELECT id, source_account, type,
	       source_asset_type, source_asset_code, source_asset_issuer, source_amount,
	       asset_type, asset_code, asset_issuer, amount,
	       created_at
	FROM (
		SELECT
			ho.id,
			ho.source_account,
			ho.type,
			ho.details->>'source_asset_type'   AS source_asset_type,
			ho.details->>'source_asset_code'   AS source_asset_code,
			ho.details->>'source_asset_issuer' AS source_asset_issuer,
			ho.details->>'source_amount'       AS source_amount,
			ho.details->>'asset_type'          AS asset_type,
			ho.details->>'asset_code'          AS asset_code,
			ho.details->>'asset_issuer'        AS asset_issuer,
			ho.details->>'amount'              AS amount,
			ht.created_at,
			ROW_NUMBER() OVER (PARTITION BY ho.source_account ORDER BY ht.created_at DESC, ho.id DESC) AS rn
		FROM history_operations ho
		JOIN history_transactions ht ON ho.transaction_id = ht.id
		WHERE ho.type IN (2, 13, 24)
		  AND ht.successful = true
		  AND ho.source_account = ANY($1)
		  AND ht.created_at >= $2
	) ranked
	WHERE rn <= $3
`

// FetchOperations fetches recent swap operations for wallets in batches.
// A failing batch aborts the fetch.
func (h *HorizonSource) FetchOperations(ctx context.Context, wallets []string, since time.Time, limitPerWallet int) ([]*domain.RawOperation, error) {
	if len(wallets) == 0 {
		return nil, nil
	}

	conn, err := h.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	var out []*domain.RawOperation
	for start := 0; start < len(wallets); start += h.batchSize {
		end := min(start+h.batchSize, len(wallets))
		batch := wallets[start:end]

		ops, err := h.fetchBatch(ctx, conn, batch, since, limitPerWallet)
		if err != nil {
			return nil, fmt.Errorf("fetch operations for wallets %d-%d: %w", start+1, end, err)
		}
		out = append(out, ops...)

		h.logger.Debug("operations batch fetched",
			zap.Int("from", start+1),
			zap.Int("to", end),
			zap.Int("total", len(wallets)),
			zap.Int("rows", len(ops)),
		)
	}
	return out, nil
}

func (h *HorizonSource) fetchBatch(ctx context.Context, conn *pgx.Conn, wallets []string, since time.Time, limit int) ([]*domain.RawOperation, error) {
	rows, err := conn.Query(ctx, walletOperationsSQL, wallets, since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.RawOperation
	for rows.Next() {
		var (
			op        domain.RawOperation
			opType    int32
			createdAt time.Time
		)
		if err := rows.Scan(
			&op.ID, &op.SourceAccount, &opType,
			&op.SourceAssetType, &op.SourceAssetCode, &op.SourceAssetIssuer, &op.SourceAmount,
			&op.AssetType, &op.AssetCode, &op.AssetIssuer, &op.Amount,
			&createdAt,
		); err != nil {
			return nil, err
		}
		op.Type = int(opType)
		op.CreatedAt = createdAt.UnixMilli()
		out = append(out, &op)
	}
	return out, rows.Err()
}

const assetFlowsSQL = `
	WITH path_payment_ops AS (
		SELECT DISTINCT ON (ho.transaction_id)
			ho.source_account,
			ho.details->>'amount'            AS amount,
			ho.details->>'source_amount'     AS source_amount,
			ho.details->>'asset_type'        AS dest_asset_type,
			ho.details->>'source_asset_type' AS src_asset_type,
			COALESCE(ho.details->>'fee', '0')::double precision AS fee
		FROM history_operations ho
		JOIN history_transactions ht ON ho.transaction_id = ht.id
		WHERE ho.type = 13
		  AND ht.successful = true
		  AND ht.created_at >= $1
		  AND ho.source_account LIKE 'G%'
		  AND (
			(ho.details->>'asset_type' IN ('credit_alphanum4', 'credit_alphanum12')
			  AND ho.details->>'asset_code' = $2 AND ho.details->>'asset_issuer' = $3)
			OR (ho.details->>'source_asset_type' IN ('credit_alphanum4', 'credit_alphanum12')
			  AND ho.details->>'source_asset_code' = $2 AND ho.details->>'source_asset_issuer' = $3)
		  )
		ORDER BY ho.transaction_id, ho.id DESC
	),
	payment_ops AS (
		SELECT
			ho.source_account,
			ho.details->>'amount'            AS amount,
			ho.details->>'source_amount'     AS source_amount,
			ho.details->>'asset_type'        AS dest_asset_type,
			ho.details->>'source_asset_type' AS src_asset_type,
			0::double precision              AS fee
		FROM history_operations ho
		JOIN history_transactions ht ON ho.transaction_id = ht.id
		WHERE ho.type = 2
		  AND ht.successful = true
		  AND ht.created_at >= $1
		  AND ho.source_account LIKE 'G%'
		  AND (
			(ho.details->>'asset_type' IN ('credit_alphanum4', 'credit_alphanum12')
			  AND ho.details->>'asset_code' = $2 AND ho.details->>'asset_issuer' = $3)
			OR (ho.details->>'source_asset_type' IN ('credit_alphanum4', 'credit_alphanum12')
			  AND ho.details->>'source_asset_code' = $2 AND ho.details->>'source_asset_issuer' = $3)
		  )
	),
	all_ops AS (
		SELECT * FROM path_payment_ops
		UNION ALL
		SELECT * FROM payment_ops
	)
	SELECT
		source_account,
		COUNT(*) AS num_swaps,
		COALESCE(SUM(CASE WHEN dest_asset_type = 'native'
			THEN COALESCE(amount, '0')::double precision - fee ELSE 0 END), 0) AS native_inflows,
		COALESCE(SUM(CASE WHEN src_asset_type = 'native'
			THEN COALESCE(source_amount, '0')::double precision + fee ELSE 0 END), 0) AS native_outflows
	FROM all_ops
	GROUP BY source_account
	ORDER BY num_swaps DESC, source_account ASC
`

// FetchAssetFlows aggregates native flows per wallet for one issued asset.
// Path payments count once per transaction, using the last operation.
func (h *HorizonSource) FetchAssetFlows(ctx context.Context, asset domain.IssuedAssetRef, since time.Time) ([]*domain.AssetFlowRow, error) {
	conn, err := h.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, assetFlowsSQL, since.UTC(), asset.Code, asset.Issuer)
	if err != nil {
		return nil, fmt.Errorf("query flows for %s:%s: %w", asset.Code, asset.Issuer, err)
	}
	defer rows.Close()

	var out []*domain.AssetFlowRow
	for rows.Next() {
		row := &domain.AssetFlowRow{Asset: asset}
		var n int64
		if err := rows.Scan(&row.WalletID, &n, &row.NativeInflows, &row.NativeOutflows); err != nil {
			return nil, fmt.Errorf("scan asset flow: %w", err)
		}
		row.NumSwaps = int(n)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset flows: %w", err)
	}

	h.logger.Info("asset flows fetched",
		zap.String("asset", asset.Code+":"+asset.Issuer),
		zap.Int("wallets", len(out)),
	)
	return out, nil
}
