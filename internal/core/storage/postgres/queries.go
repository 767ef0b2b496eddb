package postgres

// SQL statements for shop state and ledger storage.

const (
	// --- item pool ---

	queryListPool = `
		SELECT material, display_name, price
		FROM pool_entries
		ORDER BY position ASC
	`

	queryAppendPoolEntry = `
		INSERT INTO pool_entries (material, display_name, price)
		VALUES ($1, $2, $3)
	`

	// querySelectPoolEntryAt locks the entry at one zero-based position in
	// the ordered pool so a concurrent remove cannot shift it underneath us.
	querySelectPoolEntryAt = `
		SELECT position, material, display_name, price
		FROM pool_entries
		ORDER BY position ASC
		OFFSET $1 LIMIT 1
		FOR UPDATE
	`

	queryDeletePoolEntry = `DELETE FROM pool_entries WHERE position = $1`

	// --- active rotation ---

	queryClearRotationItems = `DELETE FROM rotation_items`

	queryInsertRotationItem = `
		INSERT INTO rotation_items (slot, material, display_name, price)
		VALUES ($1, $2, $3, $4)
	`

	queryUpsertRotationState = `
		INSERT INTO rotation_state (id, selection_date)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET selection_date = EXCLUDED.selection_date
	`

	querySelectRotationState = `SELECT selection_date FROM rotation_state WHERE id = 1`

	querySelectRotationItems = `
		SELECT material, display_name, price
		FROM rotation_items
		ORDER BY slot ASC
	`

	// --- schedule overrides ---

	queryUpsertSchedule = `
		INSERT INTO shop_schedule (id, refresh_hour, check_interval_seconds)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			refresh_hour           = EXCLUDED.refresh_hour,
			check_interval_seconds = EXCLUDED.check_interval_seconds
	`

	querySelectSchedule = `
		SELECT refresh_hour, check_interval_seconds
		FROM shop_schedule
		WHERE id = 1
	`

	// --- purchase ledger ---

	queryInsertPurchaseEvent = `
		INSERT INTO purchase_events (
			id, buyer_id, buyer_name, item_key, item_name, price, purchased_at, origin_tag
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// queryUpsertBuyerStats keeps the per-buyer aggregate in lockstep with
	// the event relation. first_purchase_at is set once and never updated.
	queryUpsertBuyerStats = `
		INSERT INTO buyer_stats (
			buyer_id, buyer_name, purchase_count, total_spent, first_purchase_at, last_purchase_at
		)
		VALUES ($1, $2, 1, $3, $4, $4)
		ON CONFLICT (buyer_id) DO UPDATE SET
			buyer_name       = EXCLUDED.buyer_name,
			purchase_count   = buyer_stats.purchase_count + 1,
			total_spent      = buyer_stats.total_spent + EXCLUDED.total_spent,
			last_purchase_at = EXCLUDED.last_purchase_at
	`

	queryUpsertItemStats = `
		INSERT INTO item_stats (
			item_key, item_name, times_purchased, total_revenue, last_purchased_at
		)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (item_key) DO UPDATE SET
			item_name         = EXCLUDED.item_name,
			times_purchased   = item_stats.times_purchased + 1,
			total_revenue     = item_stats.total_revenue + EXCLUDED.total_revenue,
			last_purchased_at = EXCLUDED.last_purchased_at
	`

	// queryBuyerHistory orders newest-first; ingest_seq breaks timestamp
	// ties deterministically.
	queryBuyerHistory = `
		SELECT id, buyer_id, buyer_name, item_key, item_name, price, purchased_at, origin_tag
		FROM purchase_events
		WHERE buyer_id = $1
		ORDER BY purchased_at DESC, ingest_seq DESC
	`

	// queryTopSpenders breaks total_spent ties by row insertion order
	// (first_purchase_at is set once, at row insertion).
	queryTopSpenders = `
		SELECT buyer_id, buyer_name, purchase_count, total_spent, first_purchase_at, last_purchase_at
		FROM buyer_stats
		WHERE total_spent > 0
		ORDER BY total_spent DESC, first_purchase_at ASC
		LIMIT $1
	`

	queryTopItems = `
		SELECT item_key, item_name, times_purchased, total_revenue, last_purchased_at
		FROM item_stats
		ORDER BY times_purchased DESC, total_revenue DESC
		LIMIT $1
	`
)
