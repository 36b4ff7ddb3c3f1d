package database

import (
	"errors"
	"time"

	"warbler/internal/observability"

	"gorm.io/gorm"
)

const queryStartKey = "warbler:query_start"

// MetricsPlugin records the latency of every GORM statement by operation
// and table.
type MetricsPlugin struct {
	Metrics *observability.Metrics
}

// Name implements gorm.Plugin.
func (p *MetricsPlugin) Name() string {
	return "warbler:metrics"
}

// Initialize implements gorm.Plugin.
func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("warbler:before_create", p.before),
		cb.Create().After("gorm:create").Register("warbler:after_create", p.after("create")),
		cb.Query().Before("gorm:query").Register("warbler:before_query", p.before),
		cb.Query().After("gorm:query").Register("warbler:after_query", p.after("select")),
		cb.Update().Before("gorm:update").Register("warbler:before_update", p.before),
		cb.Update().After("gorm:update").Register("warbler:after_update", p.after("update")),
		cb.Delete().Before("gorm:delete").Register("warbler:before_delete", p.before),
		cb.Delete().After("gorm:delete").Register("warbler:after_delete", p.after("delete")),
		cb.Row().Before("gorm:row").Register("warbler:before_row", p.before),
		cb.Row().After("gorm:row").Register("warbler:after_row", p.after("row")),
		cb.Raw().Before("gorm:raw").Register("warbler:before_raw", p.before),
		cb.Raw().After("gorm:raw").Register("warbler:after_raw", p.after("raw")),
	)
}

func (p *MetricsPlugin) before(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func (p *MetricsPlugin) after(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		p.Metrics.ObserveQuery(operation, table, start)
	}
}
