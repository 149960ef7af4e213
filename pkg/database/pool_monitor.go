package database

import (
	"time"

	"openbook_backend/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PoolMonitor 连接池监控器，周期性采样连接池状态并导出指标
type PoolMonitor struct {
	db       *gorm.DB
	interval time.Duration
	stopCh   chan struct{}

	openConns prometheus.Gauge
	inUse     prometheus.Gauge
	idle      prometheus.Gauge
	waitCount prometheus.Counter
}

// NewPoolMonitor 创建并启动连接池监控
func NewPoolMonitor(db *gorm.DB, interval time.Duration) *PoolMonitor {
	pm := &PoolMonitor{
		db:       db,
		interval: interval,
		stopCh:   make(chan struct{}),
		openConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_pool_open_connections",
			Help: "Number of established connections to the database",
		}),
		inUse: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_pool_in_use_connections",
			Help: "Number of connections currently in use",
		}),
		idle: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_pool_idle_connections",
			Help: "Number of idle connections",
		}),
		waitCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "db_pool_wait_total",
			Help: "Total number of times a connection had to be waited for",
		}),
	}

	go pm.run()
	return pm
}

func (pm *PoolMonitor) run() {
	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	var lastWaitCount int64
	for {
		select {
		case <-ticker.C:
			sqlDB, err := pm.db.DB()
			if err != nil {
				logger.Error("pool monitor: failed to get sql.DB", zap.Error(err))
				continue
			}

			stats := sqlDB.Stats()
			pm.openConns.Set(float64(stats.OpenConnections))
			pm.inUse.Set(float64(stats.InUse))
			pm.idle.Set(float64(stats.Idle))
			if delta := stats.WaitCount - lastWaitCount; delta > 0 {
				pm.waitCount.Add(float64(delta))
				lastWaitCount = stats.WaitCount
			}

			// 等待时间过长说明连接池已经饱和
			if stats.WaitDuration > time.Second {
				logger.Warn("database connection pool saturated",
					zap.Int("open", stats.OpenConnections),
					zap.Int("in_use", stats.InUse),
					zap.Int64("wait_count", stats.WaitCount),
					zap.Duration("wait_duration", stats.WaitDuration))
			}
		case <-pm.stopCh:
			return
		}
	}
}

// Stop 停止监控
func (pm *PoolMonitor) Stop() {
	close(pm.stopCh)
}
