package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) Dashboard(ctx context.Context) (model.DashboardStats, error) {
	if r.pool == nil {
		return model.DashboardStats{}, ErrPoolUnavailable
	}
	var stats model.DashboardStats
	if err := r.pool.QueryRow(ctx, `
SELECT
	(SELECT COUNT(*) FROM users),
	(SELECT COUNT(*) FROM matrimony_profiles WHERE status = 'approved'),
	(SELECT COUNT(*) FROM matrimony_profiles WHERE status IN ('submitted', 'pending')),
	(SELECT COUNT(*) FROM posts WHERE status = 'published'),
	(SELECT COUNT(*) FROM directory WHERE NOT is_deleted)
`).Scan(
		&stats.TotalUsers,
		&stats.ApprovedProfiles,
		&stats.PendingProfiles,
		&stats.PublishedPosts,
		&stats.DirectoryEntries,
	); err != nil {
		return model.DashboardStats{}, fmt.Errorf("load dashboard stats: %w", err)
	}
	return stats, nil
}
