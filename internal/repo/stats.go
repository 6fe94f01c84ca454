package repo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/doug-martin/goqu/v9"
	"github.com/samber/lo"
)

const topLinksLimit = 5

type linkTotalsRow struct {
	TotalLinks  int64 `db:"total_links"`
	TotalClicks int64 `db:"total_clicks"`
}

// StatsForOwner aggregates the owner's links. createdSince bounds the "created today" count.
func (r *LinksRepo) StatsForOwner(ctx context.Context, ownerID string, createdSince time.Time) (*internal.LinkStats, error) {
	owned := goqu.Ex{"user_id": ownerID}

	var totals linkTotalsRow
	_, err := r.db.From("links").Where(owned).Select(
		goqu.COUNT("*").As("total_links"),
		goqu.Cast(goqu.COALESCE(goqu.SUM("clicks"), 0), "BIGINT").As("total_clicks"),
	).ScanStructContext(ctx, &totals)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate links: %w", err)
	}

	var createdToday int64
	_, err = r.db.From("links").
		Where(owned, goqu.C("created_at").Gte(NewDate(createdSince))).
		Select(goqu.COUNT("*")).
		ScanValContext(ctx, &createdToday)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent links: %w", err)
	}

	var rows []linkRow
	err = r.db.From("links").
		Select(linkColumns...).
		Where(owned).
		Order(goqu.C("clicks").Desc(), goqu.C("created_at").Desc()).
		Limit(topLinksLimit).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top links: %w", err)
	}

	stats := &internal.LinkStats{
		TotalLinks:   totals.TotalLinks,
		TotalClicks:  totals.TotalClicks,
		CreatedToday: createdToday,
		TopLinks: lo.Map(rows, func(row linkRow, _ int) internal.ShortLink {
			return *row.toDomain()
		}),
	}
	if stats.TotalLinks > 0 {
		stats.AverageClicks = int64(math.Round(float64(stats.TotalClicks) / float64(stats.TotalLinks)))
	}

	return stats, nil
}
