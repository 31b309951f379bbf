// Package service implements the hotel to organization resolver.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/staypoint/staypoint/internal/cache"
	organizationdomain "github.com/staypoint/staypoint/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const resolverCacheTTL = 5 * time.Minute

// Resolver resolves hotel ownership with a small read-through cache.
// Source rows change rarely, so a short TTL keeps the hot path off the
// database during a cycle.
type Resolver struct {
	db    *gorm.DB
	log   *zap.Logger
	cache cache.Cache[snowflake.ID, snowflake.ID]
}

type ResolverParams struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cache cache.Cache[snowflake.ID, snowflake.ID] `optional:"true"`
}

func NewResolver(p ResolverParams) organizationdomain.Resolver {
	c := p.Cache
	if c == nil {
		c = cache.NewTTLCache[snowflake.ID, snowflake.ID]()
	}
	return &Resolver{
		db:    p.DB,
		log:   p.Log.Named("organization.resolver"),
		cache: c,
	}
}

// ResolveOrg returns the organization that owns the hotel.
func (r *Resolver) ResolveOrg(ctx context.Context, hotelID snowflake.ID) (snowflake.ID, error) {
	if orgID, ok := r.cache.Get(hotelID); ok {
		return orgID, nil
	}

	var orgID snowflake.ID
	err := r.db.WithContext(ctx).
		Table("hotels").
		Select("org_id").
		Where("id = ?", hotelID).
		Scan(&orgID).Error
	if err != nil {
		return 0, err
	}
	if orgID == 0 {
		return 0, organizationdomain.ErrHotelNotFound
	}

	r.cache.Set(hotelID, orgID, resolverCacheTTL)
	return orgID, nil
}
