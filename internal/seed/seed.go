// Package seed bootstraps the default organization and demo data.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	hoteldomain "github.com/staypoint/staypoint/internal/hotel/domain"
	organizationdomain "github.com/staypoint/staypoint/internal/organization/domain"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"

	demoHotelName  = "Harbor View Hotel"
	demoHotelCity  = "Lisbon"
	demoProvider   = "demo"
	demoLocatorURL = "https://rates.example.com/harbor-view?checkin={checkin}&checkout={checkout}"
)

// EnsureDefaultOrg seeds the default organization for startup bootstrap.
func EnsureDefaultOrg(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureDefaultOrgTx(ctx, tx, node)
		return err
	})
}

// EnsureDemoData seeds a demo hotel and tracked source for local
// development; production deployments never call it.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureDefaultOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}

		var hotel hoteldomain.Hotel
		err = tx.Where("org_id = ? AND name = ?", org.ID, demoHotelName).First(&hotel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hotel = hoteldomain.Hotel{
				ID:    node.Generate(),
				OrgID: org.ID,
				Name:  demoHotelName,
				City:  demoHotelCity,
			}
			if err := tx.Create(&hotel).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&sourcedomain.Source{}).
			Where("hotel_id = ? AND provider = ?", hotel.ID, demoProvider).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&sourcedomain.Source{
			ID:       node.Generate(),
			OrgID:    org.ID,
			HotelID:  hotel.ID,
			Provider: demoProvider,
			Locator:  demoLocatorURL,
			Active:   true,
		}).Error
	})
}

func ensureDefaultOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = organizationdomain.Organization{
		ID:   node.Generate(),
		Name: defaultOrgName,
		Slug: defaultOrgSlug,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
