package models

import (
	"sort"
	"strings"
	"time"
)

// SkuInfo describes a product variant and the hubs expected to stock it.
// AssignedHubs stays a comma-joined string for compatibility with rows
// written by the legacy tool; use HubList/SetHubList at the edges.
type SkuInfo struct {
	SKU          string    `gorm:"column:sku;primaryKey"`
	ProductName  string    `gorm:"column:product_name;not null"`
	AssignedHubs string    `gorm:"column:assigned_hubs;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HubList returns the assigned hubs as a slice, dropping empty segments.
func (s *SkuInfo) HubList() []string {
	if s.AssignedHubs == "" {
		return nil
	}
	parts := strings.Split(s.AssignedHubs, ",")
	hubs := make([]string, 0, len(parts))
	for _, part := range parts {
		if hub := strings.TrimSpace(part); hub != "" {
			hubs = append(hubs, hub)
		}
	}
	return hubs
}

// SetHubList stores a deduplicated, sorted hub set in the legacy format.
func (s *SkuInfo) SetHubList(hubs []string) {
	seen := map[string]struct{}{}
	clean := make([]string, 0, len(hubs))
	for _, hub := range hubs {
		hub = strings.TrimSpace(hub)
		if hub == "" {
			continue
		}
		if _, ok := seen[hub]; ok {
			continue
		}
		seen[hub] = struct{}{}
		clean = append(clean, hub)
	}
	sort.Strings(clean)
	s.AssignedHubs = strings.Join(clean, ",")
}
