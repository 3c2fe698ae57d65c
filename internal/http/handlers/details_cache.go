package handlers

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/PlayerIUnknown/aegis-gui/internal/metrics"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

const defaultDetailsTTL = 5 * time.Minute

// DetailsCache keeps mapped scan details per tenant and scan id.
type DetailsCache struct {
	cache *gocache.Cache
}

// NewDetailsCache returns a cache whose entries expire after ttl.
func NewDetailsCache(ttl time.Duration) *DetailsCache {
	if ttl <= 0 {
		ttl = defaultDetailsTTL
	}
	return &DetailsCache{cache: gocache.New(ttl, 2*ttl)}
}

func detailsKey(tenantID, scanID string) string {
	return tenantID + ":" + scanID
}

// Get returns cached details for the pair, if present.
func (d *DetailsCache) Get(tenantID, scanID string) (scans.ScanDetails, bool) {
	if d == nil {
		return scans.ScanDetails{}, false
	}
	v, ok := d.cache.Get(detailsKey(tenantID, scanID))
	if !ok {
		metrics.ScanDetailsCacheTotal.WithLabelValues("miss").Inc()
		return scans.ScanDetails{}, false
	}
	metrics.ScanDetailsCacheTotal.WithLabelValues("hit").Inc()
	details, ok := v.(scans.ScanDetails)
	return details, ok
}

func (d *DetailsCache) Set(tenantID, scanID string, details scans.ScanDetails) {
	if d == nil {
		return
	}
	d.cache.SetDefault(detailsKey(tenantID, scanID), details)
}

// Flush drops every entry for every tenant.
func (d *DetailsCache) Flush() {
	if d == nil {
		return
	}
	d.cache.Flush()
}

// scanDetails loads one scan's details through the cache.
func (h *Handlers) scanDetails(ctx context.Context, p auth.Principal, scanID string) (scans.ScanDetails, error) {
	if details, ok := h.Details.Get(p.TenantID, scanID); ok {
		return details, nil
	}
	resp, err := h.API.ScanDetails(ctx, p.Token, scanID)
	if err != nil {
		return scans.ScanDetails{}, err
	}
	details := scans.MapScanDetails(resp)
	h.Details.Set(p.TenantID, scanID, details)
	return details, nil
}
