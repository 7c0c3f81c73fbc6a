package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/K-Tina/Leaflet-scraper/models"
)

// ValidateLeaflet ensures the scraper captured the required fields and that
// the validity window is coherent.
func ValidateLeaflet(l *models.Leaflet) error {
	if l == nil {
		return fmt.Errorf("leaflet is nil")
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("leaflet missing title")
	}
	if strings.TrimSpace(l.ShopName) == "" {
		return fmt.Errorf("leaflet missing shop name for %s", l.Title)
	}
	if !strings.HasPrefix(l.Thumbnail, "http") {
		return fmt.Errorf("leaflet %s has invalid thumbnail URL %q", l.Title, l.Thumbnail)
	}

	from, err := time.Parse(models.DateLayout, l.ValidFrom)
	if err != nil {
		return fmt.Errorf("leaflet %s has invalid valid_from: %w", l.Title, err)
	}
	to, err := time.Parse(models.DateLayout, l.ValidTo)
	if err != nil {
		return fmt.Errorf("leaflet %s has invalid valid_to: %w", l.Title, err)
	}
	if _, err := time.Parse(models.TimeLayout, l.ParsedTime); err != nil {
		return fmt.Errorf("leaflet %s has invalid parsed_time: %w", l.Title, err)
	}

	if !l.IsOpenEnded() && from.After(to) {
		return fmt.Errorf("leaflet %s: valid_from %s is after valid_to %s", l.Title, l.ValidFrom, l.ValidTo)
	}
	return nil
}
