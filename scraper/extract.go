package scraper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/K-Tina/Leaflet-scraper/models"
	"github.com/K-Tina/Leaflet-scraper/parser"
	"github.com/gocolly/colly/v2"
)

// extractShop reads one sidebar catalog link into a Shop entry.
func extractShop(e *colly.HTMLElement) *models.Shop {
	name := strings.TrimSpace(e.Text)
	href := e.Attr("href")
	if name == "" || href == "" {
		return nil
	}
	return &models.Shop{
		Name: name,
		URL:  e.Request.AbsoluteURL(href),
	}
}

// extractLeaflet reads one leaflet card into a record, parsing its validity
// text with the capture year as reference.
func extractLeaflet(e *colly.HTMLElement, shopName string, capturedAt time.Time) (*models.Leaflet, error) {
	title := strings.TrimSpace(e.ChildText("h2"))
	if title == "" {
		return nil, errors.New("leaflet card missing title")
	}

	thumbnail := extractThumbnail(e)
	if thumbnail == "" {
		return nil, fmt.Errorf("leaflet card %q missing thumbnail", title)
	}

	// The full date text hides on small screens; fall back to the short one.
	rawDates := strings.TrimSpace(e.ChildText("span.hidden-sm"))
	if rawDates == "" {
		rawDates = strings.TrimSpace(e.ChildText("span.visible-sm"))
	}
	if rawDates == "" {
		return nil, fmt.Errorf("leaflet card %q missing validity text", title)
	}

	interval, err := parser.ParseRange(rawDates, capturedAt.Year())
	if err != nil {
		return nil, fmt.Errorf("leaflet card %q: %w", title, err)
	}

	return &models.Leaflet{
		Title:      title,
		Thumbnail:  thumbnail,
		ShopName:   shopName,
		ValidFrom:  interval.Start.Format(models.DateLayout),
		ValidTo:    interval.End.Format(models.DateLayout),
		ParsedTime: capturedAt.Format(models.TimeLayout),
	}, nil
}

// extractThumbnail tries the known thumbnail markup variants in order: the
// picture wrapper, a bare image-wrapper img, then any figure img. Lazy-loaded
// images keep the URL in data-src or srcset instead of src.
func extractThumbnail(e *colly.HTMLElement) string {
	selectors := []string{
		"div.image-wrapper picture img",
		"div.image-wrapper img",
		"figure img",
	}

	for _, selector := range selectors {
		for _, attr := range []string{"src", "data-src"} {
			if value := e.ChildAttr(selector, attr); value != "" {
				return e.Request.AbsoluteURL(value)
			}
		}
		if srcset := e.ChildAttr(selector, "srcset"); srcset != "" {
			fields := strings.Fields(strings.Split(srcset, ",")[0])
			if len(fields) > 0 {
				return e.Request.AbsoluteURL(fields[0])
			}
		}
	}
	return ""
}

// skipReasonLabel maps an extraction failure to a metrics label.
func skipReasonLabel(err error) string {
	switch {
	case errors.Is(err, parser.ErrInvalidCalendarDate):
		return "invalid_date"
	case errors.Is(err, parser.ErrUnrecognizedFormat):
		return "unrecognized_format"
	default:
		return "missing_field"
	}
}
