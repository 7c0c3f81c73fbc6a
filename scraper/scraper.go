// Package scraper walks the prospektmaschine hypermarket catalog and
// extracts leaflet records from each shop page.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/K-Tina/Leaflet-scraper/config"
	"github.com/K-Tina/Leaflet-scraper/models"
	"github.com/K-Tina/Leaflet-scraper/pipeline"
	"github.com/gocolly/colly/v2"
)

// Request context keys. The shop name travels with the request so the
// leaflet handler can attribute cards to the page being scraped.
const (
	ctxPageKey = "page"
	ctxShopKey = "shop"

	pageIndex = "index"
)

// Scraper wraps the colly collector for the leaflet target. The collector
// runs synchronously with a fixed inter-request delay: one request in
// flight at any time is part of the polite-crawling contract.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	requestCount int64
	errorCount   int64
	skippedCount int64

	mu           sync.Mutex
	shops        []models.Shop
	failedURLs   []string
	errorsByType map[string]int

	handlersOnce sync.Once
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	s := &Scraper{
		cfg:          cfg,
		collector:    collector,
		errorsByType: make(map[string]int),
		Metrics:      NewMetrics(),
	}
	return s, nil
}

// Run fetches the shop catalog, then scrapes each shop page in catalog
// order, streaming records through the pipeline. A failed shop page is
// logged and skipped; an empty catalog aborts the run with ErrEmptyCatalog.
func (s *Scraper) Run(ctx context.Context, p *pipeline.Pipeline) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.configureHandlers(p)

	start := time.Now()

	indexCtx := colly.NewContext()
	indexCtx.Put(ctxPageKey, pageIndex)
	if err := s.collector.Request(http.MethodGet, s.cfg.IndexURL, nil, indexCtx, nil); err != nil {
		return nil, fmt.Errorf("fetch shop index: %w", err)
	}

	shops := s.Shops()
	if len(shops) == 0 {
		return nil, ErrEmptyCatalog
	}
	slog.Info("shop catalog loaded", slog.Int("shops", len(shops)))

	shopsFailed := 0
	for i, shop := range shops {
		if ctx.Err() != nil {
			slog.Warn("run cancelled", slog.Int("remaining", len(shops)-i))
			break
		}

		slog.Info("scraping shop",
			slog.Int("n", i+1),
			slog.Int("total", len(shops)),
			slog.String("shop", shop.Name),
		)

		shopCtx := colly.NewContext()
		shopCtx.Put(ctxShopKey, shop.Name)
		if err := s.collector.Request(http.MethodGet, shop.URL, nil, shopCtx, nil); err != nil {
			shopsFailed++
			slog.Warn("skipping shop",
				slog.String("shop", shop.Name),
				slog.String("url", shop.URL),
				slog.Any("error", err),
			)
		}
	}

	return &models.ScrapeResult{
		StartTime:       start,
		EndTime:         time.Now(),
		ShopCount:       len(shops),
		ShopsFailed:     shopsFailed,
		RequestCount:    int(atomic.LoadInt64(&s.requestCount)),
		ErrorCount:      int(atomic.LoadInt64(&s.errorCount)),
		SkippedLeaflets: int(atomic.LoadInt64(&s.skippedCount)),
		FailedURLs:      s.snapshotFailedURLs(),
		ErrorsByType:    s.snapshotErrors(),
	}, nil
}

// Shops returns the catalog collected from the index page so far.
func (s *Scraper) Shops() []models.Shop {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Shop, len(s.shops))
	copy(out, s.shops)
	return out
}

func (s *Scraper) configureHandlers(p *pipeline.Pipeline) {
	s.handlersOnce.Do(func() {
		s.collector.OnRequest(func(r *colly.Request) {
			r.Ctx.Put("start", time.Now())
			atomic.AddInt64(&s.requestCount, 1)
			s.Metrics.IncRequest(requestPhase(r.Ctx))
			slog.Debug("fetching page", slog.String("url", r.URL.String()))
		})

		s.collector.OnResponse(func(r *colly.Response) {
			if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
				s.Metrics.ObserveDuration(time.Since(start))
			}
		})

		s.collector.OnError(func(r *colly.Response, err error) {
			atomic.AddInt64(&s.errorCount, 1)
			statusCode := 0
			if r != nil {
				statusCode = r.StatusCode
			}
			category := errorTypeLabel(classifyError(err, statusCode))

			s.mu.Lock()
			s.errorsByType[category]++
			s.mu.Unlock()

			requestURL := ""
			if r != nil && r.Request != nil && r.Request.URL != nil {
				requestURL = r.Request.URL.String()
			}
			slog.Error("request error",
				slog.String("url", requestURL),
				slog.String("category", category),
				slog.Any("error", err),
			)
			s.Metrics.IncError(category)

			s.mu.Lock()
			s.failedURLs = append(s.failedURLs, requestURL)
			s.mu.Unlock()
		})

		// Shop catalog links live in the sidebar. The sidebar renders on
		// every page, so only the index visit populates the catalog.
		s.collector.OnHTML("div#sidebar ul#left-category-shops li a", func(e *colly.HTMLElement) {
			if e.Request.Ctx.Get(ctxPageKey) != pageIndex {
				return
			}
			shop := extractShop(e)
			if shop == nil {
				slog.Warn("sidebar link missing name or URL", slog.String("url", e.Request.URL.String()))
				return
			}
			s.mu.Lock()
			s.shops = append(s.shops, *shop)
			s.mu.Unlock()
			s.Metrics.IncShops()
		})

		s.collector.OnHTML("div.letaky-grid div.brochure-thumb.grid-item", func(e *colly.HTMLElement) {
			shopName := e.Request.Ctx.Get(ctxShopKey)
			if shopName == "" {
				return
			}

			leaflet, err := extractLeaflet(e, shopName, time.Now())
			if err != nil {
				atomic.AddInt64(&s.skippedCount, 1)
				s.Metrics.IncSkipped(skipReasonLabel(err))
				slog.Warn("skipping leaflet",
					slog.String("shop", shopName),
					slog.Any("error", err),
				)
				return
			}

			s.Metrics.IncLeaflets()
			if err := p.Process(leaflet); err != nil && !errors.Is(err, pipeline.ErrPipelineClosed) {
				slog.Error("pipeline process error", slog.Any("error", err))
			}
		})
	})
}

func requestPhase(ctx *colly.Context) string {
	if ctx != nil && ctx.Get(ctxPageKey) == pageIndex {
		return pageIndex
	}
	return "shop"
}

func (s *Scraper) snapshotFailedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedURLs))
	copy(out, s.failedURLs)
	return out
}

func (s *Scraper) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}
