package crawler

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

// Fetcher loads a page and returns its parsed document.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Selection, error)
}

// CollyFetcher loads server rendered pages.
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
}

func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	return &CollyFetcher{userAgent: userAgent, timeout: timeout}
}

func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := []colly.CollectorOption{}
	if f.userAgent != "" {
		opts = append(opts, colly.UserAgent(f.userAgent))
	}
	if host := hostFromURL(pageURL); host != "" {
		opts = append(opts, colly.AllowedDomains(host))
	}
	c := colly.NewCollector(opts...)
	if f.timeout > 0 {
		c.SetRequestTimeout(f.timeout)
	}

	var doc *goquery.Selection
	var reqErr error
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if doc == nil {
			doc = e.DOM
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			reqErr = fmt.Errorf("%s: status %d: %w", pageURL, r.StatusCode, err)
			return
		}
		reqErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		if reqErr != nil {
			return nil, reqErr
		}
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: response is not an html document", pageURL)
	}
	return doc, nil
}

// HeadlessFetcher renders pages in headless Chrome for career sites that
// build their listings client side.
type HeadlessFetcher struct {
	userAgent string
	timeout   time.Duration
}

func NewHeadlessFetcher(userAgent string, timeout time.Duration) *HeadlessFetcher {
	return &HeadlessFetcher{userAgent: userAgent, timeout: timeout}
}

func (f *HeadlessFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Selection, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if f.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.userAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	timeout := f.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	reqCtx, reqCancel := context.WithTimeout(browserCtx, timeout)
	defer reqCancel()

	var html string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc.Selection, nil
}

// links returns the absolute, de-duplicated hrefs matched by selector, in
// document order. Fragments are dropped.
func links(doc *goquery.Selection, base, selector string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := []string{}
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := baseURL.ResolveReference(ref)
		abs.Fragment = ""
		key := abs.String()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, key)
	})
	return out
}

func hostFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(u.Host); err == nil {
		return h
	}
	return u.Host
}
