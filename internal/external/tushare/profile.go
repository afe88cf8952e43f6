package tushare

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CompanyProfile is the scraped company description shown alongside a
// recommendation. The vendor API has no free profile endpoint, so
// this is pulled from the public quote page.
type CompanyProfile struct {
	Symbol    string
	Industry  string
	MainBiz   string
	WebSite   string
	RegionCN  string
	Employees string
}

const profileURLFmt = "https://quote.eastmoney.com/%s.html"

// FetchProfile scrapes the company profile block from the public
// quote page. Failures are expected (layout changes, blocks) and the
// caller treats a nil profile as fine.
func (c *Client) FetchProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	// The quote page wants "sh600000" style paths.
	parts := strings.SplitN(symbol, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("profile: malformed symbol %q", symbol)
	}
	page := strings.ToLower(parts[1]) + parts[0]

	resp, err := c.http.Get(ctx, fmt.Sprintf(profileURLFmt, page))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile %s: unexpected status %d", symbol, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("profile %s: parse html: %w", symbol, err)
	}

	profile := &CompanyProfile{Symbol: symbol}
	doc.Find(".company_details li, .profile_table tr").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find(".label, th").First().Text())
		value := strings.TrimSpace(s.Find(".value, td").First().Text())
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "行业"):
			profile.Industry = value
		case strings.Contains(label, "主营"):
			profile.MainBiz = value
		case strings.Contains(label, "网址"):
			profile.WebSite = value
		case strings.Contains(label, "地区"):
			profile.RegionCN = value
		case strings.Contains(label, "员工"):
			profile.Employees = value
		}
	})

	if profile.Industry == "" && profile.MainBiz == "" {
		return nil, fmt.Errorf("profile %s: no recognizable fields", symbol)
	}
	return profile, nil
}
