package weworkremotely

import (
	"context"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/types"
	"jobboard-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Config struct {
	URL string // e.g. https://weworkremotely.com/remote-jobs
}

type Scraper struct {
	cfg    Config
	client *util.Client
	now    func() time.Time
	log    *zap.SugaredLogger
}

func New(cfg Config, client *util.Client, now func() time.Time, log *zap.SugaredLogger) *Scraper {
	if now == nil {
		now = time.Now
	}
	return &Scraper{cfg: cfg, client: client, now: now, log: log}
}

func (s *Scraper) Name() domain.Source { return domain.SourceWeWorkRemotely }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: s.Name()}

	// WWR turns away requests that do not look like a browser.
	doc, err := s.client.FetchDocument(ctx, s.cfg.URL, util.BrowserHeaders)
	if err != nil {
		return res, errors.Wrap(err, "weworkremotely listing")
	}
	res.Postings = Parse(doc, s.cfg.URL, s.now())
	if s.log != nil {
		s.log.Infow("parsed listing", "url", s.cfg.URL, "postings", len(res.Postings))
	}
	return res, nil
}

// Parse extracts postings from the category sections of the listing page.
// Dates are relative ("11d") and resolved against now.
func Parse(doc *goquery.Document, base string, now time.Time) []domain.Posting {
	var out []domain.Posting
	doc.Find(".jobs ul li").Each(func(_ int, li *goquery.Selection) {
		title := util.CleanText(li.Find("span.title").First().Text())
		company := util.CleanText(li.Find("span.company").First().Text())
		if title == "" || company == "" {
			return
		}

		href, _ := li.Find("a[href]").First().Attr("href")
		style, _ := li.Find(".flag-logo").First().Attr("style")

		tags := []string{}
		li.Find(".tags li").Each(func(_ int, tag *goquery.Selection) {
			tags = util.AppendFragment(tags, tag.Text())
		})

		out = append(out, domain.Posting{
			Source:      domain.SourceWeWorkRemotely,
			JobTitle:    title,
			CompanyName: company,
			Location:    util.SplitLocation(li.Find("span.region").First().Text(), util.Slash),
			DatePosted:  util.RelativeTimestamp(li.Find(".listing-date__date").First().Text(), now),
			ApplyURL:    util.CanonicalURL(util.ResolveURL(base, href)),
			ImageURL:    util.ResolveImage(base, "", util.BackgroundImageURL(style)),
			Tags:        tags,
		})
	})
	return out
}
