package remoteok

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
	URL string // listing page, e.g. https://remoteok.com/
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

func (s *Scraper) Name() domain.Source { return domain.SourceRemoteOK }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: s.Name()}

	doc, err := s.client.FetchDocument(ctx, s.cfg.URL, nil)
	if err != nil {
		return res, errors.Wrap(err, "remoteok listing")
	}
	res.Postings = Parse(doc, s.cfg.URL, s.now())
	if s.log != nil {
		s.log.Infow("parsed listing", "url", s.cfg.URL, "postings", len(res.Postings))
	}
	return res, nil
}

// Parse extracts postings from the RemoteOK job board table. Dates come from
// the machine-readable <time datetime> attribute, so now is unused here but
// kept for parity with the other boards.
func Parse(doc *goquery.Document, base string, _ time.Time) []domain.Posting {
	var out []domain.Posting
	doc.Find("#jobsboard .job").Each(func(_ int, row *goquery.Selection) {
		title := util.CleanText(row.Find(`.company_and_position [itemprop="title"]`).First().Text())
		company := util.CleanText(row.Find(".companyLink h3").First().Text())
		if title == "" || company == "" {
			return
		}

		location := []string{}
		row.Find(".location").Each(func(_ int, loc *goquery.Selection) {
			location = util.AppendFragment(location, loc.Text())
		})

		dt, _ := row.Find("time").First().Attr("datetime")

		href, _ := row.Find("a.preventLink").First().Attr("href")

		logo := row.Find("img.logo").First()
		lazy, _ := logo.Attr("data-src")
		eager, _ := logo.Attr("src")

		tags := []string{}
		row.Find(".tags .tag").Each(func(_ int, tag *goquery.Selection) {
			tags = util.AppendFragment(tags, tag.Text())
		})

		out = append(out, domain.Posting{
			Source:      domain.SourceRemoteOK,
			JobTitle:    title,
			CompanyName: company,
			Location:    location,
			DatePosted:  util.ParseAbsolute(dt),
			ApplyURL:    util.CanonicalURL(util.ResolveURL(base, href)),
			ImageURL:    util.ResolveImage(base, lazy, eager),
			Tags:        tags,
		})
	})
	return out
}
