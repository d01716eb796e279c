package remoteco

import (
	"context"
	"net/url"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/types"
	"jobboard-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL    string   // e.g. https://remote.co
	Categories []string // e.g. project-manager, developer
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

func (s *Scraper) Name() domain.Source { return domain.SourceRemoteCo }

// CategoryURL is <base>/remote-jobs/<category>/.
func CategoryURL(base, category string) string {
	return strings.TrimRight(base, "/") + "/remote-jobs/" + url.PathEscape(category) + "/"
}

// Fetch walks the categories in order. Any failing category fails the
// whole source so partial pages are never reported as a full run.
func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: s.Name()}
	now := s.now()

	for _, cat := range s.cfg.Categories {
		u := CategoryURL(s.cfg.BaseURL, cat)
		doc, err := s.client.FetchDocument(ctx, u, nil)
		if err != nil {
			return types.ScrapeResult{Source: s.Name()}, errors.Wrapf(err, "remoteco category %q", cat)
		}
		found := Parse(doc, s.cfg.BaseURL, now)
		if s.log != nil {
			s.log.Debugw("parsed category", "category", cat, "postings", len(found))
		}
		res.Postings = append(res.Postings, found...)
	}

	if s.log != nil {
		s.log.Infow("parsed listing", "categories", len(s.cfg.Categories), "postings", len(res.Postings))
	}
	return res, nil
}

// Parse extracts the job cards of one category page.
func Parse(doc *goquery.Document, base string, now time.Time) []domain.Posting {
	var out []domain.Posting
	doc.Find("a.card").Each(func(_ int, card *goquery.Selection) {
		title := util.CleanTitle(card.Find(".font-weight-bold.larger").First().Text())

		// Company is the paragraph's own text; its children carry location and badges.
		companyP := card.Find("p.m-0.text-secondary").First()
		company := util.CleanTitle(companyP.Clone().Children().Remove().End().Text())
		if title == "" || company == "" {
			return
		}

		location := []string{}
		card.Find(".m-0.text-secondary span").Not(".badge").Each(func(_ int, sp *goquery.Selection) {
			location = append(location, util.SplitLocation(sp.Text(), util.CommaOrPipe)...)
		})

		tags := []string{}
		companyP.Find("span.badge").Each(func(_ int, b *goquery.Selection) {
			tags = util.AppendFragment(tags, b.Find("small").Text())
		})

		href, _ := card.Attr("href")
		img := card.Find("div.col-lg-1.col-md-2.position-static.d-none.d-md-block.pr-md-3 img").First()
		lazy, _ := img.Attr("data-lazy-src")
		eager, _ := img.Attr("src")

		out = append(out, domain.Posting{
			Source:      domain.SourceRemoteCo,
			JobTitle:    title,
			CompanyName: company,
			Location:    location,
			DatePosted:  util.RelativeTimestamp(card.Find(".float-right small date").First().Text(), now),
			ApplyURL:    util.CanonicalURL(util.ResolveURL(base, href)),
			ImageURL:    util.ResolveImage(base, lazy, eager),
			Tags:        tags,
		})
	})
	return out
}
