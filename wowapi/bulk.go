package wowapi

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxProfessionID keeps pseudo professions (protoform synthesis and the like)
// out of ProfessionTree.
const maxProfessionID = 1000

type hydrationJob struct {
	index int
	href  string
}

// AllItems pages through the whole item search by id range and hydrates
// every result. One producer walks the pages (id=[N,] ordered by id) and
// enqueues result links; a pool of consumers fetches them. Paging stops at
// the first empty page. A page that cannot be fetched within the bulk
// budget aborts the walk; an item that cannot be hydrated is dropped.
func (c *Client) AllItems(ctx context.Context, filters map[string]string) ([]Response, error) {
	ep, err := Lookup(EndpointSearchItem)
	if err != nil {
		return nil, err
	}
	rawURL, err := ep.URL(c.apiHost, c.region, nil)
	if err != nil {
		return nil, err
	}

	jobs := make(chan hydrationJob)
	var (
		mu    sync.Mutex
		items = make(map[int]Response)
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)

		next, index := 0, 0
		for page := 1; ; page++ {
			query := toValues(filters)
			if query == nil {
				query = url.Values{}
			}
			query.Set("id", fmt.Sprintf("[%d,]", next))
			query.Set("orderby", "id")
			query.Set("_pageSize", strconv.Itoa(c.bulkPageSize))

			p, err := c.fetch(gctx, ep.Name, rawURL, ep.Namespace, query, c.budgets.Bulk)
			if err != nil {
				return fmt.Errorf("failed to fetch item page %d: %w", page, err)
			}
			resp, err := p.decode(ep.Name)
			if err != nil {
				return err
			}

			results := resp.Results()
			if len(results) == 0 {
				c.logger.Debug().Int("pages", page-1).Int("items", index).Msg("Item search exhausted")
				return nil
			}

			highest := -1
			for _, result := range results {
				if id, ok := lookupInt(result, "data", "id"); ok && id > highest {
					highest = id
				}
				href := lookupString(result, "key", "href")
				if href == "" {
					continue
				}
				select {
				case jobs <- hydrationJob{index: index, href: href}:
					index++
				case <-gctx.Done():
					return gctx.Err()
				}
			}

			if highest < next {
				// No usable ids on the page; paging would not advance.
				c.logger.Warn().Int("page", page).Int("next", next).Msg("Item page has no ids, stopping")
				return nil
			}
			next = highest + 1
		}
	})

	for range c.bulkWorkers {
		g.Go(func() error {
			for job := range jobs {
				item, err := c.fetchHref(gctx, ep.Name, ep.Namespace, job.href)
				if err != nil {
					c.logger.Warn().Err(err).Int("index", job.index).Msg("Failed to hydrate item")
					continue
				}
				mu.Lock()
				items[job.index] = item
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]Response, 0, len(items))
	for _, index := range slices.Sorted(maps.Keys(items)) {
		ordered = append(ordered, items[index])
	}
	return ordered, nil
}

// AllRealms returns the detail of every connected realm of the region.
func (c *Client) AllRealms(ctx context.Context) ([]Response, error) {
	index, err := c.ConnectedRealmIndex(ctx)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	for _, realm := range objects(index["connected_realms"]) {
		if href := lookupString(realm, "href"); href != "" {
			hrefs = append(hrefs, href)
		}
	}

	return c.hydrate(ctx, EndpointRealm, NamespaceDynamic, hrefs), nil
}

// ProfessionNode is one profession of ProfessionTree.
type ProfessionNode struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	SkillTiers []SkillTierNode `json:"skill_tiers"`
}

// SkillTierNode is one expansion tier of a profession.
type SkillTierNode struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Categories []CategoryNode `json:"categories"`
}

// CategoryNode groups the hydrated recipes of a skill tier.
type CategoryNode struct {
	Name    string     `json:"name"`
	Recipes []Response `json:"recipes"`
}

// ProfessionTree walks professions, their skill tiers and recipe categories
// and hydrates every recipe. Only the profession index must succeed; a tier
// or category that cannot be fetched is logged and left empty.
func (c *Client) ProfessionTree(ctx context.Context) ([]ProfessionNode, error) {
	index, err := c.ProfessionIndex(ctx)
	if err != nil {
		return nil, err
	}

	tree := make([]ProfessionNode, 0)
	for _, prof := range objects(index["professions"]) {
		id, ok := lookupInt(prof, "id")
		if !ok || id >= maxProfessionID {
			continue
		}

		tree = append(tree, ProfessionNode{
			ID:         id,
			Name:       lookupString(prof, "name"),
			SkillTiers: c.skillTiers(ctx, prof),
		})
	}
	return tree, nil
}

func (c *Client) skillTiers(ctx context.Context, prof Response) []SkillTierNode {
	tiers := []SkillTierNode{}

	detail, err := c.followKey(ctx, EndpointProfessionSkillTier, prof)
	if err != nil {
		c.logger.Warn().Err(err).Str("profession", lookupString(prof, "name")).Msg("Failed to fetch skill tiers")
		return tiers
	}

	for _, tier := range objects(detail["skill_tiers"]) {
		id, _ := lookupInt(tier, "id")
		node := SkillTierNode{ID: id, Name: lookupString(tier, "name"), Categories: []CategoryNode{}}

		categories, err := c.followKey(ctx, EndpointProfessionTierDetail, tier)
		if err != nil {
			c.logger.Warn().Err(err).Str("skill_tier", node.Name).Msg("Failed to fetch recipe categories")
			tiers = append(tiers, node)
			continue
		}

		for _, category := range objects(categories["categories"]) {
			var hrefs []string
			for _, recipe := range objects(category["recipes"]) {
				if href := lookupString(recipe, "key", "href"); href != "" {
					hrefs = append(hrefs, href)
				}
			}
			node.Categories = append(node.Categories, CategoryNode{
				Name:    lookupString(category, "name"),
				Recipes: c.hydrate(ctx, EndpointRecipeDetail, NamespaceDynamic, hrefs),
			})
		}
		tiers = append(tiers, node)
	}
	return tiers
}

// followKey fetches the object an index entry links to through key.href.
func (c *Client) followKey(ctx context.Context, op string, entry Response) (Response, error) {
	href := lookupString(entry, "key", "href")
	if href == "" {
		return nil, &FormatError{Endpoint: op, Reason: "entry has no key.href"}
	}
	return c.fetchHref(ctx, op, NamespaceDynamic, href)
}
