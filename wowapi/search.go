package wowapi

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// Search runs a single-page search against a search endpoint. filters are
// sent as query parameters on top of the base parameters; a filter with the
// same key as a base parameter replaces it.
//
// For search_item every result's key.href is fetched concurrently and the
// returned response holds the detail objects under "items" in result order.
// A result whose hydration fails is logged and left out, so items may be
// shorter than results. Other search endpoints return the raw response.
func (c *Client) Search(ctx context.Context, name string, filters map[string]string) (Response, error) {
	ep, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if !ep.Search {
		return nil, &FormatError{Endpoint: name, Reason: "not a search endpoint"}
	}

	rawURL, err := ep.URL(c.apiHost, c.region, nil)
	if err != nil {
		return nil, err
	}

	p, err := c.fetch(ctx, ep.Name, rawURL, ep.Namespace, toValues(filters), c.budgets.Search)
	if err != nil {
		return nil, err
	}
	resp, err := p.stamped(ep.Name)
	if err != nil {
		return nil, err
	}

	if ep.Name != EndpointSearchItem {
		return resp, nil
	}

	hrefs := make([]string, 0)
	for _, result := range resp.Results() {
		href := lookupString(result, "key", "href")
		if href == "" {
			c.logger.Warn().Str("op", ep.Name).Msg("Search result has no href, skipping")
			continue
		}
		hrefs = append(hrefs, href)
	}

	items := c.hydrate(ctx, ep.Name, NamespaceStatic, hrefs)
	list := make([]any, len(items))
	for i, item := range items {
		list[i] = map[string]any(item)
	}

	return Response{
		"items": list,
		DateKey: resp[DateKey],
	}, nil
}

// hydrate fetches every href concurrently and waits for all of them. The
// fan-out is capped by the hydration limit when one is set. Failed fetches
// are dropped; the survivors keep the order of hrefs.
func (c *Client) hydrate(ctx context.Context, op string, ns Namespace, hrefs []string) []Response {
	if len(hrefs) == 0 {
		return []Response{}
	}

	results := make([]Response, len(hrefs))

	var g errgroup.Group
	g.SetLimit(c.hydrationLimit)

	for i, href := range hrefs {
		g.Go(func() error {
			item, err := c.fetchHref(ctx, op, ns, href)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("op", op).
					Int("index", i).
					Msg("Failed to hydrate search result")
				// Continue hydrating the others
				return nil
			}
			results[i] = item
			return nil
		})
	}

	_ = g.Wait()

	hydrated := make([]Response, 0, len(results))
	for _, item := range results {
		if item != nil {
			hydrated = append(hydrated, item)
		}
	}

	c.logger.Debug().
		Str("op", op).
		Int("requested", len(hrefs)).
		Int("hydrated", len(hydrated)).
		Msg("Hydrated search results")

	return hydrated
}

// fetchHref follows a link returned by the API under the hydrate budget.
func (c *Client) fetchHref(ctx context.Context, op string, ns Namespace, href string) (Response, error) {
	p, err := c.fetch(ctx, op, href, ns, nil, c.budgets.Hydrate)
	if err != nil {
		return nil, err
	}
	return p.decode(op)
}

func toValues(m map[string]string) url.Values {
	if len(m) == 0 {
		return nil
	}
	values := make(url.Values, len(m))
	for k, v := range m {
		values.Set(k, v)
	}
	return values
}
