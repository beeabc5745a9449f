package wowapi

import (
	"fmt"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// Region selects which regional copy of the game data a client reads.
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
	RegionKR Region = "kr"
	RegionTW Region = "tw"
	RegionCN Region = "cn"
)

// Regions lists every supported region.
var Regions = []Region{RegionUS, RegionEU, RegionKR, RegionTW, RegionCN}

// ParseRegion validates a region code.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Regions {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// Host selects which server an endpoint lives on.
type Host int

const (
	HostAPI Host = iota
	HostOAuth
)

const (
	defaultAPIHost     = "https://{region}.api.blizzard.com"
	defaultOAuthHost   = "https://{region}.battle.net"
	defaultCNAPIHost   = "https://gateway.battlenet.com.cn"
	defaultCNOAuthHost = "https://www.battlenet.com.cn"
)

// DefaultHost returns the host template for a region. The template may still
// contain a {region} placeholder.
func DefaultHost(h Host, region Region) string {
	if region == RegionCN {
		if h == HostOAuth {
			return defaultCNOAuthHost
		}
		return defaultCNAPIHost
	}
	if h == HostOAuth {
		return defaultOAuthHost
	}
	return defaultAPIHost
}

// Namespace is the server-side partition a request targets.
type Namespace int

const (
	NamespaceNone Namespace = iota
	NamespaceDynamic
	NamespaceStatic
)

// For returns the namespace query value for a region, e.g. "dynamic-us".
func (n Namespace) For(region Region) string {
	switch n {
	case NamespaceDynamic:
		return "dynamic-" + string(region)
	case NamespaceStatic:
		return "static-" + string(region)
	default:
		return ""
	}
}

// Shape is the declared body type of an endpoint.
type Shape int

const (
	ShapeJSON Shape = iota
	ShapeBinary
)

// Endpoint names.
const (
	EndpointAccessToken          = "access_token"
	EndpointConnectedRealmIndex  = "connected_realm_index"
	EndpointRealm                = "realm"
	EndpointAuction              = "auction"
	EndpointCommodities          = "commodities"
	EndpointProfessionIndex      = "profession_index"
	EndpointProfessionSkillTier  = "profession_skill_tier"
	EndpointProfessionTierDetail = "profession_tier_detail"
	EndpointProfessionIcon       = "profession_icon"
	EndpointRecipeDetail         = "recipe_detail"
	EndpointRecipeIcon           = "recipe_icon"
	EndpointItemClasses          = "item_classes"
	EndpointItemSubclass         = "item_subclass"
	EndpointItemSetIndex         = "item_set_index"
	EndpointItemIcon             = "item_icon"
	EndpointWowToken             = "wow_token"
	EndpointSearchRealm          = "search_realm"
	EndpointSearchItem           = "search_item"
)

// Endpoint is one entry of the static catalog.
type Endpoint struct {
	Name      string
	Path      string
	Host      Host
	Namespace Namespace
	Shape     Shape
	Search    bool
}

var catalog = map[string]Endpoint{
	EndpointAccessToken:          {Path: "/oauth/token", Host: HostOAuth},
	EndpointConnectedRealmIndex:  {Path: "/data/wow/connected-realm/index", Namespace: NamespaceDynamic},
	EndpointRealm:                {Path: "/data/wow/connected-realm/{connected_realm_id}", Namespace: NamespaceDynamic},
	EndpointAuction:              {Path: "/data/wow/connected-realm/{connected_realm_id}/auctions", Namespace: NamespaceDynamic},
	EndpointCommodities:          {Path: "/data/wow/auctions/commodities", Namespace: NamespaceDynamic},
	EndpointProfessionIndex:      {Path: "/data/wow/profession/index", Namespace: NamespaceDynamic},
	EndpointProfessionSkillTier:  {Path: "/data/wow/profession/{profession_id}", Namespace: NamespaceDynamic},
	EndpointProfessionTierDetail: {Path: "/data/wow/profession/{profession_id}/skill-tier/{skill_tier_id}", Namespace: NamespaceDynamic},
	EndpointProfessionIcon:       {Path: "/data/wow/media/profession/{profession_id}", Namespace: NamespaceDynamic, Shape: ShapeBinary},
	EndpointRecipeDetail:         {Path: "/data/wow/recipe/{recipe_id}", Namespace: NamespaceDynamic},
	EndpointRecipeIcon:           {Path: "/data/wow/media/recipe/{recipe_id}", Namespace: NamespaceDynamic, Shape: ShapeBinary},
	EndpointItemClasses:          {Path: "/data/wow/item-class/index", Namespace: NamespaceDynamic},
	EndpointItemSubclass:         {Path: "/data/wow/item-class/{item_class_id}", Namespace: NamespaceDynamic},
	EndpointItemSetIndex:         {Path: "/data/wow/item-set/index", Namespace: NamespaceDynamic},
	EndpointItemIcon:             {Path: "/data/wow/media/item/{item_id}", Namespace: NamespaceDynamic, Shape: ShapeBinary},
	EndpointWowToken:             {Path: "/data/wow/token/index", Namespace: NamespaceDynamic},
	EndpointSearchRealm:          {Path: "/data/wow/search/connected-realm", Namespace: NamespaceStatic, Search: true},
	EndpointSearchItem:           {Path: "/data/wow/search/item", Namespace: NamespaceStatic, Search: true},
}

func init() {
	for name, ep := range catalog {
		ep.Name = name
		catalog[name] = ep
	}
}

// Lookup returns the catalog entry for name. Lookup is exact.
func Lookup(name string) (Endpoint, error) {
	ep, ok := catalog[name]
	if !ok {
		return Endpoint{}, &FormatError{Endpoint: name, Reason: "unknown endpoint"}
	}
	return ep, nil
}

// Endpoints returns every catalog name in sorted order.
func Endpoints() []string {
	return slices.Sorted(maps.Keys(catalog))
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// Placeholders returns the path parameter names the endpoint declares, in
// template order.
func (e Endpoint) Placeholders() []string {
	matches := placeholderRe.FindAllStringSubmatch(e.Path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// URL resolves the endpoint against a host template and region. params must
// supply exactly the placeholders the path declares.
func (e Endpoint) URL(host string, region Region, params map[string]string) (string, error) {
	declared := e.Placeholders()
	for _, name := range declared {
		if _, ok := params[name]; !ok {
			return "", &FormatError{Endpoint: e.Name, Reason: fmt.Sprintf("missing path parameter %q", name)}
		}
	}
	if len(params) != len(declared) {
		for name := range params {
			if !slices.Contains(declared, name) {
				return "", &FormatError{Endpoint: e.Name, Reason: fmt.Sprintf("unexpected path parameter %q", name)}
			}
		}
	}

	path := placeholderRe.ReplaceAllStringFunc(e.Path, func(m string) string {
		return url.PathEscape(params[m[1:len(m)-1]])
	})

	base := strings.TrimRight(strings.ReplaceAll(host, "{region}", string(region)), "/")
	return base + path, nil
}

