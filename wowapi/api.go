package wowapi

import (
	"context"
	"strconv"
)

// ConnectedRealmIndex returns every connected realm of the region.
func (c *Client) ConnectedRealmIndex(ctx context.Context) (Response, error) {
	return c.Get(ctx, EndpointConnectedRealmIndex, nil)
}

// ConnectedRealm returns the realms of a connected realm cluster.
func (c *Client) ConnectedRealm(ctx context.Context, connectedRealmID int) (Response, error) {
	return c.Get(ctx, EndpointRealm, map[string]string{
		"connected_realm_id": strconv.Itoa(connectedRealmID),
	})
}

// Auctions returns every auction of a connected realm.
func (c *Client) Auctions(ctx context.Context, connectedRealmID int) (Response, error) {
	return c.Get(ctx, EndpointAuction, map[string]string{
		"connected_realm_id": strconv.Itoa(connectedRealmID),
	})
}

// Commodities returns the region-wide commodity auctions.
func (c *Client) Commodities(ctx context.Context) (Response, error) {
	return c.Get(ctx, EndpointCommodities, nil)
}

// ProfessionIndex returns every profession.
func (c *Client) ProfessionIndex(ctx context.Context) (Response, error) {
	return c.Get(ctx, EndpointProfessionIndex, nil)
}

// ProfessionSkillTiers returns a profession and its skill tiers, one per
// expansion.
func (c *Client) ProfessionSkillTiers(ctx context.Context, professionID int) (Response, error) {
	return c.Get(ctx, EndpointProfessionSkillTier, map[string]string{
		"profession_id": strconv.Itoa(professionID),
	})
}

// ProfessionTierDetail returns the recipe categories of one skill tier.
func (c *Client) ProfessionTierDetail(ctx context.Context, professionID, skillTierID int) (Response, error) {
	return c.Get(ctx, EndpointProfessionTierDetail, map[string]string{
		"profession_id": strconv.Itoa(professionID),
		"skill_tier_id": strconv.Itoa(skillTierID),
	})
}

// ProfessionIcon returns the raw profession media body.
func (c *Client) ProfessionIcon(ctx context.Context, professionID int) ([]byte, error) {
	return c.GetBytes(ctx, EndpointProfessionIcon, map[string]string{
		"profession_id": strconv.Itoa(professionID),
	})
}

// Recipe returns a recipe by id.
func (c *Client) Recipe(ctx context.Context, recipeID int) (Response, error) {
	return c.Get(ctx, EndpointRecipeDetail, map[string]string{
		"recipe_id": strconv.Itoa(recipeID),
	})
}

// RecipeIcon returns the raw recipe media body.
func (c *Client) RecipeIcon(ctx context.Context, recipeID int) ([]byte, error) {
	return c.GetBytes(ctx, EndpointRecipeIcon, map[string]string{
		"recipe_id": strconv.Itoa(recipeID),
	})
}

// ItemClasses returns every item class (consumable, container, weapon, ...).
func (c *Client) ItemClasses(ctx context.Context) (Response, error) {
	return c.Get(ctx, EndpointItemClasses, nil)
}

// ItemSubclass returns an item class and its subclasses.
func (c *Client) ItemSubclass(ctx context.Context, itemClassID int) (Response, error) {
	return c.Get(ctx, EndpointItemSubclass, map[string]string{
		"item_class_id": strconv.Itoa(itemClassID),
	})
}

// ItemSetIndex returns every item set.
func (c *Client) ItemSetIndex(ctx context.Context) (Response, error) {
	return c.Get(ctx, EndpointItemSetIndex, nil)
}

// ItemIcon returns the raw item media body.
func (c *Client) ItemIcon(ctx context.Context, itemID int) ([]byte, error) {
	return c.GetBytes(ctx, EndpointItemIcon, map[string]string{
		"item_id": strconv.Itoa(itemID),
	})
}

// WowToken returns the region's WoW token price.
func (c *Client) WowToken(ctx context.Context) (Response, error) {
	return c.Get(ctx, EndpointWowToken, nil)
}

// ConnectedRealmSearch searches connected realms.
func (c *Client) ConnectedRealmSearch(ctx context.Context, filters map[string]string) (Response, error) {
	return c.Search(ctx, EndpointSearchRealm, filters)
}

// ItemSearch searches items and hydrates every result.
func (c *Client) ItemSearch(ctx context.Context, filters map[string]string) (Response, error) {
	return c.Search(ctx, EndpointSearchItem, filters)
}

// AuctionHouse returns the auctions of a connected realm as typed values.
func (c *Client) AuctionHouse(ctx context.Context, connectedRealmID int) (*AuctionHouse, error) {
	resp, err := c.Auctions(ctx, connectedRealmID)
	if err != nil {
		return nil, err
	}
	var house AuctionHouse
	if err := resp.Decode(&house); err != nil {
		return nil, err
	}
	return &house, nil
}

// CommodityHouse returns the region-wide commodity auctions as typed values.
func (c *Client) CommodityHouse(ctx context.Context) (*AuctionHouse, error) {
	resp, err := c.Commodities(ctx)
	if err != nil {
		return nil, err
	}
	var house AuctionHouse
	if err := resp.Decode(&house); err != nil {
		return nil, err
	}
	return &house, nil
}

// TokenPrice returns the WoW token price as a typed value.
func (c *Client) TokenPrice(ctx context.Context) (*TokenPrice, error) {
	resp, err := c.WowToken(ctx)
	if err != nil {
		return nil, err
	}
	var price TokenPrice
	if err := resp.Decode(&price); err != nil {
		return nil, err
	}
	return &price, nil
}
