package square

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type listCatalogResponse struct {
	Cursor  string          `json:"cursor"`
	Objects []CatalogObject `json:"objects"`
}

type batchRetrieveRequest struct {
	ObjectIDs             []string `json:"object_ids"`
	IncludeRelatedObjects bool     `json:"include_related_objects"`
}

type batchRetrieveResponse struct {
	Objects []CatalogObject `json:"objects"`
}

type inventoryCountsRequest struct {
	CatalogObjectIDs []string `json:"catalog_object_ids"`
	LocationIDs      []string `json:"location_ids"`
	Cursor           string   `json:"cursor,omitempty"`
}

type inventoryCountsResponse struct {
	Counts []InventoryCount `json:"counts"`
	Cursor string           `json:"cursor"`
}

// ListCatalog walks the paginated listing endpoint for the given object types
// until the server stops returning a cursor. On a mid-pagination failure the
// objects collected so far are returned together with the error; partial
// results are never discarded. Page spacing comes from the client's request
// gap.
func (c *Client) ListCatalog(ctx context.Context, types ...ObjectType) ([]CatalogObject, error) {
	var all []CatalogObject
	cursor := ""
	for {
		params := url.Values{}
		if len(types) > 0 {
			names := make([]string, len(types))
			for i, t := range types {
				names[i] = string(t)
			}
			params.Set("types", strings.Join(names, ","))
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page listCatalogResponse
		if err := c.doJSON(ctx, http.MethodGet, "/v2/catalog/list", params, nil, &page); err != nil {
			return all, err
		}
		all = append(all, page.Objects...)

		if page.Cursor == "" {
			return all, nil
		}
		cursor = page.Cursor
	}
}

// BatchRetrieve fetches full definitions for the given object IDs, nested
// payloads included. Callers chunk the ID set; this is a single call.
func (c *Client) BatchRetrieve(ctx context.Context, ids []string) ([]CatalogObject, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body := batchRetrieveRequest{ObjectIDs: ids}
	var out batchRetrieveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/catalog/batch-retrieve", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Objects, nil
}

// RetrieveObject fetches a single catalog object by ID.
func (c *Client) RetrieveObject(ctx context.Context, id string) (*CatalogObject, error) {
	objects, err := c.BatchRetrieve(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, &DecodeError{ObjectID: id, Reason: "object not returned"}
	}
	return &objects[0], nil
}

// BatchInventoryCounts looks up inventory counts for the given variation IDs
// at one location, following the endpoint's own cursor if the result spans
// pages. Callers chunk the ID set.
func (c *Client) BatchInventoryCounts(ctx context.Context, variationIDs []string, locationID string) ([]InventoryCount, error) {
	if len(variationIDs) == 0 {
		return nil, nil
	}
	body := inventoryCountsRequest{
		CatalogObjectIDs: variationIDs,
		LocationIDs:      []string{locationID},
	}

	var all []InventoryCount
	for {
		var out inventoryCountsResponse
		if err := c.doJSON(ctx, http.MethodPost, "/v2/inventory/counts/batch-retrieve", nil, body, &out); err != nil {
			return nil, err
		}
		all = append(all, out.Counts...)
		if out.Cursor == "" {
			return all, nil
		}
		// This endpoint carries its cursor in the request body.
		body.Cursor = out.Cursor
	}
}
