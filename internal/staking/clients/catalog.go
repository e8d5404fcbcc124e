// Package clients holds the HTTP implementations of the external
// collaborator ports: the asset catalog, asset custody, and the fungible
// token ledger.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stakeyard/pkg/domain"
)

const defaultTimeout = 10 * time.Second

// CatalogClient talks to the asset catalog service. It serves both the
// catalog port (asset resolution, template existence) and the custody port
// (returning assets to their owner), since the catalog service owns custody.
type CatalogClient struct {
	baseURL string
	http    *http.Client
}

// NewCatalogClient builds a catalog client against baseURL.
func NewCatalogClient(baseURL string, timeout time.Duration) (*CatalogClient, error) {
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CatalogClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type assetResponse struct {
	AssetID    string `json:"asset_id"`
	Collection string `json:"collection"`
	TemplateID int32  `json:"template_id"`
	Owner      string `json:"owner"`
}

// ResolveAsset fetches the catalog identity of an asset.
func (c *CatalogClient) ResolveAsset(ctx context.Context, id domain.AssetID) (domain.CollectionName, domain.TemplateID, error) {
	var out assetResponse
	if err := c.getJSON(ctx, "/v1/assets/"+id.String(), &out); err != nil {
		return "", 0, fmt.Errorf("resolve asset %s: %w", id, err)
	}
	collection, err := domain.ParseCollectionName(out.Collection)
	if err != nil {
		return "", 0, fmt.Errorf("resolve asset %s: %w", id, err)
	}
	return collection, domain.TemplateID(out.TemplateID), nil
}

type templateResponse struct {
	TemplateID int32  `json:"template_id"`
	Collection string `json:"collection"`
}

// TemplateExists reports whether the template belongs to the collection.
func (c *CatalogClient) TemplateExists(ctx context.Context, collection domain.CollectionName, id domain.TemplateID) (bool, error) {
	path := fmt.Sprintf("/v1/collections/%s/templates/%s", url.PathEscape(collection.String()), id)
	var out templateResponse
	err := c.getJSON(ctx, path, &out)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("template %s in %s: %w", id, collection, err)
	}
	return true, nil
}

type transferRequest struct {
	To       string   `json:"to"`
	AssetIDs []string `json:"asset_ids"`
	Memo     string   `json:"memo"`
}

// ReturnAssets transfers custody of the assets back to their owner.
func (c *CatalogClient) ReturnAssets(ctx context.Context, to domain.AccountName, ids []domain.AssetID, memo string) error {
	body := transferRequest{To: to.String(), Memo: memo}
	for _, id := range ids {
		body.AssetIDs = append(body.AssetIDs, id.String())
	}
	if err := c.postJSON(ctx, "/v1/transfers", body); err != nil {
		return fmt.Errorf("return %d assets to %s: %w", len(ids), to, err)
	}
	return nil
}

var errNotFound = errors.New("not found")

func (c *CatalogClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out)
}

func (c *CatalogClient) postJSON(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return nil
}
