// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/GutSayN/ufood-tui/internal/api"
)

// =============================================================================
// TYPES
// =============================================================================

// Listing is one food offer in the marketplace. Description is markdown.
type Listing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CategoryID  int64     `json:"categoryId"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	SellerID    int64     `json:"sellerId"`
	SellerName  string    `json:"sellerName,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Category is a listing grouping.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListingInput is the payload for creating or updating a listing.
type ListingInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"categoryId"`
}

type envelope[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Result    T      `json:"result"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the product service. It shares the api client's interceptor
// chain, so requests carry the session's bearer token automatically.
type Client struct {
	api *api.Client
}

// New wraps an api client pointed at the product service base URL.
func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// Search returns listings matching query; an empty query lists everything.
// A non-zero categoryID narrows the result to one category.
func (c *Client) Search(ctx context.Context, query string, categoryID int64) ([]Listing, error) {
	values := url.Values{}
	if query != "" {
		values.Set("search", query)
	}
	if categoryID > 0 {
		values.Set("categoryId", fmt.Sprintf("%d", categoryID))
	}
	path := "/listings"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out envelope[[]Listing]
	if err := c.api.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Get fetches one listing by ID.
func (c *Client) Get(ctx context.Context, id int64) (*Listing, error) {
	var out envelope[*Listing]
	if err := c.api.Get(ctx, fmt.Sprintf("/listings/%d", id), &out); err != nil {
		return nil, err
	}
	if out.Result == nil {
		return nil, &api.Error{Status: 404, Message: "listing not found"}
	}
	return out.Result, nil
}

// Create publishes a new listing owned by the current user.
func (c *Client) Create(ctx context.Context, input ListingInput) (*Listing, error) {
	var out envelope[*Listing]
	if err := c.api.Post(ctx, "/listings", input, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Update replaces the mutable fields of an owned listing.
func (c *Client) Update(ctx context.Context, id int64, input ListingInput) (*Listing, error) {
	var out envelope[*Listing]
	if err := c.api.Put(ctx, fmt.Sprintf("/listings/%d", id), input, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Delete removes an owned listing.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, fmt.Sprintf("/listings/%d", id), nil)
}

// Categories returns the category list for filters and the publish form.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out envelope[[]Category]
	if err := c.api.Get(ctx, "/categories", &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// UploadImage attaches an image to a listing via multipart form upload and
// returns the stored image URL.
func (c *Client) UploadImage(ctx context.Context, id int64, filename string, content io.Reader) (string, error) {
	var out envelope[struct {
		ImageURL string `json:"imageUrl"`
	}]
	err := c.api.PostMultipart(ctx, fmt.Sprintf("/listings/%d/image", id),
		nil,
		[]api.FilePart{{Field: "image", Filename: filename, Content: content}},
		&out)
	if err != nil {
		return "", err
	}
	return out.Result.ImageURL, nil
}
