// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GutSayN/ufood-tui/internal/api"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(api.New(srv.URL))
}

func TestSearchBuildsQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"result":[{"id":1,"title":"Cazuela","price":5500}]}`))
	})

	listings, err := c.Search(context.Background(), "cazuela", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(listings) != 1 || listings[0].Title != "Cazuela" {
		t.Errorf("listings = %+v", listings)
	}
	if !strings.Contains(gotQuery, "search=cazuela") || !strings.Contains(gotQuery, "categoryId=3") {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGetMissingListing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"result":null}`))
	})

	_, err := c.Get(context.Background(), 42)
	apiErr, ok := api.AsError(err)
	if !ok || apiErr.Status != 404 {
		t.Fatalf("err = %v, want 404 api error", err)
	}
}

func TestCreateUpdateDeleteVerbs(t *testing.T) {
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"result":{"id":7,"title":"Sopaipillas"}}`))
	})
	ctx := context.Background()

	input := ListingInput{Title: "Sopaipillas", Price: 1000, CategoryID: 2}
	if _, err := c.Create(ctx, input); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := c.Update(ctx, 7, input); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []string{http.MethodPost, http.MethodPut, http.MethodDelete}
	for i, m := range want {
		if methods[i] != m {
			t.Errorf("call %d method = %s, want %s", i, methods[i], m)
		}
	}
}

func TestUploadImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("image"); err != nil {
			t.Fatalf("form file: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isSuccess":true,"result":{"imageUrl":"https://cdn.ufood.app/i/7.jpg"}}`))
	})

	imgURL, err := c.UploadImage(context.Background(), 7, "dish.jpg", strings.NewReader("fake-jpeg"))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if imgURL != "https://cdn.ufood.app/i/7.jpg" {
		t.Errorf("imageURL = %q", imgURL)
	}
}
