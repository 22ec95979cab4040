/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package images

import (
	"context"
	"testing"
	"time"

	"github.com/atlaspim/syncengine/internal/domain"
)

type fakeFetcher struct{ calls int }

func (f *fakeFetcher) FetchBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	f.calls++
	return []byte("imgdata"), nil
}

type fakeObjectStore struct{ puts int }

func (s *fakeObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	s.puts++
	return "https://cdn.example.com/" + key, nil
}

type fakeMediaStore struct {
	byFilename  map[string]domain.MediaRef
	attached    []string
	mainImages  map[string]domain.MediaRef
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{byFilename: map[string]domain.MediaRef{}, mainImages: map[string]domain.MediaRef{}}
}

func (m *fakeMediaStore) FindMediaByFilename(ctx context.Context, filename string) (*domain.MediaRef, bool, error) {
	if ref, ok := m.byFilename[filename]; ok {
		return &ref, true, nil
	}
	return nil, false, nil
}

func (m *fakeMediaStore) InsertMedia(ctx context.Context, ref domain.MediaRef) error {
	m.byFilename[ref.Filename] = ref
	return nil
}

func (m *fakeMediaStore) AttachToVariant(ctx context.Context, variantSKU string, ref domain.MediaRef, role domain.ImageRole) error {
	m.attached = append(m.attached, variantSKU)
	return nil
}

func (m *fakeMediaStore) SetFamilyMainImage(ctx context.Context, familyKey string, ref domain.MediaRef) error {
	m.mainImages[familyKey] = ref
	return nil
}

func TestProcessFreshTransfer(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &fakeObjectStore{}
	media := newFakeMediaStore()
	p := New(fetcher, store, media)

	job := domain.ImageJob{SourceURL: "https://upstream.example.com/img/V1.jpg", OwnerVariantSKU: "V1", Role: domain.ImageRolePrimary, IsFirstVariantOfFamily: true, FamilyKey: "F1"}
	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 1 || store.puts != 1 {
		t.Fatalf("expected one fetch+put, got fetch=%d put=%d", fetcher.calls, store.puts)
	}
	if _, ok := media.mainImages["F1"]; !ok {
		t.Fatal("expected family main image to be set")
	}
}

// P4: dedup hit issues zero PUT requests.
func TestProcessDedupHitSkipsDownload(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &fakeObjectStore{}
	media := newFakeMediaStore()
	media.byFilename["V1.jpg"] = domain.MediaRef{Filename: "V1.jpg", URL: "https://cdn.example.com/V1.jpg"}

	p := New(fetcher, store, media)
	job := domain.ImageJob{SourceURL: "https://upstream.example.com/img/V1.jpg", OwnerVariantSKU: "V2", Role: domain.ImageRolePrimary}
	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 0 || store.puts != 0 {
		t.Fatalf("expected zero fetch/put on dedup hit, got fetch=%d put=%d", fetcher.calls, store.puts)
	}
}

func TestDeriveFilenameStripsQuery(t *testing.T) {
	got := DeriveFilename("https://upstream.example.com/img/V1.jpg?v=3")
	if got != "V1.jpg" {
		t.Fatalf("expected V1.jpg, got %s", got)
	}
}
