/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// HTTPSink implements Index using a Qdrant-style REST API, ported
// nearly as-is from the teacher's internal/vectorstore/qdrant.go: same
// ensure-collection-once guard, same point-id hashing, same raw
// net/http request/response handling. Renamed from Qdrant-specific
// terms to the generic sink vocabulary since this engine points the
// same client shape at either sink role.
type HTTPSink struct {
	endpoint   string
	collection string
	dimension  int
	client     *http.Client

	ensureOnce sync.Once
	ensureErr  error
}

func NewHTTPSink(endpoint, collection string, dimension int) *HTTPSink {
	return &HTTPSink{endpoint: endpoint, collection: collection, dimension: dimension, client: &http.Client{}}
}

func (s *HTTPSink) ensureCollection(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		url := fmt.Sprintf("%s/collections/%s", s.endpoint, s.collection)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			s.ensureErr = err
			return
		}
		resp, err := s.client.Do(req)
		if err != nil {
			s.ensureErr = err
			return
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return
		}

		body := map[string]any{"vectors": map[string]any{"size": s.dimension, "distance": "Cosine"}}
		data, _ := json.Marshal(body)
		req, err = http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
		if err != nil {
			s.ensureErr = err
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err = s.client.Do(req)
		if err != nil {
			s.ensureErr = err
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			s.ensureErr = fmt.Errorf("create collection failed: %s %s", resp.Status, string(b))
		}
	})
	return s.ensureErr
}

// pointID produces a deterministic uint64 id for a document, FNV-1a,
// same constants as the teacher's docID.
func pointID(id string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(id); i++ {
		h ^= uint64(id[i])
		h *= 1099511628211
	}
	return h
}

func (s *HTTPSink) Upsert(ctx context.Context, doc Document) error {
	if err := s.ensureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	payload := doc.Metadata
	if payload == nil {
		payload = make(map[string]string)
	}
	payload["_id"] = doc.ID
	payload["_content"] = doc.Content

	point := map[string]any{"id": pointID(doc.ID), "vector": doc.Embedding, "payload": payload}
	body := map[string]any{"points": []any{point}}
	data, _ := json.Marshal(body)

	url := fmt.Sprintf("%s/collections/%s/points", s.endpoint, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sink upsert failed: %s %s", resp.Status, string(b))
	}
	return nil
}

func (s *HTTPSink) Search(ctx context.Context, query string, topK int, filter map[string]string) ([]SearchResult, error) {
	return nil, fmt.Errorf("text-based search not supported; sinks are fire-and-forget upload targets per spec")
}

func (s *HTTPSink) Delete(ctx context.Context, id string) error {
	if err := s.ensureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	body := map[string]any{"points": []uint64{pointID(id)}}
	data, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/collections/%s/points/delete", s.endpoint, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sink delete failed: %s %s", resp.Status, string(b))
	}
	return nil
}

func (s *HTTPSink) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/healthz", s.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sink unhealthy: %s", resp.Status)
	}
	return nil
}
