// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/imaging"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// imageField is the multipart field carrying project images.
const imageField = "images"

// Uploads parses multipart forms and normalizes their images.
type Uploads struct {
	processor *imaging.Processor
	maxBytes  int64
}

// NewUploads creates an upload reader. maxBytes bounds the whole request body.
func NewUploads(p *imaging.Processor, maxBytes int64) *Uploads {
	return &Uploads{processor: p, maxBytes: maxBytes}
}

// Parse limits and parses a multipart form body.
func (u *Uploads) Parse(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return fmt.Errorf("parsing upload: %w", err)
	}
	return nil
}

// Images normalizes every non-empty file of the images field. Parse must
// have been called.
func (u *Uploads) Images(r *http.Request) ([]apiclient.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var files []apiclient.File
	for _, fh := range r.MultipartForm.File[imageField] {
		if fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}
		file, err := u.processor.NormalizeReader(f, fh.Filename, u.maxBytes)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
