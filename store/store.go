// Package store is the transport-facing service layer over the generated
// content repository: it validates caller input, orchestrates artifact
// creation with derivation edges, and maps storage errors onto HTTP-shaped
// service errors. The HTTP API and the CLI both call through here.
package store

import (
	"github.com/sf1tzp/symbology-sub000/blobstore"
	"github.com/sf1tzp/symbology-sub000/orm"
)

// Service wires the relational store and the document blob store together.
type Service struct {
	db    orm.DB
	blobs blobstore.Store
}

// NewService creates a service over the given stores.
func NewService(db orm.DB, blobs blobstore.Store) *Service {
	return &Service{
		db:    db,
		blobs: blobs,
	}
}
