package domain

import (
	"context"
	"strings"
)

// Fixed keys shared by the application.
const (
	KeyNumbering = "numbering"
	KeyDocuments = "documents"
	KeyItems     = "items"
	KeyTemplates = "templates"
	KeyClients   = "clients"
	KeySuppliers = "fournisseurs"
)

// UpdateFunc receives the current value (nil when absent) and returns the
// value to store. Returning an error aborts the update and leaves the key as is.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Store is a namespaced string-keyed document store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
}

// NamespacedKey joins namespace and key as "<namespace>:<key>".
func NamespacedKey(namespace, key string) string {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}
