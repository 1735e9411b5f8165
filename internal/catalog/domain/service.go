package domain

import "context"

// Registry is CRUD over one catalog list.
type Registry[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id string, v T) (T, error)
	Delete(ctx context.Context, id string) error
}

type Service interface {
	Items() Registry[Item]
	Templates() Registry[Template]
	Clients() Registry[Client]
	Suppliers() Registry[Supplier]

	// SetDefaultTemplate flags id as default and clears the flag on every
	// other template of the same type.
	SetDefaultTemplate(ctx context.Context, id string) (Template, error)
	// ResolveTemplate returns the template with templateID when given,
	// otherwise the default for documentType or "all". ok is false when
	// nothing applies.
	ResolveTemplate(ctx context.Context, documentType, templateID string) (tpl Template, ok bool, err error)
}
