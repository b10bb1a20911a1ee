package product

// Factory manufactures a product from nothing when no party in the
// chain holds stock. The producer-role party invokes it exactly once
// per unmet request.
type Factory interface {
	MakeProduct(name string) (*Product, error)
}

// CatalogFactory is the default Factory over the built-in catalog.
type CatalogFactory struct{}

// NewCatalogFactory creates a factory for the built-in product catalog.
func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{}
}

// MakeProduct creates a product by request name at its canonical start
// state. Unrecognized names fail with ErrUnknownKind.
func (f *CatalogFactory) MakeProduct(name string) (*Product, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind)
}
