package sqldb

type targetFieldsProvider interface {
	TargetFields() []any
}

// Scannable constrains a model pointer that can expose its scan targets in
// column order.
type Scannable[T any] interface {
	~*T                  // Type Constraint: Underlying Type(~) = *T
	targetFieldsProvider // must implement targetFieldsProvider
}
