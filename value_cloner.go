package l2cache

import "github.com/jinzhu/copier"

// ValueCloner is an interface for cloning values.
// The accessor uses it for values handed to callers that shared another caller's load,
// and in-process stores use it so that callers never alias stored values.
type ValueCloner[V ValueConstraint] interface {
	CloneValue(V) V
}

// ValueClonerFunc is a function type that implements the ValueCloner interface.
type ValueClonerFunc[V ValueConstraint] func(v V) V

// CloneValue calls the function.
func (f ValueClonerFunc[V]) CloneValue(v V) V {
	return f(v)
}

// NopValueCloner returns values as they are.
// Use it for primitive or immutable values.
type NopValueCloner[V ValueConstraint] struct{}

// CloneValue returns the input value.
func (NopValueCloner[V]) CloneValue(v V) V {
	return v
}

// DefaultValueCloner returns a cloner that calls the Clone or DeepCopy method of V.
// If V has neither, values are shared as they are and callers must not mutate them.
func DefaultValueCloner[V ValueConstraint]() ValueCloner[V] {
	type cloner interface {
		Clone() V
	}
	type deepCopier interface {
		DeepCopy() V
	}

	var zero V
	switch any(zero).(type) {
	case cloner:
		return ValueClonerFunc[V](func(v V) V {
			return any(v).(cloner).Clone()
		})
	case deepCopier:
		return ValueClonerFunc[V](func(v V) V {
			return any(v).(deepCopier).DeepCopy()
		})
	default:
		return NopValueCloner[V]{}
	}
}

// DeepCopyValueCloner returns a cloner that copies values field by field with jinzhu/copier.
// It suits plain struct, slice and map values that have no Clone method.
// A value copier cannot handle is returned as it is.
func DeepCopyValueCloner[V ValueConstraint]() ValueCloner[V] {
	return ValueClonerFunc[V](func(v V) V {
		var dst V
		if err := copier.CopyWithOption(&dst, &v, copier.Option{DeepCopy: true}); err != nil {
			return v
		}
		return dst
	})
}
