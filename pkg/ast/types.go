package ast

// TypeKind enumerates the declared types the analyzer tracks.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeInt
	TypeDouble
	TypeString
	TypeChar
	TypeBoolean
	TypeByte
	TypeShort
	TypeLong
	TypeFloat
	TypeArray
)

var typeNames = map[TypeKind]string{
	TypeUnknown: "unknown",
	TypeInt:     "int",
	TypeDouble:  "double",
	TypeString:  "String",
	TypeChar:    "char",
	TypeBoolean: "boolean",
	TypeByte:    "byte",
	TypeShort:   "short",
	TypeLong:    "long",
	TypeFloat:   "float",
}

// TypeKindOf maps a type keyword spelling to its kind. Unrecognized
// spellings map to TypeUnknown.
func TypeKindOf(name string) TypeKind {
	for k, n := range typeNames {
		if n == name && k != TypeUnknown {
			return k
		}
	}
	return TypeUnknown
}

// Type is a declared type. Elem is set only for TypeArray.
type Type struct {
	Kind TypeKind
	Elem *Type
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: TypeArray, Elem: &e}
}

func (t Type) String() string {
	if t.Kind == TypeArray {
		if t.Elem == nil {
			return "unknown[]"
		}
		return t.Elem.String() + "[]"
	}
	if n, ok := typeNames[t.Kind]; ok {
		return n
	}
	return "unknown"
}
