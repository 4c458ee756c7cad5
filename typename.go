package classloader

import "reflect"

// TypeNameOf returns the type name used as the catalog key for t: the
// package-qualified name of t with one level of pointer stripped, for example
// "github.com/acme/app.UserService" for *app.UserService. Unnamed types use
// their Go syntax representation.
func TypeNameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Name() == "" {
		return t.String()
	}

	if t.PkgPath() == "" {
		return t.Name()
	}

	return t.PkgPath() + "." + t.Name()
}

// NameOf returns the type name of T.
//
//	name := classloader.NameOf[*UserService]()
func NameOf[T any]() string {
	return TypeNameOf(reflect.TypeOf((*T)(nil)).Elem())
}
