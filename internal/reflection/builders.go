package reflection

import (
	"fmt"
	"math"
	"reflect"
	"runtime/debug"
)

// PanicError is returned by Invoke when a constructor panics.
type PanicError struct {
	Panic any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("constructor panicked: %v", e.Panic)
}

// Invoke calls the constructor fn described by info with args. A non-nil
// error return from the constructor is returned unchanged; a panic is
// recovered into a *PanicError.
func Invoke(fn reflect.Value, info *ConstructorInfo, args []reflect.Value) (instance any, err error) {
	if !info.IsFunc {
		return Allocate(info.Produces), nil
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = &PanicError{Panic: r, Stack: debug.Stack()}
		}
	}()

	results := fn.Call(args)

	if info.HasErrorReturn {
		if last := results[len(results)-1]; !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}

	return results[0].Interface(), nil
}

// Allocate builds a value of t without calling a constructor. Pointer types
// get a freshly allocated zero element.
func Allocate(t reflect.Type) any {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Elem().Interface()
}

// ArgumentValue converts a declared default value into an argument of type t.
// A nil value becomes the zero value of t. Numbers convert between integer
// and floating point kinds only when the value is represented exactly; other
// values convert only between types of the same kind.
func ArgumentValue(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(t):
		return v, nil
	case isNumber(v.Kind()) && isNumber(t.Kind()):
		if !fitsNumber(v, t) {
			return reflect.Value{}, fmt.Errorf("default value %v of type %v does not fit %v", value, v.Type(), t)
		}
		return v.Convert(t), nil
	case v.Kind() == t.Kind() && v.Type().ConvertibleTo(t):
		return v.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("default value of type %v is not assignable to %v", v.Type(), t)
}

const (
	twoTo63 = 1 << 63
	twoTo64 = 1 << 64
)

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

// fitsNumber reports whether the number v converts to t without changing its
// value. Floating point targets may round fractions but never integers.
func fitsNumber(v reflect.Value, t reflect.Type) bool {
	switch k := v.Kind(); {
	case isInt(k):
		n := v.Int()
		switch {
		case isInt(t.Kind()):
			return !reflect.Zero(t).OverflowInt(n)
		case isUint(t.Kind()):
			return n >= 0 && !reflect.Zero(t).OverflowUint(uint64(n))
		default:
			f := v.Convert(t).Float()
			return f >= -twoTo63 && f < twoTo63 && int64(f) == n
		}

	case isUint(k):
		u := v.Uint()
		switch {
		case isInt(t.Kind()):
			return u <= math.MaxInt64 && !reflect.Zero(t).OverflowInt(int64(u))
		case isUint(t.Kind()):
			return !reflect.Zero(t).OverflowUint(u)
		default:
			f := v.Convert(t).Float()
			return f < twoTo64 && uint64(f) == u
		}

	default:
		f := v.Float()
		switch {
		case isFloat(t.Kind()):
			return !reflect.Zero(t).OverflowFloat(f)
		case math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f):
			return false
		case isInt(t.Kind()):
			return f >= -twoTo63 && f < twoTo63 && !reflect.Zero(t).OverflowInt(int64(f))
		default:
			return f >= 0 && f < twoTo64 && !reflect.Zero(t).OverflowUint(uint64(f))
		}
	}
}

// InstanceValue converts a resolved instance into an argument of type t.
func InstanceValue(instance any, t reflect.Type) (reflect.Value, error) {
	if instance == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(instance)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("instance of type %v is not assignable to %v", v.Type(), t)
	}
	return v, nil
}
