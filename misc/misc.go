package misc

import (
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/bugsnag/bugsnag-go"
)

func TruncateStr(str string, limit int) string {
	if len(str) > limit {
		str = str[:limit]
	}
	return str
}

// ContainsString reports whether elem is present in the slice, case-insensitive
func ContainsString(in []string, elem string) bool {
	for _, val := range in {
		if strings.EqualFold(val, elem) {
			return true
		}
	}
	return false
}

// Copy copies the exported fields from src to dest.
// Used for copying the default transport.
func Copy(dst, src interface{}) {
	srcV := reflect.ValueOf(src)
	dstV := reflect.ValueOf(dst)

	if srcV.Kind() != reflect.Ptr {
		panic("Copy: src must be a pointer")
	}
	if dstV.Kind() != reflect.Ptr {
		panic("Copy: dst must be a pointer")
	}
	srcV = srcV.Elem()
	dstV = dstV.Elem()

	srcT := srcV.Type()
	dstT := dstV.Type()
	if !srcT.AssignableTo(dstT) {
		panic("Copy not assignable to")
	}
	if srcT.Kind() != reflect.Struct || dstT.Kind() != reflect.Struct {
		panic("Copy are not structs")
	}

	for i := 0; i < srcV.NumField(); i++ {
		sf := dstT.Field(i)
		if sf.PkgPath != "" {
			// Unexported field.
			continue
		}
		dstV.Field(i).Set(srcV.Field(i))
	}
}

// AssertError panics if error
func AssertError(err error) {
	if err != nil {
		debug.PrintStack()
		defer bugsnag.AutoNotify()
		panic(err)
	}
}

// Assert panics if false
func Assert(cond bool) {
	if !cond {
		debug.PrintStack()
		defer bugsnag.AutoNotify()
		panic("Assertion failed")
	}
}
