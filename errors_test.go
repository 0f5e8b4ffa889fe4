package docbolt

import (
	"errors"
	"fmt"
	"testing"
)

func TestSchemaError_Message(t *testing.T) {
	deepEqual(t, schemaErrf("", "primary key path is empty").Error(), "schema: primary key path is empty")
	deepEqual(t, schemaErrf("age", "bad field").Error(), "schema.age: bad field")
}

func TestOpenError_Wrapping(t *testing.T) {
	cause := fmt.Errorf("disk quota exceeded")
	err := error(&OpenError{Name: "db--users", Err: cause})

	deepEqual(t, err.Error(), "open db--users: disk quota exceeded")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("OpenError must match ErrStorageUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Errorf("OpenError must unwrap to its cause")
	}
}
