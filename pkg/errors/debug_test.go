package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpExtractsCodeAndChain(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "update service")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected code %s got %s", CodeDependency, dump.Code)
	}
	if dump.TopMessage == "" {
		t.Fatal("expected top message")
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected unwrap chain through the cause, got %v", dump.Chain)
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "clients_dni_key",
		TableName:      "clients",
		Detail:         "Key (dni)=(12345678Z) already exists.",
	}
	err := fmt.Errorf("create client: %w", pgErr)

	dump := Dump(err)
	if dump.PGCode != "23505" {
		t.Fatalf("expected pg code 23505 got %q", dump.PGCode)
	}
	if dump.PGConstraint != "clients_dni_key" {
		t.Fatalf("expected constraint name, got %q", dump.PGConstraint)
	}
	if dump.PGTable != "clients" {
		t.Fatalf("expected table name, got %q", dump.PGTable)
	}
}

func TestDumpNilError(t *testing.T) {
	dump := Dump(nil)
	if dump.TopMessage != "" || len(dump.Chain) != 0 {
		t.Fatalf("expected zero dump for nil error, got %+v", dump)
	}
}
