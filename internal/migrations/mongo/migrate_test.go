package mongo

import (
	"testing"

	"agenda/internal/migrations/mongo/validators"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollectionsHaveValidators(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Collections() {
		if seen[def.Name] {
			t.Errorf("collection %s declared twice", def.Name)
		}
		seen[def.Name] = true
		if _, ok := def.Validator["$jsonSchema"]; !ok {
			t.Errorf("collection %s has no $jsonSchema validator", def.Name)
		}
	}
	for _, name := range []string{ServicesCollection, StaffCollection, ClientsCollection, BookingsCollection, StaffLedgerCollection} {
		if !seen[name] {
			t.Errorf("collection %s missing", name)
		}
	}
}

func TestBookingValidatorStatusEnum(t *testing.T) {
	schema := validators.BookingValidator["$jsonSchema"].(bson.M)
	status := schema["properties"].(bson.M)["status"].(bson.M)
	enum := status["enum"].([]string)
	if len(enum) != 7 {
		t.Fatalf("status enum = %v", enum)
	}
	for _, s := range []string{"hold", "confirmed", "cancelled", "no_show"} {
		found := false
		for _, e := range enum {
			found = found || e == s
		}
		if !found {
			t.Errorf("status %s missing from enum", s)
		}
	}
}

func TestClientPhoneIndexIsUniqueAndPartial(t *testing.T) {
	opts := ClientsIndexes[0].Options
	if opts == nil || opts.Unique == nil || !*opts.Unique {
		t.Fatal("phone index must be unique")
	}
	if opts.PartialFilterExpression == nil {
		t.Error("phone index must skip clients without a phone")
	}
}
