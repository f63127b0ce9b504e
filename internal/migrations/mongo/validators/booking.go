package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingStatuses = []string{
	"hold",
	"confirmed",
	"in_progress",
	"ready",
	"completed",
	"cancelled",
	"no_show",
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"staff_id",
			"service_id",
			"client_id",
			"start_ts",
			"end_ts",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"staff_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"start_ts": bson.M{
				"bsonType": "date",
			},

			"end_ts": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     BookingStatuses,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
	// end_ts > start_ts
	"$expr": bson.M{"$gt": bson.A{"$end_ts", "$start_ts"}},
}

// StaffLedgerValidator covers the per-staff documents admissions bump to
// serialise on one staff member.
var StaffLedgerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "seq"},
		"properties": bson.M{
			"_id": bson.M{"bsonType": "string"},
			"seq": bson.M{"bsonType": []string{"int", "long"}},
		},
	},
}
