package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "duration_min", "active"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "string"},
			"name":     bson.M{"bsonType": "string", "minLength": 1},
			"category": bson.M{"bsonType": "string"},
			"duration_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"price":  bson.M{"bsonType": []string{"double", "int", "long", "decimal"}},
			"active": bson.M{"bsonType": "bool"},
		},
	},
}

var StaffValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "active"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":    bson.M{"bsonType": "string"},
			"name":   bson.M{"bsonType": "string", "minLength": 1},
			"role":   bson.M{"bsonType": "string"},
			"active": bson.M{"bsonType": "bool"},
		},
	},
}

var ClientValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"name":       bson.M{"bsonType": "string", "minLength": 1},
			"phone":      bson.M{"bsonType": "string", "pattern": `^\+[1-9][0-9]{6,14}$`},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
