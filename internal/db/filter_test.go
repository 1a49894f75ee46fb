package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterEqAndIn(t *testing.T) {
	filter := NewFilter().
		Eq("receiver", "bob").
		In("status", []string{"sent"}).
		Build()

	assert.Equal(t, bson.M{
		"receiver": "bob",
		"status":   bson.M{"$in": []string{"sent"}},
	}, filter)
}

func TestFilterOr(t *testing.T) {
	filter := NewFilter().
		Or(bson.M{"sender": "alice"}, bson.M{"receiver": "alice"}).
		Build()

	assert.Equal(t, bson.M{
		"$or": []bson.M{{"sender": "alice"}, {"receiver": "alice"}},
	}, filter)
}

func TestFilterObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	filter := NewFilter().ObjectID("_id", id.Hex()).Build()
	require.Equal(t, bson.M{"_id": id}, filter)

	// invalid hex leaves the filter untouched
	filter = NewFilter().ObjectID("_id", "zzz").Build()
	assert.Equal(t, bson.M{}, filter)
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, bson.M{}, Empty())
}
