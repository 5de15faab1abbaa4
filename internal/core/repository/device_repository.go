package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eskytrack/internal/core/model"
)

type DeviceRepository interface {
	Create(device *model.Device) error
	Update(device *model.Device) error
	Delete(id string) error
	FindByID(id string) (*model.Device, error)
	FindAll() ([]*model.Device, error)
	FindByUniqueID(uniqueID string) (*model.Device, error)
}

type MongoDeviceRepository struct {
	collection *mongo.Collection
}

func NewMongoDeviceRepository(db *mongo.Database) *MongoDeviceRepository {
	return &MongoDeviceRepository{
		collection: db.Collection("devices"),
	}
}

// EnsureIndexes creates the unique IMEI index used by registry lookups.
func (r *MongoDeviceRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uniqueid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoDeviceRepository) Create(device *model.Device) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, device)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateDevice
	}
	return err
}

func (r *MongoDeviceRepository) Update(device *model.Device) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"id": device.ID}, device)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoDeviceRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoDeviceRepository) FindByID(id string) (*model.Device, error) {
	return r.findOne(bson.M{"id": id})
}

func (r *MongoDeviceRepository) FindByUniqueID(uniqueID string) (*model.Device, error) {
	return r.findOne(bson.M{"uniqueid": uniqueID})
}

func (r *MongoDeviceRepository) findOne(filter bson.M) (*model.Device, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var device model.Device
	err := r.collection.FindOne(ctx, filter).Decode(&device)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *MongoDeviceRepository) FindAll() ([]*model.Device, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var devices []*model.Device
	if err = cursor.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}
