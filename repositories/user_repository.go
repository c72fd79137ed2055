package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SimpleHunt/Appointment-app/config"
	"github.com/SimpleHunt/Appointment-app/lifecycle"
	"github.com/SimpleHunt/Appointment-app/models"
)

// UserStore is the persistence surface for actor records.
type UserStore interface {
	FindByUserName(ctx context.Context, userName string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListBDMs(ctx context.Context) ([]models.BDMSummary, error)
	List(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, user models.User) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile models.UpdateProfileRequest) (*models.User, error)
	UpdatePicture(ctx context.Context, id primitive.ObjectID, pictureURL string) error
}

// UserRepository is the MongoDB-backed UserStore.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) *UserRepository {
	return &UserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

func (r *UserRepository) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"user_name": userName}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", lifecycle.ErrGateway, err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", lifecycle.ErrGateway, err)
	}
	return &user, nil
}

// ListBDMs returns the id/name directory used for assignment and transfer.
func (r *UserRepository) ListBDMs(ctx context.Context) ([]models.BDMSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"role": models.RoleBDM}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list bdms: %v", lifecycle.ErrGateway, err)
	}
	defer cursor.Close(ctx)

	bdms := []models.BDMSummary{}
	if err := cursor.All(ctx, &bdms); err != nil {
		return nil, fmt.Errorf("%w: decode bdms: %v", lifecycle.ErrGateway, err)
	}
	return bdms, nil
}

// List returns every user with the password hash stripped (admin view).
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", lifecycle.ErrGateway, err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: decode users: %v", lifecycle.ErrGateway, err)
	}
	return users, nil
}

func (r *UserRepository) Insert(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: user_name already taken", lifecycle.ErrConflict)
		}
		return nil, fmt.Errorf("%w: insert user: %v", lifecycle.ErrGateway, err)
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", lifecycle.ErrGateway, err)
	}
	if res.DeletedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

// UpdateProfile writes the self-service profile fields. Zero values are
// skipped so a partial payload doesn't blank the record.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, profile models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if profile.Name != "" {
		set["name"] = profile.Name
	}
	if profile.Age > 0 {
		set["age"] = profile.Age
	}
	if profile.Position != "" {
		set["position"] = profile.Position
	}
	if profile.Phone != "" {
		set["phone"] = profile.Phone
	}
	if profile.Address != "" {
		set["address"] = profile.Address
	}
	if profile.Location != "" {
		set["location"] = profile.Location
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("%w: update profile: %v", lifecycle.ErrGateway, err)
	}
	user.Password = ""
	return &user, nil
}

func (r *UserRepository) UpdatePicture(ctx context.Context, id primitive.ObjectID, pictureURL string) error {
	update := bson.M{"$set": bson.M{
		"picture":   pictureURL,
		"updatedAt": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("%w: update picture: %v", lifecycle.ErrGateway, err)
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}
