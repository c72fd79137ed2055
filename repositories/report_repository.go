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

// ReportStore is the persistence surface the report controller works
// against. The Mongo implementation below is the production one; tests
// substitute a mock.
type ReportStore interface {
	Insert(ctx context.Context, report models.Report) (*models.Report, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error)
	FindByBDM(ctx context.Context, bdmID primitive.ObjectID) ([]models.Report, error)
	FindByInsideSales(ctx context.Context, salesID primitive.ObjectID) ([]models.Report, error)
	FindAll(ctx context.Context, insideSalesID *primitive.ObjectID) ([]models.Report, error)
	UpdateContent(ctx context.Context, id, authorID primitive.ObjectID, content models.ReportContent) (*models.Report, error)
	Review(ctx context.Context, id, bdmID primitive.ObjectID, decision lifecycle.Decision) (*models.Report, error)
	Transfer(ctx context.Context, id, fromBDM, toBDM primitive.ObjectID) (*models.Report, error)
}

// ReportRepository is the MongoDB-backed ReportStore.
type ReportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(db *mongo.Client) *ReportRepository {
	return &ReportRepository{
		collection: config.GetCollection(db, "reports"),
	}
}

// Insert stores a new report and returns it with its generated id.
func (r *ReportRepository) Insert(ctx context.Context, report models.Report) (*models.Report, error) {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	report.Status = models.StatusPending

	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		return nil, fmt.Errorf("%w: insert report: %v", lifecycle.ErrGateway, err)
	}
	return &report, nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var report models.Report
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find report: %v", lifecycle.ErrGateway, err)
	}
	return &report, nil
}

// FindByBDM returns the reports assigned to the given BDM, newest first.
func (r *ReportRepository) FindByBDM(ctx context.Context, bdmID primitive.ObjectID) ([]models.Report, error) {
	return r.find(ctx, bson.M{"bdm_id": bdmID})
}

// FindByInsideSales returns the reports authored by the given sales rep,
// newest first.
func (r *ReportRepository) FindByInsideSales(ctx context.Context, salesID primitive.ObjectID) ([]models.Report, error) {
	return r.find(ctx, bson.M{"inside_sales_id": salesID})
}

// FindAll is the admin view: every report, optionally narrowed to one
// inside-sales author.
func (r *ReportRepository) FindAll(ctx context.Context, insideSalesID *primitive.ObjectID) ([]models.Report, error) {
	filter := bson.M{}
	if insideSalesID != nil {
		filter["inside_sales_id"] = *insideSalesID
	}
	return r.find(ctx, filter)
}

func (r *ReportRepository) find(ctx context.Context, filter bson.M) ([]models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find reports: %v", lifecycle.ErrGateway, err)
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("%w: decode reports: %v", lifecycle.ErrGateway, err)
	}
	return reports, nil
}

// UpdateContent overwrites the content fields of a report owned by
// authorID. Status and decision fields are never part of the update.
func (r *ReportRepository) UpdateContent(ctx context.Context, id, authorID primitive.ObjectID, content models.ReportContent) (*models.Report, error) {
	filter := bson.M{"_id": id, "inside_sales_id": authorID}
	update := bson.M{"$set": bson.M{
		"company_name":   content.CompanyName,
		"contact_person": content.ContactPerson,
		"contact_number": content.ContactNumber,
		"address":        content.Address,
		"description":    content.Description,
		"lead_source":    content.LeadSource,
		"scheduled_date": content.ScheduledDate,
		"scheduled_time": content.ScheduledTime,
		"updated_at":     time.Now(),
	}}
	return r.guardedUpdate(ctx, id, filter, update)
}

// Review applies a validated decision to a report. The filter carries the
// optimistic guard: the report must still be pending and still assigned to
// the invoking BDM at write time, otherwise the update misses and the miss
// is surfaced as Conflict.
func (r *ReportRepository) Review(ctx context.Context, id, bdmID primitive.ObjectID, decision lifecycle.Decision) (*models.Report, error) {
	filter := bson.M{
		"_id":    id,
		"bdm_id": bdmID,
		"status": models.StatusPending,
	}
	set := bson.M{
		"status":           decision.Status,
		"reviewed_by_name": decision.ReviewedByName,
		"updated_at":       time.Now(),
	}
	unset := bson.M{}
	for field, value := range map[string]string{
		"bdm_remarks":      decision.Remarks,
		"rescheduled_date": decision.RescheduledDate,
		"rescheduled_time": decision.RescheduledTime,
	} {
		if value != "" {
			set[field] = value
		} else {
			unset[field] = ""
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return r.guardedUpdate(ctx, id, filter, update)
}

// Transfer reassigns a report to another BDM and resets it to pending.
// Legal from any status, but only for the BDM who currently owns it.
// The previous decision fields are cleared so the new owner reviews from
// a clean slate.
func (r *ReportRepository) Transfer(ctx context.Context, id, fromBDM, toBDM primitive.ObjectID) (*models.Report, error) {
	filter := bson.M{"_id": id, "bdm_id": fromBDM}
	update := bson.M{
		"$set": bson.M{
			"bdm_id":     toBDM,
			"status":     models.StatusPending,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{
			"bdm_remarks":      "",
			"rescheduled_date": "",
			"rescheduled_time": "",
			"reviewed_by_name": "",
		},
	}
	return r.guardedUpdate(ctx, id, filter, update)
}

// guardedUpdate runs a conditional FindOneAndUpdate. A miss is
// disambiguated with a plain lookup: absent row means NotFound, present
// row means the guard lost the race (or the invoker lacks ownership) and
// is reported as Conflict.
func (r *ReportRepository) guardedUpdate(ctx context.Context, id primitive.ObjectID, filter, update bson.M) (*models.Report, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var report models.Report
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&report)
	if err == nil {
		return &report, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: update report: %v", lifecycle.ErrGateway, err)
	}

	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("%w: recheck report: %v", lifecycle.ErrGateway, err)
	}
	return nil, lifecycle.ErrConflict
}
