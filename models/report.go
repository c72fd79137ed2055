// models/report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report statuses
const (
	StatusPending     = "pending"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
	StatusRescheduled = "rescheduled"
)

// Report model. Content fields belong to the authoring inside-sales rep;
// decision fields are written only by the assigned BDM.
type Report struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CompanyName     string             `json:"company_name" bson:"company_name"`
	ContactPerson   string             `json:"contact_person" bson:"contact_person"`
	ContactNumber   string             `json:"contact_number" bson:"contact_number"`
	Address         string             `json:"address" bson:"address"`
	Description     string             `json:"description" bson:"description"`
	LeadSource      string             `json:"lead_source" bson:"lead_source"`
	ScheduledDate   string             `json:"scheduled_date" bson:"scheduled_date"`
	ScheduledTime   string             `json:"scheduled_time" bson:"scheduled_time"`
	InsideSalesID   primitive.ObjectID `json:"inside_sales_id" bson:"inside_sales_id"`
	InsideSalesName string             `json:"inside_sales_name" bson:"inside_sales_name"`
	BDMID           primitive.ObjectID `json:"bdm_id" bson:"bdm_id"`
	Status          string             `json:"status" bson:"status"`
	BDMRemarks      string             `json:"bdm_remarks,omitempty" bson:"bdm_remarks,omitempty"`
	RescheduledDate string             `json:"rescheduled_date,omitempty" bson:"rescheduled_date,omitempty"`
	RescheduledTime string             `json:"rescheduled_time,omitempty" bson:"rescheduled_time,omitempty"`
	ReviewedByName  string             `json:"reviewed_by_name,omitempty" bson:"reviewed_by_name,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReportContent holds the author-editable fields shared by create and edit.
type ReportContent struct {
	CompanyName   string `json:"company_name" validate:"required"`
	ContactPerson string `json:"contact_person" validate:"required"`
	ContactNumber string `json:"contact_number" validate:"required"`
	Address       string `json:"address" validate:"required"`
	Description   string `json:"description" validate:"required"`
	LeadSource    string `json:"lead_source" validate:"required"`
	ScheduledDate string `json:"scheduled_date" validate:"required"`
	ScheduledTime string `json:"scheduled_time" validate:"required"`
}

// CreateReportRequest model
type CreateReportRequest struct {
	ReportContent
	BDMID string `json:"bdm_id" validate:"required"`
}

// EditReportRequest model. Only content fields; decision fields are not
// accepted on this path.
type EditReportRequest struct {
	ReportContent
}

// ReviewReportRequest model for the BDM decision on a pending report
type ReviewReportRequest struct {
	Decision        string `json:"decision" validate:"required,oneof=accepted rejected rescheduled"`
	Remarks         string `json:"remarks,omitempty"`
	RescheduledDate string `json:"rescheduled_date,omitempty"`
	RescheduledTime string `json:"rescheduled_time,omitempty"`
}

// TransferReportRequest model for reassigning a report to another BDM
type TransferReportRequest struct {
	BDMID string `json:"bdm_id" validate:"required"`
}

// StatusCounts are the derived per-status totals on the sales dashboard.
type StatusCounts struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
	Rescheduled int `json:"rescheduled"`
}

// CountReports derives StatusCounts from a loaded report set.
func CountReports(reports []Report) StatusCounts {
	counts := StatusCounts{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case StatusPending:
			counts.Pending++
		case StatusAccepted:
			counts.Accepted++
		case StatusRejected:
			counts.Rejected++
		case StatusRescheduled:
			counts.Rescheduled++
		}
	}
	return counts
}

// ReportResponse model
type ReportResponse struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Data    *Report `json:"data,omitempty"`
}

// ReportListData bundles a listing with its derived counts.
type ReportListData struct {
	Reports []Report     `json:"reports"`
	Counts  StatusCounts `json:"counts"`
}

// ReportsResponse model for multiple reports
type ReportsResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    *ReportListData `json:"data,omitempty"`
}
