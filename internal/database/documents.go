package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"committee-notifier/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrInvalidDocument is returned when a stored record fails validation at
// the read boundary.
var ErrInvalidDocument = errors.New("invalid document")

var validate = validator.New()

type settingsDoc struct {
	DefaultMonthlyFee float64 `bson:"defaultMonthlyFee" validate:"gte=0"`
}

type residentDoc struct {
	ID              bson.RawValue `bson:"_id"`
	Name            string        `bson:"name" validate:"required"`
	ApartmentNumber string        `bson:"apartmentNumber"`
	MonthlyFee      float64       `bson:"monthlyFee" validate:"gte=0"`
	Active          bool          `bson:"active"`
	Phone           *string       `bson:"phone,omitempty"`
	Email           *string       `bson:"email,omitempty"`
}

type feePaymentDoc struct {
	ID            bson.RawValue `bson:"_id"`
	ResidentID    string        `bson:"residentId" validate:"required"`
	Amount        float64       `bson:"amount" validate:"gte=0"`
	Month         int           `bson:"month" validate:"min=1,max=12"`
	Year          int           `bson:"year" validate:"min=1900"`
	Paid          bool          `bson:"paid"`
	PaymentDate   *time.Time    `bson:"paymentDate,omitempty"`
	PaymentMethod *string       `bson:"paymentMethod,omitempty"`
}

type pendingPaymentDoc struct {
	ID          bson.RawValue `bson:"_id"`
	ResidentID  string        `bson:"residentId" validate:"required"`
	Description string        `bson:"description"`
	Amount      float64       `bson:"amount" validate:"gte=0"`
	DueDate     *time.Time    `bson:"dueDate,omitempty"`
	Paid        bool          `bson:"paid"`
}

type chargingStationDoc struct {
	ID                bson.RawValue `bson:"_id"`
	ResidentApartment string        `bson:"residentApartment"`
	ResidentName      string        `bson:"residentName"`
	Active            bool          `bson:"active"`
}

type meterReadingDoc struct {
	ID              bson.RawValue `bson:"_id"`
	StationID       string        `bson:"stationId" validate:"required"`
	Month           int           `bson:"month" validate:"min=1,max=12"`
	Year            int           `bson:"year" validate:"min=1900"`
	PreviousReading float64       `bson:"previousReading" validate:"gte=0"`
	CurrentReading  float64       `bson:"currentReading" validate:"gte=0"`
	PricePerKWh     float64       `bson:"pricePerKwh" validate:"gte=0"`
	TotalCost       float64       `bson:"totalCost" validate:"gte=0"`
	Paid            bool          `bson:"paid"`
}

type recipientDoc struct {
	Email    string `bson:"email"`
	SendMail bool   `bson:"sendMail"`
}

func (d settingsDoc) toModel() (models.GlobalSettings, error) {
	if err := check("settings", globalSettingsID, d); err != nil {
		return models.GlobalSettings{}, err
	}
	return models.GlobalSettings{DefaultMonthlyFee: decimal.NewFromFloat(d.DefaultMonthlyFee)}, nil
}

func (d residentDoc) toModel() (models.Resident, error) {
	id := docID(d.ID)
	if err := check("resident", id, d); err != nil {
		return models.Resident{}, err
	}
	return models.Resident{
		ID:              id,
		Name:            strings.TrimSpace(d.Name),
		ApartmentNumber: strings.TrimSpace(d.ApartmentNumber),
		MonthlyFee:      decimal.NewFromFloat(d.MonthlyFee),
		Active:          d.Active,
		Phone:           optional(d.Phone),
		Email:           optional(d.Email),
	}, nil
}

func (d feePaymentDoc) toModel() (models.FeePayment, error) {
	id := docID(d.ID)
	if err := check("fee payment", id, d); err != nil {
		return models.FeePayment{}, err
	}
	return models.FeePayment{
		ID:            id,
		ResidentID:    d.ResidentID,
		Amount:        decimal.NewFromFloat(d.Amount),
		Month:         d.Month,
		Year:          d.Year,
		Paid:          d.Paid,
		PaymentDate:   d.PaymentDate,
		PaymentMethod: optional(d.PaymentMethod),
	}, nil
}

func (d pendingPaymentDoc) toModel() (models.PendingPayment, error) {
	id := docID(d.ID)
	if err := check("pending payment", id, d); err != nil {
		return models.PendingPayment{}, err
	}
	return models.PendingPayment{
		ID:          id,
		ResidentID:  d.ResidentID,
		Description: strings.TrimSpace(d.Description),
		Amount:      decimal.NewFromFloat(d.Amount),
		DueDate:     d.DueDate,
		Paid:        d.Paid,
	}, nil
}

func (d chargingStationDoc) toModel() (models.ChargingStation, error) {
	return models.ChargingStation{
		ID:                docID(d.ID),
		ResidentApartment: strings.TrimSpace(d.ResidentApartment),
		ResidentName:      d.ResidentName,
		Active:            d.Active,
	}, nil
}

func (d meterReadingDoc) toModel() (models.MeterReading, error) {
	id := docID(d.ID)
	if err := check("meter reading", id, d); err != nil {
		return models.MeterReading{}, err
	}
	return models.MeterReading{
		ID:              id,
		StationID:       d.StationID,
		Month:           d.Month,
		Year:            d.Year,
		PreviousReading: decimal.NewFromFloat(d.PreviousReading),
		CurrentReading:  decimal.NewFromFloat(d.CurrentReading),
		PricePerKWh:     decimal.NewFromFloat(d.PricePerKWh),
		TotalCost:       decimal.NewFromFloat(d.TotalCost),
		Paid:            d.Paid,
	}, nil
}

func (d recipientDoc) toModel() (models.RecipientAccount, error) {
	return models.RecipientAccount{Email: d.Email, SendMail: d.SendMail}, nil
}

func check(kind, id string, doc any) error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidDocument, kind, id, err)
	}
	return nil
}

func convertAll[D any, M any](docs []D, convert func(D) (M, error)) ([]M, error) {
	out := make([]M, 0, len(docs))
	for _, doc := range docs {
		m, err := convert(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// docID accepts both string and ObjectID primary keys.
func docID(raw bson.RawValue) string {
	if s, ok := raw.StringValueOK(); ok {
		return s
	}
	if oid, ok := raw.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return ""
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
