package database

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func rawID(t *testing.T, v any) bson.RawValue {
	t.Helper()
	typ, data, err := bson.MarshalValue(v)
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	return bson.RawValue{Type: typ, Value: data}
}

func TestDocIDAcceptsStringAndObjectID(t *testing.T) {
	if got := docID(rawID(t, "r-1")); got != "r-1" {
		t.Errorf("string id = %q", got)
	}
	oid := primitive.NewObjectID()
	if got := docID(rawID(t, oid)); got != oid.Hex() {
		t.Errorf("object id = %q, want %q", got, oid.Hex())
	}
}

func TestResidentDocConversion(t *testing.T) {
	blank := "  "
	email := " dana@example.com "
	doc := residentDoc{
		ID:              rawID(t, "r-1"),
		Name:            " Dana ",
		ApartmentNumber: "4",
		MonthlyFee:      300,
		Active:          true,
		Phone:           &blank,
		Email:           &email,
	}
	r, err := doc.toModel()
	if err != nil {
		t.Fatalf("toModel: %v", err)
	}
	if r.ID != "r-1" || r.Name != "Dana" || r.MonthlyFee.String() != "300" {
		t.Errorf("unexpected resident %+v", r)
	}
	if r.Phone != nil {
		t.Errorf("blank phone should be absent, got %q", *r.Phone)
	}
	if r.Email == nil || *r.Email != "dana@example.com" {
		t.Errorf("email = %v", r.Email)
	}
}

func TestInvalidDocumentsAreRejected(t *testing.T) {
	tests := []struct {
		name string
		conv func() error
	}{
		{"resident without name", func() error {
			_, err := residentDoc{ID: rawID(t, "r"), MonthlyFee: 10}.toModel()
			return err
		}},
		{"negative fee", func() error {
			_, err := residentDoc{ID: rawID(t, "r"), Name: "x", MonthlyFee: -1}.toModel()
			return err
		}},
		{"fee payment month 13", func() error {
			_, err := feePaymentDoc{ID: rawID(t, "f"), ResidentID: "r", Month: 13, Year: 2026}.toModel()
			return err
		}},
		{"pending without resident", func() error {
			_, err := pendingPaymentDoc{ID: rawID(t, "p"), Amount: 10}.toModel()
			return err
		}},
		{"reading without station", func() error {
			_, err := meterReadingDoc{ID: rawID(t, "m"), Month: 1, Year: 2026}.toModel()
			return err
		}},
		{"negative default fee", func() error {
			_, err := settingsDoc{DefaultMonthlyFee: -5}.toModel()
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conv()
			if !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("err = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestConvertAllStopsOnFirstInvalid(t *testing.T) {
	docs := []feePaymentDoc{
		{ID: rawID(t, "ok"), ResidentID: "r", Month: 1, Year: 2026, Amount: 300, Paid: true},
		{ID: rawID(t, "bad"), ResidentID: "r", Month: 0, Year: 2026},
	}
	if _, err := convertAll(docs, feePaymentDoc.toModel); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v", err)
	}

	got, err := convertAll(docs[:1], feePaymentDoc.toModel)
	if err != nil {
		t.Fatalf("convertAll: %v", err)
	}
	if len(got) != 1 || !got[0].Paid || got[0].Amount.String() != "300" {
		t.Fatalf("got %+v", got)
	}
}

func TestMeterReadingConversion(t *testing.T) {
	m, err := meterReadingDoc{
		ID:              rawID(t, "m"),
		StationID:       "s",
		Month:           3,
		Year:            2026,
		PreviousReading: 100,
		CurrentReading:  250,
		PricePerKWh:     0.6,
	}.toModel()
	if err != nil {
		t.Fatalf("toModel: %v", err)
	}
	if got := m.Cost().String(); got != "90" {
		t.Fatalf("Cost = %s, want 90", got)
	}
}
