package validation

import "testing"

type dailyQuery struct {
	CardNo string `query:"card_no" validate:"required"`
	Date   string `query:"date" validate:"required"`
}

type limits struct {
	Ratio float64 `koanf:"ratio" validate:"gt=0,lt=1"`
	Mode  string  `validate:"oneof=a b"`
}

func TestValidateStruct_OK(t *testing.T) {
	if err := ValidateStruct(dailyQuery{CardNo: "1001", Date: "2025-03-10"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStruct_UsesQueryTagNames(t *testing.T) {
	err := ValidateStruct(dailyQuery{Date: "2025-03-10"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "card_no is required" {
		t.Fatalf("message: got %q", got)
	}
	api := err.ToAPIError()
	if api.Code != "VALIDATION_ERROR" {
		t.Fatalf("code: got %q", api.Code)
	}
}

func TestValidateStruct_ParamMessages(t *testing.T) {
	err := ValidateStruct(limits{Ratio: 1.5, Mode: "c"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Fields) != 2 {
		t.Fatalf("fields: got %d", len(err.Fields))
	}
	if err.Fields[0].Message != "ratio must be less than 1" {
		t.Fatalf("ratio message: got %q", err.Fields[0].Message)
	}
	if err.Fields[1].Message != "Mode must be one of: a b" {
		t.Fatalf("mode message: got %q", err.Fields[1].Message)
	}
}
