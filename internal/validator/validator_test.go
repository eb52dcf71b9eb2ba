package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/skysailor/internal/domain"
)

type sample struct {
	Origin     string `json:"origin" validate:"notblank"`
	TripType   string `json:"tripType" validate:"triptype"`
	Passengers int    `json:"passengers" validate:"gte=1"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Origin: "NYC", TripType: "Return", Passengers: 2}))
}

func TestStruct_Messages(t *testing.T) {
	testCases := []struct {
		name     string
		input    sample
		field    string
		expected string
	}{
		{"blank origin", sample{Origin: "  ", TripType: "One Way", Passengers: 1}, "origin", "origin cannot be empty"},
		{"bad trip type", sample{Origin: "NYC", TripType: "Round", Passengers: 1}, "tripType", `tripType must be "One Way" or "Return"`},
		{"no passengers", sample{Origin: "NYC", TripType: "One Way", Passengers: 0}, "passengers", "passengers must be greater than or equal to 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.input)
			require.Error(t, err)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.expected, ve.Message)
		})
	}
}
