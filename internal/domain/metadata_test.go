package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestDecodeMeta(t *testing.T) {
	tests := []struct {
		name    string
		raw     *string
		want    ChecklistMeta
		wantErr bool
	}{
		{
			name: "nil input",
			raw:  nil,
			want: ChecklistMeta{},
		},
		{
			name: "blank input",
			raw:  strPtr("   "),
			want: ChecklistMeta{},
		},
		{
			name: "malformed JSON decodes to empty record",
			raw:  strPtr("not json at all"),
			want: ChecklistMeta{},

			wantErr: true,
		},
		{
			name: "full record",
			raw:  strPtr(`{"clientName":"Pat Smith","email":"pat@example.com","comments":"All good"}`),
			want: ChecklistMeta{
				ClientName: strPtr("Pat Smith"),
				Email:      strPtr("pat@example.com"),
				Comments:   strPtr("All good"),
			},
		},
		{
			name: "unknown keys are ignored",
			raw:  strPtr(`{"clientName":"Pat","futureField":123}`),
			want: ChecklistMeta{ClientName: strPtr("Pat")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMeta(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecklistMeta_Temperature(t *testing.T) {
	tests := []struct {
		name string
		meta ChecklistMeta
		zone TemperatureZone
		want *string
	}{
		{
			name: "nested object wins over legacy field",
			meta: ChecklistMeta{
				GarageTemp:   strPtr("70"),
				Temperatures: &Temperatures{Garage: strPtr("72")},
			},
			zone: ZoneGarage,
			want: strPtr("72"),
		},
		{
			name: "legacy field used when nested is absent",
			meta: ChecklistMeta{MainFloorTemp: strPtr("75")},
			zone: ZoneMainFloor,
			want: strPtr("75"),
		},
		{
			name: "blank nested value falls through to legacy",
			meta: ChecklistMeta{
				SecondFloorTemp: strPtr("68"),
				Temperatures:    &Temperatures{SecondFloor: strPtr("  ")},
			},
			zone: ZoneSecondFloor,
			want: strPtr("68"),
		},
		{
			name: "no reading anywhere",
			meta: ChecklistMeta{},
			zone: ZoneThirdFloor,
			want: nil,
		},
		{
			name: "blank everywhere counts as absent",
			meta: ChecklistMeta{
				ThirdFloorTemp: strPtr(""),
				Temperatures:   &Temperatures{ThirdFloor: strPtr(" ")},
			},
			zone: ZoneThirdFloor,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.Temperature(tt.zone))
		})
	}
}

func TestChecklistMeta_HasTemperatures(t *testing.T) {
	assert.False(t, ChecklistMeta{}.HasTemperatures())
	assert.False(t, ChecklistMeta{GarageTemp: strPtr("  ")}.HasTemperatures())
	assert.True(t, ChecklistMeta{GarageTemp: strPtr("70")}.HasTemperatures())
	assert.True(t, ChecklistMeta{Temperatures: &Temperatures{ThirdFloor: strPtr("65")}}.HasTemperatures())
}

func TestChecklistMeta_EncodePreservesNulls(t *testing.T) {
	meta := ChecklistMeta{ClientName: strPtr("Pat")}

	encoded, err := meta.Encode()
	require.NoError(t, err)

	// Absent fields serialize as explicit nulls so partial readers of
	// the column see every key.
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(encoded), &keys))
	assert.Contains(t, keys, "emailSentAt")
	assert.Contains(t, keys, "emailSentTo")
	assert.Equal(t, "null", string(keys["emailSentAt"]))

	decoded, err := DecodeMeta(&encoded)
	require.NoError(t, err)
	assert.Equal(t, meta, decoded)
}

func TestChecklistMeta_DeliveryRoundTrip(t *testing.T) {
	raw := `{"clientName":"Pat Smith","comments":"Pool pump running","garageTemp":"78"}`

	meta, err := DecodeMeta(strPtr(raw))
	require.NoError(t, err)

	sentAt := "2026-01-15T10:30:00.000Z"
	meta.EmailSentAt = &sentAt
	meta.EmailSentTo = strPtr("pat@example.com")

	encoded, err := meta.Encode()
	require.NoError(t, err)

	reread, err := DecodeMeta(&encoded)
	require.NoError(t, err)
	assert.Equal(t, strPtr("Pat Smith"), reread.ClientName)
	assert.Equal(t, strPtr("Pool pump running"), reread.Comments)
	assert.Equal(t, strPtr("78"), reread.GarageTemp)
	assert.Equal(t, &sentAt, reread.EmailSentAt)
	assert.Equal(t, strPtr("pat@example.com"), reread.EmailSentTo)
}
